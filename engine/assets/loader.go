package assets

import "github.com/spaghettifunk/rosella/engine/assets/loaders"

type Loader interface {
	Load(path string, params loaders.Params) (*loaders.Resource, error)
	Unload(*loaders.Resource) error
}
