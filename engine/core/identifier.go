package core

import "strings"

const DefaultNamespace = "rosella"

// Identifier names a registered resource as namespace:path.
type Identifier struct {
	Namespace string
	Path      string
}

func NewIdentifier(namespace, path string) Identifier {
	return Identifier{Namespace: namespace, Path: path}
}

// ParseIdentifier accepts "namespace:path" or a bare path, which lands in
// DefaultNamespace.
func ParseIdentifier(s string) (Identifier, error) {
	if s == "" {
		return Identifier{}, NewConfigurationError("empty identifier")
	}
	ns, path, found := strings.Cut(s, ":")
	if !found {
		return Identifier{Namespace: DefaultNamespace, Path: s}, nil
	}
	if ns == "" || path == "" || strings.Contains(path, ":") {
		return Identifier{}, NewConfigurationError("malformed identifier '%s'", s)
	}
	return Identifier{Namespace: ns, Path: path}, nil
}

func (id Identifier) String() string {
	return id.Namespace + ":" + id.Path
}

func (id Identifier) IsZero() bool {
	return id.Namespace == "" && id.Path == ""
}
