package loaders

type ResourceType int

const (
	ResourceTypeNone ResourceType = iota
	// SPIR-V bytecode.
	ResourceTypeShader
	// Decoded image, uploaded as a texture.
	ResourceTypeImage
	// Material description (.material.toml).
	ResourceTypeMaterial
	// Wavefront OBJ.
	ResourceTypeModel
	// AngelCode .fnt font.
	ResourceTypeBitmapFont
	// TrueType or OpenType font rasterized into an atlas.
	ResourceTypeSystemFont
)

func (t ResourceType) String() string {
	switch t {
	case ResourceTypeShader:
		return "shader"
	case ResourceTypeImage:
		return "image"
	case ResourceTypeMaterial:
		return "material"
	case ResourceTypeModel:
		return "model"
	case ResourceTypeBitmapFont:
		return "bitmap font"
	case ResourceTypeSystemFont:
		return "system font"
	}
	return "none"
}

/**
 * @brief A generic structure for a resource. All resource loaders
 * load data into these.
 */
type Resource struct {
	Name     string
	FullPath string
	Type     ResourceType
	// The size of the file the resource was read from, in bytes.
	DataSize uint64
	Data     interface{}
}

// Params passes loader-specific options such as a texture name or font size.
type Params map[string]string

func (p Params) get(key, fallback string) string {
	if v, ok := p[key]; ok && v != "" {
		return v
	}
	return fallback
}
