package loaders

import (
	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/rosella/engine/core"
)

// SpirvMagic is the first word of every SPIR-V module.
const SpirvMagic uint32 = 0x07230203

type ShaderLoader struct{}

// Load reads a compiled SPIR-V module. Data is the module as []uint32.
func (sl *ShaderLoader) Load(path string, params Params) (*Resource, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	code, err := DecodeSPIRV(data)
	if err != nil {
		err = errors.Wrapf(err, "shader '%s'", path)
		core.LogError(err.Error())
		return nil, err
	}
	return &Resource{
		Name:     params.get("name", path),
		FullPath: path,
		Type:     ResourceTypeShader,
		DataSize: uint64(len(data)),
		Data:     code,
	}, nil
}

func (sl *ShaderLoader) Unload(res *Resource) error {
	res.Data = nil
	return nil
}

// DecodeSPIRV checks the size and magic number of a SPIR-V binary and returns
// its words.
func DecodeSPIRV(data []byte) ([]uint32, error) {
	if len(data) == 0 || len(data)%4 != 0 {
		return nil, errors.Newf("SPIR-V size %d is not a positive multiple of 4", len(data))
	}
	code := bytesToBytecode(data)
	if code[0] != SpirvMagic {
		return nil, errors.Newf("bad SPIR-V magic 0x%08x", code[0])
	}
	return code, nil
}
