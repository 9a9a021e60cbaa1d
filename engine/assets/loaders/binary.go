package loaders

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/rosella/engine/core"
)

// readFile reads a whole asset, wrapping the error with the path.
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		err = errors.Wrapf(err, "reading asset '%s'", path)
		core.LogError(err.Error())
		return nil, err
	}
	return data, nil
}

// bytesToBytecode reinterprets little-endian bytes as 32-bit words. len(b)
// must be a multiple of 4.
func bytesToBytecode(b []byte) []uint32 {
	byteCode := make([]uint32, len(b)/4)
	for i := 0; i < len(byteCode); i++ {
		byteIndex := i * 4
		byteCode[i] = 0
		byteCode[i] |= uint32(b[byteIndex])
		byteCode[i] |= uint32(b[byteIndex+1]) << 8
		byteCode[i] |= uint32(b[byteIndex+2]) << 16
		byteCode[i] |= uint32(b[byteIndex+3]) << 24
	}

	return byteCode
}
