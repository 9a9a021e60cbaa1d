//go:build mage

package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/target"
)

type Build mg.Namespace

const shaderDir = "assets/shaders"

// Compiles every GLSL stage in assets/shaders to SPIR-V with glslc.
func (Build) Shaders() error {
	return buildShaders()
}

// Builds the engine binary into bin/.
func (Build) Engine() error {
	mg.Deps(Build.Shaders)
	_, err := executeCmd("go", withArgs("build", "-o", filepath.Join("bin", "rosella"), "."), withStream())
	return err
}

func buildShaders() error {
	sources, err := shaderSources()
	if err != nil {
		return err
	}
	for _, src := range sources {
		out := src + ".spv"
		// Skip stages whose SPIR-V is newer than the source.
		stale, err := target.Path(out, src)
		if err != nil {
			return errors.Wrapf(err, "checking %s", out)
		}
		if !stale {
			continue
		}
		if _, err := executeCmd("glslc", withArgs(src, "-o", out), withStream()); err != nil {
			return err
		}
	}
	return nil
}

func shaderSources() ([]string, error) {
	entries, err := os.ReadDir(shaderDir)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", shaderDir)
	}
	var sources []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !(strings.HasSuffix(name, ".vert") || strings.HasSuffix(name, ".frag")) {
			continue
		}
		sources = append(sources, filepath.Join(shaderDir, name))
	}
	return sources, nil
}
