package manifest

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"gopkg.in/yaml.v3"
)

// Load reads a manifest from a YAML file, a CUE file, or a directory
// holding a CUE package.
func Load(path string) (*Manifest, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("load manifest: %w", err)
	}
	if info.IsDir() {
		return LoadDir(path)
	}
	return LoadFile(path)
}

// LoadFile reads a single manifest file. The format is chosen by extension:
// .yaml, .yml and .json are decoded as YAML; .cue is compiled as CUE.
func LoadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load manifest: %w", err)
	}

	var m *Manifest
	switch filepath.Ext(path) {
	case ".yaml", ".yml", ".json":
		m, err = ParseYAML(data)
	case ".cue":
		v := cuecontext.New().CompileBytes(data, cue.Filename(path))
		m, err = CompileCUE(v)
	default:
		return nil, fmt.Errorf("load manifest %s: unsupported extension %q", path, filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("load manifest %s: %w", path, err)
	}
	m.Source = path
	return m, nil
}

// LoadDir compiles the CUE package in dir.
func LoadDir(dir string) (*Manifest, error) {
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("load manifest %s: no CUE instances loaded", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, fmt.Errorf("load manifest %s: %w", dir, inst.Err)
	}

	v := cuecontext.New().BuildInstance(inst)
	m, err := CompileCUE(v)
	if err != nil {
		return nil, fmt.Errorf("load manifest %s: %w", dir, err)
	}
	m.Source = dir
	return m, nil
}

// ParseYAML decodes a YAML manifest. Unknown fields are rejected.
func ParseYAML(data []byte) (*Manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("empty manifest")
		}
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if len(m.Modules) == 0 {
		return nil, fmt.Errorf("no module definitions found")
	}
	return &m, nil
}
