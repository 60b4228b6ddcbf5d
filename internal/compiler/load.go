package compiler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/roach88/propnet/internal/ir"
)

// ErrNoCircuit is returned when a path holds nothing that can be loaded as a
// circuit.
var ErrNoCircuit = errors.New("no circuit found")

// LoadCircuit reads a circuit from path, which may be:
//   - a directory of CUE files forming one instance
//   - a single .cue file
//   - a .json file holding a compiled CircuitSpec
//
// The result is not validated; build it with propnet.New.
func LoadCircuit(path string) (*ir.CircuitSpec, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s does not exist", ErrNoCircuit, path)
		}
		return nil, err
	}

	switch {
	case info.IsDir():
		return loadCUE(path, ".")
	case strings.HasSuffix(path, ".cue"):
		return loadCUE(filepath.Dir(path), filepath.Base(path))
	case strings.HasSuffix(path, ".json"):
		return loadJSON(path)
	default:
		return nil, fmt.Errorf("%w: %s is neither a .cue nor a .json file", ErrNoCircuit, path)
	}
}

func loadCUE(dir, arg string) (*ir.CircuitSpec, error) {
	instances := load.Instances([]string{arg}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("%w: no CUE instances in %s", ErrNoCircuit, dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, formatCUEError(inst.Err)
	}

	value := cuecontext.New().BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return CompileCircuit(value)
}

func loadJSON(path string) (*ir.CircuitSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var spec ir.CircuitSpec
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&spec); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &spec, nil
}
