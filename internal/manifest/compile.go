package manifest

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// CompileError is a manifest compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// CompileCUE builds a Manifest from a CUE value holding a top-level
// "module" struct. Each field of that struct is one module:
//
//	module: cart: {
//		namespace: "cart"      // optional, defaults to the label
//		mutations: ["addItem"]
//		actions:   ["checkout"]
//		getters:   ["total"]
//	}
func CompileCUE(v cue.Value) (*Manifest, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	modulesVal := v.LookupPath(cue.ParsePath("module"))
	if !modulesVal.Exists() {
		return nil, &CompileError{
			Field:   "module",
			Message: "no module definitions found",
			Pos:     v.Pos(),
		}
	}

	iter, err := modulesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	m := &Manifest{}
	for iter.Next() {
		mod, err := compileModule(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		m.Modules = append(m.Modules, mod)
	}
	return m, nil
}

func compileModule(label string, v cue.Value) (Module, error) {
	mod := Module{Name: label, Namespace: label}

	nsVal := v.LookupPath(cue.ParsePath("namespace"))
	if nsVal.Exists() {
		ns, err := nsVal.String()
		if err != nil {
			return mod, &CompileError{
				Field:   fmt.Sprintf("module.%s.namespace", label),
				Message: "namespace must be a string",
				Pos:     nsVal.Pos(),
			}
		}
		mod.Namespace = ns
	}

	var err error
	if mod.Mutations, err = compileNames(label, "mutations", v); err != nil {
		return mod, err
	}
	if mod.Actions, err = compileNames(label, "actions", v); err != nil {
		return mod, err
	}
	if mod.Getters, err = compileNames(label, "getters", v); err != nil {
		return mod, err
	}
	return mod, nil
}

// compileNames reads an optional list of handler names.
func compileNames(label, field string, v cue.Value) ([]string, error) {
	listVal := v.LookupPath(cue.ParsePath(field))
	if !listVal.Exists() {
		return nil, nil
	}

	iter, err := listVal.List()
	if err != nil {
		return nil, &CompileError{
			Field:   fmt.Sprintf("module.%s.%s", label, field),
			Message: "must be a list of strings",
			Pos:     listVal.Pos(),
		}
	}

	var names []string
	for iter.Next() {
		name, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{
				Field:   fmt.Sprintf("module.%s.%s", label, field),
				Message: "handler names must be strings",
				Pos:     iter.Value().Pos(),
			}
		}
		names = append(names, name)
	}
	return names, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
