package manifest

import "github.com/roach88/fluxkeys/internal/accessor"

// Kind is the category of a store handler.
type Kind string

const (
	KindMutation Kind = "mutation"
	KindAction   Kind = "action"
	KindGetter   Kind = "getter"
)

// Module lists the handlers one store module registers.
type Module struct {
	// Name labels the module in diagnostics. CUE manifests set it from the
	// field label; YAML manifests may leave it empty.
	Name      string   `yaml:"name,omitempty" json:"name,omitempty"`
	Namespace string   `yaml:"namespace" json:"namespace"`
	Mutations []string `yaml:"mutations,omitempty" json:"mutations,omitempty"`
	Actions   []string `yaml:"actions,omitempty" json:"actions,omitempty"`
	Getters   []string `yaml:"getters,omitempty" json:"getters,omitempty"`
}

// Label returns the module name, or its namespace when unnamed.
func (m Module) Label() string {
	if m.Name != "" {
		return m.Name
	}
	if m.Namespace != "" {
		return m.Namespace
	}
	return "(root)"
}

// Names returns the handler names of kind k.
func (m Module) Names(k Kind) []string {
	switch k {
	case KindMutation:
		return m.Mutations
	case KindAction:
		return m.Actions
	case KindGetter:
		return m.Getters
	}
	return nil
}

// Manifest is the set of modules of one store.
type Manifest struct {
	Modules []Module `yaml:"modules" json:"modules"`

	// Source is the file or directory the manifest was loaded from.
	Source string `yaml:"-" json:"-"`
}

// Key is one qualified store key.
type Key struct {
	Kind      Kind   `json:"kind"`
	Module    string `json:"module"`
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
	Qualified string `json:"key"`
}

// Kinds lists handler kinds in output order.
var Kinds = []Kind{KindMutation, KindAction, KindGetter}

// Keys returns every qualified key in module order, then kind order, then
// declaration order.
func (m *Manifest) Keys() []Key {
	var keys []Key
	for _, mod := range m.Modules {
		for _, k := range Kinds {
			for _, name := range mod.Names(k) {
				keys = append(keys, Key{
					Kind:      k,
					Module:    mod.Label(),
					Namespace: mod.Namespace,
					Name:      name,
					Qualified: accessor.Qualify(mod.Namespace, name),
				})
			}
		}
	}
	return keys
}

// Module returns the module registered under namespace.
func (m *Manifest) Module(namespace string) (Module, bool) {
	for _, mod := range m.Modules {
		if mod.Namespace == namespace {
			return mod, true
		}
	}
	return Module{}, false
}
