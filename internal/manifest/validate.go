package manifest

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/fluxkeys/internal/accessor"
)

// ValidationError is one manifest finding with the path of the offending field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the manifest and returns every finding (not fail-fast).
//
// Rules:
//   - handler names are non-empty and contain no "/"
//   - namespaces and names are in Unicode NFC, so keys that render the same
//     compare equal
//   - a name appears once per kind within a module
//   - a qualified key is registered by one module per kind
func (m *Manifest) Validate() []ValidationError {
	var errs []ValidationError
	owners := make(map[Kind]map[string]string)
	for _, k := range Kinds {
		owners[k] = make(map[string]string)
	}

	for i, mod := range m.Modules {
		modField := fmt.Sprintf("modules[%d]", i)

		if !norm.NFC.IsNormalString(mod.Namespace) {
			errs = append(errs, ValidationError{
				Field:   modField + ".namespace",
				Message: fmt.Sprintf("namespace %q is not in Unicode NFC form", mod.Namespace),
			})
		}
		if strings.HasPrefix(mod.Namespace, "/") || strings.HasSuffix(mod.Namespace, "/") {
			errs = append(errs, ValidationError{
				Field:   modField + ".namespace",
				Message: fmt.Sprintf("namespace %q must not start or end with /", mod.Namespace),
			})
		}

		for _, k := range Kinds {
			seen := make(map[string]bool)
			for j, name := range mod.Names(k) {
				field := fmt.Sprintf("%s.%ss[%d]", modField, k, j)
				errs = append(errs, validateName(field, name)...)
				if name == "" {
					continue
				}

				if seen[name] {
					errs = append(errs, ValidationError{
						Field:   field,
						Message: fmt.Sprintf("duplicate %s name %q in module %s", k, name, mod.Label()),
					})
					continue
				}
				seen[name] = true

				qualified := accessor.Qualify(mod.Namespace, name)
				if owner, ok := owners[k][qualified]; ok {
					errs = append(errs, ValidationError{
						Field:   field,
						Message: fmt.Sprintf("%s key %q already registered by module %s", k, qualified, owner),
					})
					continue
				}
				owners[k][qualified] = mod.Label()
			}
		}
	}

	return errs
}

func validateName(field, name string) []ValidationError {
	var errs []ValidationError
	if name == "" {
		return append(errs, ValidationError{Field: field, Message: "name must not be empty"})
	}
	if strings.Contains(name, "/") {
		errs = append(errs, ValidationError{
			Field:   field,
			Message: fmt.Sprintf("name %q must not contain /", name),
		})
	}
	if !norm.NFC.IsNormalString(name) {
		errs = append(errs, ValidationError{
			Field:   field,
			Message: fmt.Sprintf("name %q is not in Unicode NFC form", name),
		})
	}
	return errs
}
