package accessor

import (
	"reflect"
	"runtime"
	"strings"
)

// Option configures how a single handler is identified.
type Option func(*handlerConfig)

type handlerConfig struct {
	name string
}

// WithName supplies the identity of a handler that has no declared name, such
// as a function literal stored in a struct field or map. A declared name
// always takes precedence.
func WithName(name string) Option {
	return func(c *handlerConfig) {
		c.name = name
	}
}

// Qualify joins a namespace and a handler name into a store key.
// An empty namespace yields the name unchanged.
func Qualify(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return namespace + "/" + name
}

// Resolve returns the qualified store key for handler within namespace.
//
// The identity is the handler's declared name, falling back to the WithName
// option. If neither is present Resolve returns *AnonymousHandlerError.
func Resolve(handler any, namespace string, opts ...Option) (string, error) {
	var cfg handlerConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	identity := FuncName(handler)
	if identity == "" {
		identity = cfg.name
	}
	if identity == "" {
		return "", &AnonymousHandlerError{Namespace: namespace, Symbol: symbolOf(handler)}
	}
	return Qualify(namespace, identity), nil
}

// FuncName returns the declared name of the function value fn.
//
// Package path, receiver type, generic instantiation and the method value
// suffix are stripped, so "example.com/shop/cart.(*Cart).AddItem-fm" yields
// "AddItem". Function literals, nil functions and non-function values yield
// the empty string.
func FuncName(fn any) string {
	symbol := symbolOf(fn)
	if symbol == "" {
		return ""
	}

	// Drop the import path; the remainder starts with the package name.
	if i := strings.LastIndex(symbol, "/"); i >= 0 {
		symbol = symbol[i+1:]
	}
	symbol = strings.ReplaceAll(symbol, "[...]", "")

	parts := strings.Split(symbol, ".")
	if len(parts) < 2 {
		return ""
	}
	// parts[decl] is the declared function or method name. Only elements
	// nested below it can be compiler generated; "pkg.func1" is a
	// function the user named func1.
	decl := 1
	if strings.HasPrefix(parts[1], "(") && len(parts) > 2 {
		decl = 2
	}
	for i, part := range parts[1:] {
		if i+1 <= decl {
			if strings.Contains(part, "-range") {
				return ""
			}
			continue
		}
		if isClosureElem(part) {
			return ""
		}
	}

	name := strings.TrimSuffix(parts[len(parts)-1], "-fm")
	if name == "" || strings.ContainsAny(name, "()*") {
		return ""
	}
	return name
}

func symbolOf(fn any) string {
	if fn == nil {
		return ""
	}
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return ""
	}
	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return ""
	}
	return f.Name()
}

// isClosureElem reports whether one dot-separated element of a runtime
// symbol marks a compiler-generated function: "func1", "1", "gowrap2",
// "deferwrap1" or a range-over-func body such as "F-range1".
func isClosureElem(elem string) bool {
	if elem == "" {
		return false
	}
	if isDigits(elem) {
		return true
	}
	for _, prefix := range []string{"func", "gowrap", "deferwrap"} {
		if rest, ok := strings.CutPrefix(elem, prefix); ok && isDigits(rest) {
			return true
		}
	}
	return strings.Contains(elem, "-range")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
