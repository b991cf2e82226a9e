package accessor

import (
	"errors"
	"fmt"
)

// AnonymousHandlerError reports a handler with neither a declared name nor an
// identity supplied through WithName. It is a programming error surfaced at
// accessor construction.
type AnonymousHandlerError struct {
	// Namespace is the module namespace the accessor was being built for.
	Namespace string

	// Symbol is the runtime symbol of the handler, if it had one.
	Symbol string
}

// Error implements the error interface.
func (e *AnonymousHandlerError) Error() string {
	msg := "store handler functions must not be anonymous: the store identifies handlers by name. " +
		"Declare the handler as a named function or pass accessor.WithName"
	if e.Symbol != "" {
		msg += fmt.Sprintf(" (handler %s", e.Symbol)
		if e.Namespace != "" {
			msg += fmt.Sprintf(", namespace %q", e.Namespace)
		}
		return msg + ")"
	}
	if e.Namespace != "" {
		msg += fmt.Sprintf(" (namespace %q)", e.Namespace)
	}
	return msg
}

// IsAnonymousHandler reports whether err is, or wraps, an AnonymousHandlerError.
func IsAnonymousHandler(err error) bool {
	var ae *AnonymousHandlerError
	return errors.As(err, &ae)
}

// ResultTypeError reports a dispatch result whose dynamic type does not match
// the accessor's declared result type.
type ResultTypeError struct {
	Key  string
	Want string
	Got  string
}

// Error implements the error interface.
func (e *ResultTypeError) Error() string {
	return fmt.Sprintf("dispatch %s: result is %s, accessor expects %s", e.Key, e.Got, e.Want)
}
