package harness

import (
	"fmt"
	"reflect"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes the calls the store received to help debug the failure.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Calls    []CallRecord
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nCalls received:\n")
	for i, c := range e.Calls {
		fmt.Fprintf(&buf, "  [%d] %s %s %v\n", i+1, c.Op, c.Key, c.Payload)
	}

	return buf.String()
}

// assertCallCount checks that key was called exactly Count times,
// optionally only counting one op.
func assertCallCount(calls []CallRecord, a Assertion) error {
	count := 0
	for _, c := range calls {
		if c.Key == a.Key && (a.Op == "" || c.Op == a.Op) {
			count++
		}
	}

	if count != a.Count {
		subject := a.Key
		if a.Op != "" {
			subject = a.Op + " " + a.Key
		}
		return &AssertionError{
			Type:     AssertCallCount,
			Expected: fmt.Sprintf("%d calls of %s", a.Count, subject),
			Actual:   fmt.Sprintf("%d calls", count),
			Calls:    calls,
		}
	}
	return nil
}

// assertCallOrder checks that keys were first called in the given order.
// Other calls may come in between.
func assertCallOrder(calls []CallRecord, a Assertion) error {
	positions := make(map[string]int)
	for i, c := range calls {
		if _, seen := positions[c.Key]; !seen {
			positions[c.Key] = i + 1
		}
	}

	for _, key := range a.Keys {
		if positions[key] == 0 {
			return &AssertionError{
				Type:     AssertCallOrder,
				Expected: fmt.Sprintf("all keys called: %v", a.Keys),
				Actual:   fmt.Sprintf("never called: %s", key),
				Calls:    calls,
			}
		}
	}

	for i := 1; i < len(a.Keys); i++ {
		prev, curr := a.Keys[i-1], a.Keys[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertCallOrder,
				Expected: fmt.Sprintf("keys in order: %v", a.Keys),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Calls: calls,
			}
		}
	}
	return nil
}

// assertCalledWith checks that some call of key carried a matching payload.
func assertCalledWith(calls []CallRecord, a Assertion) error {
	for _, c := range calls {
		if c.Key == a.Key && matchPayload(c.Payload, a.Payload) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertCalledWith,
		Expected: fmt.Sprintf("%s called with %v", a.Key, a.Payload),
		Actual:   "no matching call",
		Calls:    calls,
	}
}

// matchPayload reports whether actual matches expected. Maps match as
// subsets, recursively; anything else must be deeply equal. A nil expected
// payload matches any call.
func matchPayload(actual, expected any) bool {
	if expected == nil {
		return true
	}

	expMap, ok := expected.(map[string]any)
	if !ok {
		return reflect.DeepEqual(actual, expected)
	}
	actMap, ok := actual.(map[string]any)
	if !ok {
		return false
	}
	for key, want := range expMap {
		got, exists := actMap[key]
		if !exists || !matchPayload(got, want) {
			return false
		}
	}
	return true
}

// EvaluateAssertions evaluates all assertions against the result's calls.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string

	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertCallCount:
			err = assertCallCount(result.Calls, a)
		case AssertCallOrder:
			err = assertCallOrder(result.Calls, a)
		case AssertCalledWith:
			err = assertCalledWith(result.Calls, a)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, a.Type)
		}
		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	return errs
}
