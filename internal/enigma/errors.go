package enigma

import "fmt"

// ErrorKind classifies a cipher configuration failure.
type ErrorKind string

const (
	KindMalformedPermutation ErrorKind = "malformed permutation"
	KindInvalidReflector     ErrorKind = "invalid reflector"
	KindRotorAssignment      ErrorKind = "rotor assignment"
	KindSetting              ErrorKind = "setting"
	KindInvalidAlphabet      ErrorKind = "invalid alphabet"
	KindInvalidConfig        ErrorKind = "invalid configuration"
)

// Error is the single error type raised by the machine and its parts. The
// Kind tells callers which rule was broken; Msg carries the detail.
type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Msg
}

// Is reports whether target is an *Error of the same kind, so the sentinel
// values below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Msg == "" || t.Msg == e.Msg)
}

var (
	ErrMalformedPermutation = &Error{Kind: KindMalformedPermutation}
	ErrInvalidReflector     = &Error{Kind: KindInvalidReflector}
	ErrRotorAssignment      = &Error{Kind: KindRotorAssignment}
	ErrSetting              = &Error{Kind: KindSetting}
	ErrInvalidAlphabet      = &Error{Kind: KindInvalidAlphabet}
	ErrInvalidConfig        = &Error{Kind: KindInvalidConfig}
)

func errorf(kind ErrorKind, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
