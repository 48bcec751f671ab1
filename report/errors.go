package report

import "fmt"

// TextSpan represents a range or "span" of source text.  It is used to specify
// erroneous or otherwise significant source text in the input module.  Text
// spans are inclusive on both sides: the starting position is the position of
// the first character in the span and the ending position is the position of
// the last character in the span.  The line and column numbers are zero-indexed.
type TextSpan struct {
	// The line and column beginning the text span.
	StartLine, StartCol int

	// The line and column ending the text span.
	EndLine, EndCol int
}

// NewSpanOver returns a new text span which spans over and between the two
// given text spans.
func NewSpanOver(start, end *TextSpan) *TextSpan {
	return &TextSpan{
		StartLine: start.StartLine,
		StartCol:  start.StartCol,
		EndLine:   end.EndLine,
		EndCol:    end.EndCol,
	}
}

/* -------------------------------------------------------------------------- */

// ErrorKind classifies a translation error.  This must be one of the
// enumerated error kinds below.
type ErrorKind int

const (
	// UnsupportedConstruct indicates input source outside the supported subset.
	UnsupportedConstruct ErrorKind = iota

	// TypeConflict indicates a violation of the static typing rules, such as a
	// variable reassigned with an incompatible type.
	TypeConflict

	// UninferableType indicates an expression whose type could not be
	// determined from any available evidence.
	UninferableType

	// UnsupportedType indicates a resolved type that a particular target
	// language cannot represent.
	UnsupportedType
)

// String returns the display label of the error kind.
func (ek ErrorKind) String() string {
	switch ek {
	case UnsupportedConstruct:
		return "unsupported construct"
	case TypeConflict:
		return "type conflict"
	case UninferableType:
		return "uninferable type"
	case UnsupportedType:
		return "unsupported type"
	default:
		return "error"
	}
}

// TranslateError is a structured error produced by any stage of the
// translation pipeline.  Parser and resolver errors always carry a span;
// generator errors may not (the offending node can be synthetic).
type TranslateError struct {
	// The kind of the error.
	Kind ErrorKind

	// The error message.
	Message string

	// The span over which the error occurs.  May be nil.
	Span *TextSpan
}

func (te *TranslateError) Error() string {
	if te.Span == nil {
		return fmt.Sprintf("%s: %s", te.Kind, te.Message)
	}

	return fmt.Sprintf("%d:%d: %s: %s", te.Span.StartLine+1, te.Span.StartCol+1, te.Kind, te.Message)
}

// Raise creates a new translation error of the given kind over span.
func Raise(kind ErrorKind, span *TextSpan, msg string, args ...interface{}) *TranslateError {
	return &TranslateError{Kind: kind, Message: fmt.Sprintf(msg, args...), Span: span}
}

/* -------------------------------------------------------------------------- */

// CatchErrors converts a translation error thrown by a `panic` during a stage
// of the pipeline into the error return of the enclosing function.  In effect,
// this handler determines where "unrecoverable" errors within a stage stop
// bubbling.
// NB: This function must ALWAYS be deferred.
func CatchErrors(err *error) {
	if x := recover(); x != nil {
		if terr, ok := x.(*TranslateError); ok {
			*err = terr
		} else if serr, ok := x.(error); ok {
			*err = serr
		} else {
			panic(x)
		}
	}
}

// ReportICE reports an internal translator error.  These are errors that
// specifically result from a bug or unexpected condition occurring within the
// translator: they are not intended to ever happen.
func ReportICE(message string, args ...interface{}) {
	panic(fmt.Sprintf("internal translator error: %s", fmt.Sprintf(message, args...)))
}
