package exec

import "fmt"

// Code enumerates the named error kinds the execution driver can report.
// Zero is reserved for "not an exec error" so a plain type assertion on a
// generic error can't misread a nil Code as ATTR_NOTEXIST.
type Code int

const (
	_ Code = iota
	AttrNotExist
	AmbiguousAttrName
	AttrTypesMismatch
	ValueTypesMismatch
	AttrCountMismatch
	StringValTooLong
	AttrIsNotNull
	Forbidden
)

func (c Code) String() string {
	switch c {
	case AttrNotExist:
		return "ATTR_NOTEXIST"
	case AmbiguousAttrName:
		return "AMBIGUOUS_ATTR_NAME"
	case AttrTypesMismatch:
		return "ATTR_TYPES_MISMATCH"
	case ValueTypesMismatch:
		return "VALUE_TYPES_MISMATCH"
	case AttrCountMismatch:
		return "ATTR_COUNT_MISMATCH"
	case StringValTooLong:
		return "STRING_VAL_TOO_LONG"
	case AttrIsNotNull:
		return "ATTR_IS_NOTNULL"
	case Forbidden:
		return "FORBIDDEN"
	}
	return "UNKNOWN"
}

// Error pairs a named Code with a human-readable message. All validation
// failures in this package are returned as *Error so callers can switch on
// Code without string matching.
type Error struct {
	Code Code
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func newError(code Code, format string, a ...interface{}) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, a...)}
}
