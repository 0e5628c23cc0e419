package opb

import "fmt"

// Code is a stable numeric error identifier, matching the original
// library's error table so callers can branch on it without string
// matching.
type Code int

const (
	Logged Code = iota + 1
	WriteError
	SeekError
	TellError
	ReadError
	BufferError
	NotAnOpb
	VersionUnsupported
	OutOfMemory
	Disposed
	InvalidBuffer
	NoInstrumentBuffer
	InstrumentBufferOverflow
)

func (c Code) String() string {
	switch c {
	case Logged:
		return "logged"
	case WriteError:
		return "write error"
	case SeekError:
		return "seek error"
	case TellError:
		return "tell error"
	case ReadError:
		return "read error"
	case BufferError:
		return "buffer error"
	case NotAnOpb:
		return "not an OPB file"
	case VersionUnsupported:
		return "unsupported version"
	case OutOfMemory:
		return "out of memory"
	case Disposed:
		return "session disposed"
	case InvalidBuffer:
		return "invalid buffer"
	case NoInstrumentBuffer:
		return "no instrument buffer provided"
	case InstrumentBufferOverflow:
		return "instrument buffer overflow"
	default:
		return fmt.Sprintf("unknown error code %d", int(c))
	}
}

// Error wraps a Code with context. It implements error and supports
// errors.As, and errors.Is against another *Error carrying the same Code.
type Error struct {
	Code Code
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

// Is reports whether target is an *Error with the same Code, so
// errors.Is(err, &Error{Code: SomeCode}) matches regardless of Msg.
func (e *Error) Is(target error) bool {
	var other *Error
	if ok := asError(target, &other); ok {
		return other.Code == e.Code
	}
	return false
}

func asError(target error, out **Error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	*out = te
	return true
}

func newErr(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}
