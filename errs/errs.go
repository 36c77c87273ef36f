// Package errs defines the error kinds surfaced by the volume core, modeled
// after the teacher's errno-style error constants: each kind is itself a
// sentinel error, and can be refined with a message or a wrapped cause
// without losing its identity for errors.Is.
package errs

import "fmt"

// Kind is a sentinel error identifying one of the outcomes named in spec §7.
type Kind string

func (k Kind) Error() string {
	return string(k)
}

// WithMessage returns an error that reports as "<kind>: <message>" but still
// satisfies errors.Is(err, kind).
func (k Kind) WithMessage(message string) error {
	return &detailedError{kind: k, message: message}
}

// Wrap attaches a lower-level cause to the kind; errors.Is(err, kind) and
// errors.Is(err, cause) both hold, and errors.Unwrap(err) returns cause.
func (k Kind) Wrap(cause error) error {
	return &detailedError{kind: k, message: cause.Error(), cause: cause}
}

const (
	// NotFound: no inode whose name matches the path tail.
	NotFound = Kind("no such file")
	// Exists: create against an existing name.
	Exists = Kind("file exists")
	// NameTooLong: create with a name longer than the on-disk limit.
	NameTooLong = Kind("file name too long")
	// NoSpace: an allocator ran out of free slots, or a write addressed a
	// logical block beyond the addressable range.
	NoSpace = Kind("no space left on device")
	// BufferFull: the readdir filler rejected an entry.
	BufferFull = Kind("directory listing buffer full")
	// InvalidVolume: the magic number at the head of block 0 didn't match on
	// mount. Fatal; the caller should abort.
	InvalidVolume = Kind("not a recognized volume")
	// AlreadyFree: an allocator was asked to free a slot that isn't in use.
	AlreadyFree = Kind("block already free")
	// InvalidBlock: a physical or logical block index is out of range.
	InvalidBlock = Kind("invalid block index")
)

type detailedError struct {
	kind    Kind
	message string
	cause   error
}

func (e *detailedError) Error() string {
	if e.message == "" {
		return string(e.kind)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.message)
}

func (e *detailedError) Is(target error) bool {
	if k, ok := target.(Kind); ok {
		return e.kind == k
	}
	return false
}

func (e *detailedError) Unwrap() error {
	return e.cause
}
