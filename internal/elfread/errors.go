package elfread

import "github.com/pkg/errors"

// ErrFormat is matched by every error caused by the contents of the input
var ErrFormat = errors.New("invalid ELF64 file")

// Specific format errors. Each of them also matches ErrFormat.
var (
	ErrNotELF           error = &formatError{"not an ELF file (missing magic number 0x7f E L F)"}
	ErrUnsupportedClass error = &formatError{"unsupported ELF class"}
	ErrMalformed        error = &formatError{"malformed ELF file"}
	ErrOutOfBounds      error = &formatError{"reference outside the file"}
)

type formatError struct {
	msg string
}

func (e *formatError) Error() string {
	return e.msg
}

func (e *formatError) Is(target error) bool {
	return target == ErrFormat
}
