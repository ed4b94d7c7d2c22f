package mask

import (
	"fmt"
	"io/fs"
	"strings"
)

// FileNotFoundError is returned when a mask file does not exist.
type FileNotFoundError struct {
	Path string
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("mask file not found: %s", e.Path)
}

func (e *FileNotFoundError) Unwrap() error { return fs.ErrNotExist }

// MissingFieldError is returned when a required key or section is absent.
// Field is empty when the whole section is missing.
type MissingFieldError struct {
	Section string
	Field   string
}

func (e *MissingFieldError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("missing section [%s]", e.Section)
	}
	return fmt.Sprintf("missing field %q in section [%s]", e.Field, e.Section)
}

// InvalidFieldError is returned when a required value cannot be parsed.
type InvalidFieldError struct {
	Section string
	Field   string
	Value   string
	Err     error
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid value %q for %q in section [%s]: %v", e.Value, e.Field, e.Section, e.Err)
}

func (e *InvalidFieldError) Unwrap() error { return e.Err }

// NoPhysicalSizeError is returned when none of the supported wafer size
// sections is present.
type NoPhysicalSizeError struct {
	Path  string
	Tried []ProbeResult
}

func (e *NoPhysicalSizeError) Error() string {
	names := make([]string, len(e.Tried))
	for i, p := range e.Tried {
		names[i] = p.Size.Section
	}
	return fmt.Sprintf("%s: no physical size section found (tried %s)", e.Path, strings.Join(names, ", "))
}
