package core

// errors.go defines the typed failures a load can produce.
//
// Every failure is fatal to the load that raised it. Each concrete type
// unwraps to a package sentinel so callers can branch with errors.Is and
// still reach the detail (path, line, identifier) with errors.As.

import (
	"errors"
	"fmt"
)

var (
	ErrFileNotFound      = errors.New("file not found")
	ErrMalformedRecord   = errors.New("malformed record")
	ErrBlankField        = errors.New("blank field")
	ErrInvalidValue      = errors.New("invalid value")
	ErrUnknownMajor      = errors.New("unknown major")
	ErrUnknownStudent    = errors.New("unknown student")
	ErrUnknownInstructor = errors.New("unknown instructor")
)

// FileNotFoundError reports a source file that could not be opened
// because it does not exist.
type FileNotFoundError struct {
	Path string
	Err  error // Underlying os error
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("file not found: %s", e.Path)
}

func (e *FileNotFoundError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrFileNotFound}
	}
	return []error{ErrFileNotFound, e.Err}
}

// MalformedRecordError reports a line whose field count does not match
// its schema.
type MalformedRecordError struct {
	Path string
	Line int
	Got  int
	Want int
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("%s has %d fields on line %d but expected %d", e.Path, e.Got, e.Line, e.Want)
}

func (e *MalformedRecordError) Unwrap() error { return ErrMalformedRecord }

// BlankFieldError reports a required field that is empty after trimming.
type BlankFieldError struct {
	Kind  RecordKind
	Path  string
	Line  int
	Field string
}

func (e *BlankFieldError) Error() string {
	return fmt.Sprintf("%s file, line %d: required field %q is blank", e.Kind, e.Line, e.Field)
}

func (e *BlankFieldError) Unwrap() error { return ErrBlankField }

// InvalidValueError reports a field whose value is outside its allowed set.
type InvalidValueError struct {
	Kind    RecordKind
	Line    int
	Field   string
	Value   string
	Allowed []string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("%s file, line %d: invalid %s %q (allowed: %v)", e.Kind, e.Line, e.Field, e.Value, e.Allowed)
}

func (e *InvalidValueError) Unwrap() error { return ErrInvalidValue }

// UnknownMajorError reports a student whose major was not declared in
// the majors file.
type UnknownMajorError struct {
	CWID    string
	Major   string
	College string
}

func (e *UnknownMajorError) Error() string {
	if e.College == "" {
		return fmt.Sprintf("student %s: major %q is not offered", e.CWID, e.Major)
	}
	return fmt.Sprintf("student %s: major %q is not offered by %s", e.CWID, e.Major, e.College)
}

func (e *UnknownMajorError) Unwrap() error { return ErrUnknownMajor }

// UnknownStudentError reports a grade for a CWID absent from the students file.
type UnknownStudentError struct {
	CWID string
	Line int
}

func (e *UnknownStudentError) Error() string {
	msg := fmt.Sprintf("student %s is not present in the students file", e.CWID)
	if e.Line > 0 {
		return fmt.Sprintf("grades line %d: %s", e.Line, msg)
	}
	return msg
}

func (e *UnknownStudentError) Unwrap() error { return ErrUnknownStudent }

// UnknownInstructorError reports a grade taught by a CWID absent from the
// instructors file.
type UnknownInstructorError struct {
	CWID string
	Line int
}

func (e *UnknownInstructorError) Error() string {
	msg := fmt.Sprintf("instructor %s is not present in the instructors file", e.CWID)
	if e.Line > 0 {
		return fmt.Sprintf("grades line %d: %s", e.Line, msg)
	}
	return msg
}

func (e *UnknownInstructorError) Unwrap() error { return ErrUnknownInstructor }
