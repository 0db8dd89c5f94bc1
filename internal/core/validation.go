package core

// validation.go provides line-level validation for source records.
//
// Validation happens in two steps, in this order:
//  1. Field count: the line must split into exactly NumFields() fields
//  2. Blank fields: every field must be non-blank after trimming unless
//     its FieldSpec allows empty values
//
// Header lines only go through step 1. Enum checks are applied by the
// Loader through ValidateCell once the record has been read.

import (
	"fmt"
	"strings"
)

// RecordValidator validates split lines against one record schema.
type RecordValidator struct {
	schema RecordSchema
	path   string
}

// NewRecordValidator creates a validator for the given schema. path is
// only used to populate error details.
func NewRecordValidator(schema RecordSchema, path string) *RecordValidator {
	return &RecordValidator{
		schema: schema,
		path:   path,
	}
}

// CheckCount fails with a MalformedRecordError if fields does not have
// exactly the schema's field count.
func (v *RecordValidator) CheckCount(fields []string, line int) error {
	if len(fields) != v.schema.NumFields() {
		return &MalformedRecordError{
			Path: v.path,
			Line: line,
			Got:  len(fields),
			Want: v.schema.NumFields(),
		}
	}
	return nil
}

// CheckBlank fails with a BlankFieldError on the first field that is
// blank after trimming and whose spec does not allow empty values.
// fields must already have passed CheckCount.
func (v *RecordValidator) CheckBlank(fields []string, line int) error {
	for i, spec := range v.schema.Fields {
		if spec.AllowEmpty {
			continue
		}
		if strings.TrimSpace(fields[i]) == "" {
			return &BlankFieldError{
				Kind:  v.schema.Kind,
				Path:  v.path,
				Line:  line,
				Field: spec.Name,
			}
		}
	}
	return nil
}

// ValidateCell validates a single value against a field specification.
// Returns nil if valid, or an error describing the problem.
func ValidateCell(value string, spec FieldSpec) error {
	switch spec.Type {
	case FieldEnum:
		for _, ev := range spec.EnumValues {
			if ev == value {
				return nil
			}
		}
		return fmt.Errorf("value must be one of: %s", strings.Join(spec.EnumValues, ", "))
	}
	return nil
}
