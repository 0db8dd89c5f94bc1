package core

// FieldType represents the expected data type for a record field.
type FieldType int

const (
	FieldText FieldType = iota
	FieldEnum
)

// FieldSpec defines validation rules for a single record field.
type FieldSpec struct {
	Name       string   // Field name used in error messages
	Type       FieldType
	AllowEmpty bool     // If true, a blank value passes the blank-field check
	EnumValues []string // Valid values for FieldEnum type (exact match)
}

// RecordKind identifies one of the source files and decides its schema
// and blank-field policy.
type RecordKind string

const (
	KindMajors      RecordKind = "majors"
	KindStudents    RecordKind = "students"
	KindInstructors RecordKind = "instructors"
	KindGrades      RecordKind = "grades"
)

// RecordSchema describes the fixed layout of one record kind.
type RecordSchema struct {
	Kind     RecordKind
	FileName string // Default file name inside a college directory
	Fields   []FieldSpec
}

// NumFields returns the exact number of fields every line must carry.
func (s RecordSchema) NumFields() int {
	return len(s.Fields)
}

// Record is one validated line of a source file.
type Record struct {
	Line   int      // 1-based, header-inclusive
	Fields []string // Exactly NumFields() entries, untrimmed
}

// RequirementType tags a course as required or elective for a major.
type RequirementType string

const (
	Required RequirementType = "R"
	Elective RequirementType = "E"
)
