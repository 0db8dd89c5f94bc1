package core

import "fmt"

// schemas holds the fixed record layouts. It is built once and never
// mutated; per-load state lives in Repository.
var schemas = map[RecordKind]RecordSchema{
	KindMajors: {
		Kind:     KindMajors,
		FileName: "majors.txt",
		Fields: []FieldSpec{
			{Name: "major", Type: FieldText},
			{Name: "requirement_type", Type: FieldEnum, EnumValues: []string{string(Required), string(Elective)}},
			{Name: "course", Type: FieldText},
		},
	},
	KindStudents: {
		Kind:     KindStudents,
		FileName: "students.txt",
		Fields: []FieldSpec{
			{Name: "cwid", Type: FieldText},
			{Name: "name", Type: FieldText},
			{Name: "major", Type: FieldText},
		},
	},
	KindInstructors: {
		Kind:     KindInstructors,
		FileName: "instructors.txt",
		Fields: []FieldSpec{
			{Name: "cwid", Type: FieldText},
			{Name: "name", Type: FieldText},
			{Name: "department", Type: FieldText},
		},
	},
	KindGrades: {
		Kind:     KindGrades,
		FileName: "grades.txt",
		Fields: []FieldSpec{
			{Name: "student_cwid", Type: FieldText},
			{Name: "course", Type: FieldText},
			{Name: "grade", Type: FieldText, AllowEmpty: true},
			{Name: "instructor_cwid", Type: FieldText},
		},
	},
}

// loadOrder is the pass order the Loader must follow: majors before
// students so major lookups see the full set, students and instructors
// before grades so grade events can resolve both CWIDs.
var loadOrder = []RecordKind{KindMajors, KindStudents, KindInstructors, KindGrades}

// MustSchema returns the schema for a record kind and panics if the kind
// is unknown. Only used with the package's own constants.
func MustSchema(kind RecordKind) RecordSchema {
	s, ok := schemas[kind]
	if !ok {
		panic(fmt.Sprintf("unknown record kind: %s", kind))
	}
	return s
}
