package core

import (
	"path/filepath"
)

// LoadOptions controls how a college directory is read.
type LoadOptions struct {
	Reader ReaderOptions
	Files  map[RecordKind]string // Overrides the schema's default file name
}

// Load reads the four source files of a college directory and returns
// the cross-linked entity model.
//
// Passes run in a fixed order (majors, students, instructors, grades).
// The first validation or referential failure aborts the load and is
// returned unmodified; no partially built Repository is returned.
func Load(dir string, opts LoadOptions) (*Repository, error) {
	l := &loader{
		dir:  dir,
		opts: opts,
		repo: NewRepository(filepath.Base(filepath.Clean(dir))),
	}

	apply := map[RecordKind]func(RecordSchema, Record) error{
		KindMajors:      l.addMajorCourse,
		KindStudents:    l.addStudent,
		KindInstructors: l.addInstructor,
		KindGrades:      l.addGrade,
	}

	for _, kind := range loadOrder {
		if err := l.pass(kind, apply[kind]); err != nil {
			return nil, err
		}
	}

	return l.repo, nil
}

type loader struct {
	dir  string
	opts LoadOptions
	repo *Repository
}

// path returns the file for a record kind inside the college directory.
func (l *loader) path(schema RecordSchema) string {
	name := schema.FileName
	if override, ok := l.opts.Files[schema.Kind]; ok && override != "" {
		name = override
	}
	return filepath.Join(l.dir, name)
}

// pass streams one file through apply and, once the file is exhausted,
// records its line and byte counts in the repository's Stats. The file is
// closed before pass returns, whether it finished, failed validation or
// apply failed.
func (l *loader) pass(kind RecordKind, apply func(RecordSchema, Record) error) error {
	schema := MustSchema(kind)

	r, err := OpenRecords(l.path(schema), schema, l.opts.Reader)
	if err != nil {
		return err
	}

	for rec, err := range r.All() {
		if err != nil {
			return err
		}
		if err := apply(schema, rec); err != nil {
			return err
		}
	}

	l.repo.Stats.Files = append(l.repo.Stats.Files, FileStats{
		Kind:  kind,
		Path:  r.Path(),
		Lines: r.Line(),
		Bytes: r.BytesRead(),
	})
	return nil
}

func (l *loader) addMajorCourse(schema RecordSchema, rec Record) error {
	name, tag, course := rec.Fields[0], rec.Fields[1], rec.Fields[2]

	spec := schema.Fields[1]
	if err := ValidateCell(tag, spec); err != nil {
		return &InvalidValueError{
			Kind:    schema.Kind,
			Line:    rec.Line,
			Field:   spec.Name,
			Value:   tag,
			Allowed: spec.EnumValues,
		}
	}

	l.repo.major(name).addCourse(RequirementType(tag), course)
	return nil
}

func (l *loader) addStudent(_ RecordSchema, rec Record) error {
	cwid, name, majorName := rec.Fields[0], rec.Fields[1], rec.Fields[2]

	major, ok := l.repo.Majors[majorName]
	if !ok {
		return &UnknownMajorError{CWID: cwid, Major: majorName, College: l.repo.College}
	}

	l.repo.Students[cwid] = newStudent(cwid, name, major)
	return nil
}

func (l *loader) addInstructor(_ RecordSchema, rec Record) error {
	cwid, name, dept := rec.Fields[0], rec.Fields[1], rec.Fields[2]
	l.repo.Instructors[cwid] = newInstructor(cwid, name, dept)
	return nil
}

func (l *loader) addGrade(_ RecordSchema, rec Record) error {
	ev := GradeEvent{
		StudentCWID:    rec.Fields[0],
		Course:         rec.Fields[1],
		Grade:          rec.Fields[2],
		InstructorCWID: rec.Fields[3],
	}
	return l.repo.ApplyGrade(ev, rec.Line)
}

// ApplyGrade joins one grade event onto its student and instructor.
// line is only used for error context and may be 0.
func (r *Repository) ApplyGrade(ev GradeEvent, line int) error {
	student, ok := r.Students[ev.StudentCWID]
	if !ok {
		return &UnknownStudentError{CWID: ev.StudentCWID, Line: line}
	}
	student.AddGrade(ev.Course, ev.Grade)

	instructor, ok := r.Instructors[ev.InstructorCWID]
	if !ok {
		return &UnknownInstructorError{CWID: ev.InstructorCWID, Line: line}
	}
	instructor.AddCourse(ev.Course)
	return nil
}
