package core

import (
	"encoding/json"
	"sort"

	"github.com/google/uuid"
)

// PassingGrades is the whitelist of grades that count a course as completed.
var PassingGrades = []string{"A", "A-", "B+", "B", "B-", "C+", "C"}

var passingGrades = func() map[string]struct{} {
	m := make(map[string]struct{}, len(PassingGrades))
	for _, g := range PassingGrades {
		m[g] = struct{}{}
	}
	return m
}()

// IsPassingGrade reports whether grade is in the whitelist. Matching is exact.
func IsPassingGrade(grade string) bool {
	_, ok := passingGrades[grade]
	return ok
}

// CourseSet is a set of course codes.
type CourseSet map[string]struct{}

// NewCourseSet creates a set holding the given courses.
func NewCourseSet(courses ...string) CourseSet {
	s := make(CourseSet, len(courses))
	for _, c := range courses {
		s[c] = struct{}{}
	}
	return s
}

// Add inserts course into the set.
func (s CourseSet) Add(course string) {
	s[course] = struct{}{}
}

// Has reports whether course is in the set.
func (s CourseSet) Has(course string) bool {
	_, ok := s[course]
	return ok
}

// Difference returns the courses of s that are not in other.
func (s CourseSet) Difference(other CourseSet) CourseSet {
	out := make(CourseSet)
	for c := range s {
		if !other.Has(c) {
			out[c] = struct{}{}
		}
	}
	return out
}

// Clone returns an independent copy of the set.
func (s CourseSet) Clone() CourseSet {
	out := make(CourseSet, len(s))
	for c := range s {
		out[c] = struct{}{}
	}
	return out
}

// Sorted returns the courses in ascending order. Never nil.
func (s CourseSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON encodes the set as a sorted array.
func (s CourseSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// Major holds the required and elective course sets of one major.
// It is built during the majors pass and shared by pointer with every
// Student of that major.
type Major struct {
	Name      string
	Required  CourseSet
	Electives CourseSet
}

func newMajor(name string) *Major {
	return &Major{
		Name:      name,
		Required:  make(CourseSet),
		Electives: make(CourseSet),
	}
}

func (m *Major) addCourse(rt RequirementType, course string) {
	switch rt {
	case Required:
		m.Required.Add(course)
	case Elective:
		m.Electives.Add(course)
	}
}

// Student is one enrolled student and the courses they have passed.
type Student struct {
	CWID      string
	Name      string
	Major     *Major
	Completed map[string]string // course -> grade, passing grades only
}

func newStudent(cwid, name string, major *Major) *Student {
	return &Student{
		CWID:      cwid,
		Name:      name,
		Major:     major,
		Completed: make(map[string]string),
	}
}

// AddGrade records course as completed if grade is passing. A later
// passing grade for the same course overwrites the earlier one.
// Returns false if the grade was dropped.
func (s *Student) AddGrade(course, grade string) bool {
	if !IsPassingGrade(grade) {
		return false
	}
	s.Completed[course] = grade
	return true
}

// CompletedCourses returns the completed course codes, sorted.
func (s *Student) CompletedCourses() []string {
	out := make([]string, 0, len(s.Completed))
	for c := range s.Completed {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Instructor is one instructor and the number of grade records per course.
type Instructor struct {
	CWID         string
	Name         string
	Department   string
	CourseCounts map[string]int
}

func newInstructor(cwid, name, department string) *Instructor {
	return &Instructor{
		CWID:         cwid,
		Name:         name,
		Department:   department,
		CourseCounts: make(map[string]int),
	}
}

// AddCourse counts one more grade record for course.
func (i *Instructor) AddCourse(course string) {
	i.CourseCounts[course]++
}

// GradeEvent is one line of the grades file. It mutates one Student and
// one Instructor and is not retained.
type GradeEvent struct {
	StudentCWID    string
	Course         string
	Grade          string
	InstructorCWID string
}

// Repository is the entity model produced by one load. Nothing is shared
// between repositories, so independent loads never interfere.
type Repository struct {
	College     string
	LoadID      uuid.UUID
	Majors      map[string]*Major
	Students    map[string]*Student
	Instructors map[string]*Instructor
	Stats       LoadStats
}

// FileStats describes one source file read by a load.
type FileStats struct {
	Kind  RecordKind
	Path  string
	Lines int   // Lines read, header included
	Bytes int64 // Bytes read from the file, BOM included
}

// LoadStats collects the FileStats of a load in pass order.
type LoadStats struct {
	Files []FileStats
}

// Lines returns the line count over all files.
func (s LoadStats) Lines() int {
	n := 0
	for _, f := range s.Files {
		n += f.Lines
	}
	return n
}

// Bytes returns the byte count over all files.
func (s LoadStats) Bytes() int64 {
	var n int64
	for _, f := range s.Files {
		n += f.Bytes
	}
	return n
}

// NewRepository creates an empty repository for a college.
func NewRepository(college string) *Repository {
	return &Repository{
		College:     college,
		LoadID:      uuid.New(),
		Majors:      make(map[string]*Major),
		Students:    make(map[string]*Student),
		Instructors: make(map[string]*Instructor),
	}
}

// major returns the named major, creating it on first reference.
func (r *Repository) major(name string) *Major {
	m, ok := r.Majors[name]
	if !ok {
		m = newMajor(name)
		r.Majors[name] = m
	}
	return m
}
