package store

import (
	"sort"

	"github.com/JonMunkholm/gradebook/internal/core"
)

// table describes one COPY target: its columns and the rows for a load.
type table struct {
	name    string
	columns []string
	rows    [][]any
}

// tables flattens repo into COPY batches, in foreign-key order. Rows are
// sorted so the same repository always produces the same batches.
func tables(repo *core.Repository) []table {
	return []table{
		{"majors", []string{"load_id", "major", "requirement_type", "course"}, majorRows(repo)},
		{"students", []string{"load_id", "cwid", "name", "major"}, studentRows(repo)},
		{"completed_courses", []string{"load_id", "student_cwid", "course", "grade"}, completedRows(repo)},
		{"instructors", []string{"load_id", "cwid", "name", "department"}, instructorRows(repo)},
		{"instructor_courses", []string{"load_id", "instructor_cwid", "course", "students"}, instructorCourseRows(repo)},
	}
}

func majorRows(repo *core.Repository) [][]any {
	var rows [][]any
	for _, name := range sortedKeys(repo.Majors) {
		m := repo.Majors[name]
		for _, c := range m.Required.Sorted() {
			rows = append(rows, []any{repo.LoadID, m.Name, string(core.Required), c})
		}
		for _, c := range m.Electives.Sorted() {
			rows = append(rows, []any{repo.LoadID, m.Name, string(core.Elective), c})
		}
	}
	return rows
}

func studentRows(repo *core.Repository) [][]any {
	rows := make([][]any, 0, len(repo.Students))
	for _, cwid := range sortedKeys(repo.Students) {
		s := repo.Students[cwid]
		major := ""
		if s.Major != nil {
			major = s.Major.Name
		}
		rows = append(rows, []any{repo.LoadID, s.CWID, s.Name, major})
	}
	return rows
}

func completedRows(repo *core.Repository) [][]any {
	var rows [][]any
	for _, cwid := range sortedKeys(repo.Students) {
		s := repo.Students[cwid]
		for _, course := range s.CompletedCourses() {
			rows = append(rows, []any{repo.LoadID, s.CWID, course, s.Completed[course]})
		}
	}
	return rows
}

func instructorRows(repo *core.Repository) [][]any {
	rows := make([][]any, 0, len(repo.Instructors))
	for _, cwid := range sortedKeys(repo.Instructors) {
		i := repo.Instructors[cwid]
		rows = append(rows, []any{repo.LoadID, i.CWID, i.Name, i.Department})
	}
	return rows
}

func instructorCourseRows(repo *core.Repository) [][]any {
	var rows [][]any
	for _, row := range core.SummarizeInstructors(repo) {
		rows = append(rows, []any{repo.LoadID, row.CWID, row.Course, int32(row.Students)})
	}
	return rows
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
