package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/JonMunkholm/gradebook/internal/core"
)

// none marks an empty remaining set.
const none = "None"

// printSummary writes the three summary tables of one college.
func printSummary(w io.Writer, sum core.Summary) error {
	fmt.Fprintf(w, "== %s ==\n\n", sum.College)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "Majors Summary")
	fmt.Fprintln(tw, "Dept\tRequired\tElectives")
	for _, m := range sum.Majors {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", m.Name, list(m.Required), list(m.Electives))
	}
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "Student Summary")
	fmt.Fprintln(tw, "CWID\tName\tMajor\tCompleted Courses\tRemaining Required\tRemaining Electives")
	for _, s := range sum.Students {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			s.CWID, s.Name, s.Major,
			list(s.Completed),
			list(s.RequiredRemaining.Sorted()),
			list(s.ElectivesRemaining.Sorted()),
		)
	}
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "Instructor Summary")
	fmt.Fprintln(tw, "CWID\tName\tDept\tCourse\tStudents")
	for _, i := range byDepartment(sum.Instructors) {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", i.CWID, i.Name, i.Department, i.Course, i.Students)
	}
	fmt.Fprintln(tw)

	return tw.Flush()
}

// byDepartment orders instructor rows by department and name, both
// descending, then course.
func byDepartment(rows []core.InstructorSummary) []core.InstructorSummary {
	out := append([]core.InstructorSummary(nil), rows...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Department != out[j].Department {
			return out[i].Department > out[j].Department
		}
		if out[i].Name != out[j].Name {
			return out[i].Name > out[j].Name
		}
		return out[i].Course < out[j].Course
	})
	return out
}

func list(courses []string) string {
	if len(courses) == 0 {
		return none
	}
	return "[" + strings.Join(courses, ", ") + "]"
}
