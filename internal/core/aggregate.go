package core

import "sort"

// MajorSummary is one row of the majors summary.
type MajorSummary struct {
	Name      string   `json:"major"`
	Required  []string `json:"required"`
	Electives []string `json:"electives"`
}

// StudentSummary is one row of the student summary.
//
// RequiredRemaining and ElectivesRemaining are always non-nil; an empty
// set means nothing remains. Rendering an empty set as a marker such as
// "None" is left to the presentation layer.
type StudentSummary struct {
	CWID               string            `json:"cwid"`
	Name               string            `json:"name"`
	Major              string            `json:"major"`
	Completed          []string          `json:"completed"`
	Grades             map[string]string `json:"grades"`
	RequiredRemaining  CourseSet         `json:"required_remaining"`
	ElectivesRemaining CourseSet         `json:"electives_remaining"`
}

// InstructorSummary is one (instructor, course) row of the instructor summary.
type InstructorSummary struct {
	CWID       string `json:"cwid"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Course     string `json:"course"`
	Students   int    `json:"students"`
}

// Summary holds every derived view of a loaded repository.
type Summary struct {
	College     string              `json:"college"`
	Majors      []MajorSummary      `json:"majors"`
	Students    []StudentSummary    `json:"students"`
	Instructors []InstructorSummary `json:"instructors"`
}

// RemainingFor computes what a student still needs for their major.
//
// required is the major's required set minus the completed courses.
// electives is empty as soon as any one elective-set course has been
// completed; otherwise it is the major's full elective set. A single
// elective is all a major asks for.
func RemainingFor(s *Student) (required, electives CourseSet) {
	if s.Major == nil {
		return make(CourseSet), make(CourseSet)
	}

	completed := make(CourseSet, len(s.Completed))
	electiveDone := false
	for course := range s.Completed {
		completed.Add(course)
		if s.Major.Electives.Has(course) {
			electiveDone = true
		}
	}

	required = s.Major.Required.Difference(completed)
	if electiveDone {
		electives = make(CourseSet)
	} else {
		electives = s.Major.Electives.Clone()
	}
	return required, electives
}

// Summarize derives the majors, student and instructor views of repo.
// Rows are sorted deterministically: majors by name, students by CWID,
// instructor rows by CWID then course. repo is not modified.
func Summarize(repo *Repository) Summary {
	return Summary{
		College:     repo.College,
		Majors:      SummarizeMajors(repo),
		Students:    SummarizeStudents(repo),
		Instructors: SummarizeInstructors(repo),
	}
}

// SummarizeMajors returns one row per major with sorted course lists.
func SummarizeMajors(repo *Repository) []MajorSummary {
	out := make([]MajorSummary, 0, len(repo.Majors))
	for _, m := range repo.Majors {
		out = append(out, MajorSummary{
			Name:      m.Name,
			Required:  m.Required.Sorted(),
			Electives: m.Electives.Sorted(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// SummarizeStudents returns one row per student.
func SummarizeStudents(repo *Repository) []StudentSummary {
	out := make([]StudentSummary, 0, len(repo.Students))
	for _, s := range repo.Students {
		required, electives := RemainingFor(s)

		grades := make(map[string]string, len(s.Completed))
		for c, g := range s.Completed {
			grades[c] = g
		}

		majorName := ""
		if s.Major != nil {
			majorName = s.Major.Name
		}

		out = append(out, StudentSummary{
			CWID:               s.CWID,
			Name:               s.Name,
			Major:              majorName,
			Completed:          s.CompletedCourses(),
			Grades:             grades,
			RequiredRemaining:  required,
			ElectivesRemaining: electives,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CWID < out[j].CWID })
	return out
}

// SummarizeInstructors flattens each instructor's course counts into rows.
// Instructors with no graded courses produce no rows. Never nil.
func SummarizeInstructors(repo *Repository) []InstructorSummary {
	out := make([]InstructorSummary, 0)
	for _, inst := range repo.Instructors {
		for course, n := range inst.CourseCounts {
			out = append(out, InstructorSummary{
				CWID:       inst.CWID,
				Name:       inst.Name,
				Department: inst.Department,
				Course:     course,
				Students:   n,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CWID != out[j].CWID {
			return out[i].CWID < out[j].CWID
		}
		return out[i].Course < out[j].Course
	})
	return out
}
