// Package core loads a college's course records and derives its summaries.
//
// The package is the ingest, validate, join and aggregate pipeline and
// nothing else: it has no logging, storage or transport dependencies and
// can be used by the web server, the console summary or tests unchanged.
//
// # Source files
//
// A college directory holds four delimited files (tab by default):
//
//	majors.txt       major, requirement type (R|E), course
//	students.txt     CWID, name, major
//	instructors.txt  CWID, name, department
//	grades.txt       student CWID, course, grade (may be blank), instructor CWID
//
// # Reading
//
// [OpenRecords] streams one file as validated [Record] values. Each line
// must split into exactly the schema's field count and no required field
// may be blank. The file is opened eagerly, so a missing file fails before
// iteration starts, and it is closed when iteration ends for any reason.
//
// # Loading
//
// [Load] runs four passes in a fixed order (majors, students, instructors,
// grades) and cross-links the entities into a [Repository]. Each call
// builds its own Repository; there is no shared state between loads. The
// first failure aborts the load and is returned as one of the typed
// errors in errors.go.
//
// # Summaries
//
// [Summarize] derives per-major requirement sets, per-student completed
// and remaining courses, and per-instructor course counts.
//
//	repo, err := core.Load("data/stevens", core.LoadOptions{})
//	if err != nil {
//	    return err
//	}
//	summary := core.Summarize(repo)
//
// # Error Handling
//
// Failures unwrap to sentinels ([ErrFileNotFound], [ErrMalformedRecord],
// [ErrBlankField], [ErrInvalidValue], [ErrUnknownMajor],
// [ErrUnknownStudent], [ErrUnknownInstructor]). [MapError] turns any error
// into a user-facing message with a support code.
package core
