package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeFile writes content to name inside dir and returns the full path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// tsv joins rows of fields into tab-delimited lines, each newline-terminated.
func tsv(rows ...[]string) string {
	var b strings.Builder
	for _, row := range rows {
		b.WriteString(strings.Join(row, "\t"))
		b.WriteString("\n")
	}
	return b.String()
}

var stevensMajors = tsv(
	[]string{"SFEN", "R", "SSW 540"},
	[]string{"SFEN", "R", "SSW 564"},
	[]string{"SFEN", "R", "SSW 555"},
	[]string{"SFEN", "R", "SSW 567"},
	[]string{"SFEN", "E", "CS 501"},
	[]string{"SFEN", "E", "CS 513"},
	[]string{"SFEN", "E", "CS 545"},
	[]string{"SYEN", "R", "SYS 671"},
	[]string{"SYEN", "R", "SYS 612"},
	[]string{"SYEN", "R", "SYS 800"},
	[]string{"SYEN", "E", "SSW 810"},
	[]string{"SYEN", "E", "SSW 565"},
	[]string{"SYEN", "E", "SSW 540"},
)

var stevensStudents = tsv(
	[]string{"10103", "Baldwin, C", "SFEN"},
	[]string{"10115", "Wyatt, X", "SFEN"},
)

var stevensInstructors = tsv(
	[]string{"98765", "Einstein, A", "SFEN"},
	[]string{"98764", "Feynman, R", "SFEN"},
	[]string{"98763", "Newton, I", "SYEN"},
)

var stevensGrades = tsv(
	[]string{"10103", "SSW 567", "A", "98765"},
	[]string{"10103", "SSW 564", "A-", "98764"},
	[]string{"10103", "SSW 687", "B", "98764"},
	[]string{"10103", "CS 501", "B", "98764"},
	[]string{"10115", "SSW 567", "A", "98765"},
	[]string{"10115", "SSW 564", "B+", "98764"},
	[]string{"10115", "SSW 687", "A", "98764"},
	[]string{"10115", "CS 545", "F", "98764"},
)

// collegeFiles is the content of each source file, keyed by record kind.
type collegeFiles map[RecordKind]string

func stevensFiles() collegeFiles {
	return collegeFiles{
		KindMajors:      stevensMajors,
		KindStudents:    stevensStudents,
		KindInstructors: stevensInstructors,
		KindGrades:      stevensGrades,
	}
}

// writeCollege writes files into a fresh directory named college and
// returns its path. Kinds missing from files are not written.
func writeCollege(t *testing.T, college string, files collegeFiles) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), college)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for kind, content := range files {
		writeFile(t, dir, MustSchema(kind).FileName, content)
	}
	return dir
}
