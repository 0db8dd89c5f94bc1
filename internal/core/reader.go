package core

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"
	"strings"
	"unicode/utf8"
)

// DefaultDelimiter separates fields in the reference data.
const DefaultDelimiter = "\t"

// ReaderOptions controls how a source file is split into records.
type ReaderOptions struct {
	Delimiter string // Single character; defaults to DefaultDelimiter
	Header    bool   // First line is a header: count-checked, never yielded
	SkipBOM   bool   // Drop a leading UTF-8 BOM before the first line
}

func (o ReaderOptions) withDefaults() ReaderOptions {
	if o.Delimiter == "" {
		o.Delimiter = DefaultDelimiter
	}
	return o
}

// RecordReader streams validated records from one delimited file.
//
// It makes a single forward pass and cannot be restarted. The file is
// closed as soon as the input is exhausted or a record fails validation;
// callers that stop early must call Close (ranging over All does this).
type RecordReader struct {
	path      string
	schema    RecordSchema
	opts      ReaderOptions
	validator *RecordValidator

	file    *os.File
	counter *CountingReader
	br      *bufio.Reader

	line int
	rec  Record
	err  error
	done bool
}

// OpenRecords opens path and returns a reader for records of the given
// schema. A missing file fails here with a *FileNotFoundError, before any
// record is produced.
func OpenRecords(path string, schema RecordSchema, opts ReaderOptions) (*RecordReader, error) {
	opts = opts.withDefaults()
	if utf8.RuneCountInString(opts.Delimiter) != 1 {
		return nil, fmt.Errorf("delimiter must be a single character, got %q", opts.Delimiter)
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &FileNotFoundError{Path: path, Err: err}
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	counter := NewCountingReader(f)
	r := &RecordReader{
		path:      path,
		schema:    schema,
		opts:      opts,
		validator: NewRecordValidator(schema, path),
		file:      f,
		counter:   counter,
		br:        bufio.NewReader(counter),
	}

	if opts.SkipBOM {
		if err := skipBOM(r.br); err != nil {
			f.Close()
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}

	return r, nil
}

// Next advances to the next valid record. It returns false at end of
// input or on the first error; check Err afterwards.
func (r *RecordReader) Next() bool {
	if r.done {
		return false
	}

	for {
		raw, ok := r.readLine()
		if !ok {
			return false
		}
		r.line++

		fields := strings.Split(raw, r.opts.Delimiter)
		if err := r.validator.CheckCount(fields, r.line); err != nil {
			r.finish(err)
			return false
		}

		if r.opts.Header && r.line == 1 {
			continue
		}

		if err := r.validator.CheckBlank(fields, r.line); err != nil {
			r.finish(err)
			return false
		}

		r.rec = Record{Line: r.line, Fields: fields}
		return true
	}
}

// readLine returns the next line without its terminator. On end of input
// or a read error it finishes the reader and returns false.
func (r *RecordReader) readLine() (string, bool) {
	s, err := r.br.ReadString('\n')
	if err != nil && err != io.EOF {
		r.finish(fmt.Errorf("read %s line %d: %w", r.path, r.line+1, err))
		return "", false
	}
	if err == io.EOF && s == "" {
		r.finish(nil)
		return "", false
	}

	s = strings.TrimSuffix(s, "\n")
	s = strings.TrimSuffix(s, "\r")
	return s, true
}

// finish records the terminal error (nil at clean EOF) and releases the file.
func (r *RecordReader) finish(err error) {
	r.done = true
	r.rec = Record{}
	closeErr := r.Close()
	if err == nil {
		err = closeErr
	}
	r.err = err
}

// Record returns the record loaded by the last successful Next.
func (r *RecordReader) Record() Record {
	return r.rec
}

// Err returns the error that stopped iteration, or nil at clean EOF.
func (r *RecordReader) Err() error {
	return r.err
}

// Line returns the 1-based number of the last line read.
func (r *RecordReader) Line() int {
	return r.line
}

// BytesRead returns how many bytes have been pulled from the file.
func (r *RecordReader) BytesRead() int64 {
	return r.counter.BytesRead
}

// Path returns the file being read.
func (r *RecordReader) Path() string {
	return r.path
}

// Close releases the underlying file. It is safe to call more than once.
func (r *RecordReader) Close() error {
	r.done = true
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// All returns the remaining records as a range-over-func sequence. The
// first error, if any, is yielded once as the final element. The file is
// closed when the loop ends, including when the caller breaks early.
func (r *RecordReader) All() iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		defer r.Close()
		for r.Next() {
			if !yield(r.Record(), nil) {
				return
			}
		}
		if err := r.Err(); err != nil {
			yield(Record{}, err)
		}
	}
}
