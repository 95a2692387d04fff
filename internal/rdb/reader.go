// Package rdb reads the USGS RDB format: tab-delimited text with leading
// "#" comment lines, one header line of column names, one column-format line,
// then data lines.
package rdb

import (
	"bufio"
	"errors"
	"io"
	"iter"
	"strings"
)

// ErrHeadersNotFound is returned when the input ends before a header line.
var ErrHeadersNotFound = errors.New("rdb column headers not found")

// maxLineSize bounds a single RDB line. Expanded site output stays well below it.
const maxLineSize = 1 << 20

// Record maps column names to raw, untrimmed values.
type Record map[string]string

// Reader pulls records one at a time. It is single-pass: once a record has
// been read it cannot be read again.
type Reader struct {
	scanner *bufio.Scanner
	header  []string
	started bool
}

// NewReader creates a Reader over r.
func NewReader(r io.Reader) *Reader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Reader{scanner: s}
}

// Header returns the column names, or nil before the first Read.
func (r *Reader) Header() []string {
	return r.header
}

// Read returns the next record. It returns io.EOF after the last record and
// ErrHeadersNotFound if the input holds no header line.
func (r *Reader) Read() (Record, error) {
	if !r.started {
		if err := r.readHeader(); err != nil {
			return nil, err
		}
	}
	for r.scanner.Scan() {
		line := r.scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		return r.zip(strings.Split(line, "\t")), nil
	}
	if err := r.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

func (r *Reader) readHeader() error {
	r.started = true
	for r.scanner.Scan() {
		line := r.scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		r.header = strings.Split(line, "\t")
		// The column-format line (e.g. "5s\t15s") follows the header and is
		// discarded unread.
		r.scanner.Scan()
		return r.scanner.Err()
	}
	if err := r.scanner.Err(); err != nil {
		return err
	}
	return ErrHeadersNotFound
}

// zip pairs values with header names positionally, stopping at the shorter.
func (r *Reader) zip(values []string) Record {
	n := min(len(values), len(r.header))
	rec := make(Record, n)
	for i := 0; i < n; i++ {
		rec[r.header[i]] = values[i]
	}
	return rec
}

// Records returns a single-use sequence over the records in r. Iteration
// stops after the first error, which is yielded with a nil record.
func Records(r io.Reader) iter.Seq2[Record, error] {
	reader := NewReader(r)
	return func(yield func(Record, error) bool) {
		for {
			rec, err := reader.Read()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(rec, err) || err != nil {
				return
			}
		}
	}
}

// First returns the first record in r without reading the rest. ok is false
// when the input has a header but no data lines.
func First(r io.Reader) (rec Record, ok bool, err error) {
	rec, err = NewReader(r).Read()
	if errors.Is(err, io.EOF) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return rec, true, nil
}
