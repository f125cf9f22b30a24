package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/thenoetrevino/chores/internal/models"
)

// Column names of the chore file
const (
	ColTitle        = "title"
	ColDateLastDone = "date_last_done"
	ColSoftDeadline = "soft_deadline_days"
	ColHardDeadline = "hard_deadline_days"
	ColDescription  = "description"

	// legacyColDateLastDone is read as an alias of ColDateLastDone
	legacyColDateLastDone = "date_last_chore"
)

// Header is written as the first row of every chore file
var Header = []string{ColTitle, ColDateLastDone, ColSoftDeadline, ColHardDeadline, ColDescription}

// row is one data line of the chore file. Rows that failed to parse keep
// their raw fields so a rewrite does not drop hand-edited data.
type row struct {
	line   int
	fields []string
	chore  models.Chore
	err    *ParseError
}

// table is a decoded chore file. Header columns the chore model does not
// know are kept in extra and written back after Header.
type table struct {
	rows  []row
	cols  map[string]int
	width int
	extra []column
}

type column struct {
	name  string
	index int
}

// chores returns the rows that parsed, in file order
func (t *table) chores() []models.Chore {
	out := make([]models.Chore, 0, len(t.rows))
	for _, r := range t.rows {
		if r.err == nil {
			out = append(out, r.chore)
		}
	}
	return out
}

// skipped returns the parse errors of rows that were left out
func (t *table) skipped() []*ParseError {
	var out []*ParseError
	for _, r := range t.rows {
		if r.err != nil {
			out = append(out, r.err)
		}
	}
	return out
}

// lossy reports whether a row could not be read at all and would be lost
// on rewrite. A bad row holding a line break usually comes from an
// unterminated quote that swallowed the lines after it.
func (t *table) lossy() *ParseError {
	for _, r := range t.rows {
		if r.err == nil {
			continue
		}
		if r.fields == nil || slices.ContainsFunc(r.fields, func(f string) bool {
			return strings.ContainsAny(f, "\r\n")
		}) {
			return r.err
		}
	}
	return nil
}

// decode reads a chore file. Columns are located by header name.
// A missing title column fails the whole file; any other bad row is kept
// aside with its ParseError. Stray quotes inside a field are read literally.
func decode(r io.Reader) (*table, error) {
	t := &table{}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return t, nil
	}
	if err != nil {
		return nil, &ParseError{Line: 1, Err: err}
	}

	cols := indexHeader(header)
	if _, ok := cols[ColTitle]; !ok {
		return nil, &ParseError{Line: 1, Err: ErrMissingTitleField}
	}
	t.cols, t.width = cols, len(header)
	for i, name := range header {
		name = columnName(name)
		if cols[name] != i || !slices.Contains(Header, name) {
			t.extra = append(t.extra, column{name: name, index: i})
		}
	}

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var csvErr *csv.ParseError
			if errors.As(err, &csvErr) {
				t.rows = append(t.rows, row{line: csvErr.StartLine, err: &ParseError{Line: csvErr.StartLine, Err: csvErr.Err}})
				continue
			}
			return nil, err
		}

		line, _ := cr.FieldPos(0)
		r := row{line: line, fields: record}
		chore, err := rowToChore(record, cols, len(header))
		if err != nil {
			r.err = &ParseError{Line: line, Err: err}
		} else {
			r.chore = chore
		}
		t.rows = append(t.rows, r)
	}

	return t, nil
}

// encode writes the header followed by one row per table row.
// Parsed rows are written in canonical column order; bad rows verbatim.
func encode(w io.Writer, t *table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.header()); err != nil {
		return err
	}
	for _, r := range t.rows {
		fields := t.canonical(r.fields)
		if r.err == nil {
			fields = append(choreToRow(r.chore), t.extraValues(r.fields)...)
		}
		if err := cw.Write(fields); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// header is Header followed by the extra columns
func (t *table) header() []string {
	out := slices.Clone(Header)
	for _, c := range t.extra {
		out = append(out, c.name)
	}
	return out
}

// canonical reorders raw fields into header order when the row has the
// header's width; anything else is returned untouched
func (t *table) canonical(fields []string) []string {
	if len(fields) != t.width {
		return fields
	}
	out := make([]string, len(Header), len(Header)+len(t.extra))
	for i, name := range Header {
		if j, ok := t.cols[name]; ok {
			out[i] = fields[j]
		}
	}
	return append(out, t.extraValues(fields)...)
}

// extraValues picks the extra columns out of raw fields. Rows added since
// the file was read have no fields and get empty values.
func (t *table) extraValues(fields []string) []string {
	out := make([]string, len(t.extra))
	if len(fields) != t.width {
		return out
	}
	for i, c := range t.extra {
		out[i] = fields[c.index]
	}
	return out
}

func columnName(name string) string {
	name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
	if name == legacyColDateLastDone {
		return ColDateLastDone
	}
	return name
}

func indexHeader(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = columnName(name)
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	return cols
}

func rowToChore(record []string, cols map[string]int, width int) (models.Chore, error) {
	if len(record) != width {
		return models.Chore{}, fmt.Errorf("expected %d fields, got %d", width, len(record))
	}

	field := func(name string) string {
		if i, ok := cols[name]; ok {
			return record[i]
		}
		return ""
	}

	chore := models.Chore{
		Title:        field(ColTitle),
		DateLastDone: field(ColDateLastDone),
		Description:  field(ColDescription),
	}
	if strings.TrimSpace(chore.Title) == "" {
		return models.Chore{}, ErrEmptyTitle
	}

	var err error
	if chore.SoftDeadlineDays, err = parseDays(field(ColSoftDeadline)); err != nil {
		return models.Chore{}, fmt.Errorf("%s: %w", ColSoftDeadline, err)
	}
	if chore.HardDeadlineDays, err = parseDays(field(ColHardDeadline)); err != nil {
		return models.Chore{}, fmt.Errorf("%s: %w", ColHardDeadline, err)
	}

	return chore, nil
}

func choreToRow(c models.Chore) []string {
	return []string{
		c.Title,
		c.DateLastDone,
		formatDays(c.SoftDeadlineDays),
		formatDays(c.HardDeadlineDays),
		c.Description,
	}
}

func parseDays(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("invalid day count %q", s)
	}
	if n < 0 {
		return nil, ErrNegativeDeadline
	}
	return &n, nil
}

func formatDays(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}
