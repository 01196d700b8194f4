// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/fretsheet/internal/shared"
	"github.com/desertthunder/fretsheet/internal/sheets"
)

// FakeSpreadsheet is an in-memory test double for [sheets.Spreadsheet]. Cells
// are stored as a grid with row 0 holding the cosmetic header. Read and write
// failures can be queued to exercise retry paths.
type FakeSpreadsheet struct {
	mu          sync.Mutex
	worksheets  map[string]*FakeWorksheet
	order       []string
	writeErrs   []error
	readErrs    []error
	Invalidated int
	Writes      int
	Reads       int
}

func NewFakeSpreadsheet() *FakeSpreadsheet {
	return &FakeSpreadsheet{worksheets: make(map[string]*FakeWorksheet)}
}

// Seed creates a worksheet with the given rows, header included, bypassing
// write accounting.
func (f *FakeSpreadsheet) Seed(title string, rows [][]string) *FakeWorksheet {
	f.mu.Lock()
	defer f.mu.Unlock()

	ws := &FakeWorksheet{parent: f, title: title}
	for _, row := range rows {
		ws.rows = append(ws.rows, append([]string(nil), row...))
	}
	f.worksheets[title] = ws
	f.order = append(f.order, title)
	return ws
}

// FailWrites queues n write failures with the given error. Each mutating
// operation consumes one queued failure before succeeding again.
func (f *FakeSpreadsheet) FailWrites(err error, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for range n {
		f.writeErrs = append(f.writeErrs, err)
	}
}

// FailReads queues n read failures with the given error. Each range read
// consumes one queued failure before succeeding again.
func (f *FakeSpreadsheet) FailReads(err error, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for range n {
		f.readErrs = append(f.readErrs, err)
	}
}

func (f *FakeSpreadsheet) nextReadErr() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Reads++
	if len(f.readErrs) == 0 {
		return nil
	}
	err := f.readErrs[0]
	f.readErrs = f.readErrs[1:]
	return err
}

func (f *FakeSpreadsheet) nextWriteErr() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Writes++
	if len(f.writeErrs) == 0 {
		return nil
	}
	err := f.writeErrs[0]
	f.writeErrs = f.writeErrs[1:]
	return err
}

func (f *FakeSpreadsheet) lookup(title string) (*FakeWorksheet, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for stored, ws := range f.worksheets {
		if strings.EqualFold(stored, title) {
			return ws, true
		}
	}
	return nil, false
}

func (f *FakeSpreadsheet) Worksheet(_ context.Context, title string) (sheets.Worksheet, error) {
	if ws, ok := f.lookup(title); ok {
		return ws, nil
	}
	return nil, fmt.Errorf("%w: %s", shared.ErrWorksheetNotFound, title)
}

func (f *FakeSpreadsheet) WorksheetTitles(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.order...), nil
}

func (f *FakeSpreadsheet) AddWorksheet(_ context.Context, title string, rows, cols int) (sheets.Worksheet, error) {
	if err := f.nextWriteErr(); err != nil {
		return nil, err
	}
	if _, ok := f.lookup(title); ok {
		return nil, fmt.Errorf("%w: worksheet %s already exists", shared.ErrRemoteStore, title)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	ws := &FakeWorksheet{parent: f, title: title}
	f.worksheets[title] = ws
	f.order = append(f.order, title)
	return ws, nil
}

func (f *FakeSpreadsheet) DeleteWorksheet(_ context.Context, title string) error {
	if err := f.nextWriteErr(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for stored := range f.worksheets {
		if strings.EqualFold(stored, title) {
			delete(f.worksheets, stored)
			kept := f.order[:0]
			for _, t := range f.order {
				if t != stored {
					kept = append(kept, t)
				}
			}
			f.order = kept
			return nil
		}
	}
	return fmt.Errorf("%w: %s", shared.ErrWorksheetNotFound, title)
}

func (f *FakeSpreadsheet) BatchGet(ctx context.Context, ranges []string) ([][][]string, error) {
	grids := make([][][]string, len(ranges))
	for i, qualified := range ranges {
		title, rng, err := splitQualifiedRange(qualified)
		if err != nil {
			return nil, err
		}
		ws, ok := f.lookup(title)
		if !ok {
			return nil, fmt.Errorf("%w: %s", shared.ErrWorksheetNotFound, title)
		}
		grid, err := ws.Get(ctx, rng)
		if err != nil {
			return nil, err
		}
		grids[i] = grid
	}
	return grids, nil
}

func (f *FakeSpreadsheet) InvalidateCaches() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Invalidated++
}

// FakeWorksheet is the worksheet handle of a [FakeSpreadsheet].
type FakeWorksheet struct {
	parent *FakeSpreadsheet
	title  string
	rows   [][]string
}

func (w *FakeWorksheet) Title() string { return w.title }

// Rows exposes the raw grid, header row included, for assertions.
func (w *FakeWorksheet) Rows() [][]string {
	w.parent.mu.Lock()
	defer w.parent.mu.Unlock()

	out := make([][]string, len(w.rows))
	for i, row := range w.rows {
		out[i] = append([]string(nil), row...)
	}
	return out
}

func (w *FakeWorksheet) Get(_ context.Context, rng string) ([][]string, error) {
	if err := w.parent.nextReadErr(); err != nil {
		return nil, err
	}

	c1, r1, c2, r2, err := parseRange(rng)
	if err != nil {
		return nil, err
	}

	w.parent.mu.Lock()
	defer w.parent.mu.Unlock()

	if r2 < 0 || r2 > len(w.rows) {
		r2 = len(w.rows)
	}

	var grid [][]string
	for r := r1; r <= r2-1 && r < len(w.rows); r++ {
		src := w.rows[r]
		var row []string
		for c := c1; c <= c2; c++ {
			if c < len(src) {
				row = append(row, src[c])
			} else {
				row = append(row, "")
			}
		}
		// The real API omits trailing empty cells and rows.
		for len(row) > 0 && row[len(row)-1] == "" {
			row = row[:len(row)-1]
		}
		grid = append(grid, row)
	}
	for len(grid) > 0 && len(grid[len(grid)-1]) == 0 {
		grid = grid[:len(grid)-1]
	}
	return grid, nil
}

func (w *FakeWorksheet) Update(_ context.Context, rng string, values [][]string) error {
	if err := w.parent.nextWriteErr(); err != nil {
		return err
	}

	c1, r1, _, _, err := parseRange(rng)
	if err != nil {
		return err
	}

	w.parent.mu.Lock()
	defer w.parent.mu.Unlock()

	for i, row := range values {
		r := r1 + i
		for len(w.rows) <= r {
			w.rows = append(w.rows, nil)
		}
		for j, cell := range row {
			c := c1 + j
			for len(w.rows[r]) <= c {
				w.rows[r] = append(w.rows[r], "")
			}
			w.rows[r][c] = cell
		}
	}
	return nil
}

func (w *FakeWorksheet) Append(_ context.Context, row []string) error {
	if err := w.parent.nextWriteErr(); err != nil {
		return err
	}

	w.parent.mu.Lock()
	defer w.parent.mu.Unlock()

	last := -1
	for i, r := range w.rows {
		for _, cell := range r {
			if cell != "" {
				last = i
				break
			}
		}
	}
	target := last + 1
	for len(w.rows) <= target {
		w.rows = append(w.rows, nil)
	}
	w.rows[target] = append([]string(nil), row...)
	return nil
}

func (w *FakeWorksheet) Clear(_ context.Context, rng string) error {
	if err := w.parent.nextWriteErr(); err != nil {
		return err
	}

	c1, r1, c2, r2, err := parseRange(rng)
	if err != nil {
		return err
	}

	w.parent.mu.Lock()
	defer w.parent.mu.Unlock()

	if r2 < 0 || r2 > len(w.rows) {
		r2 = len(w.rows)
	}
	for r := r1; r <= r2-1 && r < len(w.rows); r++ {
		for c := c1; c <= c2 && c < len(w.rows[r]); c++ {
			w.rows[r][c] = ""
		}
	}
	return nil
}

// parseRange handles the single-letter column A1 ranges the adapters use:
// "A1", "A2:H", "A2:H11". Row and column indexes are 0-based on return; an
// open-ended range reports -1 as its end row.
func parseRange(rng string) (c1, r1, c2, r2 int, err error) {
	parse := func(ref string) (col, row int, e error) {
		if len(ref) < 1 || ref[0] < 'A' || ref[0] > 'Z' {
			return 0, 0, fmt.Errorf("unsupported range %q", rng)
		}
		col = int(ref[0] - 'A')
		if len(ref) == 1 {
			return col, -1, nil
		}
		n, e := strconv.Atoi(ref[1:])
		if e != nil {
			return 0, 0, fmt.Errorf("unsupported range %q", rng)
		}
		return col, n - 1, nil
	}

	start, end, hasEnd := strings.Cut(rng, ":")
	c1, r1, err = parse(start)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	if r1 < 0 {
		return 0, 0, 0, 0, fmt.Errorf("unsupported range %q", rng)
	}
	if !hasEnd {
		return c1, r1, c1, r1 + 1, nil
	}

	c2, r2, err = parse(end)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	if r2 >= 0 {
		r2++
	}
	return c1, r1, c2, r2, nil
}

// splitQualifiedRange splits "'Title'!A2:D" into its worksheet title and
// range parts.
func splitQualifiedRange(qualified string) (title, rng string, err error) {
	before, after, ok := strings.Cut(qualified, "!")
	if !ok {
		return "", "", fmt.Errorf("range %q is not worksheet-qualified", qualified)
	}
	title = strings.Trim(before, "'")
	title = strings.ReplaceAll(title, "''", "'")
	return title, after, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
