// Package sheets is the spreadsheet client adapter. It exposes an
// authenticated handle to the backing Google Sheet as a small set of
// worksheet operations, hiding transport, credential refresh, and metadata
// caching from the repositories built on top of it.
package sheets

import "context"

// Spreadsheet is the adapter surface consumed by the repositories. The real
// implementation is [Client]; tests substitute an in-memory fake.
type Spreadsheet interface {
	// Worksheet resolves a worksheet handle by title. The match is
	// case-insensitive; a miss returns [shared.ErrWorksheetNotFound].
	Worksheet(ctx context.Context, title string) (Worksheet, error)

	// WorksheetTitles lists the titles of all worksheets in the spreadsheet.
	WorksheetTitles(ctx context.Context) ([]string, error)

	// AddWorksheet creates a new worksheet with the given grid size and
	// returns its handle.
	AddWorksheet(ctx context.Context, title string, rows, cols int) (Worksheet, error)

	// DeleteWorksheet removes a worksheet by title.
	DeleteWorksheet(ctx context.Context, title string) error

	// BatchGet reads several A1 ranges in one round trip. Each range must be
	// qualified with its worksheet title. Results are positional.
	BatchGet(ctx context.Context, ranges []string) ([][][]string, error)

	// InvalidateCaches drops memoized spreadsheet metadata so the next
	// operation re-fetches it.
	InvalidateCaches()
}

// Worksheet is a handle to a single worksheet. Ranges are unqualified A1
// notation ("A2:H" etc.); the handle scopes them to its worksheet.
type Worksheet interface {
	Title() string
	Get(ctx context.Context, rng string) ([][]string, error)
	Update(ctx context.Context, rng string, values [][]string) error
	Append(ctx context.Context, row []string) error
	Clear(ctx context.Context, rng string) error
}
