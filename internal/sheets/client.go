// Google Sheets REST v4 implementation of [Spreadsheet].
//
// Endpoint shapes based on https://developers.google.com/sheets/api/reference/rest
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/desertthunder/fretsheet/internal/shared"
)

const sheetsBaseURL = "https://sheets.googleapis.com/v4/spreadsheets"

// valueRange mirrors the API's ValueRange resource. Cells arrive as untyped
// JSON values and are coerced to strings on read.
type valueRange struct {
	Range          string  `json:"range,omitempty"`
	MajorDimension string  `json:"majorDimension,omitempty"`
	Values         [][]any `json:"values,omitempty"`
}

type batchGetResponse struct {
	ValueRanges []valueRange `json:"valueRanges"`
}

type gridProperties struct {
	RowCount    int `json:"rowCount,omitempty"`
	ColumnCount int `json:"columnCount,omitempty"`
}

type sheetProperties struct {
	SheetID        int64          `json:"sheetId"`
	Title          string         `json:"title"`
	GridProperties gridProperties `json:"gridProperties,omitempty"`
}

type spreadsheetMeta struct {
	Sheets []struct {
		Properties sheetProperties `json:"properties"`
	} `json:"sheets"`
}

type batchUpdateRequest struct {
	Requests []map[string]any `json:"requests"`
}

type batchUpdateResponse struct {
	Replies []struct {
		AddSheet struct {
			Properties sheetProperties `json:"properties"`
		} `json:"addSheet"`
	} `json:"replies"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Client implements [Spreadsheet] against one Google Sheet. Worksheet
// metadata is fetched once and memoized until [Client.InvalidateCaches];
// write operations pass through the shared [Throttle] when one is set.
type Client struct {
	spreadsheetID string
	baseURL       string
	httpClient    *http.Client
	throttle      *Throttle

	mu     sync.Mutex
	sheets []sheetProperties
	loaded bool
}

// NewClient creates a spreadsheet client. The HTTP client should come from
// [NewHTTPClient] so requests carry a refreshing OAuth token; it defaults to
// [http.DefaultClient]. A nil throttle disables write pacing.
func NewClient(spreadsheetID string, httpClient *http.Client, throttle *Throttle) (*Client, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("%w: spreadsheet id is required", shared.ErrInvalidConfig)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		spreadsheetID: spreadsheetID,
		baseURL:       sheetsBaseURL,
		httpClient:    httpClient,
		throttle:      throttle,
	}, nil
}

// doRequest performs an HTTP request against the spreadsheet. The endpoint is
// relative to the spreadsheet resource ("/values/...", ":batchUpdate", or ""
// for metadata).
func (c *Client) doRequest(ctx context.Context, method, endpoint string, body any, result any) error {
	apiURL := c.baseURL + "/" + c.spreadsheetID + endpoint

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrRemoteStore, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.responseError(resp)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// responseError maps a non-2xx response to a sentinel error, keeping the API
// message so the retry layer can match transient failures by text.
func (c *Client) responseError(resp *http.Response) error {
	var detail apiError
	message := resp.Status
	if err := json.NewDecoder(resp.Body).Decode(&detail); err == nil && detail.Error.Message != "" {
		message = detail.Error.Message
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests,
		detail.Error.Status == "RESOURCE_EXHAUSTED":
		return fmt.Errorf("%w: %s", shared.ErrRateLimited, message)
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", shared.ErrNotAuthenticated, message)
	case resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s", shared.ErrInvalidCredentials, message)
	default:
		return fmt.Errorf("%w: status %d: %s", shared.ErrRemoteStore, resp.StatusCode, message)
	}
}

// metadata loads and memoizes worksheet properties.
func (c *Client) metadata(ctx context.Context) ([]sheetProperties, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		return c.sheets, nil
	}

	var meta spreadsheetMeta
	if err := c.doRequest(ctx, "GET", "?fields=sheets.properties", nil, &meta); err != nil {
		return nil, err
	}

	c.sheets = c.sheets[:0]
	for _, s := range meta.Sheets {
		c.sheets = append(c.sheets, s.Properties)
	}
	c.loaded = true
	return c.sheets, nil
}

// InvalidateCaches drops the memoized worksheet metadata. Call after
// credential changes or external edits to the spreadsheet's structure.
func (c *Client) InvalidateCaches() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = false
	c.sheets = nil
}

// Worksheet resolves a worksheet by title, case-insensitively.
func (c *Client) Worksheet(ctx context.Context, title string) (Worksheet, error) {
	sheets, err := c.metadata(ctx)
	if err != nil {
		return nil, err
	}

	for _, s := range sheets {
		if strings.EqualFold(s.Title, title) {
			return &worksheet{client: c, props: s}, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", shared.ErrWorksheetNotFound, title)
}

// WorksheetTitles lists all worksheet titles.
func (c *Client) WorksheetTitles(ctx context.Context) ([]string, error) {
	sheets, err := c.metadata(ctx)
	if err != nil {
		return nil, err
	}

	titles := make([]string, len(sheets))
	for i, s := range sheets {
		titles[i] = s.Title
	}
	return titles, nil
}

// AddWorksheet creates a worksheet via batchUpdate and registers it in the
// metadata cache.
func (c *Client) AddWorksheet(ctx context.Context, title string, rows, cols int) (Worksheet, error) {
	if rows <= 0 {
		rows = 100
	}
	if cols <= 0 {
		cols = 26
	}

	req := batchUpdateRequest{Requests: []map[string]any{{
		"addSheet": map[string]any{
			"properties": sheetProperties{
				Title:          title,
				GridProperties: gridProperties{RowCount: rows, ColumnCount: cols},
			},
		},
	}}}

	if err := c.waitForWrite(ctx); err != nil {
		return nil, err
	}

	var resp batchUpdateResponse
	if err := c.doRequest(ctx, "POST", ":batchUpdate", req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Replies) == 0 {
		return nil, fmt.Errorf("%w: addSheet returned no reply", shared.ErrRemoteStore)
	}

	props := resp.Replies[0].AddSheet.Properties
	c.mu.Lock()
	if c.loaded {
		c.sheets = append(c.sheets, props)
	}
	c.mu.Unlock()

	return &worksheet{client: c, props: props}, nil
}

// DeleteWorksheet removes a worksheet by title.
func (c *Client) DeleteWorksheet(ctx context.Context, title string) error {
	sheets, err := c.metadata(ctx)
	if err != nil {
		return err
	}

	var sheetID int64 = -1
	for _, s := range sheets {
		if strings.EqualFold(s.Title, title) {
			sheetID = s.SheetID
			break
		}
	}
	if sheetID < 0 {
		return fmt.Errorf("%w: %s", shared.ErrWorksheetNotFound, title)
	}

	req := batchUpdateRequest{Requests: []map[string]any{{
		"deleteSheet": map[string]any{"sheetId": sheetID},
	}}}

	if err := c.waitForWrite(ctx); err != nil {
		return err
	}
	if err := c.doRequest(ctx, "POST", ":batchUpdate", req, nil); err != nil {
		return err
	}

	c.mu.Lock()
	if c.loaded {
		kept := c.sheets[:0]
		for _, s := range c.sheets {
			if s.SheetID != sheetID {
				kept = append(kept, s)
			}
		}
		c.sheets = kept
	}
	c.mu.Unlock()

	return nil
}

// BatchGet reads multiple qualified ranges in one request.
func (c *Client) BatchGet(ctx context.Context, ranges []string) ([][][]string, error) {
	if len(ranges) == 0 {
		return nil, fmt.Errorf("%w: no ranges provided", shared.ErrInvalidInput)
	}

	params := url.Values{}
	for _, r := range ranges {
		params.Add("ranges", r)
	}

	var resp batchGetResponse
	if err := c.doRequest(ctx, "GET", "/values:batchGet?"+params.Encode(), nil, &resp); err != nil {
		return nil, err
	}

	grids := make([][][]string, len(ranges))
	for i := range grids {
		if i < len(resp.ValueRanges) {
			grids[i] = coerceGrid(resp.ValueRanges[i].Values)
		}
	}
	return grids, nil
}

// waitForWrite blocks on the shared throttle before a mutating request.
func (c *Client) waitForWrite(ctx context.Context) error {
	if c.throttle == nil {
		return nil
	}
	return c.throttle.Wait(ctx)
}

// worksheet scopes value operations to one sheet of the spreadsheet.
type worksheet struct {
	client *Client
	props  sheetProperties
}

func (w *worksheet) Title() string {
	return w.props.Title
}

// qualifiedRange quotes the worksheet title into an A1 reference.
func (w *worksheet) qualifiedRange(rng string) string {
	title := strings.ReplaceAll(w.props.Title, "'", "''")
	return "'" + title + "'!" + rng
}

func (w *worksheet) Get(ctx context.Context, rng string) ([][]string, error) {
	endpoint := "/values/" + url.PathEscape(w.qualifiedRange(rng))

	var resp valueRange
	if err := w.client.doRequest(ctx, "GET", endpoint, nil, &resp); err != nil {
		return nil, err
	}
	return coerceGrid(resp.Values), nil
}

func (w *worksheet) Update(ctx context.Context, rng string, values [][]string) error {
	endpoint := "/values/" + url.PathEscape(w.qualifiedRange(rng)) + "?valueInputOption=USER_ENTERED"

	if err := w.client.waitForWrite(ctx); err != nil {
		return err
	}
	body := valueRange{Range: w.qualifiedRange(rng), Values: anyGrid(values)}
	return w.client.doRequest(ctx, "PUT", endpoint, body, nil)
}

func (w *worksheet) Append(ctx context.Context, row []string) error {
	endpoint := "/values/" + url.PathEscape(w.qualifiedRange("A1")) + ":append?valueInputOption=USER_ENTERED"

	if err := w.client.waitForWrite(ctx); err != nil {
		return err
	}
	body := valueRange{Values: anyGrid([][]string{row})}
	return w.client.doRequest(ctx, "POST", endpoint, body, nil)
}

func (w *worksheet) Clear(ctx context.Context, rng string) error {
	endpoint := "/values/" + url.PathEscape(w.qualifiedRange(rng)) + ":clear"

	if err := w.client.waitForWrite(ctx); err != nil {
		return err
	}
	return w.client.doRequest(ctx, "POST", endpoint, struct{}{}, nil)
}

// coerceGrid converts untyped API cells to strings. Numbers drop trailing
// zero decimals so "3.0" and "3" read the same.
func coerceGrid(values [][]any) [][]string {
	grid := make([][]string, len(values))
	for i, row := range values {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = cellString(v)
		}
		grid[i] = cells
	}
	return grid
}

func cellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "TRUE"
		}
		return "FALSE"
	default:
		return fmt.Sprintf("%v", t)
	}
}

func anyGrid(values [][]string) [][]any {
	grid := make([][]any, len(values))
	for i, row := range values {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = v
		}
		grid[i] = cells
	}
	return grid
}
