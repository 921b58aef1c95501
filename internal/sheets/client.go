// Package sheets is a small client for the Google Sheets v4 values API,
// authenticated with an API key, plus the codec that turns sheet rows into
// typed records.
//
// A sheet is treated as a table: row 1 is the header row and every other row
// is one record. Writes replace the whole table body.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mmynk/pgstay/internal/metrics"
)

// DefaultBaseURL is the spreadsheets collection of the public Sheets API.
const DefaultBaseURL = "https://sheets.googleapis.com/v4/spreadsheets"

const (
	defaultMaxRetries = 2
	defaultBackoff    = 250 * time.Millisecond
	maxErrorBody      = 64 << 10
)

// Client talks to one spreadsheet.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	spreadsheetID string
	apiKey        string
	maxRetries    int
	backoff       time.Duration
	metrics       *metrics.Metrics
	logger        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for every call.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL points the client at another endpoint (tests, proxies).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithRetries sets how often a transient failure is retried and the first
// backoff delay. The delay doubles after every attempt.
func WithRetries(n int, backoff time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = n
		c.backoff = backoff
	}
}

// WithMetrics records every call on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client for the given spreadsheet.
func New(spreadsheetID, apiKey string, opts ...Option) *Client {
	c := &Client{
		httpClient:    http.DefaultClient,
		baseURL:       DefaultBaseURL,
		spreadsheetID: spreadsheetID,
		apiKey:        apiKey,
		maxRetries:    defaultMaxRetries,
		backoff:       defaultBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// SpreadsheetInfo is the subset of spreadsheet metadata pgstay reads.
type SpreadsheetInfo struct {
	Title  string
	Sheets []string
}

type valueRange struct {
	Range          string  `json:"range,omitempty"`
	MajorDimension string  `json:"majorDimension,omitempty"`
	Values         [][]any `json:"values,omitempty"`
}

type spreadsheetDoc struct {
	Properties struct {
		Title string `json:"title"`
	} `json:"properties"`
	Sheets []struct {
		Properties struct {
			Title string `json:"title"`
		} `json:"properties"`
	} `json:"sheets"`
}

// A1 builds an A1-notation range inside sheet. An empty rng addresses the
// whole sheet.
func A1(sheet, rng string) string {
	name := sheet
	if strings.ContainsAny(sheet, " '!:,") {
		name = "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
	}
	if rng == "" {
		return name
	}
	return name + "!" + rng
}

// GetValues returns the cells of a range. A range without values returns an
// empty slice and no error.
func (c *Client) GetValues(ctx context.Context, rng string) ([][]string, error) {
	var vr valueRange
	if err := c.do(ctx, "values.get", http.MethodGet, c.valuesURL(rng, ""), nil, nil, &vr); err != nil {
		return nil, err
	}

	rows := make([][]string, len(vr.Values))
	for i, row := range vr.Values {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = FormatValue(cell)
		}
		rows[i] = cells
	}
	return rows, nil
}

// UpdateValues writes rows starting at the top-left cell of rng. Values are
// stored as entered (valueInputOption=RAW).
func (c *Client) UpdateValues(ctx context.Context, rng string, rows [][]string) error {
	values := make([][]any, len(rows))
	for i, row := range rows {
		cells := make([]any, len(row))
		for j, cell := range row {
			cells[j] = cell
		}
		values[i] = cells
	}
	body := valueRange{Range: rng, MajorDimension: "ROWS", Values: values}
	query := url.Values{"valueInputOption": {"RAW"}}
	return c.do(ctx, "values.update", http.MethodPut, c.valuesURL(rng, ""), query, body, nil)
}

// ClearValues empties a range, keeping formatting.
func (c *Client) ClearValues(ctx context.Context, rng string) error {
	return c.do(ctx, "values.clear", http.MethodPost, c.valuesURL(rng, ":clear"), nil, struct{}{}, nil)
}

// Spreadsheet fetches the spreadsheet title and sheet names.
func (c *Client) Spreadsheet(ctx context.Context) (*SpreadsheetInfo, error) {
	query := url.Values{"fields": {"properties.title,sheets.properties.title"}}
	endpoint := c.baseURL + "/" + url.PathEscape(c.spreadsheetID)

	var doc spreadsheetDoc
	if err := c.do(ctx, "spreadsheets.get", http.MethodGet, endpoint, query, nil, &doc); err != nil {
		return nil, err
	}

	info := &SpreadsheetInfo{Title: doc.Properties.Title}
	for _, s := range doc.Sheets {
		info.Sheets = append(info.Sheets, s.Properties.Title)
	}
	return info, nil
}

// ReadRecords reads a whole sheet as records. Row 1 is the header row; rows
// with no non-empty cell are skipped.
func (c *Client) ReadRecords(ctx context.Context, sheet string, schema *Schema) ([]Record, error) {
	rows, err := c.GetValues(ctx, A1(sheet, ""))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []Record{}, nil
	}

	headers := rows[0]
	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		records = append(records, Decode(headers, row, schema))
	}
	return records, nil
}

// ReadHeaders returns the header row of a sheet, or nil when it is empty.
func (c *Client) ReadHeaders(ctx context.Context, sheet string) ([]string, error) {
	rows, err := c.GetValues(ctx, A1(sheet, "1:1"))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 || blank(rows[0]) {
		return nil, nil
	}
	return rows[0], nil
}

// WriteRecords replaces the body of a sheet with records. Columns follow the
// sheet's existing header row, or the schema when the sheet has none. The
// body is cleared first and then rewritten in a single update, so concurrent
// writers overwrite each other and a failure between the two calls leaves
// only the header row.
func (c *Client) WriteRecords(ctx context.Context, sheet string, schema *Schema, records []Record) error {
	headers, err := c.ReadHeaders(ctx, sheet)
	if err != nil {
		return fmt.Errorf("failed to read headers of %s: %w", sheet, err)
	}
	if headers == nil {
		headers = schema.Headers()
	}
	if len(headers) == 0 {
		return fmt.Errorf("sheet %s has no header row and no schema", sheet)
	}

	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, headers)
	for _, rec := range records {
		rows = append(rows, Encode(headers, rec))
	}

	if err := c.ClearValues(ctx, A1(sheet, "A2:ZZ")); err != nil {
		return fmt.Errorf("failed to clear %s: %w", sheet, err)
	}
	if err := c.UpdateValues(ctx, A1(sheet, "A1"), rows); err != nil {
		return fmt.Errorf("failed to write %s: %w", sheet, err)
	}
	return nil
}

func (c *Client) valuesURL(rng, suffix string) string {
	return c.baseURL + "/" + url.PathEscape(c.spreadsheetID) + "/values/" + url.PathEscape(rng) + suffix
}

// do runs one API call, retrying transient failures with exponential backoff.
func (c *Client) do(ctx context.Context, op, method, endpoint string, query url.Values, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("failed to encode %s request: %w", op, err)
		}
	}

	var err error
	for attempt := 0; ; attempt++ {
		err = c.once(ctx, op, method, endpoint, query, payload, out)
		if err == nil || !IsTransient(err) || attempt >= c.maxRetries {
			return err
		}

		delay := c.backoff << attempt
		c.logger.Warn("Sheets call failed, retrying",
			"op", op,
			"attempt", attempt+1,
			"delay", delay,
			"error", err,
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

func (c *Client) once(ctx context.Context, op, method, endpoint string, query url.Values, payload []byte, out any) error {
	q := url.Values{}
	for k, v := range query {
		q[k] = v
	}
	q.Set("key", c.apiKey)

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint+"?"+q.Encode(), reader)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveSheetsRequest(op, "error", time.Since(start))
		return fmt.Errorf("sheets %s: %w", op, err)
	}
	defer resp.Body.Close()
	c.metrics.ObserveSheetsRequest(op, strconv.Itoa(resp.StatusCode), time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return newAPIError(op, resp.StatusCode, data)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return nil
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
