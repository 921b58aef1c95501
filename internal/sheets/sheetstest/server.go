// Package sheetstest provides an in-memory fake of the Sheets values API for
// tests. It understands whole-sheet ranges ("Rooms"), row ranges ("Rooms!1:1")
// and cell ranges ("Rooms!A2:ZZ", "Rooms!A2:ZZ1000").
package sheetstest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// Server is a fake spreadsheet served over httptest.
type Server struct {
	*httptest.Server

	Title string

	mu       sync.Mutex
	sheets   map[string][][]string
	failures map[string]int // op -> HTTP status to return
	requests map[string]int // op -> count

	readGate *gate
}

// NewServer starts a fake spreadsheet with the given sheet names, all empty.
// The server is closed when the test ends.
func NewServer(t testing.TB, sheetNames ...string) *Server {
	t.Helper()
	s := &Server{
		Title:    "pgstay test",
		sheets:   make(map[string][][]string),
		failures: make(map[string]int),
		requests: make(map[string]int),
	}
	for _, name := range sheetNames {
		s.sheets[name] = nil
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// BaseURL is the value to pass to sheets.WithBaseURL.
func (s *Server) BaseURL() string {
	return s.URL + "/v4/spreadsheets"
}

// SetRows replaces the contents of a sheet.
func (s *Server) SetRows(sheet string, rows [][]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sheets[sheet] = copyRows(rows)
}

// Rows returns a copy of a sheet's contents.
func (s *Server) Rows(sheet string) [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyRows(s.sheets[sheet])
}

// Fail makes every call of op ("values.get", "values.update", "values.clear",
// "spreadsheets.get") answer with status until Recover is called.
func (s *Server) Fail(op string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = status
}

// Recover clears all injected failures.
func (s *Server) Recover() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = make(map[string]int)
}

// Requests returns how many calls of op were received.
func (s *Server) Requests(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[op]
}

// HoldWholeSheetReads makes the next n whole-sheet reads wait until all n
// have arrived, so n callers observe the same state.
func (s *Server) HoldWholeSheetReads(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readGate = newGate(n)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v4/spreadsheets/")
	id, rest, hasValues := strings.Cut(path, "/values/")

	op := "spreadsheets.get"
	switch {
	case !hasValues:
	case r.Method == http.MethodGet:
		op = "values.get"
	case r.Method == http.MethodPut:
		op = "values.update"
	case r.Method == http.MethodPost && strings.HasSuffix(rest, ":clear"):
		op = "values.clear"
		rest = strings.TrimSuffix(rest, ":clear")
	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", "unknown method")
		return
	}

	s.mu.Lock()
	s.requests[op]++
	status := s.failures[op]
	s.mu.Unlock()

	if r.URL.Query().Get("key") == "" {
		writeError(w, http.StatusForbidden, "PERMISSION_DENIED", "The caller does not have permission")
		return
	}
	if status != 0 {
		writeError(w, status, http.StatusText(status), "injected failure")
		return
	}

	switch op {
	case "spreadsheets.get":
		s.handleSpreadsheet(w, id)
	case "values.get":
		s.handleGet(w, rest)
	case "values.update":
		if r.URL.Query().Get("valueInputOption") != "RAW" {
			writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "valueInputOption required")
			return
		}
		s.handleUpdate(w, r, rest)
	case "values.clear":
		s.handleClear(w, rest)
	}
}

func (s *Server) handleSpreadsheet(w http.ResponseWriter, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	type props struct {
		Title string `json:"title"`
	}
	type sheet struct {
		Properties props `json:"properties"`
	}
	doc := struct {
		SpreadsheetID string  `json:"spreadsheetId"`
		Properties    props   `json:"properties"`
		Sheets        []sheet `json:"sheets"`
	}{SpreadsheetID: id, Properties: props{Title: s.Title}}
	for name := range s.sheets {
		doc.Sheets = append(doc.Sheets, sheet{Properties: props{Title: name}})
	}
	writeJSON(w, doc)
}

func (s *Server) handleGet(w http.ResponseWriter, a1 string) {
	rng, err := parseRange(a1)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error())
		return
	}

	s.mu.Lock()
	gate := s.readGate
	if rng.whole && gate != nil && gate.claim() {
		s.mu.Unlock()
		gate.wait()
		s.mu.Lock()
	}
	rows, ok := s.sheets[rng.sheet]
	var out [][]string
	if ok {
		out = rng.slice(rows)
	}
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "Unable to parse range: "+a1)
		return
	}

	resp := map[string]any{"range": a1, "majorDimension": "ROWS"}
	if len(out) > 0 {
		resp["values"] = out
	}
	writeJSON(w, resp)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request, a1 string) {
	rng, err := parseRange(a1)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error())
		return
	}
	var body struct {
		Values [][]string `json:"values"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rows, ok := s.sheets[rng.sheet]
	if !ok {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "Unable to parse range: "+a1)
		return
	}
	for i, values := range body.Values {
		r := rng.startRow + i
		for len(rows) <= r {
			rows = append(rows, nil)
		}
		row := rows[r]
		for len(row) < rng.startCol+len(values) {
			row = append(row, "")
		}
		copy(row[rng.startCol:], values)
		rows[r] = trimRow(row)
	}
	s.sheets[rng.sheet] = rows
	writeJSON(w, map[string]any{"updatedRange": a1, "updatedRows": len(body.Values)})
}

func (s *Server) handleClear(w http.ResponseWriter, a1 string) {
	rng, err := parseRange(a1)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rows, ok := s.sheets[rng.sheet]
	if !ok {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "Unable to parse range: "+a1)
		return
	}
	for r := rng.startRow; r < len(rows) && (rng.endRow < 0 || r <= rng.endRow); r++ {
		row := rows[r]
		for c := rng.startCol; c < len(row) && (rng.endCol < 0 || c <= rng.endCol); c++ {
			row[c] = ""
		}
		rows[r] = trimRow(row)
	}
	// The API omits trailing empty rows.
	for len(rows) > 0 && len(rows[len(rows)-1]) == 0 {
		rows = rows[:len(rows)-1]
	}
	s.sheets[rng.sheet] = rows
	writeJSON(w, map[string]any{"clearedRange": a1})
}

// cellRange is a zero-based, inclusive range; -1 means unbounded.
type cellRange struct {
	sheet            string
	whole            bool
	startRow, endRow int
	startCol, endCol int
}

func parseRange(a1 string) (cellRange, error) {
	sheet, ref, hasRef := strings.Cut(a1, "!")
	sheet = strings.ReplaceAll(strings.Trim(sheet, "'"), "''", "'")
	rng := cellRange{sheet: sheet, endRow: -1, endCol: -1}
	if !hasRef {
		rng.whole = true
		return rng, nil
	}

	start, end, isSpan := strings.Cut(ref, ":")
	sc, sr, err := parseCell(start)
	if err != nil {
		return rng, err
	}
	rng.startCol, rng.startRow = max(sc, 0), max(sr, 0)
	if !isSpan {
		return rng, nil
	}
	ec, er, err := parseCell(end)
	if err != nil {
		return rng, err
	}
	rng.endCol, rng.endRow = ec, er
	return rng, nil
}

// parseCell parses "B3", "ZZ" or "3" into zero-based column and row, using
// -1 for the missing part.
func parseCell(ref string) (col, row int, err error) {
	i := 0
	col = -1
	for i < len(ref) && ref[i] >= 'A' && ref[i] <= 'Z' {
		if col < 0 {
			col = 0
		}
		col = col*26 + int(ref[i]-'A'+1)
		i++
	}
	if col > 0 {
		col--
	}
	row = -1
	if i < len(ref) {
		n, convErr := strconv.Atoi(ref[i:])
		if convErr != nil || n < 1 {
			return 0, 0, fmt.Errorf("bad cell reference %q", ref)
		}
		row = n - 1
	}
	return col, row, nil
}

func (rng cellRange) slice(rows [][]string) [][]string {
	var out [][]string
	for r := rng.startRow; r < len(rows) && (rng.endRow < 0 || r <= rng.endRow); r++ {
		row := rows[r]
		var cells []string
		for c := rng.startCol; c < len(row) && (rng.endCol < 0 || c <= rng.endCol); c++ {
			cells = append(cells, row[c])
		}
		out = append(out, trimRow(cells))
	}
	for len(out) > 0 && len(out[len(out)-1]) == 0 {
		out = out[:len(out)-1]
	}
	return out
}

func trimRow(row []string) []string {
	for len(row) > 0 && row[len(row)-1] == "" {
		row = row[:len(row)-1]
	}
	return row
}

func copyRows(rows [][]string) [][]string {
	if rows == nil {
		return nil
	}
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = append([]string(nil), row...)
	}
	return out
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"code": status, "message": message, "status": code},
	})
}

// gate releases its waiters once n of them have arrived.
type gate struct {
	mu      sync.Mutex
	pending int
	open    chan struct{}
}

func newGate(n int) *gate {
	return &gate{pending: n, open: make(chan struct{})}
}

// claim registers one arrival; false once the gate has already opened.
func (g *gate) claim() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pending == 0 {
		return false
	}
	g.pending--
	if g.pending == 0 {
		close(g.open)
	}
	return true
}

func (g *gate) wait() { <-g.open }
