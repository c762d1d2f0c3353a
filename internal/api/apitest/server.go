// Package apitest runs an in-memory budgetr server for tests. It follows the
// server's wire behavior closely enough to exercise the client end to end.
package apitest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/budgetr/internal/model"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// maxLimit caps the page size of the expenditures listing.
const maxLimit = 100

// Request is a recorded incoming request.
type Request struct {
	Query       url.Values
	Form        url.Values
	Method      string
	Path        string
	ContentType string
	RequestID   string
	Body        []byte
}

// ExportRange is a decoded range of the excel export form.
type ExportRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Title string    `json:"title"`
}

type failure struct {
	message string
	status  int
}

type expenditure struct {
	date       time.Time
	amount     float64
	id         int64
	categoryID int64
}

// Server is a fake budgetr server.
type Server struct {
	*httptest.Server
	failures     map[string]failure
	categories   map[int64]string
	requests     []Request
	exports      [][]ExportRange
	expenditures []expenditure
	nextID       int64
	mu           sync.Mutex
}

// NewServer starts a fake server that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		failures:   make(map[string]failure),
		categories: make(map[int64]string),
	}

	r := chi.NewRouter()
	r.Use(s.record)
	r.Use(s.injectFailures)

	r.Route("/api", func(r chi.Router) {
		r.Get("/categories", s.listCategories)
		r.Post("/categories", s.createCategory)

		r.Get("/expenditures", s.listExpenditures)
		r.Post("/expenditures", s.createExpenditure)
		r.Get("/expenditures/{id}", s.showExpenditure)
		r.Post("/expenditures/{id}", s.updateExpenditure)
		r.Delete("/expenditures/{id}", s.deleteExpenditure)

		r.Get("/stats/categories", s.categoryStats)

		r.Post("/exports/excel", s.exportExcel)
	})

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)

	return s
}

// Fail makes every following request to method+path answer with status.
// An empty message produces an empty body.
func (s *Server) Fail(method, path string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status, message: message}
}

// AddCategory seeds a category and returns its id.
func (s *Server) AddCategory(name string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.firstOrCreateCategory(name)
}

// AddExpenditure seeds an expenditure and returns its id. An empty category
// leaves it uncategorized.
func (s *Server) AddExpenditure(amount float64, date time.Time, category string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var categoryID int64
	if category != "" {
		categoryID = s.firstOrCreateCategory(category)
	}

	s.nextID++
	s.expenditures = append(s.expenditures, expenditure{
		id:         s.nextID,
		amount:     amount,
		date:       date,
		categoryID: categoryID,
	})
	return s.nextID
}

// Requests returns a copy of the recorded requests.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	requests := make([]Request, len(s.requests))
	copy(requests, s.requests)
	return requests
}

// LastRequest returns the most recent request, or the zero Request.
func (s *Server) LastRequest() Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.requests) == 0 {
		return Request{}
	}
	return s.requests[len(s.requests)-1]
}

// Exports returns the ranges of every excel export request.
func (s *Server) Exports() [][]ExportRange {
	s.mu.Lock()
	defer s.mu.Unlock()

	exports := make([][]ExportRange, len(s.exports))
	copy(exports, s.exports)
	return exports
}

// ExpenditureCount returns the number of stored expenditures.
func (s *Server) ExpenditureCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.expenditures)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		req := Request{
			Method:      r.Method,
			Path:        r.URL.Path,
			Query:       r.URL.Query(),
			ContentType: r.Header.Get("Content-Type"),
			RequestID:   r.Header.Get("X-Request-ID"),
			Body:        body,
		}
		if strings.HasPrefix(req.ContentType, "application/x-www-form-urlencoded") {
			req.Form, _ = url.ParseQuery(string(body))
		}

		s.mu.Lock()
		s.requests = append(s.requests, req)
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		f, ok := s.failures[r.Method+" "+r.URL.Path]
		s.mu.Unlock()

		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		if f.message == "" {
			w.WriteHeader(f.status)
			return
		}
		writeJSON(w, f.status, map[string]string{"message": f.message})
	})
}

func (s *Server) listCategories(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int64, 0, len(s.categories))
	for id := range s.categories {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	data := make([]model.RawCategory, 0, len(ids))
	for _, id := range ids {
		data = append(data, model.RawCategory{ID: id, Name: s.categories[id]})
	}

	writeJSON(w, http.StatusOK, map[string]any{"meta": map[string]any{}, "data": data})
}

func (s *Server) createCategory(w http.ResponseWriter, r *http.Request) {
	var params struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(params.Name)
	if name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Name cant be empty."})
		return
	}

	s.mu.Lock()
	id := s.firstOrCreateCategory(name)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, model.RawCategory{ID: id, Name: name})
}

func (s *Server) listExpenditures(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := maxLimit
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v >= 0 {
		limit = v
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset := 0
	if v, err := strconv.Atoi(q.Get("offset")); err == nil && v >= 0 {
		offset = v
	}

	hasStart, hasEnd := q.Get("start") != "", q.Get("end") != ""
	if hasStart != hasEnd {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	var start, end time.Time
	if hasStart {
		var err error
		if start, err = time.Parse(time.RFC3339, q.Get("start")); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if end, err = time.Parse(time.RFC3339, q.Get("end")); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	selected := make([]expenditure, 0, len(s.expenditures))
	for _, e := range s.expenditures {
		if hasStart && (e.date.Before(start) || !e.date.Before(end)) {
			continue
		}
		selected = append(selected, e)
	}

	sortExpenditures(selected, q.Get("sort"))

	if offset > len(selected) {
		offset = len(selected)
	}
	selected = selected[offset:]
	if limit < len(selected) {
		selected = selected[:limit]
	}

	data := make([]model.RawExpenditure, 0, len(selected))
	for _, e := range selected {
		data = append(data, s.raw(e))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":   data,
		"limit":  limit,
		"offset": offset,
	})
}

func (s *Server) createExpenditure(w http.ResponseWriter, r *http.Request) {
	var params struct {
		Date     time.Time `json:"date"`
		Category string    `json:"category"`
		Amount   float64   `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var categoryID int64
	if name := strings.TrimSpace(params.Category); name != "" {
		categoryID = s.firstOrCreateCategory(name)
	}

	s.nextID++
	e := expenditure{id: s.nextID, amount: params.Amount, date: params.Date, categoryID: categoryID}
	s.expenditures = append(s.expenditures, e)

	writeJSON(w, http.StatusCreated, s.raw(e))
}

func (s *Server) showExpenditure(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.find(chi.URLParam(r, "id"))
	if i < 0 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, s.raw(s.expenditures[i]))
}

func (s *Server) updateExpenditure(w http.ResponseWriter, r *http.Request) {
	var params struct {
		Date     time.Time `json:"date"`
		Amount   *float64  `json:"amount"`
		Category *string   `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.find(chi.URLParam(r, "id"))
	if i < 0 {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	e := &s.expenditures[i]
	if params.Amount != nil {
		e.amount = *params.Amount
	}
	if !params.Date.IsZero() {
		e.date = params.Date
	}
	if params.Category != nil {
		if name := strings.TrimSpace(*params.Category); name != "" {
			e.categoryID = s.firstOrCreateCategory(name)
		} else {
			e.categoryID = 0
		}
	}

	writeJSON(w, http.StatusOK, s.raw(*e))
}

func (s *Server) deleteExpenditure(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.find(chi.URLParam(r, "id"))
	if i < 0 {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	s.expenditures = append(s.expenditures[:i], s.expenditures[i+1:]...)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) categoryStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var start, end time.Time
	var err error
	if v := q.Get("start"); v != "" {
		if start, err = time.Parse(time.RFC3339, v); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
	}
	if v := q.Get("end"); v != "" {
		if end, err = time.Parse(time.RFC3339, v); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
	}
	if start.IsZero() != end.IsZero() {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	totals := make(map[int64]float64)
	order := make([]int64, 0)
	for _, e := range s.expenditures {
		if !start.IsZero() && (e.date.Before(start) || !e.date.Before(end)) {
			continue
		}
		if _, seen := totals[e.categoryID]; !seen {
			order = append(order, e.categoryID)
		}
		totals[e.categoryID] += e.amount
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	type statRow struct {
		Name  *string `json:"name"`
		ID    int64   `json:"id"`
		Total float64 `json:"total"`
	}
	stats := make([]statRow, 0, len(order))
	for _, id := range order {
		row := statRow{ID: id, Total: totals[id]}
		if id != 0 {
			name := s.categories[id]
			row.Name = &name
		}
		stats = append(stats, row)
	}

	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) exportExcel(w http.ResponseWriter, r *http.Request) {
	var ranges []ExportRange
	if err := json.Unmarshal([]byte(r.FormValue("ranges")), &ranges); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.exports = append(s.exports, ranges)
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="export.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("xlsx:" + strconv.Itoa(len(ranges))))
}

// firstOrCreateCategory must be called with s.mu held.
func (s *Server) firstOrCreateCategory(name string) int64 {
	for id, existing := range s.categories {
		if existing == name {
			return id
		}
	}

	id := int64(len(s.categories) + 1)
	s.categories[id] = name
	return id
}

// find must be called with s.mu held.
func (s *Server) find(param string) int {
	id, err := strconv.ParseInt(param, 10, 64)
	if err != nil {
		return -1
	}
	for i, e := range s.expenditures {
		if e.id == id {
			return i
		}
	}
	return -1
}

// raw must be called with s.mu held.
func (s *Server) raw(e expenditure) model.RawExpenditure {
	raw := model.RawExpenditure{
		ID:     e.id,
		Amount: decimal.NewFromFloat(e.amount),
		Date:   e.date,
	}
	if e.categoryID != 0 {
		raw.Category = &model.RawCategory{ID: e.categoryID, Name: s.categories[e.categoryID]}
	}
	return raw
}

func sortExpenditures(list []expenditure, param string) {
	parts := strings.Split(strings.ToLower(param), "-")
	col := parts[0]
	desc := len(parts) > 1 && parts[1] == "desc"

	var less func(a, b expenditure) bool
	switch col {
	case "id":
		less = func(a, b expenditure) bool { return a.id < b.id }
	case "amount":
		less = func(a, b expenditure) bool { return a.amount < b.amount }
	case "date":
		less = func(a, b expenditure) bool { return a.date.Before(b.date) }
	default:
		return
	}

	sort.SliceStable(list, func(i, j int) bool {
		if desc {
			return less(list[j], list[i])
		}
		return less(list[i], list[j])
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
