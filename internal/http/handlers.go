package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"compras/internal/core"
	"compras/internal/log"
	"compras/internal/source"
)

type loadRequest struct {
	// Path of a local spreadsheet file to load directly.
	Path string `json:"path,omitempty"`
	// Source names a staged dataset; empty means the latest import.
	Source string `json:"source,omitempty"`
}

type loadResponse struct {
	Records        int `json:"records"`
	DroppedNoDate  int `json:"dropped_no_date"`
	DroppedNumeric int `json:"dropped_numeric"`
}

type filterRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type criteriaResponse struct {
	Month       int    `json:"month"`
	Description string `json:"description"`
	Supplier    string `json:"supplier"`
	Search      string `json:"search"`
	Matches     int    `json:"matches"`
}

type facetsResponse struct {
	Months       []int    `json:"months"`
	Descriptions []string `json:"descriptions"`
	Suppliers    []string `json:"suppliers"`
}

type nameAmountResponse struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

type descriptionTotalsResponse struct {
	Description      string  `json:"description"`
	Quantity         float64 `json:"quantity"`
	Spend            float64 `json:"spend"`
	AverageUnitPrice float64 `json:"average_unit_price"`
}

type aggregatesResponse struct {
	TotalSpent           float64                     `json:"total_spent"`
	TotalQuantity        float64                     `json:"total_quantity"`
	DistinctDescriptions int                         `json:"distinct_descriptions"`
	DistinctSuppliers    int                         `json:"distinct_suppliers"`
	AverageUnitPrice     float64                     `json:"average_unit_price"`
	MonthlySeries        []float64                   `json:"monthly_series"`
	DescriptionSummary   []descriptionTotalsResponse `json:"description_summary"`
	TopDescriptions      []nameAmountResponse        `json:"top_descriptions"`
	TopSuppliers         []nameAmountResponse        `json:"top_suppliers"`
}

type alertResponse struct {
	Level     string  `json:"level"`
	Deviation float64 `json:"deviation"`
	Reference float64 `json:"reference"`
}

type recordResponse struct {
	Date        string        `json:"date"`
	Supplier    string        `json:"supplier"`
	Article     string        `json:"article"`
	Description string        `json:"description"`
	Quantity    float64       `json:"quantity"`
	Price       float64       `json:"price"`
	Amount      float64       `json:"amount"`
	Alert       alertResponse `json:"alert"`
}

// handleLoad replaces the session dataset. The body may name a local
// file or a staged dataset; with an empty body the configured default
// source is re-read.
func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req loadRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var reader source.RowReader
	switch {
	case req.Path != "":
		opened, err := source.OpenFile(req.Path)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		reader = opened
	case req.Source != "" || s.defaultSource == nil:
		if s.repo == nil {
			writeError(w, http.StatusServiceUnavailable, "no staging store configured")
			return
		}
		reader = source.NewStaging(s.repo, req.Source)
	default:
		reader = s.defaultSource
	}

	rows, err := reader.ReadRows(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "dataset load failed", log.FieldError, err)
		writeError(w, http.StatusBadGateway, "read data source: "+err.Error())
		return
	}

	s.mu.Lock()
	summary := s.session.Load(rows)
	s.invalidateViews()
	s.mu.Unlock()

	s.logger.InfoContext(r.Context(), "dataset loaded",
		log.FieldRows, summary.Records,
		log.FieldDropped, summary.DroppedNoDate+summary.DroppedNumeric)

	writeJSON(w, http.StatusOK, loadResponse{
		Records:        summary.Records,
		DroppedNoDate:  summary.DroppedNoDate,
		DroppedNumeric: summary.DroppedNumeric,
	})
}

// handleImport queues a file for background staging via the broker.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.publisher == nil {
		writeError(w, http.StatusServiceUnavailable, "import queue not configured")
		return
	}

	var req loadRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}
	if _, err := source.FormatForPath(req.Path); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.publisher.PublishImportRequest(r.Context(), req.Path, req.Source); err != nil {
		s.logger.ErrorContext(r.Context(), "import publish failed", log.FieldError, err)
		writeError(w, http.StatusBadGateway, "queue import request: "+err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

// handleFilters mutates the active criteria: POST sets one field,
// DELETE clears them all.
func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req filterRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		s.mu.Lock()
		err := s.session.SetFilter(core.FilterField(strings.ToLower(req.Field)), req.Value)
		if err == nil {
			s.invalidateViews()
		}
		resp := s.criteriaResponse()
		s.mu.Unlock()

		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, core.ErrUnknownFilterField) || errors.Is(err, core.ErrInvalidMonth) {
				status = http.StatusBadRequest
			}
			writeError(w, status, err.Error())
			return
		}

		s.logger.InfoContext(r.Context(), "filter applied",
			log.FieldFilterField, req.Field,
			log.FieldFilterValue, req.Value)
		writeJSON(w, http.StatusOK, resp)

	case http.MethodDelete:
		s.mu.Lock()
		s.session.ResetFilters()
		s.invalidateViews()
		resp := s.criteriaResponse()
		s.mu.Unlock()

		s.logger.InfoContext(r.Context(), "filters reset")
		writeJSON(w, http.StatusOK, resp)

	case http.MethodGet:
		s.mu.Lock()
		resp := s.criteriaResponse()
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, resp)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// criteriaResponse snapshots the active criteria. Callers hold s.mu.
func (s *Server) criteriaResponse() criteriaResponse {
	c := s.session.Criteria()
	return criteriaResponse{
		Month:       c.Month,
		Description: c.Description,
		Supplier:    c.Supplier,
		Search:      c.Search,
		Matches:     s.session.Matches(),
	}
}

func (s *Server) handleFacets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	s.mu.Lock()
	f := s.session.Facets()
	s.mu.Unlock()

	resp := facetsResponse{
		Months:       f.Months,
		Descriptions: f.Descriptions,
		Suppliers:    f.Suppliers,
	}
	if resp.Months == nil {
		resp.Months = []int{}
	}
	if resp.Descriptions == nil {
		resp.Descriptions = []string{}
	}
	if resp.Suppliers == nil {
		resp.Suppliers = []string{}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAggregates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	s.mu.Lock()
	key := criteriaKey(s.session.Criteria())
	if cached, ok := s.aggregatesCache.Get(key); ok {
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, cached)
		return
	}
	agg := s.session.Aggregates()
	resp := toAggregatesResponse(agg)
	s.aggregatesCache.Set(key, resp)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	limit := s.recordLimit
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	s.mu.Lock()
	key := fmt.Sprintf("%s|limit=%d", criteriaKey(s.session.Criteria()), limit)
	if cached, ok := s.recordsCache.Get(key); ok {
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, cached)
		return
	}
	records := s.session.Records(limit)
	resp := make([]recordResponse, 0, len(records))
	for _, rec := range records {
		alert := s.session.AlertFor(rec)
		resp = append(resp, recordResponse{
			Date:        rec.Date.Format("2006-01-02"),
			Supplier:    rec.Supplier,
			Article:     rec.Article,
			Description: rec.Description,
			Quantity:    rec.Quantity,
			Price:       rec.Price,
			Amount:      rec.Amount(),
			Alert: alertResponse{
				Level:     string(alert.Level),
				Deviation: alert.Deviation,
				Reference: alert.Reference,
			},
		})
	}
	s.recordsCache.Set(key, resp)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReferencePrices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	s.mu.Lock()
	averages := s.session.ReferenceAverages()
	s.mu.Unlock()

	resp := make(map[string]float64, len(averages))
	for desc, avg := range averages {
		resp[desc] = avg
	}
	writeJSON(w, http.StatusOK, resp)
}

func toAggregatesResponse(agg core.Aggregates) aggregatesResponse {
	series := make([]float64, len(agg.MonthlySeries))
	copy(series, agg.MonthlySeries[:])

	summary := make([]descriptionTotalsResponse, 0, len(agg.DescriptionSummary))
	for _, row := range agg.DescriptionSummary {
		summary = append(summary, descriptionTotalsResponse{
			Description:      row.Description,
			Quantity:         row.Quantity,
			Spend:            row.Spend,
			AverageUnitPrice: row.AverageUnitPrice,
		})
	}

	return aggregatesResponse{
		TotalSpent:           agg.TotalSpent,
		TotalQuantity:        agg.TotalQuantity,
		DistinctDescriptions: agg.DistinctDescriptions,
		DistinctSuppliers:    agg.DistinctSuppliers,
		AverageUnitPrice:     agg.AverageUnitPrice,
		MonthlySeries:        series,
		DescriptionSummary:   summary,
		TopDescriptions:      toNameAmounts(agg.TopDescriptions),
		TopSuppliers:         toNameAmounts(agg.TopSuppliers),
	}
}

func toNameAmounts(entries []core.NameAmount) []nameAmountResponse {
	out := make([]nameAmountResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, nameAmountResponse{Name: e.Name, Amount: e.Amount})
	}
	return out
}

func decodeBody(r *http.Request, dst any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
