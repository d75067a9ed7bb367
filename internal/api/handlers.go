package api

import (
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/ntdat247/Autoland-Monitoring/internal/config"
	"github.com/ntdat247/Autoland-Monitoring/internal/ingest"
	"github.com/ntdat247/Autoland-Monitoring/internal/logger"
	"github.com/ntdat247/Autoland-Monitoring/internal/pipeline"
	"github.com/ntdat247/Autoland-Monitoring/internal/storage/sqlite"
)

const (
	filterDateLayout  = "2006-01-02"
	defaultPerPage    = 20
	maxPerPage        = 100
	maxRecentLimit    = 100
	defaultRecent     = 10
	multipartMemLimit = 8 << 20
)

var resultFilterValues = map[string]bool{"": true, "ALL": true, "SUCCESSFUL": true, "UNSUCCESSFUL": true}
var statusFilterValues = map[string]bool{"": true, "ALL": true, "ON_TIME": true, "DUE_SOON": true, "OVERDUE": true}

// Handler contains the API request handlers
type Handler struct {
	config    *config.Config
	logger    *logger.Logger
	processor *pipeline.Processor
	reports   *sqlite.ReportStore
	fleet     *sqlite.FleetStore
	startTime time.Time
}

// NewHandler creates a new API handler
func NewHandler(cfg *config.Config, log *logger.Logger, processor *pipeline.Processor, reports *sqlite.ReportStore, fleet *sqlite.FleetStore) *Handler {
	return &Handler{
		config:    cfg,
		logger:    log.Named("api-handler"),
		processor: processor,
		reports:   reports,
		fleet:     fleet,
		startTime: time.Now(),
	}
}

// GetReports handles GET /api/v1/reports
func (h *Handler) GetReports(w http.ResponseWriter, r *http.Request) {
	filters, err := parseReportFilters(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid filters", err.Error())
		return
	}

	reports, total, err := h.reports.List(filters)
	if err != nil {
		h.logger.Error("Failed to list reports", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error", "failed to list reports")
		return
	}
	if reports == nil {
		reports = []*sqlite.StoredReport{}
	}

	totalPages := 0
	if total > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(filters.PerPage)))
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"reports": reports,
		"pagination": map[string]int{
			"page":        filters.Page,
			"per_page":    filters.PerPage,
			"total":       total,
			"total_pages": totalPages,
		},
	})
}

// GetReportByID handles GET /api/v1/reports/{id}
func (h *Handler) GetReportByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id", "report id must be an integer")
		return
	}

	stored, err := h.reports.GetByID(id)
	if errors.Is(err, sqlite.ErrNotFound) {
		respondError(w, http.StatusNotFound, "not found", "no report with that id")
		return
	}
	if err != nil {
		h.logger.Error("Failed to get report", logger.Int64("id", id), logger.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error", "failed to get report")
		return
	}

	respondJSON(w, http.StatusOK, stored)
}

// ProcessReport handles POST /api/v1/reports/process. It accepts a PDF
// as a multipart "file" part or as a raw application/pdf body, runs the
// extraction pipeline and persists the parsed report.
func (h *Handler) ProcessReport(w http.ResponseWriter, r *http.Request) {
	data, filename, err := readUploadedPDF(r, h.config.MaxFileSize)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid upload", err.Error())
		return
	}

	outcome := h.processor.Process(data)
	if !outcome.Success {
		respondError(w, http.StatusBadRequest, "processing failed", strings.Join(outcome.Errors, "; "))
		return
	}

	now := time.Now().UTC()
	storagePath, err := ingest.ArchivePDF(h.config.StorageDir, filename, data, now)
	if err != nil {
		h.logger.Error("Failed to archive PDF", logger.String("filename", filename), logger.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error", "failed to archive PDF")
		return
	}

	status := sqlite.ExtractionStatusSuccess
	if len(outcome.Warnings) > 0 {
		status = sqlite.ExtractionStatusPartial
	}

	stored := &sqlite.StoredReport{
		Record:              *outcome.Data,
		PDFFilename:         filename,
		PDFStoragePath:      storagePath,
		ProcessedAt:         now,
		ExtractionStatus:    status,
		ExtractionMethod:    outcome.Method,
		ExtractionCost:      outcome.Metrics.ActualCost,
		ExtractionCostSaved: outcome.Metrics.CostSaved,
	}

	id, err := h.reports.Insert(stored)
	if errors.Is(err, sqlite.ErrDuplicateReport) {
		respondError(w, http.StatusConflict, "duplicate report",
			"report "+outcome.Data.ReportNumber+" has already been processed")
		return
	}
	if err != nil {
		h.logger.Error("Failed to store report", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error", "failed to store report")
		return
	}
	stored.ID = id

	landedAt := outcome.Data.DateUTC
	if outcome.Data.DatetimeUTC != nil {
		landedAt = *outcome.Data.DatetimeUTC
	}
	if err := h.fleet.RecordAutoland(outcome.Data.AircraftReg, landedAt, id); err != nil {
		h.logger.Error("Failed to update fleet entry",
			logger.String("aircraft_reg", outcome.Data.AircraftReg), logger.Error(err))
	}

	h.logger.Info("Processed autoland report",
		logger.String("report_number", outcome.Data.ReportNumber),
		logger.String("aircraft_reg", outcome.Data.AircraftReg),
		logger.Int("warnings", len(outcome.Warnings)))

	respondJSON(w, http.StatusCreated, map[string]any{
		"report":   stored,
		"warnings": outcome.Warnings,
	})
}

// GetFleet handles GET /api/v1/fleet
func (h *Handler) GetFleet(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if !statusFilterValues[status] {
		respondError(w, http.StatusBadRequest, "invalid filters", "unknown status value: "+status)
		return
	}

	entries, err := h.fleet.List(sqlite.FleetFilters{
		Status:    status,
		SortBy:    r.URL.Query().Get("sort_by"),
		SortOrder: r.URL.Query().Get("sort_order"),
	})
	if err != nil {
		h.logger.Error("Failed to list fleet", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error", "failed to list fleet")
		return
	}
	if entries == nil {
		entries = []*sqlite.FleetEntry{}
	}

	respondJSON(w, http.StatusOK, map[string]any{"fleet": entries})
}

// GetDashboardStats handles GET /api/v1/dashboard/stats
func (h *Handler) GetDashboardStats(w http.ResponseWriter, r *http.Request) {
	totals, err := h.reports.Costs()
	if err != nil {
		h.logger.Error("Failed to compute report totals", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error", "failed to compute stats")
		return
	}

	successRate, err := h.reports.SuccessRate()
	if err != nil {
		h.logger.Error("Failed to compute success rate", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error", "failed to compute stats")
		return
	}

	counts, err := h.fleet.CountByStatus()
	if err != nil {
		h.logger.Error("Failed to count fleet status", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error", "failed to compute stats")
		return
	}

	fleetTotal := 0
	fleetCounts := make(map[string]int, len(counts))
	for status, n := range counts {
		fleetCounts[string(status)] = n
		fleetTotal += n
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"total_reports": totals.TotalReports,
		"success_rate":  successRate,
		"fleet": map[string]any{
			"total":     fleetTotal,
			"by_status": fleetCounts,
		},
	})
}

// GetCostSavings handles GET /api/v1/dashboard/cost-savings
func (h *Handler) GetCostSavings(w http.ResponseWriter, r *http.Request) {
	totals, err := h.reports.Costs()
	if err != nil {
		h.logger.Error("Failed to compute cost totals", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error", "failed to compute cost savings")
		return
	}

	costWithoutFree := float64(totals.TotalReports) * pipeline.DocumentAICostPerPDF
	savingsPercentage := 0.0
	if costWithoutFree > 0 {
		savingsPercentage = (costWithoutFree - totals.ActualCost) / costWithoutFree * 100
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"total_reports":      totals.TotalReports,
		"cost_per_pdf":       pipeline.DocumentAICostPerPDF,
		"actual_cost":        totals.ActualCost,
		"cost_saved":         totals.CostSaved,
		"cost_without_free":  costWithoutFree,
		"savings_percentage": savingsPercentage,
	})
}

// GetRecentAutolands handles GET /api/v1/dashboard/autolands/recent
func (h *Handler) GetRecentAutolands(w http.ResponseWriter, r *http.Request) {
	limit := defaultRecent
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "invalid filters", "limit must be a positive integer")
			return
		}
		limit = n
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	reports, err := h.reports.Recent(limit)
	if err != nil {
		h.logger.Error("Failed to list recent autolands", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error", "failed to list recent autolands")
		return
	}
	if reports == nil {
		reports = []*sqlite.StoredReport{}
	}

	respondJSON(w, http.StatusOK, map[string]any{"autolands": reports})
}

// GetHealth handles GET /api/v1/health
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"version":        h.config.Version,
		"uptime_seconds": int(time.Since(h.startTime).Seconds()),
	})
}

// parseReportFilters builds ReportFilters from query parameters.
func parseReportFilters(r *http.Request) (sqlite.ReportFilters, error) {
	q := r.URL.Query()
	filters := sqlite.ReportFilters{
		AircraftReg: q.Get("aircraft_reg"),
		Result:      q.Get("result"),
		Search:      q.Get("search"),
		SortBy:      q.Get("sort_by"),
		SortOrder:   q.Get("sort_order"),
		Page:        1,
		PerPage:     defaultPerPage,
	}

	if !resultFilterValues[filters.Result] {
		return filters, errors.New("unknown result value: " + filters.Result)
	}

	if raw := q.Get("date_from"); raw != "" {
		t, err := time.ParseInLocation(filterDateLayout, raw, time.UTC)
		if err != nil {
			return filters, errors.New("date_from must be YYYY-MM-DD")
		}
		filters.DateFrom = &t
	}
	if raw := q.Get("date_to"); raw != "" {
		t, err := time.ParseInLocation(filterDateLayout, raw, time.UTC)
		if err != nil {
			return filters, errors.New("date_to must be YYYY-MM-DD")
		}
		filters.DateTo = &t
	}

	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return filters, errors.New("page must be a positive integer")
		}
		filters.Page = n
	}
	if raw := q.Get("per_page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return filters, errors.New("per_page must be a positive integer")
		}
		if n > maxPerPage {
			n = maxPerPage
		}
		filters.PerPage = n
	}

	return filters, nil
}

// readUploadedPDF pulls the PDF bytes out of the request, from either a
// multipart form or a raw body.
func readUploadedPDF(r *http.Request, maxSize int64) ([]byte, string, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxSize)

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(multipartMemLimit); err != nil {
			return nil, "", errors.New("failed to parse multipart form")
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, "", errors.New("multipart form must contain a \"file\" part")
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			return nil, "", errors.New("failed to read uploaded file")
		}
		return data, header.Filename, nil
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, "", errors.New("failed to read request body")
	}
	if len(data) == 0 {
		return nil, "", errors.New("request body is empty")
	}

	// Raw uploads carry no filename; generate one so archived PDFs
	// never collide.
	return data, "upload-" + uuid.NewString() + ".pdf", nil
}
