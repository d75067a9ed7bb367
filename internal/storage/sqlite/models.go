package sqlite

import (
	"errors"
	"time"

	"github.com/ntdat247/Autoland-Monitoring/internal/fleet"
	"github.com/ntdat247/Autoland-Monitoring/internal/report"
)

// Sentinel errors returned by the stores.
var (
	ErrNotFound        = errors.New("record not found")
	ErrDuplicateReport = errors.New("report already exists")
)

// Extraction status values stored with each report.
const (
	ExtractionStatusSuccess = "SUCCESS"
	ExtractionStatusPartial = "PARTIAL"
)

// StoredReport is one persisted autoland report: the parsed record plus
// ingestion provenance.
type StoredReport struct {
	ID     int64                 `json:"id"`
	Record report.AutolandRecord `json:"record"`

	EmailID           *string    `json:"email_id"`
	EmailSubject      *string    `json:"email_subject"`
	EmailSender       *string    `json:"email_sender"`
	EmailReceivedTime *time.Time `json:"email_received_time"`

	PDFFilename    string `json:"pdf_filename"`
	PDFStoragePath string `json:"pdf_storage_path"`

	ProcessedAt         time.Time `json:"processed_at"`
	ExtractionStatus    string    `json:"extraction_status"`
	ExtractionMethod    string    `json:"extraction_method"`
	ExtractionCost      float64   `json:"extraction_cost"`
	ExtractionCostSaved float64   `json:"extraction_cost_saved"`

	CreatedAt time.Time `json:"created_at"`
}

// ReportFilters narrows and orders a report listing.
type ReportFilters struct {
	AircraftReg string
	DateFrom    *time.Time
	DateTo      *time.Time
	Result      string // SUCCESSFUL, UNSUCCESSFUL or ALL
	Search      string // matches report_number, captain, flight_number
	SortBy      string
	SortOrder   string
	Page        int
	PerPage     int
}

// FleetEntry is the stored compliance row for one aircraft.
type FleetEntry struct {
	ID                    int64            `json:"id"`
	AircraftReg           string           `json:"aircraft_reg"`
	LastAutolandDate      time.Time        `json:"last_autoland_date"`
	LastAutolandReportID  int64            `json:"last_autoland_report_id"`
	NextRequiredDate      time.Time        `json:"next_required_date"`
	DaysRemaining         int              `json:"days_remaining"`
	Status                fleet.Status     `json:"status"`
	UpdatedAt             time.Time        `json:"updated_at"`
}

// FleetFilters narrows and orders a fleet listing.
type FleetFilters struct {
	Status    string // ON_TIME, DUE_SOON, OVERDUE or ALL
	SortBy    string
	SortOrder string
}

// CostTotals aggregates stored extraction cost accounting.
type CostTotals struct {
	TotalReports int     `json:"total_reports"`
	ActualCost   float64 `json:"actual_cost"`
	CostSaved    float64 `json:"cost_saved"`
}
