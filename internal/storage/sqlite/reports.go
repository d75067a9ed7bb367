package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ntdat247/Autoland-Monitoring/internal/logger"
	"github.com/ntdat247/Autoland-Monitoring/internal/report"
)

const (
	dateLayout = "2006-01-02"

	reportColumns = `id, report_number, aircraft_reg, flight_number,
		airport, runway, captain, first_officer,
		date_utc, time_utc, datetime_utc,
		wind_velocity, td_point, tracking, qnh, alignment, speed_control,
		temperature, landing, aircraft_dropout, visibility_rvr, other,
		result, reasons, captain_signature,
		email_id, email_subject, email_sender, email_received_time,
		pdf_filename, pdf_storage_path,
		processed_at, extraction_status, extraction_method,
		extraction_cost, extraction_cost_saved, created_at`
)

// Columns a report listing may be sorted by.
var reportSortColumns = map[string]bool{
	"date_utc":     true,
	"aircraft_reg": true,
	"result":       true,
	"captain":      true,
}

// ReportStore handles storage of parsed autoland reports
type ReportStore struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewReportStore creates a new SQLite report store
func NewReportStore(db *sql.DB, log *logger.Logger) (*ReportStore, error) {
	store := &ReportStore{
		db:     db,
		logger: log.Named("sqlite-reports"),
	}

	if err := store.initDB(); err != nil {
		return nil, fmt.Errorf("failed to initialize report storage: %w", err)
	}

	return store, nil
}

// initDB initializes the database tables
func (s *ReportStore) initDB() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS autoland_reports (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			report_number TEXT NOT NULL UNIQUE,
			aircraft_reg TEXT NOT NULL,
			flight_number TEXT NOT NULL,
			airport TEXT,
			runway TEXT,
			captain TEXT,
			first_officer TEXT,
			date_utc TEXT NOT NULL,
			time_utc TEXT NOT NULL,
			datetime_utc TIMESTAMP,
			wind_velocity TEXT,
			td_point TEXT,
			tracking TEXT,
			qnh INTEGER,
			alignment TEXT,
			speed_control TEXT,
			temperature INTEGER,
			landing TEXT,
			aircraft_dropout TEXT,
			visibility_rvr TEXT,
			other TEXT,
			result TEXT NOT NULL,
			reasons TEXT,
			captain_signature TEXT,
			email_id TEXT,
			email_subject TEXT,
			email_sender TEXT,
			email_received_time TIMESTAMP,
			pdf_filename TEXT NOT NULL,
			pdf_storage_path TEXT NOT NULL,
			processed_at TIMESTAMP NOT NULL,
			extraction_status TEXT NOT NULL,
			extraction_method TEXT NOT NULL,
			extraction_cost REAL NOT NULL,
			extraction_cost_saved REAL NOT NULL,
			created_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create autoland_reports table: %w", err)
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_reports_aircraft_reg ON autoland_reports(aircraft_reg)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_date_utc ON autoland_reports(date_utc)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_result ON autoland_reports(result)`,
	}
	for _, indexSQL := range indexes {
		if _, err := s.db.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create report index: %w", err)
		}
	}

	return nil
}

// Insert stores a parsed report. Reports are deduplicated by report
// number; inserting one that already exists returns ErrDuplicateReport.
func (s *ReportStore) Insert(r *StoredReport) (int64, error) {
	var existing int64
	err := s.db.QueryRow(
		`SELECT id FROM autoland_reports WHERE report_number = ?`,
		r.Record.ReportNumber,
	).Scan(&existing)
	if err == nil {
		return existing, ErrDuplicateReport
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to check for duplicate report: %w", err)
	}

	rec := r.Record
	result, err := s.db.Exec(
		`INSERT INTO autoland_reports (
			report_number, aircraft_reg, flight_number,
			airport, runway, captain, first_officer,
			date_utc, time_utc, datetime_utc,
			wind_velocity, td_point, tracking, qnh, alignment, speed_control,
			temperature, landing, aircraft_dropout, visibility_rvr, other,
			result, reasons, captain_signature,
			email_id, email_subject, email_sender, email_received_time,
			pdf_filename, pdf_storage_path,
			processed_at, extraction_status, extraction_method,
			extraction_cost, extraction_cost_saved, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ReportNumber,
		rec.AircraftReg,
		rec.FlightNumber,
		rec.Airport,
		rec.Runway,
		rec.Captain,
		rec.FirstOfficer,
		rec.DateUTC.Format(dateLayout),
		rec.TimeUTC,
		formatTimePtr(rec.DatetimeUTC),
		rec.WindVelocity,
		rec.TDPoint,
		rec.Tracking,
		rec.QNH,
		rec.Alignment,
		rec.SpeedControl,
		rec.Temperature,
		rec.Landing,
		rec.AircraftDropout,
		rec.VisibilityRVR,
		rec.Other,
		string(rec.Result),
		rec.Reasons,
		rec.CaptainSignature,
		r.EmailID,
		r.EmailSubject,
		r.EmailSender,
		formatTimePtr(r.EmailReceivedTime),
		r.PDFFilename,
		r.PDFStoragePath,
		r.ProcessedAt.Format(time.RFC3339),
		r.ExtractionStatus,
		r.ExtractionMethod,
		r.ExtractionCost,
		r.ExtractionCostSaved,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert report: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	return id, nil
}

// GetByID returns one report by its database ID.
func (s *ReportStore) GetByID(id int64) (*StoredReport, error) {
	rows, err := s.db.Query(
		`SELECT `+reportColumns+` FROM autoland_reports WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query report by id: %w", err)
	}
	defer rows.Close()

	reports, err := s.scanReportRows(rows)
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, ErrNotFound
	}
	return reports[0], nil
}

// GetByReportNumber returns one report by its report number.
func (s *ReportStore) GetByReportNumber(reportNumber string) (*StoredReport, error) {
	rows, err := s.db.Query(
		`SELECT `+reportColumns+` FROM autoland_reports WHERE report_number = ?`, reportNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to query report by number: %w", err)
	}
	defer rows.Close()

	reports, err := s.scanReportRows(rows)
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, ErrNotFound
	}
	return reports[0], nil
}

// List returns reports matching the filters plus the total match count for
// pagination.
func (s *ReportStore) List(f ReportFilters) ([]*StoredReport, int, error) {
	where, args := buildReportWhere(f)

	var total int
	if err := s.db.QueryRow(
		`SELECT COUNT(*) FROM autoland_reports `+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count reports: %w", err)
	}

	sortBy := f.SortBy
	if !reportSortColumns[sortBy] {
		sortBy = "date_utc"
	}
	sortOrder := "DESC"
	if strings.EqualFold(f.SortOrder, "asc") {
		sortOrder = "ASC"
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	perPage := f.PerPage
	if perPage < 1 {
		perPage = 20
	}

	query := fmt.Sprintf(
		`SELECT %s FROM autoland_reports %s ORDER BY %s %s LIMIT ? OFFSET ?`,
		reportColumns, where, sortBy, sortOrder)
	args = append(args, perPage, (page-1)*perPage)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	reports, err := s.scanReportRows(rows)
	if err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

// Recent returns the most recent reports by landing time.
func (s *ReportStore) Recent(limit int) ([]*StoredReport, error) {
	rows, err := s.db.Query(
		`SELECT `+reportColumns+` FROM autoland_reports
		ORDER BY datetime_utc DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent reports: %w", err)
	}
	defer rows.Close()

	return s.scanReportRows(rows)
}

// HasEmail reports whether any stored report came from the given email.
func (s *ReportStore) HasEmail(emailID string) (bool, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM autoland_reports WHERE email_id = ?`, emailID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return n > 0, nil
}

// SuccessRate returns the percentage of stored reports whose result is
// SUCCESSFUL, or 0 when no reports exist.
func (s *ReportStore) SuccessRate() (float64, error) {
	var total, successful int
	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(CASE WHEN result = ? THEN 1 ELSE 0 END), 0)
		FROM autoland_reports`,
		string(report.ResultSuccessful),
	).Scan(&total, &successful)
	if err != nil {
		return 0, fmt.Errorf("failed to compute success rate: %w", err)
	}

	if total == 0 {
		return 0, nil
	}
	return float64(successful) / float64(total) * 100, nil
}

// Costs returns aggregate extraction cost accounting over all reports.
func (s *ReportStore) Costs() (CostTotals, error) {
	var totals CostTotals
	err := s.db.QueryRow(
		`SELECT COUNT(*),
			COALESCE(SUM(extraction_cost), 0),
			COALESCE(SUM(extraction_cost_saved), 0)
		FROM autoland_reports`,
	).Scan(&totals.TotalReports, &totals.ActualCost, &totals.CostSaved)
	if err != nil {
		return CostTotals{}, fmt.Errorf("failed to compute cost totals: %w", err)
	}
	return totals, nil
}

// buildReportWhere assembles the WHERE clause and arguments for List.
func buildReportWhere(f ReportFilters) (string, []any) {
	clauses := []string{"1=1"}
	var args []any

	if f.AircraftReg != "" {
		clauses = append(clauses, "aircraft_reg = ?")
		args = append(args, f.AircraftReg)
	}
	if f.DateFrom != nil {
		clauses = append(clauses, "date_utc >= ?")
		args = append(args, f.DateFrom.Format(dateLayout))
	}
	if f.DateTo != nil {
		clauses = append(clauses, "date_utc <= ?")
		args = append(args, f.DateTo.Format(dateLayout))
	}
	if f.Result != "" && f.Result != "ALL" {
		clauses = append(clauses, "result = ?")
		args = append(args, f.Result)
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		clauses = append(clauses, "(report_number LIKE ? OR captain LIKE ? OR flight_number LIKE ?)")
		args = append(args, pattern, pattern, pattern)
	}

	return "WHERE " + strings.Join(clauses, " AND "), args
}

// scanReportRows scans database rows into StoredReport structs
func (s *ReportStore) scanReportRows(rows *sql.Rows) ([]*StoredReport, error) {
	var reports []*StoredReport
	for rows.Next() {
		var (
			r StoredReport

			airport, runway, captain, firstOfficer          sql.NullString
			datetimeUTC                                     sql.NullString
			windVelocity, tdPoint, tracking                 sql.NullString
			qnh, temperature                                sql.NullInt64
			alignment, speedControl, landing                sql.NullString
			aircraftDropout, visibilityRVR, other, reasons  sql.NullString
			captainSignature                                sql.NullString
			emailID, emailSubject, emailSender, emailRecvd  sql.NullString
			dateUTC, resultValue, processedAt, createdAt    string
		)

		if err := rows.Scan(
			&r.ID,
			&r.Record.ReportNumber,
			&r.Record.AircraftReg,
			&r.Record.FlightNumber,
			&airport,
			&runway,
			&captain,
			&firstOfficer,
			&dateUTC,
			&r.Record.TimeUTC,
			&datetimeUTC,
			&windVelocity,
			&tdPoint,
			&tracking,
			&qnh,
			&alignment,
			&speedControl,
			&temperature,
			&landing,
			&aircraftDropout,
			&visibilityRVR,
			&other,
			&resultValue,
			&reasons,
			&captainSignature,
			&emailID,
			&emailSubject,
			&emailSender,
			&emailRecvd,
			&r.PDFFilename,
			&r.PDFStoragePath,
			&processedAt,
			&r.ExtractionStatus,
			&r.ExtractionMethod,
			&r.ExtractionCost,
			&r.ExtractionCostSaved,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}

		var err error
		r.Record.DateUTC, err = time.ParseInLocation(dateLayout, dateUTC, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("failed to parse date_utc: %w", err)
		}
		r.ProcessedAt, err = time.Parse(time.RFC3339, processedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse processed_at: %w", err)
		}
		r.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}

		r.Record.Result = report.Result(resultValue)
		r.Record.Airport = nullString(airport)
		r.Record.Runway = nullString(runway)
		r.Record.Captain = nullString(captain)
		r.Record.FirstOfficer = nullString(firstOfficer)
		r.Record.WindVelocity = nullString(windVelocity)
		r.Record.TDPoint = nullString(tdPoint)
		r.Record.Tracking = nullString(tracking)
		r.Record.QNH = nullInt(qnh)
		r.Record.Alignment = nullString(alignment)
		r.Record.SpeedControl = nullString(speedControl)
		r.Record.Temperature = nullInt(temperature)
		r.Record.Landing = nullString(landing)
		r.Record.AircraftDropout = nullString(aircraftDropout)
		r.Record.VisibilityRVR = nullString(visibilityRVR)
		r.Record.Other = nullString(other)
		r.Record.Reasons = nullString(reasons)
		r.Record.CaptainSignature = nullString(captainSignature)
		r.EmailID = nullString(emailID)
		r.EmailSubject = nullString(emailSubject)
		r.EmailSender = nullString(emailSender)

		if r.Record.DatetimeUTC, err = parseTimePtr(datetimeUTC); err != nil {
			return nil, fmt.Errorf("failed to parse datetime_utc: %w", err)
		}
		if r.EmailReceivedTime, err = parseTimePtr(emailRecvd); err != nil {
			return nil, fmt.Errorf("failed to parse email_received_time: %w", err)
		}

		reports = append(reports, &r)
	}

	return reports, rows.Err()
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func formatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTimePtr(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
