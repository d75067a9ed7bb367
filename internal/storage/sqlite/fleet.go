package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ntdat247/Autoland-Monitoring/internal/fleet"
	"github.com/ntdat247/Autoland-Monitoring/internal/logger"
)

// Columns a fleet listing may be sorted by.
var fleetSortColumns = map[string]bool{
	"aircraft_reg":       true,
	"last_autoland_date": true,
}

// FleetStore tracks the latest autoland per aircraft. Compliance status
// is derived at read time so stored rows never go stale.
type FleetStore struct {
	db      *sql.DB
	tracker fleet.Tracker
	logger  *logger.Logger
}

// NewFleetStore creates a new SQLite fleet store
func NewFleetStore(db *sql.DB, tracker fleet.Tracker, log *logger.Logger) (*FleetStore, error) {
	store := &FleetStore{
		db:      db,
		tracker: tracker,
		logger:  log.Named("sqlite-fleet"),
	}

	if err := store.initDB(); err != nil {
		return nil, fmt.Errorf("failed to initialize fleet storage: %w", err)
	}

	return store, nil
}

// initDB initializes the database tables
func (s *FleetStore) initDB() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS autoland_fleet (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			aircraft_reg TEXT NOT NULL UNIQUE,
			last_autoland_date TIMESTAMP NOT NULL,
			last_autoland_report_id INTEGER NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			FOREIGN KEY (last_autoland_report_id) REFERENCES autoland_reports(id)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create autoland_fleet table: %w", err)
	}

	return nil
}

// RecordAutoland updates an aircraft's latest autoland. Older landings
// never overwrite a newer one, so reports may arrive out of order.
func (s *FleetStore) RecordAutoland(aircraftReg string, landedAt time.Time, reportID int64) error {
	_, err := s.db.Exec(
		`INSERT INTO autoland_fleet (aircraft_reg, last_autoland_date, last_autoland_report_id, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(aircraft_reg) DO UPDATE SET
			last_autoland_date = excluded.last_autoland_date,
			last_autoland_report_id = excluded.last_autoland_report_id,
			updated_at = excluded.updated_at
		WHERE excluded.last_autoland_date > autoland_fleet.last_autoland_date`,
		aircraftReg,
		landedAt.UTC().Format(time.RFC3339),
		reportID,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to record autoland for %s: %w", aircraftReg, err)
	}

	return nil
}

// Get returns the compliance entry for one aircraft.
func (s *FleetStore) Get(aircraftReg string) (*FleetEntry, error) {
	rows, err := s.db.Query(
		`SELECT id, aircraft_reg, last_autoland_date, last_autoland_report_id, updated_at
		FROM autoland_fleet WHERE aircraft_reg = ?`, aircraftReg)
	if err != nil {
		return nil, fmt.Errorf("failed to query fleet entry: %w", err)
	}
	defer rows.Close()

	entries, err := s.scanFleetRows(rows, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrNotFound
	}
	return entries[0], nil
}

// List returns fleet entries matching the filters, with compliance
// status evaluated against the current time.
func (s *FleetStore) List(f FleetFilters) ([]*FleetEntry, error) {
	sortBy := f.SortBy
	if !fleetSortColumns[sortBy] {
		sortBy = "aircraft_reg"
	}
	sortOrder := "ASC"
	if strings.EqualFold(f.SortOrder, "desc") {
		sortOrder = "DESC"
	}

	rows, err := s.db.Query(fmt.Sprintf(
		`SELECT id, aircraft_reg, last_autoland_date, last_autoland_report_id, updated_at
		FROM autoland_fleet ORDER BY %s %s`, sortBy, sortOrder))
	if err != nil {
		return nil, fmt.Errorf("failed to query fleet: %w", err)
	}
	defer rows.Close()

	entries, err := s.scanFleetRows(rows, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if f.Status == "" || f.Status == "ALL" {
		return entries, nil
	}
	filtered := entries[:0]
	for _, e := range entries {
		if string(e.Status) == f.Status {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

// CountByStatus returns how many aircraft fall into each compliance
// status right now.
func (s *FleetStore) CountByStatus() (map[fleet.Status]int, error) {
	entries, err := s.List(FleetFilters{})
	if err != nil {
		return nil, err
	}

	counts := map[fleet.Status]int{
		fleet.StatusOnTime:  0,
		fleet.StatusDueSoon: 0,
		fleet.StatusOverdue: 0,
	}
	for _, e := range entries {
		counts[e.Status]++
	}
	return counts, nil
}

// scanFleetRows scans database rows into FleetEntry structs
func (s *FleetStore) scanFleetRows(rows *sql.Rows, now time.Time) ([]*FleetEntry, error) {
	var entries []*FleetEntry
	for rows.Next() {
		var (
			e                        FleetEntry
			lastAutoland, updatedAt string
		)
		if err := rows.Scan(&e.ID, &e.AircraftReg, &lastAutoland, &e.LastAutolandReportID, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan fleet entry: %w", err)
		}

		var err error
		e.LastAutolandDate, err = time.Parse(time.RFC3339, lastAutoland)
		if err != nil {
			return nil, fmt.Errorf("failed to parse last_autoland_date: %w", err)
		}
		e.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse updated_at: %w", err)
		}

		assessment := s.tracker.Evaluate(e.LastAutolandDate, now)
		e.NextRequiredDate = assessment.NextRequired
		e.DaysRemaining = assessment.DaysRemaining
		e.Status = assessment.Status

		entries = append(entries, &e)
	}

	return entries, rows.Err()
}
