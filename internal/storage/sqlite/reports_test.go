package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ntdat247/Autoland-Monitoring/internal/logger"
	"github.com/ntdat247/Autoland-Monitoring/internal/report"
)

func newTestReportStore(t *testing.T) *ReportStore {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := NewReportStore(db, logger.NewNop())
	require.NoError(t, err)
	return store
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func sampleReport(reportNumber, aircraftReg string, date time.Time, result report.Result) *StoredReport {
	datetime := time.Date(date.Year(), date.Month(), date.Day(), 8, 45, 0, 0, time.UTC)
	return &StoredReport{
		Record: report.AutolandRecord{
			ReportNumber:  reportNumber,
			AircraftReg:   aircraftReg,
			FlightNumber:  "VJ123",
			DateUTC:       date,
			TimeUTC:       "08:45",
			DatetimeUTC:   &datetime,
			Result:        result,
			Airport:       strPtr("HAN"),
			Runway:        strPtr("11L"),
			Captain:       strPtr("NGUYEN VAN A"),
			QNH:           intPtr(1013),
			VisibilityRVR: strPtr("CAVOK"),
		},
		PDFFilename:         "autoland.pdf",
		PDFStoragePath:      "reports/2024/01/17/autoland.pdf",
		ProcessedAt:         time.Date(2024, 1, 17, 9, 0, 0, 0, time.UTC),
		ExtractionStatus:    ExtractionStatusSuccess,
		ExtractionMethod:    "pdftext",
		ExtractionCost:      0,
		ExtractionCostSaved: 0.015,
	}
}

func TestReportInsertAndGet(t *testing.T) {
	store := newTestReportStore(t)

	date := time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC)
	in := sampleReport("VJC-2024-0117", "VN-A6789", date, report.ResultSuccessful)

	id, err := store.Insert(in)
	require.NoError(t, err)
	require.NotZero(t, id)

	got, err := store.GetByID(id)
	require.NoError(t, err)

	assert.Equal(t, "VJC-2024-0117", got.Record.ReportNumber)
	assert.Equal(t, "VN-A6789", got.Record.AircraftReg)
	assert.Equal(t, "VJ123", got.Record.FlightNumber)
	assert.Equal(t, date, got.Record.DateUTC)
	assert.Equal(t, "08:45", got.Record.TimeUTC)
	assert.Equal(t, report.ResultSuccessful, got.Record.Result)

	require.NotNil(t, got.Record.DatetimeUTC)
	assert.True(t, got.Record.DatetimeUTC.Equal(*in.Record.DatetimeUTC))

	require.NotNil(t, got.Record.Airport)
	assert.Equal(t, "HAN", *got.Record.Airport)
	require.NotNil(t, got.Record.QNH)
	assert.Equal(t, 1013, *got.Record.QNH)
	require.NotNil(t, got.Record.VisibilityRVR)
	assert.Equal(t, "CAVOK", *got.Record.VisibilityRVR)

	// Optional fields never set stay nil.
	assert.Nil(t, got.Record.FirstOfficer)
	assert.Nil(t, got.Record.Temperature)
	assert.Nil(t, got.EmailID)

	assert.Equal(t, ExtractionStatusSuccess, got.ExtractionStatus)
	assert.Equal(t, "pdftext", got.ExtractionMethod)
	assert.InDelta(t, 0.015, got.ExtractionCostSaved, 1e-9)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestReportInsertDuplicate(t *testing.T) {
	store := newTestReportStore(t)

	date := time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC)
	first := sampleReport("VJC-2024-0117", "VN-A6789", date, report.ResultSuccessful)

	firstID, err := store.Insert(first)
	require.NoError(t, err)

	second := sampleReport("VJC-2024-0117", "VN-A1234", date, report.ResultSuccessful)
	secondID, err := store.Insert(second)
	assert.ErrorIs(t, err, ErrDuplicateReport)
	assert.Equal(t, firstID, secondID)
}

func TestReportGetByIDNotFound(t *testing.T) {
	store := newTestReportStore(t)

	_, err := store.GetByID(42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReportGetByReportNumber(t *testing.T) {
	store := newTestReportStore(t)

	date := time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC)
	_, err := store.Insert(sampleReport("VJC-2024-0117", "VN-A6789", date, report.ResultSuccessful))
	require.NoError(t, err)

	got, err := store.GetByReportNumber("VJC-2024-0117")
	require.NoError(t, err)
	assert.Equal(t, "VN-A6789", got.Record.AircraftReg)

	_, err = store.GetByReportNumber("MISSING")
	assert.ErrorIs(t, err, ErrNotFound)
}

func seedReports(t *testing.T, store *ReportStore) {
	t.Helper()

	seeds := []struct {
		number string
		reg    string
		date   time.Time
		result report.Result
	}{
		{"VJC-2024-0115", "VN-A6789", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), report.ResultSuccessful},
		{"VJC-2024-0116", "VN-A1234", time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC), report.ResultUnsuccessful},
		{"VJC-2024-0117", "VN-A6789", time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC), report.ResultSuccessful},
	}
	for _, s := range seeds {
		_, err := store.Insert(sampleReport(s.number, s.reg, s.date, s.result))
		require.NoError(t, err)
	}
}

func TestReportListFilters(t *testing.T) {
	store := newTestReportStore(t)
	seedReports(t, store)

	t.Run("no filters, newest first", func(t *testing.T) {
		reports, total, err := store.List(ReportFilters{})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		require.Len(t, reports, 3)
		assert.Equal(t, "VJC-2024-0117", reports[0].Record.ReportNumber)
	})

	t.Run("by aircraft", func(t *testing.T) {
		reports, total, err := store.List(ReportFilters{AircraftReg: "VN-A6789"})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		assert.Len(t, reports, 2)
	})

	t.Run("by result", func(t *testing.T) {
		reports, total, err := store.List(ReportFilters{Result: "UNSUCCESSFUL"})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, reports, 1)
		assert.Equal(t, "VN-A1234", reports[0].Record.AircraftReg)
	})

	t.Run("by date range", func(t *testing.T) {
		from := time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)
		to := time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)
		_, total, err := store.List(ReportFilters{DateFrom: &from, DateTo: &to})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
	})

	t.Run("by search", func(t *testing.T) {
		_, total, err := store.List(ReportFilters{Search: "0116"})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
	})

	t.Run("pagination", func(t *testing.T) {
		reports, total, err := store.List(ReportFilters{Page: 2, PerPage: 2})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		assert.Len(t, reports, 1)
	})

	t.Run("ascending sort", func(t *testing.T) {
		reports, _, err := store.List(ReportFilters{SortBy: "date_utc", SortOrder: "asc"})
		require.NoError(t, err)
		require.Len(t, reports, 3)
		assert.Equal(t, "VJC-2024-0115", reports[0].Record.ReportNumber)
	})

	t.Run("unknown sort column falls back to date", func(t *testing.T) {
		reports, _, err := store.List(ReportFilters{SortBy: "extraction_cost; DROP TABLE autoland_reports"})
		require.NoError(t, err)
		assert.Len(t, reports, 3)
	})
}

func TestReportRecent(t *testing.T) {
	store := newTestReportStore(t)
	seedReports(t, store)

	reports, err := store.Recent(2)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "VJC-2024-0117", reports[0].Record.ReportNumber)
	assert.Equal(t, "VJC-2024-0116", reports[1].Record.ReportNumber)
}

func TestReportSuccessRate(t *testing.T) {
	store := newTestReportStore(t)

	rate, err := store.SuccessRate()
	require.NoError(t, err)
	assert.Equal(t, 0.0, rate)

	seedReports(t, store)

	rate, err = store.SuccessRate()
	require.NoError(t, err)
	assert.InDelta(t, 66.67, rate, 0.01)
}

func TestReportCosts(t *testing.T) {
	store := newTestReportStore(t)
	seedReports(t, store)

	totals, err := store.Costs()
	require.NoError(t, err)
	assert.Equal(t, 3, totals.TotalReports)
	assert.Equal(t, 0.0, totals.ActualCost)
	assert.InDelta(t, 0.045, totals.CostSaved, 1e-9)
}

func TestReportHasEmail(t *testing.T) {
	store := newTestReportStore(t)

	date := time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC)
	in := sampleReport("VJC-2024-0117", "VN-A6789", date, report.ResultSuccessful)
	in.EmailID = strPtr("msg-abc123")

	_, err := store.Insert(in)
	require.NoError(t, err)

	seen, err := store.HasEmail("msg-abc123")
	require.NoError(t, err)
	assert.True(t, seen)

	seen, err = store.HasEmail("msg-unknown")
	require.NoError(t, err)
	assert.False(t, seen)
}
