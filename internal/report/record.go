package report

import (
	"regexp"
	"time"
)

// Result is the outcome of one autoland attempt.
type Result string

const (
	ResultSuccessful   Result = "SUCCESSFUL"
	ResultUnsuccessful Result = "UNSUCCESSFUL"
)

// AutolandRecord is the structured form of one Autoland Report. Required
// fields are plain values; everything else is best-effort and nullable.
// VisibilityRVR stays a string because its value is not always numeric
// (the token "CAVOK" is a legal value).
type AutolandRecord struct {
	ReportNumber string `json:"report_number"`
	AircraftReg  string `json:"aircraft_reg"`
	FlightNumber string `json:"flight_number"`

	Airport      *string `json:"airport"`
	Runway       *string `json:"runway"`
	Captain      *string `json:"captain"`
	FirstOfficer *string `json:"first_officer"`

	DateUTC     time.Time  `json:"date_utc"`
	TimeUTC     string     `json:"time_utc"`
	DatetimeUTC *time.Time `json:"datetime_utc"`

	WindVelocity    *string `json:"wind_velocity"`
	TDPoint         *string `json:"td_point"`
	Tracking        *string `json:"tracking"`
	QNH             *int    `json:"qnh"`
	Alignment       *string `json:"alignment"`
	SpeedControl    *string `json:"speed_control"`
	Temperature     *int    `json:"temperature"`
	Landing         *string `json:"landing"`
	AircraftDropout *string `json:"aircraft_dropout"`
	VisibilityRVR   *string `json:"visibility_rvr"`
	Other           *string `json:"other"`

	Result           Result  `json:"result"`
	Reasons          *string `json:"reasons"`
	CaptainSignature *string `json:"captain_signature"`
}

// Nominal identifier formats. Source documents occasionally deviate, so a
// mismatch is a warning and the value is retained.
var (
	aircraftRegFormat  = regexp.MustCompile(`^VN-A\d{4}$`)
	flightNumberFormat = regexp.MustCompile(`^VJ\d{3}$`)
	windVelocityFormat = regexp.MustCompile(`^\d{3}/\d{1,2}$`)
)

// ParseResult is the envelope returned by Parse. Errors are one entry per
// failed required field or parsing stage; warnings are non-fatal anomalies.
type ParseResult struct {
	Success  bool            `json:"success"`
	Data     *AutolandRecord `json:"data"`
	Errors   []string        `json:"errors"`
	Warnings []string        `json:"warnings"`
}
