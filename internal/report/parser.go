package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Accepted calendar formats for the DATE field, tried in order.
var dateLayouts = []string{"02/01/2006", "2006-01-02"}

const timeLayout = "15:04"

// Parse scans extracted report text for every known field and assembles an
// AutolandRecord. It never aborts on a single failure: each missing or
// invalid required field adds one error, each soft anomaly adds one
// warning, and every field is attempted regardless of earlier results.
// Success is false only when a required field failed. Parse is a pure
// function of its input and must not panic on arbitrary text.
func Parse(text string) (result ParseResult) {
	defer func() {
		if r := recover(); r != nil {
			result = ParseResult{
				Errors: []string{fmt.Sprintf("parser: internal failure: %v", r)},
			}
		}
	}()

	p := &parser{text: text, record: &AutolandRecord{}}

	p.parseReportNumber()
	p.parseAircraftReg()
	p.parseFlightNumber()
	p.parseOptionalText(fields.airport, &p.record.Airport)
	p.parseOptionalText(fields.runway, &p.record.Runway)
	p.parseOptionalText(fields.captain, &p.record.Captain)
	p.parseOptionalText(fields.firstOfficer, &p.record.FirstOfficer)
	p.parseDate()
	p.parseTime()
	p.parseWindVelocity()
	p.parseOptionalText(fields.tdPoint, &p.record.TDPoint)
	p.parseOptionalText(fields.tracking, &p.record.Tracking)
	p.parseOptionalInt(fields.qnh, &p.record.QNH)
	p.parseOptionalText(fields.alignment, &p.record.Alignment)
	p.parseOptionalText(fields.speedControl, &p.record.SpeedControl)
	p.parseOptionalInt(fields.temperature, &p.record.Temperature)
	p.parseOptionalText(fields.landing, &p.record.Landing)
	p.parseOptionalText(fields.aircraftDropout, &p.record.AircraftDropout)
	p.parseOptionalText(fields.visibilityRVR, &p.record.VisibilityRVR)
	p.parseOptionalText(fields.other, &p.record.Other)
	p.parseResult()
	p.parseOptionalText(fields.reasons, &p.record.Reasons)
	p.parseOptionalText(fields.captainSignature, &p.record.CaptainSignature)

	p.combineDatetime()
	p.checkReasons()

	// Data carries whatever was recovered even when required fields
	// failed; the orchestrator exposes it only on success.
	return ParseResult{
		Success:  len(p.errors) == 0,
		Data:     p.record,
		Errors:   p.errors,
		Warnings: p.warnings,
	}
}

// parser accumulates per-field outcomes for a single Parse call.
type parser struct {
	text   string
	record *AutolandRecord

	errors   []string
	warnings []string

	dateValid bool
	timeValid bool
}

func (p *parser) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *parser) warnf(format string, args ...any) {
	p.warnings = append(p.warnings, fmt.Sprintf(format, args...))
}

// noteFallback records the lower-confidence match warning for a required
// field resolved by a cascade variant other than the most specific one.
func (p *parser) noteFallback(name string, variant int) {
	if variant > 0 {
		p.warnf("%s: matched via fallback pattern %d", name, variant+1)
	}
}

func (p *parser) parseReportNumber() {
	v, variant, ok := fields.reportNumber.extract(p.text)
	if !ok {
		p.errorf("report_number: not found")
		return
	}
	p.noteFallback(fields.reportNumber.name, variant)
	p.record.ReportNumber = v
}

func (p *parser) parseAircraftReg() {
	v, variant, ok := fields.aircraftReg.extract(p.text)
	if !ok {
		p.errorf("aircraft_reg: not found")
		return
	}
	p.noteFallback(fields.aircraftReg.name, variant)
	v = strings.ToUpper(v)
	if !aircraftRegFormat.MatchString(v) {
		p.warnf("aircraft_reg: %q does not match nominal format", v)
	}
	p.record.AircraftReg = v
}

func (p *parser) parseFlightNumber() {
	v, variant, ok := fields.flightNumber.extract(p.text)
	if !ok {
		p.errorf("flight_number: not found")
		return
	}
	p.noteFallback(fields.flightNumber.name, variant)
	v = strings.ToUpper(v)
	if !flightNumberFormat.MatchString(v) {
		p.warnf("flight_number: %q does not match nominal format", v)
	}
	p.record.FlightNumber = v
}

func (p *parser) parseDate() {
	v, variant, ok := fields.date.extract(p.text)
	if !ok {
		p.errorf("date_utc: not found")
		return
	}
	p.noteFallback(fields.date.name, variant)

	for _, layout := range dateLayouts {
		if d, err := time.ParseInLocation(layout, v, time.UTC); err == nil {
			p.record.DateUTC = d
			p.dateValid = true
			return
		}
	}
	p.errorf("date_utc: invalid date %q", v)
}

func (p *parser) parseTime() {
	v, variant, ok := fields.timeOfDay.extract(p.text)
	if !ok {
		p.errorf("time_utc: not found")
		return
	}
	p.noteFallback(fields.timeOfDay.name, variant)

	t, err := time.Parse(timeLayout, v)
	if err != nil {
		p.errorf("time_utc: invalid time %q", v)
		return
	}
	p.record.TimeUTC = t.Format(timeLayout)
	p.timeValid = true
}

func (p *parser) parseWindVelocity() {
	v, _, ok := fields.windVelocity.extract(p.text)
	if !ok {
		return
	}
	if !windVelocityFormat.MatchString(v) {
		p.warnf("wind_velocity: %q does not match DDD/SS format", v)
	}
	p.record.WindVelocity = &v
}

// parseOptionalText captures a best-effort free-text field. Missing is
// recorded as nil, never as an error.
func (p *parser) parseOptionalText(f fieldPattern, dst **string) {
	v, _, ok := f.extract(p.text)
	if !ok {
		return
	}
	*dst = &v
}

// parseOptionalInt captures an optional integer field. A non-numeric
// capture is discarded with a warning rather than stored corrupted.
func (p *parser) parseOptionalInt(f fieldPattern, dst **int) {
	v, _, ok := f.extract(p.text)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.warnf("%s: discarding non-numeric value %q", f.name, v)
		return
	}
	*dst = &n
}

// parseResult derives the outcome from the two mutually exclusive marker
// phrases. Finding neither or both is an error against the result field.
func (p *parser) parseResult() {
	successful := markerSuccessful.MatchString(p.text)
	unsuccessful := markerUnsuccessful.MatchString(p.text)

	switch {
	case successful && unsuccessful:
		p.errorf("result: both outcome markers present, ambiguous")
	case successful:
		p.record.Result = ResultSuccessful
	case unsuccessful:
		p.record.Result = ResultUnsuccessful
	default:
		p.errorf("result: no outcome marker found")
	}
}

// combineDatetime builds the combined timestamp from validated date and
// time. It is never guessed: if either source failed, it stays unset and
// an error is recorded.
func (p *parser) combineDatetime() {
	if !p.dateValid || !p.timeValid {
		p.errorf("datetime_utc: cannot combine, date or time missing")
		return
	}

	t, err := time.Parse(timeLayout, p.record.TimeUTC)
	if err != nil {
		p.errorf("datetime_utc: cannot combine, date or time missing")
		return
	}

	d := p.record.DateUTC
	combined := time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
	p.record.DatetimeUTC = &combined
}

// checkReasons flags an unsuccessful report that carries no explanation.
func (p *parser) checkReasons() {
	if p.record.Result == ResultUnsuccessful && p.record.Reasons == nil {
		p.warnf("reasons: missing for unsuccessful result")
	}
}
