package report

import (
	"regexp"
	"strings"
)

// fieldPattern holds the ordered cascade of pattern variants for one field,
// most specific first:
//
//  0. label, newline, value on its own line (handles wrapped values)
//  1. label, inline separator, value on the same line
//  2. label, any whitespace, value (loosest fallback)
//
// The first variant that matches wins; the cascade order is a contract and
// must not be reordered. Within a variant the leftmost occurrence in
// document order wins. A required field matched by variant > 0 is reported
// as a lower-confidence match.
type fieldPattern struct {
	name     string
	variants []*regexp.Regexp
}

// newFieldPattern compiles the three-variant cascade for a field. value is
// the capture shape for single-line values; multiline fields capture free
// text across wrapped lines until the next terminator label. terminators
// are the labels of plausible neighbor fields in the source layout.
func newFieldPattern(name, label, value string, multiline bool, terminators ...string) fieldPattern {
	stop := append([]string{`\n`}, terminators...)
	stop = append(stop, `\z`)
	stopGroup := `(?:` + strings.Join(stop, `|`) + `)`

	var ownLine string
	if multiline {
		// Wrapped values run until a line opening with a neighbor label,
		// a blank line, or end of text.
		wrapStop := `(?:\n\s*(?:` + strings.Join(terminators, `|`) + `)|\n{2,}|\z)`
		if len(terminators) == 0 {
			wrapStop = `(?:\n{2,}|\z)`
		}
		ownLine = `(?is)\b` + label + `[:\s]*\n\s*(.+?)\s*` + wrapStop
	} else {
		ownLine = `(?i)\b` + label + `[:\s]*\n\s*(` + value + `)\s*` + stopGroup
	}

	inline := `(?i)\b` + label + `[:\s]+(` + value + `)\s*` + stopGroup
	loose := `(?i)\b` + label + `[:\s]*(` + value + `)\s*` + stopGroup

	return fieldPattern{
		name: name,
		variants: []*regexp.Regexp{
			regexp.MustCompile(ownLine),
			regexp.MustCompile(inline),
			regexp.MustCompile(loose),
		},
	}
}

// extract runs the cascade against the text. It returns the normalized
// captured value, the index of the variant that matched, and whether any
// variant matched at all.
func (f fieldPattern) extract(text string) (string, int, bool) {
	for i, re := range f.variants {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v := normalizeValue(m[1])
		if v == "" {
			continue
		}
		return v, i, true
	}
	return "", 0, false
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// normalizeValue collapses runs of whitespace (including line wraps inside
// a captured value) into single spaces.
func normalizeValue(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// Value shapes shared by several fields.
const (
	lineValue = `[^\n]+?`
	nameValue = `[A-Za-z][A-Za-z .'\-]*`
)

// grammar is the complete field grammar of an Autoland Report. Labels and
// neighbor sets follow the source document layout.
type grammar struct {
	reportNumber     fieldPattern
	aircraftReg      fieldPattern
	flightNumber     fieldPattern
	airport          fieldPattern
	runway           fieldPattern
	captain          fieldPattern
	firstOfficer     fieldPattern
	date             fieldPattern
	timeOfDay        fieldPattern
	windVelocity     fieldPattern
	tdPoint          fieldPattern
	tracking         fieldPattern
	qnh              fieldPattern
	alignment        fieldPattern
	speedControl     fieldPattern
	temperature      fieldPattern
	landing          fieldPattern
	aircraftDropout  fieldPattern
	visibilityRVR    fieldPattern
	other            fieldPattern
	reasons          fieldPattern
	captainSignature fieldPattern
}

var fields = grammar{
	reportNumber: newFieldPattern("report_number",
		`REPORT\s*NO\.?`, `[A-Z0-9][A-Z0-9_\-\/]*`, false,
		`A\/C`, `FLT`),
	aircraftReg: newFieldPattern("aircraft_reg",
		`A\/C\s*REG\.?`, `[A-Z0-9][A-Z0-9\-]*`, false,
		`FLT`, `AIRPORT`),
	flightNumber: newFieldPattern("flight_number",
		`FLT\s*NO\.?`, `[A-Z0-9]+`, false,
		`AIRPORT`, `DATE`),
	airport: newFieldPattern("airport",
		`AIRPORT`, `[A-Z]{3,4}`, false,
		`RWY`, `DATE`),
	runway: newFieldPattern("runway",
		`RWY`, `[0-9]{2}[LRC]?`, false,
		`CAPT`, `DATE`, `TIME`),
	captain: newFieldPattern("captain",
		`CAPT\.?`, nameValue, false,
		`F\/O`, `DATE`),
	firstOfficer: newFieldPattern("first_officer",
		`F\/O`, nameValue, false,
		`DATE`, `TIME`, `W\/V`),
	date: newFieldPattern("date_utc",
		`DATE(?:\s*\(UTC\))?`, `[0-9]{1,2}\/[0-9]{1,2}\/[0-9]{4}|[0-9]{4}-[0-9]{2}-[0-9]{2}`, false,
		`TIME`, `W\/V`),
	timeOfDay: newFieldPattern("time_utc",
		`TIME(?:\s*\(UTC\))?`, `[0-9]{1,2}:[0-9]{2}`, false,
		`W\/V`, `TD`),
	windVelocity: newFieldPattern("wind_velocity",
		`W\/V`, `[0-9]{3}\/[0-9]{1,2}`, false,
		`TD`, `TRACKING`, `QNH`),
	tdPoint: newFieldPattern("td_point",
		`TD\s*POINT`, lineValue, true,
		`TRACKING`, `QNH`),
	tracking: newFieldPattern("tracking",
		`TRACKING`, lineValue, true,
		`QNH`, `OTHER`, `RESULT`),
	qnh: newFieldPattern("qnh",
		`QNH`, lineValue, false,
		`ALIGNMENT`, `TEMP`),
	alignment: newFieldPattern("alignment",
		`ALIGNMENT`, lineValue, true,
		`TEMP`, `SPEED`, `QNH`),
	speedControl: newFieldPattern("speed_control",
		`SPEED\s*CONTROL`, lineValue, true,
		`A\/C`, `VIS`, `TRACKING`),
	temperature: newFieldPattern("temperature",
		`TEMP(?:ERATURE)?\.?`, lineValue, false,
		`LANDING`),
	landing: newFieldPattern("landing",
		`LANDING`, lineValue, true,
		`A\/C`, `VIS`, `TEMP`),
	aircraftDropout: newFieldPattern("aircraft_dropout",
		`A\/C\s*DROPOUT`, lineValue, true,
		`VIS`, `OTHER`),
	visibilityRVR: newFieldPattern("visibility_rvr",
		`VIS\/RVR`, lineValue, false,
		`TRACKING`, `OTHER`, `RESULT`),
	other: newFieldPattern("other",
		`OTHER`, lineValue, true,
		`RESULT`, `REASONS`),
	reasons: newFieldPattern("reasons",
		`REASONS?`, lineValue, true,
		`CAPT`, `SIGNATURE`),
	captainSignature: newFieldPattern("captain_signature",
		`CAPT\.?\s*SIGNATURE`, lineValue, false),
}

// Outcome marker phrases. Word boundaries keep SUCCESSFUL from matching
// inside UNSUCCESSFUL.
var (
	markerSuccessful   = regexp.MustCompile(`(?i)\bSUCCESSFUL\b`)
	markerUnsuccessful = regexp.MustCompile(`(?i)\bUNSUCCESSFUL\b`)
)
