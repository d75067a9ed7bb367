package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ownLineReport lays every value on the line after its label, the shape
// produced by positional text extraction from the source PDFs.
const ownLineReport = `AUTOLAND REPORT

REPORT NO
VJC-2024-0117
A/C REG
VN-A6789
FLT NO
VJ123
AIRPORT
HAN
RWY
11L
CAPT
NGUYEN VAN A
F/O
TRAN B
DATE
17/01/2024
TIME
08:45
W/V
120/8
TD POINT
NORMAL
TRACKING
GOOD
QNH
1013
ALIGNMENT
GOOD
SPEED CONTROL
NORMAL
A/C DROPOUT
NONE
VIS/RVR
CAVOK
TEMP
25
LANDING
SMOOTH

OTHER
NIL
RESULT
SUCCESSFUL
`

// inlineReport carries the same data with label and value on one line.
const inlineReport = `AUTOLAND REPORT

REPORT NO: VJC-2024-0117
A/C REG: VN-A6789
FLT NO: VJ123
AIRPORT: HAN
RWY: 11L
CAPT: NGUYEN VAN A
F/O: TRAN B
DATE: 17/01/2024
TIME: 08:45
W/V: 120/8
TD POINT: NORMAL
TRACKING: GOOD
QNH: 1013
ALIGNMENT: GOOD
SPEED CONTROL: NORMAL
A/C DROPOUT: NONE
VIS/RVR: CAVOK
TEMP: 25
LANDING: SMOOTH
OTHER: NIL
RESULT: SUCCESSFUL
`

func TestParseOwnLineLayout(t *testing.T) {
	result := Parse(ownLineReport)

	require.True(t, result.Success, "errors: %v", result.Errors)
	require.NotNil(t, result.Data)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)

	rec := result.Data
	assert.Equal(t, "VJC-2024-0117", rec.ReportNumber)
	assert.Equal(t, "VN-A6789", rec.AircraftReg)
	assert.Equal(t, "VJ123", rec.FlightNumber)
	assert.Equal(t, time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC), rec.DateUTC)
	assert.Equal(t, "08:45", rec.TimeUTC)
	assert.Equal(t, ResultSuccessful, rec.Result)

	require.NotNil(t, rec.DatetimeUTC)
	assert.Equal(t, time.Date(2024, 1, 17, 8, 45, 0, 0, time.UTC), *rec.DatetimeUTC)

	require.NotNil(t, rec.Airport)
	assert.Equal(t, "HAN", *rec.Airport)
	require.NotNil(t, rec.Runway)
	assert.Equal(t, "11L", *rec.Runway)
	require.NotNil(t, rec.Captain)
	assert.Equal(t, "NGUYEN VAN A", *rec.Captain)
	require.NotNil(t, rec.FirstOfficer)
	assert.Equal(t, "TRAN B", *rec.FirstOfficer)
	require.NotNil(t, rec.WindVelocity)
	assert.Equal(t, "120/8", *rec.WindVelocity)
	require.NotNil(t, rec.QNH)
	assert.Equal(t, 1013, *rec.QNH)
	require.NotNil(t, rec.Temperature)
	assert.Equal(t, 25, *rec.Temperature)
	require.NotNil(t, rec.VisibilityRVR)
	assert.Equal(t, "CAVOK", *rec.VisibilityRVR)
	assert.Nil(t, rec.Reasons)
}

// The two layout variants must recover identical values; only the
// confidence warnings may differ.
func TestParseLayoutEquivalence(t *testing.T) {
	ownLine := Parse(ownLineReport)
	inline := Parse(inlineReport)

	require.True(t, ownLine.Success)
	require.True(t, inline.Success)
	assert.Equal(t, ownLine.Data, inline.Data)
}

func TestParseInlineFallbackWarnings(t *testing.T) {
	result := Parse(inlineReport)

	require.True(t, result.Success)
	assert.NotEmpty(t, result.Warnings)
	for _, w := range result.Warnings {
		assert.Contains(t, w, "fallback pattern")
	}
}

func TestParseMultiSpaceSeparator(t *testing.T) {
	text := strings.ReplaceAll(inlineReport, ": ", "   ")
	result := Parse(text)

	require.True(t, result.Success, "errors: %v", result.Errors)
	assert.Equal(t, Parse(inlineReport).Data, result.Data)
}

// A wrapped multi-line value is captured whole, up to the next known
// label, not truncated at the embedded line break.
func TestParseWrappedAlignment(t *testing.T) {
	text := strings.Replace(ownLineReport,
		"ALIGNMENT\nGOOD\n",
		"ALIGNMENT\nSLIGHT LEFT\nDRIFT CORRECTED\n", 1)

	result := Parse(text)
	require.True(t, result.Success, "errors: %v", result.Errors)
	require.NotNil(t, result.Data.Alignment)
	assert.Equal(t, "SLIGHT LEFT DRIFT CORRECTED", *result.Data.Alignment)
}

// Repeated labels resolve to the first occurrence in document order.
func TestParseFirstOccurrenceWins(t *testing.T) {
	text := inlineReport + "\nAIRPORT: SGN\n"

	result := Parse(text)
	require.True(t, result.Success)
	require.NotNil(t, result.Data.Airport)
	assert.Equal(t, "HAN", *result.Data.Airport)
}

func TestParseVisibilityStaysString(t *testing.T) {
	result := Parse(inlineReport)
	require.True(t, result.Success)
	require.NotNil(t, result.Data.VisibilityRVR)
	assert.Equal(t, "CAVOK", *result.Data.VisibilityRVR)
}

func TestParseISODate(t *testing.T) {
	text := strings.Replace(inlineReport, "DATE: 17/01/2024", "DATE: 2024-01-17", 1)

	result := Parse(text)
	require.True(t, result.Success, "errors: %v", result.Errors)
	assert.Equal(t, time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC), result.Data.DateUTC)
}

func TestParseInvalidDate(t *testing.T) {
	text := strings.Replace(inlineReport, "DATE: 17/01/2024", "DATE: 32/13/2024", 1)

	result := Parse(text)
	assert.False(t, result.Success)
	assert.Contains(t, strings.Join(result.Errors, "\n"), "date_utc")
	assert.Contains(t, strings.Join(result.Errors, "\n"), "datetime_utc")

	// Everything else was still recovered.
	require.NotNil(t, result.Data)
	require.NotNil(t, result.Data.Captain)
	assert.Equal(t, "NGUYEN VAN A", *result.Data.Captain)
	assert.Nil(t, result.Data.DatetimeUTC)
}

func TestParseNonNumericQNH(t *testing.T) {
	text := strings.Replace(inlineReport, "QNH: 1013", "QNH: STANDARD", 1)

	result := Parse(text)
	require.True(t, result.Success, "errors: %v", result.Errors)
	assert.Nil(t, result.Data.QNH)
	assert.Contains(t, strings.Join(result.Warnings, "\n"), "qnh")
}

func TestParseFormatMismatchRetainsValue(t *testing.T) {
	text := strings.Replace(inlineReport, "A/C REG: VN-A6789", "A/C REG: XU-123", 1)

	result := Parse(text)
	require.True(t, result.Success, "errors: %v", result.Errors)
	assert.Equal(t, "XU-123", result.Data.AircraftReg)
	assert.Contains(t, strings.Join(result.Warnings, "\n"), "aircraft_reg")
}

func TestParseResultMarkers(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantResult Result
		wantError  bool
	}{
		{
			name:       "successful",
			text:       inlineReport,
			wantResult: ResultSuccessful,
		},
		{
			name: "unsuccessful does not trip successful marker",
			text: strings.Replace(inlineReport,
				"RESULT: SUCCESSFUL", "RESULT: UNSUCCESSFUL\nREASONS: AUTOPILOT DISCONNECT AT 50FT", 1),
			wantResult: ResultUnsuccessful,
		},
		{
			name:      "both markers is ambiguous",
			text:      inlineReport + "\nPREVIOUS ATTEMPT WAS UNSUCCESSFUL\n",
			wantError: true,
		},
		{
			name:      "neither marker",
			text:      strings.Replace(inlineReport, "RESULT: SUCCESSFUL", "RESULT: PENDING", 1),
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Parse(tt.text)
			if tt.wantError {
				assert.False(t, result.Success)
				assert.Contains(t, strings.Join(result.Errors, "\n"), "result")
				return
			}
			require.True(t, result.Success, "errors: %v", result.Errors)
			assert.Equal(t, tt.wantResult, result.Data.Result)
		})
	}
}

func TestParseUnsuccessfulWithoutReasons(t *testing.T) {
	text := strings.Replace(inlineReport, "RESULT: SUCCESSFUL", "RESULT: UNSUCCESSFUL", 1)

	result := Parse(text)
	require.True(t, result.Success, "errors: %v", result.Errors)
	assert.Equal(t, ResultUnsuccessful, result.Data.Result)
	assert.Contains(t, strings.Join(result.Warnings, "\n"), "reasons")
}

func TestParseUnsuccessfulWithReasons(t *testing.T) {
	text := strings.Replace(inlineReport,
		"RESULT: SUCCESSFUL",
		"RESULT: UNSUCCESSFUL\nREASONS: AUTOPILOT DISCONNECT AT 50FT", 1)

	result := Parse(text)
	require.True(t, result.Success, "errors: %v", result.Errors)
	require.NotNil(t, result.Data.Reasons)
	assert.Equal(t, "AUTOPILOT DISCONNECT AT 50FT", *result.Data.Reasons)
	assert.NotContains(t, strings.Join(result.Warnings, "\n"), "reasons:")
}

func TestParseMissingRequiredFields(t *testing.T) {
	result := Parse("no recognizable labels in this text at all")

	assert.False(t, result.Success)
	require.NotNil(t, result.Data)

	joined := strings.Join(result.Errors, "\n")
	for _, field := range []string{
		"report_number", "aircraft_reg", "flight_number",
		"date_utc", "time_utc", "result", "datetime_utc",
	} {
		assert.Contains(t, joined, field)
	}
}

func TestParseArbitraryTextDoesNotPanic(t *testing.T) {
	inputs := []string{
		"",
		"\n\n\n",
		strings.Repeat("REPORT NO ", 1000),
		"REPORT NO:\nA/C REG:\nFLT NO:",
		string([]byte{0x00, 0xff, 0xfe, 'R', 'E', 'P'}),
	}
	for _, input := range inputs {
		result := Parse(input)
		assert.False(t, result.Success)
	}
}

func TestParseIsIdempotent(t *testing.T) {
	first := Parse(inlineReport)
	second := Parse(inlineReport)

	assert.Equal(t, first, second)
}
