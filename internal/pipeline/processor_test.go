package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessCorruptPDF(t *testing.T) {
	processor := NewProcessor(0)

	outcome := processor.Process([]byte("definitely not a PDF"))

	assert.False(t, outcome.Success)
	assert.Nil(t, outcome.Data)
	assert.Equal(t, MethodPDFText, outcome.Method)
	assert.False(t, outcome.Attempt.ExtractionSuccess)
	assert.False(t, outcome.Attempt.ParsingSuccess)

	require.Len(t, outcome.Errors, 1)
	assert.Equal(t, "extraction: corrupt", outcome.Errors[0])
}

func TestProcessOversizedPDF(t *testing.T) {
	processor := NewProcessor(16)

	outcome := processor.Process(make([]byte, 17))

	assert.False(t, outcome.Success)
	require.Len(t, outcome.Errors, 1)
	assert.Equal(t, "extraction: too-large", outcome.Errors[0])
}

// Every outcome carries the free-path cost accounting, success or not.
func TestProcessMetricsAlwaysZeroCost(t *testing.T) {
	processor := NewProcessor(0)

	outcome := processor.Process([]byte("garbage"))

	assert.True(t, outcome.Metrics.FreeAttempt)
	assert.Equal(t, 0.0, outcome.Metrics.ActualCost)
	assert.Equal(t, DocumentAICostPerPDF, outcome.Metrics.CostSaved)
}

// The parser must not run on non-viable extractions; failure is reported
// as an extraction error, not as missing fields.
func TestProcessShortCircuitsOnNonViableText(t *testing.T) {
	processor := NewProcessor(0)

	outcome := processor.Process([]byte{})

	assert.False(t, outcome.Attempt.ParsingSuccess)
	for _, e := range outcome.Errors {
		assert.True(t, strings.HasPrefix(e, "extraction:"), "unexpected error %q", e)
	}
}

func TestCostSavings(t *testing.T) {
	outcomes := []Outcome{
		{Success: true},
		{Success: true},
		{Success: true},
		{Success: false},
	}

	m := CostSavings(outcomes)

	assert.Equal(t, 4, m.TotalPDFsProcessed)
	assert.Equal(t, 3, m.FreeSuccessCount)
	assert.Equal(t, 1, m.FreeFailCount)
	assert.Equal(t, 75.0, m.FreeSuccessRate)
	assert.InDelta(t, 0.06, m.CostWithoutFree, 1e-9)
	assert.Equal(t, 0.0, m.ActualCost)
	assert.InDelta(t, 0.06, m.Savings, 1e-9)
	assert.Equal(t, 100.0, m.SavingsPercentage)
}

func TestCostSavingsEmptyBatch(t *testing.T) {
	m := CostSavings(nil)

	assert.Equal(t, 0, m.TotalPDFsProcessed)
	assert.Equal(t, 0.0, m.FreeSuccessRate)
	assert.Equal(t, 0.0, m.CostWithoutFree)
}
