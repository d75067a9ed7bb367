// Package pipeline sequences PDF text extraction and field parsing into a
// single outcome type. The whole pipeline is pure computation over the
// input bytes: no I/O, no retries, no shared mutable state.
package pipeline

import (
	"github.com/ntdat247/Autoland-Monitoring/internal/pdf"
	"github.com/ntdat247/Autoland-Monitoring/internal/report"
)

// MethodPDFText identifies the free, local text-stream extraction method.
// There is no paid fallback: failures are reported, not escalated.
const MethodPDFText = "pdftext"

// DocumentAICostPerPDF is what a managed document-extraction service would
// charge per document (USD). Carried as the saved cost of the free path.
const DocumentAICostPerPDF = 0.015

// Attempt traces which stages of one processing run succeeded.
type Attempt struct {
	ExtractionSuccess bool `json:"extraction_success"`
	ParsingSuccess    bool `json:"parsing_success"`
}

// Metrics is the cost accounting block of one outcome.
type Metrics struct {
	FreeAttempt bool    `json:"free_attempt"`
	CostSaved   float64 `json:"cost_saved"`
	ActualCost  float64 `json:"actual_cost"`
}

// Outcome is the unified result envelope regardless of which stage failed.
type Outcome struct {
	Success  bool                   `json:"success"`
	Data     *report.AutolandRecord `json:"data"`
	Method   string                 `json:"method"`
	Attempt  Attempt                `json:"attempt"`
	Metrics  Metrics                `json:"metrics"`
	Errors   []string               `json:"errors"`
	Warnings []string               `json:"warnings"`
}

// Processor runs the extract-then-parse pipeline. Stateless; one Processor
// may be shared across goroutines.
type Processor struct {
	extractor *pdf.Extractor
}

// NewProcessor creates a processor whose extractor enforces the given
// maximum PDF size.
func NewProcessor(maxFileSize int64) *Processor {
	return &Processor{
		extractor: pdf.NewExtractor(maxFileSize),
	}
}

// Process turns raw PDF bytes into an Outcome. Extraction failures and
// non-viable text short-circuit without invoking the parser; all failure
// modes are data in the Outcome, never a panic.
func (p *Processor) Process(data []byte) Outcome {
	outcome := Outcome{
		Method: MethodPDFText,
		Metrics: Metrics{
			FreeAttempt: true,
			CostSaved:   DocumentAICostPerPDF,
			ActualCost:  0,
		},
	}

	extraction := p.extractor.Extract(data)
	outcome.Attempt.ExtractionSuccess = extraction.Success

	if !pdf.IsViable(extraction) {
		if extraction.Error != "" {
			outcome.Errors = append(outcome.Errors, "extraction: "+extraction.Error)
		} else {
			outcome.Errors = append(outcome.Errors, "extraction: text not viable for parsing")
		}
		return outcome
	}

	parsed := report.Parse(extraction.Text)
	outcome.Attempt.ParsingSuccess = parsed.Success
	outcome.Errors = append(outcome.Errors, parsed.Errors...)
	outcome.Warnings = append(outcome.Warnings, parsed.Warnings...)

	if parsed.Success {
		outcome.Success = true
		outcome.Data = parsed.Data
	}

	return outcome
}
