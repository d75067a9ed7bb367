package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ntdat247/Autoland-Monitoring/internal/config"
	"github.com/ntdat247/Autoland-Monitoring/internal/pdf"
	"github.com/ntdat247/Autoland-Monitoring/internal/pipeline"
)

var (
	outputFormat = flag.String("format", "text", "Output format: text, json")
	showText     = flag.Bool("text", false, "Also print the raw extracted text")
	help         = flag.Bool("help", false, "Show help message")
)

func main() {
	flag.Parse()

	if *help {
		printHelp()
		return
	}

	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "Error: PDF file path required\n\n")
		printUsage()
		os.Exit(1)
	}

	pdfPath := flag.Arg(0)
	if _, err := os.Stat(pdfPath); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error: File not found: %s\n", pdfPath)
		os.Exit(1)
	}

	result, err := extractReport(pdfPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error extracting report: %v\n", err)
		os.Exit(1)
	}

	if err := outputResults(result); err != nil {
		fmt.Fprintf(os.Stderr, "Error outputting results: %v\n", err)
		os.Exit(1)
	}

	if !result.Outcome.Success {
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("Autoland Extract - Parse an Autoland Report PDF into structured data")
	fmt.Println()
	fmt.Println("Runs the same free text-stream extraction pipeline the server uses")
	fmt.Println("against a single PDF and prints the parsed record.")
	fmt.Println()
	printUsage()
	fmt.Println()
	fmt.Println("OPTIONS:")
	fmt.Println("  -format        Output format: text (default), json")
	fmt.Println("  -text          Also print the raw extracted text")
	fmt.Println("  -help          Show this help message")
}

func printUsage() {
	fmt.Println("USAGE:")
	fmt.Println("  autoland-extract [OPTIONS] <pdf_file>")
}

// ExtractResult is the CLI output envelope.
type ExtractResult struct {
	FilePath string           `json:"file_path"`
	Outcome  pipeline.Outcome `json:"outcome"`
	RawText  string           `json:"raw_text,omitempty"`
}

func extractReport(pdfPath string) (*ExtractResult, error) {
	absPath, err := filepath.Abs(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}

	result := &ExtractResult{FilePath: absPath}

	processor := pipeline.NewProcessor(config.DefaultMaxFileSize)
	result.Outcome = processor.Process(data)

	if *showText {
		extracted := pdf.NewExtractor(config.DefaultMaxFileSize).Extract(data)
		result.RawText = extracted.Text
	}

	return result, nil
}

func outputResults(result *ExtractResult) error {
	switch *outputFormat {
	case "json":
		return outputJSON(result)
	case "text":
		return outputText(result)
	default:
		return fmt.Errorf("unsupported output format: %s", *outputFormat)
	}
}

func outputJSON(result *ExtractResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func outputText(result *ExtractResult) error {
	outcome := result.Outcome

	if !outcome.Success {
		fmt.Println("Extraction failed:")
		for _, e := range outcome.Errors {
			fmt.Printf("  - %s\n", e)
		}
		printWarnings(outcome.Warnings)
		return nil
	}

	rec := outcome.Data
	fmt.Printf("Report:     %s\n", rec.ReportNumber)
	fmt.Printf("Aircraft:   %s\n", rec.AircraftReg)
	fmt.Printf("Flight:     %s\n", rec.FlightNumber)
	fmt.Printf("Date (UTC): %s %s\n", rec.DateUTC.Format("2006-01-02"), rec.TimeUTC)
	fmt.Printf("Result:     %s\n", rec.Result)

	optionalFields := []struct {
		label string
		value *string
	}{
		{"Airport", rec.Airport},
		{"Runway", rec.Runway},
		{"Captain", rec.Captain},
		{"F/O", rec.FirstOfficer},
		{"W/V", rec.WindVelocity},
		{"TD Point", rec.TDPoint},
		{"Tracking", rec.Tracking},
		{"Alignment", rec.Alignment},
		{"Speed Ctl", rec.SpeedControl},
		{"Landing", rec.Landing},
		{"Dropout", rec.AircraftDropout},
		{"Vis/RVR", rec.VisibilityRVR},
		{"Other", rec.Other},
		{"Reasons", rec.Reasons},
	}
	for _, f := range optionalFields {
		if f.value != nil {
			fmt.Printf("%-11s %s\n", f.label+":", *f.value)
		}
	}
	if rec.QNH != nil {
		fmt.Printf("QNH:        %d\n", *rec.QNH)
	}
	if rec.Temperature != nil {
		fmt.Printf("Temp:       %d\n", *rec.Temperature)
	}

	printWarnings(outcome.Warnings)

	if result.RawText != "" {
		fmt.Println()
		fmt.Println("--- Extracted text ---")
		fmt.Println(result.RawText)
	}

	return nil
}

func printWarnings(warnings []string) {
	if len(warnings) == 0 {
		return
	}
	fmt.Println("Warnings:")
	for _, w := range warnings {
		fmt.Printf("  - %s\n", w)
	}
}
