package pdf

import (
	"bytes"
	"os"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

const (
	// Text fragments whose baselines differ by less than this are one line.
	rowTolerance = 2.0

	// Horizontal gap between fragments that implies a missing space.
	wordGap = 1.0
)

// Extractor converts raw PDF bytes into scannable text. It is pure local
// computation over the input buffer: no network, no filesystem, no shared
// state, so a single Extractor is safe for concurrent use.
type Extractor struct {
	maxFileSize int64
	maxTextSize int
}

// NewExtractor creates a new text extractor with the specified constraints
func NewExtractor(maxFileSize int64) *Extractor {
	return &Extractor{
		maxFileSize: maxFileSize,
		maxTextSize: 10 * 1024 * 1024, // 10MB text limit
	}
}

// Extract pulls the text stream out of the given PDF bytes. Failures are
// reported in the returned ExtractedText, never as a panic or error.
func (e *Extractor) Extract(data []byte) ExtractedText {
	if e.maxFileSize > 0 && int64(len(data)) > e.maxFileSize {
		return ExtractedText{Error: FailureTooLarge}
	}

	// Structural validation first: pdfcpu gives a clean verdict on corrupt
	// or encrypted files before the text walk starts.
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return ExtractedText{Error: FailureCorrupt}
	}
	if ctx.Encrypt != nil {
		return ExtractedText{Error: FailureEncrypted}
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ExtractedText{Error: FailureCorrupt}
	}

	pages := reader.NumPage()
	text, fragments := e.assembleText(reader)

	if fragments == 0 {
		return ExtractedText{Error: FailureNoTextStream, Pages: pages}
	}
	if strings.TrimSpace(text) == "" {
		return ExtractedText{Error: FailureEmptyOutput, Pages: pages}
	}

	return ExtractedText{Success: true, Text: text, Pages: pages}
}

// ExtractFile reads a PDF from disk and extracts its text. Convenience for
// the CLI; the service path hands bytes in directly.
func (e *Extractor) ExtractFile(path string) (ExtractedText, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ExtractedText{}, err
	}
	return e.Extract(data), nil
}

// assembleText walks every page in page order and concatenates the
// flattened text. The pdf library panics on some malformed files; that is
// translated into an empty result here rather than crossing the boundary.
func (e *Extractor) assembleText(reader *pdf.Reader) (text string, fragments int) {
	defer func() {
		if recover() != nil {
			text = ""
			fragments = 0
		}
	}()

	var builder strings.Builder
	totalLength := 0

	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		pageText, count := flattenPage(page.Content())
		fragments += count

		if totalLength+len(pageText) > e.maxTextSize {
			remaining := e.maxTextSize - totalLength
			if remaining > 0 {
				builder.WriteString(pageText[:remaining])
			}
			break
		}

		builder.WriteString(pageText)
		totalLength += len(pageText)
	}

	return builder.String(), fragments
}

// flattenPage orders a page's text fragments left-to-right, top-to-bottom
// and joins them into lines. Fragments sharing a baseline become one line;
// a horizontal gap between neighbors becomes a single space.
func flattenPage(content pdf.Content) (string, int) {
	if len(content.Text) == 0 {
		return "", 0
	}

	texts := make([]pdf.Text, len(content.Text))
	copy(texts, content.Text)

	sort.SliceStable(texts, func(i, j int) bool {
		if texts[i].Y-texts[j].Y > rowTolerance {
			return true // higher on the page first
		}
		if texts[j].Y-texts[i].Y > rowTolerance {
			return false
		}
		return texts[i].X < texts[j].X
	})

	var builder strings.Builder
	lastY := texts[0].Y
	lastEnd := texts[0].X
	lastChar := byte('\n')

	for i, t := range texts {
		if i > 0 {
			if lastY-t.Y > rowTolerance {
				builder.WriteByte('\n')
				lastChar = '\n'
			} else if t.X-lastEnd > wordGap && lastChar != ' ' && lastChar != '\n' && !strings.HasPrefix(t.S, " ") {
				builder.WriteByte(' ')
				lastChar = ' '
			}
		}

		builder.WriteString(t.S)
		if len(t.S) > 0 {
			lastChar = t.S[len(t.S)-1]
		}
		lastY = t.Y
		lastEnd = t.X + t.W
	}

	builder.WriteByte('\n')
	return builder.String(), len(texts)
}

// IsViable reports whether extracted text carries enough signal to attempt
// field parsing. Pure function; the parser itself does not re-check this.
func IsViable(extraction ExtractedText) bool {
	if !extraction.Success {
		return false
	}

	text := strings.TrimSpace(extraction.Text)
	if len(text) < minViableTextLength {
		return false
	}

	upper := strings.ToUpper(text)
	for _, token := range structuralTokens {
		if strings.Contains(upper, token) {
			return true
		}
	}

	return false
}
