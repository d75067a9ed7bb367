package pdf

// Extraction failure classes. These are data, not errors: a failed
// extraction is a normal outcome for the caller.
const (
	FailureCorrupt      = "corrupt"
	FailureEncrypted    = "encrypted"
	FailureNoTextStream = "no-text-stream"
	FailureEmptyOutput  = "empty-output"
	FailureTooLarge     = "too-large"
)

// ExtractedText is the result of extracting the text stream of one PDF.
type ExtractedText struct {
	Success bool   `json:"success"`
	Text    string `json:"text"`
	Error   string `json:"error,omitempty"`
	Pages   int    `json:"pages"`
}

// Viability thresholds. Extraction can nominally succeed and still hand
// back garbage; parsing is only attempted when the text clears these.
const minViableTextLength = 50

// structuralTokens are markers expected somewhere in a readable autoland
// report. At least one must be present for the text to be worth parsing.
var structuralTokens = []string{
	"AUTOLAND",
	"REPORT",
	"A/C REG",
	"FLT NO",
}
