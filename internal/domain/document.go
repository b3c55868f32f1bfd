package domain

// DocumentFormat tags the raw bytes handed to the extraction step.
type DocumentFormat string

const (
	// FormatPDF is paginated document content.
	FormatPDF DocumentFormat = "pdf"
	// FormatText is flat text without page structure.
	FormatText DocumentFormat = "text"
)

// DocumentFormatFromFilename infers the format tag from a filename
// extension. Unknown extensions map to an empty format, which the
// extraction step rejects as unsupported.
func DocumentFormatFromFilename(name string) DocumentFormat {
	switch {
	case hasSuffixFold(name, ".pdf"):
		return FormatPDF
	case hasSuffixFold(name, ".txt"), hasSuffixFold(name, ".md"):
		return FormatText
	default:
		return ""
	}
}

func hasSuffixFold(s, suffix string) bool {
	if len(s) < len(suffix) {
		return false
	}
	tail := s[len(s)-len(suffix):]
	for i := 0; i < len(suffix); i++ {
		a, b := tail[i], suffix[i]
		if 'A' <= a && a <= 'Z' {
			a += 'a' - 'A'
		}
		if a != b {
			return false
		}
	}
	return true
}

// LinkStatus classifies the confidence band of a document-to-identity link.
type LinkStatus string

const (
	// LinkAuto is a high-confidence link, kept without review.
	LinkAuto LinkStatus = "auto"
	// LinkReview is a mid-confidence link, kept but flagged for a human.
	LinkReview LinkStatus = "review"
	// LinkUnresolved means no identity could be attached.
	LinkUnresolved LinkStatus = "unresolved"
	// LinkManual is an externally supplied mapping, treated as ground truth.
	LinkManual LinkStatus = "manual"
)

// DocumentLink maps one source document to at most one Identity.
// Links are recomputed whenever the roster or document set changes and
// are not persisted by the engine.
type DocumentLink struct {
	Filename      string
	ExtractedName string
	EmployeeID    string // empty when unresolved
	RosterName    string
	Confidence    float64
	Status        LinkStatus
}

// LinkageReport aggregates MatchAll results for human review.
type LinkageReport struct {
	Links      []DocumentLink
	Auto       int
	Review     int
	Unresolved int
	Manual     int
}

// Fragment is a chunked, embeddable unit of a source document's text.
// Immutable once created; the whole set is regenerated on reindex.
type Fragment struct {
	EmployeeID string
	Filename   string
	Seq        int
	Page       int // 1-based page locator, 0 when the format has no pages
	Text       string
	Embedding  []float32
}
