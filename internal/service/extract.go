package service

import (
	"bytes"
	"fmt"
	"log"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/meridaworks/talentd/internal/domain"
)

// PageText is one page of extracted document text. Page numbers are
// 1-based; plain-text documents carry a single synthetic page 0 meaning
// "no page information".
type PageText struct {
	Page int
	Text string
}

// ExtractResult reports extraction for one document. A failed extraction
// is data, not an error: the pipeline logs it and moves on.
type ExtractResult struct {
	Filename string
	Format   domain.DocumentFormat
	Pages    []PageText
	Failure  string
}

func (r ExtractResult) OK() bool {
	return r.Failure == "" && len(r.Pages) > 0
}

// ExtractPages pulls text out of a raw document. The format is derived
// from the filename extension; unrecognized extensions degrade to a
// failure result rather than an error so a single odd file cannot stop a
// reindex run.
func ExtractPages(filename string, raw []byte) ExtractResult {
	format := domain.DocumentFormatFromFilename(filename)
	result := ExtractResult{Filename: filename, Format: format}

	switch format {
	case domain.FormatPDF:
		pages, err := extractPDF(raw)
		if err != nil {
			result.Failure = err.Error()
			log.Printf("extract: %s: %v", filename, err)
			return result
		}
		result.Pages = pages
	case domain.FormatText:
		text := strings.TrimSpace(string(raw))
		if text != "" {
			result.Pages = []PageText{{Page: 0, Text: text}}
		}
	default:
		result.Failure = fmt.Sprintf("unsupported document format for %q", filename)
		log.Printf("extract: %s", result.Failure)
		return result
	}

	if len(result.Pages) == 0 {
		result.Failure = "document produced no text"
	}
	return result
}

func extractPDF(raw []byte) ([]PageText, error) {
	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	var pages []PageText
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single corrupt page should not discard the rest of
			// the document.
			log.Printf("extract: pdf page %d unreadable: %v", i, err)
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		pages = append(pages, PageText{Page: i, Text: text})
	}
	return pages, nil
}
