package extract

import (
	"errors"
	"fmt"
)

// OCRMode controls whether pages are OCR'd or read from embedded text.
type OCRMode string

const (
	OCRModeAuto   OCRMode = "auto"
	OCRModeAlways OCRMode = "always"
	OCRModeNever  OCRMode = "never"
)

// ErrInvalidOCRMode is returned for an unrecognized ocr_mode value.
var ErrInvalidOCRMode = errors.New("invalid ocr_mode: must be one of auto, always, never")

// ParseOCRMode validates a user-supplied ocr_mode. Empty means auto.
func ParseOCRMode(value string) (OCRMode, error) {
	switch OCRMode(value) {
	case "":
		return OCRModeAuto, nil
	case OCRModeAuto, OCRModeAlways, OCRModeNever:
		return OCRMode(value), nil
	default:
		return "", fmt.Errorf("%w (got %q)", ErrInvalidOCRMode, value)
	}
}

// Digital-PDF detection thresholds.
const (
	minWordsPerTextPage = 20
	minTotalWords       = 80
	minTextPageRatio    = 0.3
)

// DigitalSignal is the embedded-text evidence a document carries.
type DigitalSignal struct {
	TotalPages    int     `json:"total_pages"`
	TotalWords    int     `json:"total_words"`
	PagesWithText int     `json:"pages_with_text"`
	TextPageRatio float64 `json:"text_page_ratio"`
	IsDigital     bool    `json:"is_digital"`
}

// DetectDigital decides whether a document's embedded text is good enough to
// skip OCR, from its per-page word counts.
//
// Known quirk, kept for compatibility: when every page clears the per-page
// threshold and the total is above 20 words, the document is classified
// digital regardless of the ratio rule, so a mostly-text document with one
// scanned page is never OCR'd in auto mode.
func DetectDigital(wordCounts []int) DigitalSignal {
	sig := DigitalSignal{TotalPages: len(wordCounts)}
	if sig.TotalPages == 0 {
		return sig
	}

	allPagesHaveText := true
	for _, count := range wordCounts {
		sig.TotalWords += count
		if count >= minWordsPerTextPage {
			sig.PagesWithText++
		} else {
			allPagesHaveText = false
		}
	}
	sig.TextPageRatio = float64(sig.PagesWithText) / float64(sig.TotalPages)

	if allPagesHaveText && sig.TotalWords > minWordsPerTextPage {
		sig.IsDigital = true
		return sig
	}
	sig.IsDigital = sig.TotalWords >= minTotalWords &&
		(sig.PagesWithText >= 1 || sig.TextPageRatio >= minTextPageRatio)
	return sig
}

// Ingestion modes and skip reasons recorded in extraction metadata.
const (
	IngestionModeOCR     = "ocr"
	IngestionModeDigital = "digital_text"

	SkipReasonDisabled = "ocr_disabled_by_request"
	SkipReasonDigital  = "digital_pdf_detected"

	PDFTypeDigital = "digital"
	PDFTypeScanned = "scanned"
)

// Decision is the per-document extraction strategy. It is made once, before
// any page is processed, so one document never mixes strategies.
type Decision struct {
	ModeRequested OCRMode       `json:"ocr_mode_requested"`
	UseOCR        bool          `json:"ocr_used"`
	Skipped       bool          `json:"ocr_skipped"`
	SkipReason    string        `json:"ocr_skip_reason,omitempty"`
	IngestionMode string        `json:"ingestion_mode"`
	PDFType       string        `json:"pdf_type"`
	Signal        DigitalSignal `json:"digital_signal"`
}

// Select applies the mode decision table to the document's digital signal.
func Select(mode OCRMode, wordCounts []int) Decision {
	sig := DetectDigital(wordCounts)
	d := Decision{ModeRequested: mode, Signal: sig, PDFType: PDFTypeScanned}
	if sig.IsDigital {
		d.PDFType = PDFTypeDigital
	}

	switch mode {
	case OCRModeAlways:
		d.UseOCR = true
		d.IngestionMode = IngestionModeOCR
	case OCRModeNever:
		d.Skipped = true
		d.SkipReason = SkipReasonDisabled
		d.IngestionMode = IngestionModeDigital
	default: // auto
		if sig.IsDigital {
			d.Skipped = true
			d.SkipReason = SkipReasonDigital
			d.IngestionMode = IngestionModeDigital
		} else {
			d.UseOCR = true
			d.IngestionMode = IngestionModeOCR
		}
	}
	return d
}
