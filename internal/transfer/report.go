package transfer

import (
	"reelsort/internal/media"
)

// DryRunReport previews what a transfer would do without touching storage.
// Items carry the exact target paths the executor would produce from the
// same rule snapshot.
type DryRunReport struct {
	TotalItems       int  `json:"total_items"`
	Recognized       int  `json:"recognized"`
	HighConfidence   int  `json:"high_confidence"`
	MediumConfidence int  `json:"medium_confidence"`
	LowConfidence    int  `json:"low_confidence"`
	Matched          int  `json:"matched"`
	Unmatched        int  `json:"unmatched"`
	Incomplete       bool `json:"incomplete,omitempty"`

	Items []media.RecognitionResult `json:"items"`
}

// BuildReport tallies planned results into a dry-run report. Incomplete
// marks batches whose recognition pass was cancelled partway.
func BuildReport(planned []media.RecognitionResult, incomplete bool) DryRunReport {
	report := DryRunReport{
		TotalItems: len(planned),
		Incomplete: incomplete,
		Items:      planned,
	}
	for _, item := range planned {
		switch item.Confidence {
		case media.ConfidenceHigh:
			report.HighConfidence++
		case media.ConfidenceMedium:
			report.MediumConfidence++
		default:
			report.LowConfidence++
		}
		if item.Recognized() {
			report.Recognized++
			if item.MatchedRuleID != "" {
				report.Matched++
			} else {
				report.Unmatched++
			}
		}
	}
	return report
}
