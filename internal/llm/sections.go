package llm

import "strings"

const (
	SummaryMarker    = "[SUMMARY]"
	PredictionMarker = "[PREDICTION]"
)

// Sections is generated text split on its section markers.
type Sections struct {
	Summary    string `json:"summary"`
	Prediction string `json:"prediction"`
}

// SplitSections separates the text following each marker. Markers may appear
// in either order. Without a summary marker, the text before the prediction
// marker (or all of it) is the summary.
func SplitSections(text string) Sections {
	si := strings.Index(text, SummaryMarker)
	pi := strings.Index(text, PredictionMarker)

	var s Sections
	switch {
	case si < 0 && pi < 0:
		s.Summary = text
	case si < 0:
		s.Summary = text[:pi]
		s.Prediction = text[pi+len(PredictionMarker):]
	case pi < 0:
		s.Summary = text[si+len(SummaryMarker):]
	case si < pi:
		s.Summary = text[si+len(SummaryMarker) : pi]
		s.Prediction = text[pi+len(PredictionMarker):]
	default:
		s.Prediction = text[pi+len(PredictionMarker) : si]
		s.Summary = text[si+len(SummaryMarker):]
	}
	s.Summary = strings.TrimSpace(s.Summary)
	s.Prediction = strings.TrimSpace(s.Prediction)
	return s
}
