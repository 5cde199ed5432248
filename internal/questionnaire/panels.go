package questionnaire

import (
	"growth_assessment/internal/catalog"
	"growth_assessment/internal/model"
)

const (
	textSummaryLimit     = 50
	additionalInfoLimit  = 100
	truncationMarker     = "..."
	SummaryLabelAnswered = "Answered"
	SummaryLabelSelected = "Selected"
	AdditionalInfoMarker = "Additional info provided"
)

// Summary is the one-line recap shown on a collapsed, complete panel.
type Summary struct {
	Label          string `json:"label"`
	Value          string `json:"value"`
	AdditionalInfo bool   `json:"additionalInfo"`
	Preview        string `json:"preview,omitempty"`
}

// Panel is the render model of one question.
type Panel struct {
	Index    int            `json:"index"`
	Anchor   string         `json:"anchor"`
	Question model.Question `json:"question"`
	Answer   model.Answer   `json:"answer"`
	Expanded bool           `json:"expanded"`
	Complete bool           `json:"complete"`
	Summary  *Summary       `json:"summary,omitempty"`
}

// Anchor is the scroll target identifier of a question panel.
func Anchor(questionID string) string {
	return "question-" + questionID
}

// BuildPanels renders every question of c in order. Collapsed complete panels
// carry a Summary; expanded or incomplete panels do not.
func BuildPanels(c *catalog.Catalog, answers AnswerReader, expanded func(id string) bool) []Panel {
	panels := make([]Panel, 0, c.Len())
	for i, q := range c.Questions() {
		a := answers.Get(q.ID)
		p := Panel{
			Index:    i,
			Anchor:   Anchor(q.ID),
			Question: q,
			Answer:   a,
			Expanded: expanded(q.ID),
			Complete: q.IsComplete(a),
		}
		if !p.Expanded && p.Complete {
			p.Summary = summarize(q, a)
		}
		panels = append(panels, p)
	}
	return panels
}

func summarize(q model.Question, a model.Answer) *Summary {
	if q.Type == model.FreeText {
		return &Summary{
			Label: SummaryLabelAnswered,
			Value: Truncate(a.AdditionalText, textSummaryLimit),
		}
	}

	s := &Summary{
		Label: SummaryLabelSelected,
		Value: a.SelectedOption,
	}
	if q.AdditionalInfo && a.AdditionalText != "" {
		s.AdditionalInfo = true
		s.Preview = Truncate(a.AdditionalText, additionalInfoLimit)
	}
	return s
}

// Truncate shortens s to at most n runes and appends a marker when it cut anything.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + truncationMarker
}
