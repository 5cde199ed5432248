package questionnaire

import (
	"growth_assessment/internal/catalog"
	"growth_assessment/internal/model"
	"strings"
)

// Record is one answered question as the advice backend reads it.
// The misspelled keys are part of the backend contract.
type Record struct {
	Question       string             `json:"question"`
	QuestionName   string             `json:"question_name"`
	Type           model.QuestionType `json:"type"`
	Answer         string             `json:"anwser"`
	AnswerLetter   string             `json:"anwserselete,omitempty"`
	AdditionalText string             `json:"additionalText"`
	Text           string             `json:"text,omitempty"`
	Score          *int               `json:"score,omitempty"`
	Category       string             `json:"category"`
	Phase          string             `json:"catmapping,omitempty"`
}

// AssessmentData maps a section data key to its records keyed by question id.
type AssessmentData map[string]map[string]Record

// Answered counts the records across all sections.
func (d AssessmentData) Answered() int {
	n := 0
	for _, records := range d {
		n += len(records)
	}
	return n
}

var likertScores = map[string]int{
	"Strongly Disagree": -2,
	"Disagree":          -1,
	"N/A":               0,
	"Agree":             1,
	"Strongly Agree":    2,
}

// LikertScore maps a Likert option to its numeric weight.
func LikertScore(option string) (int, bool) {
	s, ok := likertScores[option]
	return s, ok
}

// OptionLetter returns "A" for the first option, "B" for the second and so on.
// It returns "" when option is not offered by q.
func OptionLetter(q model.Question, option string) string {
	for i, o := range q.Options {
		if o == option && i < 26 {
			return string(rune('A' + i))
		}
	}
	return ""
}

// BuildAssessmentData aggregates every section of r. Each section is always
// present, possibly empty; questions with a blank answer are left out.
func BuildAssessmentData(r *catalog.Registry, answers AnswerReader) AssessmentData {
	data := make(AssessmentData)
	for _, s := range r.Sections() {
		records := make(map[string]Record)
		for _, q := range s.Catalog.Questions() {
			a := answers.Get(q.ID)
			if !q.IsComplete(a) && strings.TrimSpace(a.AdditionalText) == "" {
				continue
			}
			records[q.ID] = buildRecord(s, q, a)
		}
		data[s.DataKey] = records
	}
	return data
}

func buildRecord(s *catalog.Section, q model.Question, a model.Answer) Record {
	rec := Record{
		Question:       q.Title,
		QuestionName:   q.ID,
		Type:           q.Type,
		AdditionalText: a.AdditionalText,
		Category:       s.Title,
		Phase:          q.Phase,
	}

	if q.Type == model.FreeText {
		rec.Answer = a.AdditionalText
		rec.Text = a.AdditionalText
		return rec
	}

	rec.Answer = a.SelectedOption
	rec.AnswerLetter = OptionLetter(q, a.SelectedOption)
	if q.Type == model.LikertScale {
		if score, ok := LikertScore(a.SelectedOption); ok {
			rec.Score = &score
		}
	}
	return rec
}
