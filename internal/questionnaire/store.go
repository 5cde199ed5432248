// Package questionnaire implements the interactive side of an assessment section:
// the Answer Store, the per-section panel state, auto-advance and the render model.
package questionnaire

import (
	"growth_assessment/internal/model"
	"sync"
)

// AnswerReader is the read capability a section gets on the Answer Store.
// Absent entries read as the empty Answer.
type AnswerReader interface {
	Get(questionID string) model.Answer
}

// AnswerFunc is the write capability: it receives the complete new Answer for a question.
type AnswerFunc func(questionID string, answer model.Answer)

// AnswerStore maps question ids to answers. Entries are created lazily on first
// write and are only ever removed by Reset.
type AnswerStore struct {
	mu      sync.RWMutex
	answers map[string]model.Answer
}

func NewAnswerStore() *AnswerStore {
	return &AnswerStore{answers: make(map[string]model.Answer)}
}

// NewAnswerStoreFrom seeds a store with a copy of answers.
func NewAnswerStoreFrom(answers map[string]model.Answer) *AnswerStore {
	s := NewAnswerStore()
	for id, a := range answers {
		s.answers[id] = a
	}
	return s
}

func (s *AnswerStore) Get(questionID string) model.Answer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.answers[questionID]
}

// Set replaces the answer of questionID. It satisfies AnswerFunc.
func (s *AnswerStore) Set(questionID string, answer model.Answer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answers[questionID] = answer
}

// SelectOption replaces the selected option and keeps any additional text.
func (s *AnswerStore) SelectOption(questionID, option string) model.Answer {
	return s.Patch(questionID, model.AnswerPatch{SelectedOption: &option})
}

// EditText replaces the additional text and keeps any selected option.
func (s *AnswerStore) EditText(questionID, text string) model.Answer {
	return s.Patch(questionID, model.AnswerPatch{AdditionalText: &text})
}

// Patch applies p to the current answer of questionID and stores the result.
func (s *AnswerStore) Patch(questionID string, p model.AnswerPatch) model.Answer {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := p.Apply(s.answers[questionID])
	s.answers[questionID] = a
	return a
}

// Snapshot returns a copy of every stored answer.
func (s *AnswerStore) Snapshot() map[string]model.Answer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]model.Answer, len(s.answers))
	for id, a := range s.answers {
		out[id] = a
	}
	return out
}

func (s *AnswerStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.answers)
}

// Reset clears the whole store.
func (s *AnswerStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answers = make(map[string]model.Answer)
}

// MapAnswers adapts a plain map to AnswerReader.
type MapAnswers map[string]model.Answer

func (m MapAnswers) Get(questionID string) model.Answer {
	return m[questionID]
}
