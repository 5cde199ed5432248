package questionnaire

import (
	"errors"
	"fmt"
	"growth_assessment/internal/catalog"
	"growth_assessment/internal/model"
	"strings"
	"sync"
)

var (
	ErrUnknownQuestion = errors.New("question not in section")
	ErrUnknownOption   = errors.New("option not offered by question")
	ErrNotChoice       = errors.New("question has no options")
	ErrNoTextField     = errors.New("question takes no additional text")
)

// ScrollFunc is told which panel was just answered and which one is now in focus.
// It is called without any section lock held.
type ScrollFunc func(fromID, toID string)

// Section is the interactive state of one section: which panels are expanded
// and the pending auto-advance. Answers live in the shared Answer Store.
type Section struct {
	def *catalog.Section

	answers  AnswerReader
	onAnswer AnswerFunc
	scroll   ScrollFunc

	mu       sync.Mutex
	expanded map[string]bool
	advancer *Advancer
}

type SectionOption func(*Section)

// WithStore connects the section to a shared Answer Store.
func WithStore(store *AnswerStore) SectionOption {
	return func(s *Section) {
		s.answers = store
		s.onAnswer = store.Set
	}
}

// WithAnswers connects the section to an arbitrary read capability and write callback.
func WithAnswers(r AnswerReader, onAnswer AnswerFunc) SectionOption {
	return func(s *Section) {
		s.answers = r
		s.onAnswer = onAnswer
	}
}

func WithScroll(fn ScrollFunc) SectionOption {
	return func(s *Section) { s.scroll = fn }
}

// WithScheduler replaces the timer used for auto-advance.
func WithScheduler(sched Scheduler) SectionOption {
	return func(s *Section) { s.advancer = NewAdvancer(s.def.AdvanceDelay, sched) }
}

// NewSection starts a section in its configured initial expansion.
func NewSection(def *catalog.Section, opts ...SectionOption) *Section {
	s := &Section{
		def:      def,
		expanded: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.answers == nil {
		WithStore(NewAnswerStore())(s)
	}
	if s.advancer == nil {
		s.advancer = NewAdvancer(def.AdvanceDelay, nil)
	}
	for _, id := range def.InitiallyExpanded() {
		s.expanded[id] = true
	}
	return s
}

func (s *Section) Definition() *catalog.Section {
	return s.def
}

func (s *Section) Key() string {
	return s.def.Key
}

func (s *Section) question(id string) (model.Question, error) {
	q, ok := s.def.Catalog.Lookup(id)
	if !ok {
		return model.Question{}, fmt.Errorf("%w: %q", ErrUnknownQuestion, id)
	}
	return q, nil
}

// Answer reads the current answer of a question through the store capability.
func (s *Section) Answer(id string) model.Answer {
	return s.answers.Get(id)
}

// Toggle flips the expansion of one panel. Other panels are untouched.
// A manual toggle wins over any pending auto-advance.
func (s *Section) Toggle(id string) error {
	if _, err := s.question(id); err != nil {
		return err
	}
	s.advancer.Cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.expanded[id] {
		delete(s.expanded, id)
	} else {
		s.expanded[id] = true
	}
	return nil
}

func (s *Section) IsExpanded(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expanded[id]
}

// Expanded returns the expanded ids in catalog order.
func (s *Section) Expanded() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, id := range s.def.Catalog.IDs() {
		if s.expanded[id] {
			out = append(out, id)
		}
	}
	return out
}

// SelectOption records option as the answer of a choice question, keeping any
// additional text, and schedules the advance to the next question.
// Selecting on the last question of the section only records the answer.
func (s *Section) SelectOption(id, option string) (model.Answer, error) {
	q, err := s.question(id)
	if err != nil {
		return model.Answer{}, err
	}
	if !q.Type.HasOptions() {
		return model.Answer{}, fmt.Errorf("%w: %q", ErrNotChoice, id)
	}
	if !q.HasOption(option) {
		return model.Answer{}, fmt.Errorf("%w: %q", ErrUnknownOption, option)
	}

	a := s.answers.Get(id)
	a.SelectedOption = option
	s.onAnswer(id, a)

	if next, ok := s.def.Catalog.Next(id); ok {
		s.advancer.Schedule(func() { s.advance(id, next.ID) })
	}
	return a, nil
}

// EditText records the additional text of a question, keeping any selected option.
// Free text questions always accept it, choice questions only if they offer the field.
// Editing never advances.
func (s *Section) EditText(id, text string) (model.Answer, error) {
	q, err := s.question(id)
	if err != nil {
		return model.Answer{}, err
	}
	if q.Type.HasOptions() && !q.AdditionalInfo {
		return model.Answer{}, fmt.Errorf("%w: %q", ErrNoTextField, id)
	}

	a := s.answers.Get(id)
	a.AdditionalText = text
	s.onAnswer(id, a)
	return a, nil
}

// Next moves focus to the question after id immediately. It reports false,
// and changes nothing, when id is the last question.
func (s *Section) Next(id string) (bool, error) {
	if _, err := s.question(id); err != nil {
		return false, err
	}
	next, ok := s.def.Catalog.Next(id)
	if !ok {
		return false, nil
	}
	s.advancer.Cancel()
	s.advance(id, next.ID)
	return true, nil
}

func (s *Section) advance(fromID, toID string) {
	s.mu.Lock()
	s.expanded = map[string]bool{toID: true}
	s.mu.Unlock()

	if s.scroll != nil {
		s.scroll(fromID, toID)
	}
}

// AdvancePending reports whether a deferred advance is waiting to fire.
func (s *Section) AdvancePending() bool {
	return s.advancer.Pending()
}

// Complete applies the completion predicate to the stored answer of id.
func (s *Section) Complete(id string) bool {
	q, ok := s.def.Catalog.Lookup(id)
	if !ok {
		return false
	}
	return q.IsComplete(s.answers.Get(id))
}

// Progress counts complete questions.
func (s *Section) Progress() (done, total int) {
	for _, q := range s.def.Catalog.Questions() {
		if q.IsComplete(s.answers.Get(q.ID)) {
			done++
		}
	}
	return done, s.def.Catalog.Len()
}

// Panels builds the render model of the section from current state.
func (s *Section) Panels() []Panel {
	return BuildPanels(s.def.Catalog, s.answers, s.IsExpanded)
}

// Close cancels any pending advance. The section stays usable for reads.
func (s *Section) Close() {
	s.advancer.Cancel()
}

// ParseExpanded splits a comma separated id list, dropping blanks.
func ParseExpanded(raw string) map[string]bool {
	out := make(map[string]bool)
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			out[id] = true
		}
	}
	return out
}
