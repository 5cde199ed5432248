// Package tui is the interactive terminal front end of the questionnaire.
// Every section is a questionnaire.Section sharing one answer store; answers
// are persisted through the server API as they change.
package tui

import (
	"context"
	"encoding/json"
	"growth_assessment/internal/catalog"
	"growth_assessment/internal/model"
	"growth_assessment/internal/questionnaire"
	"growth_assessment/pkg/logger"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"
)

const (
	requestTimeout = 30 * time.Second
	submitTimeout  = 3 * time.Minute

	headerHeight = 3
	footerHeight = 2
)

type mode int

const (
	modeBrowse mode = iota
	modeEdit
	modeAdvice
)

// scrollMsg is posted by a section's auto-advance, off the UI goroutine.
type scrollMsg struct {
	section string
	from    string
	to      string
}

type answersLoadedMsg struct {
	answers map[string]model.Answer
	err     error
}

type savedMsg struct {
	questionID string
	err        error
}

type adviceMsg struct {
	advice json.RawMessage
	err    error
}

type Option func(*Model)

// WithScheduler replaces the auto-advance timer of every section.
func WithScheduler(s questionnaire.Scheduler) Option {
	return func(m *Model) { m.scheduler = s }
}

// WithSection opens the UI on the section with the given key.
func WithSection(key string) Option {
	return func(m *Model) { m.startSection = key }
}

// WithRenderer sets the markdown renderer used for the advice pane.
func WithRenderer(r *glamour.TermRenderer) Option {
	return func(m *Model) { m.renderer = r }
}

type Model struct {
	backend Backend
	userID  string

	store    *questionnaire.AnswerStore
	sections []*questionnaire.Section
	active   int
	focus    int
	cursors  map[string]int
	anchors  map[string]int
	events   chan tea.Msg

	mode     mode
	viewport viewport.Model
	textarea textarea.Model
	renderer *glamour.TermRenderer
	styles   Styles

	advice     string
	status     string
	err        error
	submitting bool
	width      int
	height     int

	scheduler    questionnaire.Scheduler
	startSection string
}

func New(reg *catalog.Registry, backend Backend, userID string, opts ...Option) Model {
	m := Model{
		backend:  backend,
		userID:   userID,
		store:    questionnaire.NewAnswerStore(),
		cursors:  make(map[string]int),
		anchors:  make(map[string]int),
		events:   make(chan tea.Msg, 16),
		styles:   DefaultStyles(),
		viewport: viewport.New(80, 20),
		width:    80,
		height:   20 + headerHeight + footerHeight,
	}
	for _, opt := range opts {
		opt(&m)
	}

	ta := textarea.New()
	ta.Placeholder = "Additional information"
	ta.ShowLineNumbers = false
	ta.CharLimit = 2000
	ta.SetHeight(3)
	ta.SetWidth(72)
	m.textarea = ta

	events := m.events
	for i, def := range reg.Sections() {
		key := def.Key
		sectionOpts := []questionnaire.SectionOption{
			questionnaire.WithStore(m.store),
			questionnaire.WithScroll(func(from, to string) {
				select {
				case events <- scrollMsg{section: key, from: from, to: to}:
				default:
					logger.Log.Warn("Dropped scroll request", zap.String("section", key), zap.String("to", to))
				}
			}),
		}
		if m.scheduler != nil {
			sectionOpts = append(sectionOpts, questionnaire.WithScheduler(m.scheduler))
		}
		m.sections = append(m.sections, questionnaire.NewSection(def, sectionOpts...))
		if key == m.startSection {
			m.active = i
		}
	}

	m.focus = m.initialFocus()
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadAnswers(), waitForEvent(m.events))
}

func waitForEvent(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

func (m Model) loadAnswers() tea.Cmd {
	backend, user := m.backend, m.userID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		answers, err := backend.Answers(ctx, user)
		return answersLoadedMsg{answers: answers, err: err}
	}
}

func (m Model) saveAnswer(id string, a model.Answer) tea.Cmd {
	backend, user := m.backend, m.userID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return savedMsg{questionID: id, err: backend.SaveAnswer(ctx, user, id, a)}
	}
}

func (m Model) submit() tea.Cmd {
	backend, user := m.backend, m.userID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
		defer cancel()
		advice, err := backend.Submit(ctx, user)
		return adviceMsg{advice: advice, err: err}
	}
}

func (m Model) section() *questionnaire.Section {
	return m.sections[m.active]
}

func (m Model) focused() model.Question {
	return m.section().Definition().Catalog.At(m.focus)
}

func (m Model) initialFocus() int {
	sec := m.section()
	if ids := sec.Definition().InitiallyExpanded(); len(ids) > 0 {
		if i := sec.Definition().Catalog.IndexOf(ids[0]); i >= 0 {
			return i
		}
	}
	return 0
}

// cursor is the option the selection cursor rests on. It starts on the
// selected option.
func (m Model) cursor(q model.Question) int {
	if c, ok := m.cursors[q.ID]; ok {
		return c
	}
	selected := m.store.Get(q.ID).SelectedOption
	for i, o := range q.Options {
		if o == selected {
			return i
		}
	}
	return 0
}

func hasTextField(q model.Question) bool {
	return !q.Type.HasOptions() || q.AdditionalInfo
}

// Close cancels pending auto-advances.
func (m Model) Close() {
	for _, s := range m.sections {
		s.Close()
	}
}

func (m *Model) refresh() {
	content, anchors := m.renderSection()
	m.anchors = anchors
	if m.mode != modeAdvice {
		m.viewport.SetContent(content)
	}
}

// scrollTo puts the anchor line of a question at the top of the viewport.
func (m *Model) scrollTo(id string) {
	if line, ok := m.anchors[id]; ok {
		m.viewport.SetYOffset(line)
	}
}

func (m *Model) ensureVisible() {
	line, ok := m.anchors[m.focused().ID]
	if !ok {
		return
	}
	if line < m.viewport.YOffset {
		m.viewport.SetYOffset(line)
	} else if line >= m.viewport.YOffset+m.viewport.Height-2 {
		m.viewport.SetYOffset(line - m.viewport.Height + 3)
	}
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.viewport.Width = width
	m.viewport.Height = max(height-headerHeight-footerHeight, 3)
	m.textarea.SetWidth(max(width-8, 20))

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(max(width-4, 20)),
	)
	if err == nil {
		m.renderer = r
	}
}
