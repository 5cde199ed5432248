package tui

import (
	"context"
	"encoding/json"
	"errors"
	"growth_assessment/internal/catalog"
	"growth_assessment/internal/model"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeBackend struct {
	mu      sync.Mutex
	answers map[string]model.Answer
	saved   map[string]model.Answer
	advice  json.RawMessage
	err     error
}

func (f *fakeBackend) Answers(ctx context.Context, userID string) (map[string]model.Answer, error) {
	return f.answers, f.err
}

func (f *fakeBackend) SaveAnswer(ctx context.Context, userID, questionID string, a model.Answer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saved == nil {
		f.saved = make(map[string]model.Answer)
	}
	f.saved[questionID] = a
	return f.err
}

func (f *fakeBackend) Submit(ctx context.Context, userID string) (json.RawMessage, error) {
	return f.advice, f.err
}

// manualClock holds scheduled advances until fire is called.
type manualClock struct {
	mu      sync.Mutex
	pending []*manualTask
}

type manualTask struct {
	fn      func()
	stopped bool
}

func (c *manualClock) schedule(d time.Duration, fn func()) func() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	task := &manualTask{fn: fn}
	c.pending = append(c.pending, task)
	return func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		was := !task.stopped
		task.stopped = true
		return was
	}
}

func (c *manualClock) fire() {
	c.mu.Lock()
	tasks := c.pending
	c.pending = nil
	c.mu.Unlock()
	for _, t := range tasks {
		if !t.stopped {
			t.stopped = true
			t.fn()
		}
	}
}

func newModel(t *testing.T, backend *fakeBackend, opts ...Option) (Model, *manualClock) {
	t.Helper()
	reg, err := catalog.Load()
	require.NoError(t, err)
	clock := &manualClock{}
	opts = append([]Option{WithScheduler(clock.schedule)}, opts...)
	m := New(reg, backend, "u1", opts...)
	m, _ = update(m, tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, clock
}

func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		m, _ = update(m, key(k))
	}
	return m
}

func nextEvent(t *testing.T, m Model) tea.Msg {
	t.Helper()
	select {
	case msg := <-m.events:
		return msg
	case <-time.After(time.Second):
		t.Fatal("no event posted")
		return nil
	}
}

func TestOpensOnInitialFocus(t *testing.T) {
	m, _ := newModel(t, &fakeBackend{}, WithSection("assembling-team"))
	defer m.Close()

	assert.Equal(t, "assembling-team", m.section().Key())
	assert.Equal(t, "team-structure", m.focused().ID)
	assert.True(t, m.section().IsExpanded("team-structure"))
	assert.Contains(t, m.View(), "Assembling the Team")
}

func TestSelectOptionSavesAndAutoAdvances(t *testing.T) {
	backend := &fakeBackend{}
	m, clock := newModel(t, backend, WithSection("assembling-team"))
	defer m.Close()
	// short viewport so the next panel's anchor is reachable
	m, _ = update(m, tea.WindowSizeMsg{Width: 100, Height: 8})

	m = press(m, "right", "right", "right")
	m, cmd := update(m, key("enter"))
	require.NotNil(t, cmd)

	msg := cmd()
	m, _ = update(m, msg)
	assert.Equal(t, model.Answer{SelectedOption: "Agree"}, backend.saved["team-structure"])
	assert.Equal(t, "Agree", m.store.Get("team-structure").SelectedOption)

	// still on the first question until the delay elapses
	assert.Equal(t, "team-structure", m.focused().ID)
	assert.True(t, m.section().AdvancePending())

	clock.fire()
	m, cmd = update(m, nextEvent(t, m))
	assert.NotNil(t, cmd)
	assert.Equal(t, "right-people-roles", m.focused().ID)
	assert.Equal(t, []string{"right-people-roles"}, m.section().Expanded())
	assert.Equal(t, m.anchors["right-people-roles"], m.viewport.YOffset)
}

func TestToggleCancelsPendingAdvance(t *testing.T) {
	m, clock := newModel(t, &fakeBackend{}, WithSection("assembling-team"))
	defer m.Close()

	m = press(m, "enter")
	require.True(t, m.section().AdvancePending())

	m = press(m, "down", "space")
	assert.False(t, m.section().AdvancePending())
	clock.fire()

	select {
	case msg := <-m.events:
		t.Fatalf("unexpected event %#v", msg)
	default:
	}
	assert.ElementsMatch(t, []string{"team-structure", "right-people-roles"}, m.section().Expanded())
}

func TestEditKeepsOptionAndDoesNotAdvance(t *testing.T) {
	backend := &fakeBackend{}
	m, _ := newModel(t, backend, WithSection("assembling-team"))
	defer m.Close()

	m = press(m, "enter")
	m.section().Close()

	m = press(m, "e")
	require.Equal(t, modeEdit, m.mode)
	m = press(m, "t", "w", "o")
	assert.Equal(t, model.Answer{SelectedOption: "Strongly Disagree", AdditionalText: "two"}, m.store.Get("team-structure"))

	// q is text while editing
	m = press(m, "q")
	assert.Equal(t, "twoq", m.store.Get("team-structure").AdditionalText)

	m, cmd := update(m, key("esc"))
	require.NotNil(t, cmd)
	m, _ = update(m, cmd())
	assert.Equal(t, modeBrowse, m.mode)
	assert.Equal(t, "twoq", backend.saved["team-structure"].AdditionalText)
	assert.Equal(t, "team-structure", m.focused().ID)
}

func TestNextMovesImmediately(t *testing.T) {
	m, _ := newModel(t, &fakeBackend{}, WithSection("assembling-team"))
	defer m.Close()

	m = press(m, "n")
	assert.Equal(t, "right-people-roles", m.focused().ID)
	assert.Equal(t, []string{"right-people-roles"}, m.section().Expanded())

	m = press(m, "n", "n", "n", "n")
	assert.Equal(t, "performance-management", m.focused().ID)
}

func TestSectionTabs(t *testing.T) {
	m, _ := newModel(t, &fakeBackend{})
	defer m.Close()

	first := m.section().Key()
	m = press(m, "tab")
	assert.NotEqual(t, first, m.section().Key())
	m = press(m, "shift+tab")
	assert.Equal(t, first, m.section().Key())
	m = press(m, "shift+tab")
	assert.Equal(t, "toolbox-success", m.section().Key())
}

func TestLoadedAnswersShowSummary(t *testing.T) {
	m, _ := newModel(t, &fakeBackend{}, WithSection("assembling-team"))
	defer m.Close()

	m, _ = update(m, answersLoadedMsg{answers: map[string]model.Answer{
		"right-people-roles": {SelectedOption: "Agree", AdditionalText: strings.Repeat("~", 120)},
	}})
	view := m.View()
	assert.Contains(t, view, "Selected: Agree")
	assert.Contains(t, view, "Additional info provided")
	// the preview wraps inside the viewport instead of being cut at its edge
	assert.Equal(t, 100, strings.Count(view, "~"))
	assert.Contains(t, view, "~...")
	assert.Contains(t, view, "1/5")
}

func TestSummaryWithoutTextHasNoMarker(t *testing.T) {
	m, _ := newModel(t, &fakeBackend{}, WithSection("assembling-team"))
	defer m.Close()

	m, _ = update(m, answersLoadedMsg{answers: map[string]model.Answer{
		"right-people-roles": {SelectedOption: "Disagree"},
	}})
	view := m.View()
	assert.Contains(t, view, "Selected: Disagree")
	assert.NotContains(t, view, "Additional info provided")
}

func TestSubmitShowsAdvice(t *testing.T) {
	backend := &fakeBackend{advice: json.RawMessage(`{"advice":"Hire a **sales lead**."}`)}
	m, _ := newModel(t, backend)
	defer m.Close()

	m, cmd := update(m, key("ctrl+s"))
	require.NotNil(t, cmd)
	assert.True(t, m.submitting)

	m, _ = update(m, cmd())
	assert.Equal(t, modeAdvice, m.mode)
	assert.Contains(t, m.View(), "sales lead")

	m = press(m, "esc")
	assert.Equal(t, modeBrowse, m.mode)
}

func TestSubmitFailureIsShown(t *testing.T) {
	backend := &fakeBackend{err: errors.New("503 Failed to get AI advice from backend service")}
	m, _ := newModel(t, backend)
	defer m.Close()

	m, cmd := update(m, key("ctrl+s"))
	m, _ = update(m, cmd())
	assert.Equal(t, modeBrowse, m.mode)
	assert.False(t, m.submitting)
	assert.Contains(t, m.View(), "Failed to get AI advice")
}

func TestQuit(t *testing.T) {
	m, _ := newModel(t, &fakeBackend{})
	_, cmd := update(m, key("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestAdviceMarkdown(t *testing.T) {
	assert.Contains(t, adviceMarkdown(`{"advice":"do more"}`), "do more")
	md := adviceMarkdown(`{"score":3}`)
	assert.Contains(t, md, "```json")
	assert.Contains(t, md, `"score": 3`)
	assert.Contains(t, adviceMarkdown(`not json`), "not json")
}

func TestClientRoundTrip(t *testing.T) {
	var gotAuth, gotPath string
	var patch map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		switch {
		case r.Method == http.MethodGet:
			w.Write([]byte(`{"code":200,"message":"success","data":{"industry":{"selectedOption":"","additionalText":"SaaS"}}}`))
		case r.Method == http.MethodPut:
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&patch))
			w.Write([]byte(`{"code":200,"message":"success"}`))
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"Failed to get AI advice from backend service","details":"Backend API error: 502"}`))
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "tok")
	c.HTTP = srv.Client()
	ctx := context.Background()

	answers, err := c.Answers(ctx, "u 1")
	require.NoError(t, err)
	assert.Equal(t, "SaaS", answers["industry"].AdditionalText)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "/api/users/u 1/answers", gotPath)

	require.NoError(t, c.SaveAnswer(ctx, "u1", "industry", model.Answer{AdditionalText: "Retail"}))
	assert.Equal(t, map[string]string{"selectedOption": "", "additionalText": "Retail"}, patch)

	_, err = c.Submit(ctx, "u1")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.Status)
	assert.Equal(t, "Backend API error: 502", apiErr.Details)
}
