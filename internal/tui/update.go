package tui

import (
	"growth_assessment/pkg/logger"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.refresh()
		if m.mode == modeAdvice {
			m.viewport.SetContent(m.renderAdvice(m.advice))
		}
		return m, nil

	case scrollMsg:
		if msg.section == m.section().Key() && m.mode != modeAdvice {
			if i := m.section().Definition().Catalog.IndexOf(msg.to); i >= 0 {
				m.focus = i
			}
			m.refresh()
			m.scrollTo(msg.to)
		}
		return m, waitForEvent(m.events)

	case answersLoadedMsg:
		if msg.err != nil {
			logger.Log.Error("Failed to load answers", zap.Error(msg.err))
			m.err = msg.err
			return m, nil
		}
		for id, a := range msg.answers {
			m.store.Set(id, a)
		}
		m.status = "answers loaded"
		m.refresh()
		return m, nil

	case savedMsg:
		if msg.err != nil {
			logger.Log.Error("Failed to save answer", zap.String("question", msg.questionID), zap.Error(msg.err))
			m.err = msg.err
		} else {
			m.err = nil
		}
		return m, nil

	case adviceMsg:
		m.submitting = false
		if msg.err != nil {
			logger.Log.Error("Submission failed", zap.Error(msg.err))
			m.err = msg.err
			m.status = ""
			return m, nil
		}
		m.err = nil
		m.status = "advice received"
		m.advice = string(msg.advice)
		m.mode = modeAdvice
		m.viewport.SetContent(m.renderAdvice(m.advice))
		m.viewport.GotoTop()
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeEdit:
			return m.updateEdit(msg)
		case modeAdvice:
			return m.updateAdvice(msg)
		default:
			return m.updateBrowse(msg)
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sec := m.section()
	q := m.focused()

	switch msg.String() {
	case "ctrl+c", "q":
		m.Close()
		return m, tea.Quit

	case "up", "k":
		if m.focus > 0 {
			m.focus--
		}
		m.refresh()
		m.ensureVisible()

	case "down", "j":
		if m.focus < sec.Definition().Catalog.Len()-1 {
			m.focus++
		}
		m.refresh()
		m.ensureVisible()

	case "left", "h":
		if q.Type.HasOptions() && sec.IsExpanded(q.ID) {
			if c := m.cursor(q); c > 0 {
				m.cursors[q.ID] = c - 1
			}
			m.refresh()
		}

	case "right", "l":
		if q.Type.HasOptions() && sec.IsExpanded(q.ID) {
			if c := m.cursor(q); c < len(q.Options)-1 {
				m.cursors[q.ID] = c + 1
			}
			m.refresh()
		}

	case " ", "space":
		sec.Toggle(q.ID)
		m.refresh()

	case "enter":
		if q.Type.HasOptions() && sec.IsExpanded(q.ID) {
			a, err := sec.SelectOption(q.ID, q.Options[m.cursor(q)])
			if err != nil {
				m.err = err
				return m, nil
			}
			delete(m.cursors, q.ID)
			m.refresh()
			return m, m.saveAnswer(q.ID, a)
		}
		sec.Toggle(q.ID)
		m.refresh()

	case "e":
		if !hasTextField(q) {
			return m, nil
		}
		if !sec.IsExpanded(q.ID) {
			sec.Toggle(q.ID)
		}
		m.mode = modeEdit
		m.textarea.SetValue(sec.Answer(q.ID).AdditionalText)
		cmd := m.textarea.Focus()
		m.refresh()
		m.ensureVisible()
		return m, cmd

	case "n":
		moved, err := sec.Next(q.ID)
		if err != nil {
			m.err = err
			return m, nil
		}
		if moved {
			m.focus++
			m.refresh()
			m.scrollTo(m.focused().ID)
		}

	case "tab":
		m.switchSection(1)

	case "shift+tab":
		m.switchSection(-1)

	case "ctrl+s":
		if m.submitting {
			return m, nil
		}
		m.submitting = true
		m.status = "submitting..."
		return m, m.submit()

	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *Model) switchSection(delta int) {
	n := len(m.sections)
	m.active = (m.active + delta + n) % n
	m.focus = m.initialFocus()
	m.refresh()
	m.viewport.GotoTop()
}

func (m Model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sec := m.section()
	q := m.focused()

	switch msg.String() {
	case "ctrl+c":
		m.Close()
		return m, tea.Quit
	case "esc":
		m.textarea.Blur()
		m.mode = modeBrowse
		m.refresh()
		return m, m.saveAnswer(q.ID, sec.Answer(q.ID))
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	if v := m.textarea.Value(); v != sec.Answer(q.ID).AdditionalText {
		if _, err := sec.EditText(q.ID, v); err != nil {
			m.err = err
		}
	}
	m.refresh()
	return m, cmd
}

func (m Model) updateAdvice(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.Close()
		return m, tea.Quit
	case "esc":
		m.mode = modeBrowse
		m.refresh()
		m.viewport.GotoTop()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}
