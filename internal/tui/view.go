package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"growth_assessment/internal/questionnaire"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	markerCollapsed = "▸"
	markerExpanded  = "▾"
	markerComplete  = "✓"
)

// renderSection draws the active section and records the first line of every
// panel, keyed by question id.
func (m Model) renderSection() (string, map[string]int) {
	sec := m.section()
	anchors := make(map[string]int)

	var b strings.Builder
	line := 0
	write := func(s string) {
		b.WriteString(s)
		b.WriteByte('\n')
		line += strings.Count(s, "\n") + 1
	}

	width := max(m.width-4, 20)
	for _, p := range sec.Panels() {
		anchors[p.Question.ID] = line
		focused := p.Index == m.focus

		marker := markerCollapsed
		if p.Expanded {
			marker = markerExpanded
		}
		check := " "
		if p.Complete {
			check = m.styles.Complete.Render(markerComplete)
		}
		prefix := "  "
		style := m.styles.Question
		if focused {
			prefix = "› "
			style = m.styles.Focused
		}
		title := style.Width(width).Render(fmt.Sprintf("%s %d. %s", marker, p.Index+1, p.Question.Title))
		write(lipgloss.JoinHorizontal(lipgloss.Top, prefix, check, " ", title))

		switch {
		case p.Expanded:
			m.renderBody(p, focused, write)
		case p.Summary != nil:
			summary := m.styles.Summary.Width(width)
			write(summary.Render(p.Summary.Label + ": " + p.Summary.Value))
			if p.Summary.AdditionalInfo {
				write(summary.Render(questionnaire.AdditionalInfoMarker))
				write(summary.Render(p.Summary.Preview))
			}
		}
		write("")
	}
	return b.String(), anchors
}

func (m Model) renderBody(p questionnaire.Panel, focused bool, write func(string)) {
	q := p.Question
	if q.Type.HasOptions() {
		cursor := m.cursor(q)
		opts := make([]string, 0, len(q.Options))
		for i, o := range q.Options {
			label := o
			if o == p.Answer.SelectedOption {
				label = "● " + o
			}
			switch {
			case focused && i == cursor:
				opts = append(opts, m.styles.Cursor.Render(label))
			case o == p.Answer.SelectedOption:
				opts = append(opts, m.styles.Selected.Render(label))
			default:
				opts = append(opts, m.styles.Option.Render(label))
			}
		}
		write("    " + strings.Join(opts, " "))
	}

	if !hasTextField(q) {
		return
	}
	switch {
	case focused && m.mode == modeEdit:
		write(lipgloss.NewStyle().PaddingLeft(4).Render(m.textarea.View()))
	case p.Answer.AdditionalText != "":
		write(m.styles.Text.Width(max(m.width-4, 20)).Render(p.Answer.AdditionalText))
	case focused:
		write(m.styles.Help.Render("    press e to add details"))
	}
}

func (m Model) renderHeader() string {
	tabs := make([]string, 0, len(m.sections))
	for i, s := range m.sections {
		done, total := s.Progress()
		label := fmt.Sprintf("%s %d/%d", s.Definition().Title, done, total)
		if i == m.active {
			tabs = append(tabs, m.styles.ActiveTab.Render(label))
		} else {
			tabs = append(tabs, m.styles.Tab.Render(label))
		}
	}

	title := "Growth Assessment"
	if m.mode == modeAdvice {
		title = "Growth Assessment · Advice"
	}
	return m.styles.Title.Render(title) + "\n" + strings.Join(tabs, " ") + "\n"
}

func (m Model) renderFooter() string {
	var status string
	switch {
	case m.err != nil:
		status = m.styles.Error.Render("error: " + m.err.Error())
	case m.status != "":
		status = m.styles.Status.Render(m.status)
	}

	var help string
	switch m.mode {
	case modeEdit:
		help = "esc done · ctrl+c quit"
	case modeAdvice:
		help = "↑/↓ scroll · esc back · q quit"
	default:
		help = "↑/↓ question · space toggle · ←/→ option · enter select · e edit · n next · tab section · ctrl+s submit · q quit"
	}
	return status + "\n" + m.styles.Help.Render(help)
}

func (m Model) View() string {
	return m.renderHeader() + m.viewport.View() + "\n" + m.renderFooter()
}

// adviceMarkdown turns the backend's JSON into markdown. A top level "advice"
// string is used as is, anything else is shown as formatted JSON.
func adviceMarkdown(raw string) string {
	var b strings.Builder
	b.WriteString("# Your growth advice\n\n")

	var doc map[string]any
	if json.Unmarshal([]byte(raw), &doc) == nil {
		for _, key := range []string{"advice", "content", "message"} {
			if s, ok := doc[key].(string); ok && s != "" {
				b.WriteString(s)
				b.WriteString("\n")
				return b.String()
			}
		}
	}

	var pretty bytes.Buffer
	if json.Indent(&pretty, []byte(raw), "", "  ") != nil {
		pretty.Reset()
		pretty.WriteString(raw)
	}
	b.WriteString("```json\n")
	b.Write(pretty.Bytes())
	b.WriteString("\n```\n")
	return b.String()
}

func (m Model) renderAdvice(raw string) string {
	md := adviceMarkdown(raw)
	if m.renderer == nil {
		return md
	}
	out, err := m.renderer.Render(md)
	if err != nil {
		return md
	}
	return out
}
