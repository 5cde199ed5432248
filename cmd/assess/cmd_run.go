package main

import (
	"fmt"
	"growth_assessment/internal/catalog"
	"growth_assessment/internal/tui"
	"growth_assessment/pkg/logger"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var startSection string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Answer the questionnaire interactively",
	Long: `Opens the full screen questionnaire.

Keys:
  ↑/↓        move between questions
  space      expand or collapse the focused question
  ←/→        move the option cursor
  enter      select the option (then the next question opens)
  e / esc    edit the additional information / finish editing
  n          open the next question now
  tab        next section (shift+tab: previous)
  ctrl+s     submit all answers and show the advice
  q          quit`,
	RunE: runQuestionnaire,
}

func runQuestionnaire(cmd *cobra.Command, args []string) error {
	if userID == "" {
		return fmt.Errorf("--user is required")
	}

	reg, err := catalog.Load()
	if err != nil {
		return err
	}
	if startSection != "" {
		if _, ok := reg.Section(startSection); !ok {
			return fmt.Errorf("unknown section %q", startSection)
		}
	}

	logger.InitFileOnly(logFile)
	defer logger.Log.Sync()
	logger.Log.Info("Starting questionnaire", zap.String("server", serverURL), zap.String("user", userID))

	client := tui.NewClient(serverURL, token)
	m := tui.New(reg, client, userID, tui.WithSection(startSection))

	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if fm, ok := final.(tui.Model); ok {
		fm.Close()
	}
	return err
}
