package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"idu/internal/tui"
)

// NewTuiCmd creates the tui subcommand: the same browser as the prompt
// loop, full-screen.
func NewTuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui [dir]",
		Short: "Browse disk usage in a full-screen terminal UI",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := buildSession(args, false)
			if err != nil {
				return err
			}

			// The initial scan stays fatal, as in the prompt loop.
			if err := s.Update(cmd.Context(), "", false); err != nil {
				return err
			}

			p := tea.NewProgram(tui.New(s), tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}
}
