package main

import (
	"bytes"
	"time"

	"github.com/spf13/cobra"

	"plantafel/internal/board"
	"plantafel/internal/config"
	"plantafel/internal/ics"
	appLog "plantafel/internal/log"
)

func newExportCmd(root *rootFlags) *cobra.Command {
	var (
		view string
		from string
		days int
		out  string
		name string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the board as an ICS calendar",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, root)
			if err != nil {
				return err
			}
			v, err := a.view(view)
			if err != nil {
				return err
			}
			now := time.Now()
			start, end, err := a.window(from, days, now)
			if err != nil {
				return err
			}

			b, err := a.board.Load(cmd.Context(), board.Query{View: v, From: start, To: end})
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := ics.ExportEvents(&buf, b.Events, ics.ExportOptions{Name: name, Stamp: now}); err != nil {
				return err
			}
			if out == "" || out == "-" {
				_, err := cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if err := config.WriteFileAtomic(out, buf.Bytes(), ".plantafel-export-*.tmp"); err != nil {
				return err
			}
			appLog.Info("board exported", "path", out, "events", len(b.Events), "conflicts", len(b.Conflicts))
			return nil
		},
	}

	cmd.Flags().StringVar(&view, "view", "", "Grouping: employee or project (default from config)")
	cmd.Flags().StringVar(&from, "from", "", "First day (YYYY-MM-DD)")
	cmd.Flags().IntVar(&days, "days", 0, "Number of days")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "Output file (- for stdout)")
	cmd.Flags().StringVar(&name, "name", "Plantafel", "Calendar name")
	return cmd
}
