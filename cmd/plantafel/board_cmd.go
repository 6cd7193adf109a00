package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"plantafel/internal/board"
	"plantafel/internal/model"
)

func newBoardCmd(root *rootFlags) *cobra.Command {
	var (
		view       string
		from       string
		days       int
		search     string
		activeOnly bool
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "board",
		Short: "Show resources, events and conflicts for a window",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, root)
			if err != nil {
				return err
			}
			v, err := a.view(view)
			if err != nil {
				return err
			}
			start, end, err := a.window(from, days, time.Now())
			if err != nil {
				return err
			}

			out, err := a.board.Load(cmd.Context(), board.Query{
				View:       v,
				From:       start,
				To:         end,
				Search:     search,
				ActiveOnly: activeOnly,
			})
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			return writeBoard(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringVar(&view, "view", "", "Grouping: employee or project (default from config)")
	cmd.Flags().StringVar(&from, "from", "", "First day (YYYY-MM-DD, default today minus backfill)")
	cmd.Flags().IntVar(&days, "days", 0, "Number of days (default backfill + horizon)")
	cmd.Flags().StringVar(&search, "search", "", "Fuzzy filter on resource names")
	cmd.Flags().BoolVar(&activeOnly, "active", false, "Only active resources")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeBoard prints one block per resource followed by the conflict list.
func writeBoard(w io.Writer, v *board.View) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	byResource := make(map[string][]model.Event)
	for _, ev := range v.Events {
		byResource[ev.ResourceID] = append(byResource[ev.ResourceID], ev)
	}

	fmt.Fprintf(tw, "%s board %s .. %s\n", v.View, v.From.Format(dateLayout), v.To.Format(dateLayout))
	for _, r := range v.Resources {
		evs := byResource[r.ID]
		fmt.Fprintf(tw, "\n%s\t(%s)\t%d events\n", r.Name, r.ID, len(evs))
		for _, ev := range evs {
			mark := ""
			if ev.HasConflict {
				mark = "!"
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", mark, formatSpan(ev), ev.Title, ev.ID)
		}
	}

	if len(v.Conflicts) > 0 {
		fmt.Fprintf(tw, "\nconflicts: %d\n", len(v.Conflicts))
		for _, c := range v.Conflicts {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s <> %s\n", c.Severity, c.Type, c.EmployeeID, c.A.EventID, c.B.EventID)
		}
	}
	return tw.Flush()
}

func formatSpan(ev model.Event) string {
	if ev.AllDay {
		first, last := model.DateOf(ev.Start), model.DateOf(ev.End)
		if first == last {
			return first.String()
		}
		return first.String() + " .. " + last.String()
	}
	return ev.Start.Format("2006-01-02 15:04") + " - " + ev.End.Format("15:04")
}
