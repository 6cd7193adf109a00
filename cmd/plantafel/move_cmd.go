package main

import (
	"github.com/spf13/cobra"

	"plantafel/internal/board"
	appLog "plantafel/internal/log"
)

func newMoveCmd(root *rootFlags) *cobra.Command {
	var (
		view   string
		target string
		date   string
	)

	cmd := &cobra.Command{
		Use:   "move <event-id>",
		Short: "Drop an event on another day and, optionally, another row",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, root)
			if err != nil {
				return err
			}
			v, err := a.view(view)
			if err != nil {
				return err
			}
			day, err := a.parseDay(date)
			if err != nil {
				return err
			}

			res, err := a.board.Drop(cmd.Context(), board.DropRequest{
				EventID:  args[0],
				View:     v,
				TargetID: target,
				NewDate:  day,
			})
			if err != nil {
				return err
			}
			appLog.Info("event moved", "event", args[0], "fields", res.Update.Fields(), "conflicts", len(res.Conflicts))
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().StringVar(&view, "view", "", "Grouping the target refers to (default from config)")
	cmd.Flags().StringVar(&target, "to", "", "Target resource id (__unassigned__ to unassign; empty keeps the row)")
	cmd.Flags().StringVar(&date, "date", "", "New day (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func newResizeCmd(root *rootFlags) *cobra.Command {
	var start, end string

	cmd := &cobra.Command{
		Use:   "resize <event-id>",
		Short: "Change start and end of a timed event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, root)
			if err != nil {
				return err
			}
			s, err := a.parseTime(start)
			if err != nil {
				return err
			}
			e, err := a.parseTime(end)
			if err != nil {
				return err
			}

			res, err := a.board.Resize(cmd.Context(), board.ResizeRequest{EventID: args[0], Start: s, End: e})
			if err != nil {
				return err
			}
			if !res.Changed {
				appLog.Warn("resize ignored", "event", args[0])
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "New start (RFC 3339 or YYYY-MM-DDTHH:MM)")
	cmd.Flags().StringVar(&end, "end", "", "New end (RFC 3339 or YYYY-MM-DDTHH:MM)")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}
