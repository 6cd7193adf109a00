package main

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"

	"plantafel/internal/board"
	"plantafel/internal/config"
	"plantafel/internal/ics"
	appLog "plantafel/internal/log"
	"plantafel/internal/model"
	"plantafel/internal/snapshot"
)

const dateLayout = "2006-01-02"

type rootFlags struct {
	configPath string
	console    bool
	logLevel   string
}

func newRootCmd() *cobra.Command {
	var flags rootFlags

	cmd := &cobra.Command{
		Use:           "plantafel",
		Short:         "Resource planning board: assignments, absences and conflicts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "./plantafel.yaml", "Path to config file")
	cmd.PersistentFlags().BoolVar(&flags.console, "console", false, "Human-readable log output")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level (overrides config)")

	cmd.AddCommand(
		newBoardCmd(&flags),
		newMoveCmd(&flags),
		newResizeCmd(&flags),
		newExportCmd(&flags),
		newWatchCmd(&flags),
	)
	return cmd
}

// app is the wired board for one command run.
type app struct {
	cfg   *config.Config
	store *snapshot.Store
	board *board.Board
}

func setup(cmd *cobra.Command, flags *rootFlags) (*app, error) {
	if flags.console {
		appLog.SetOutput(cmd.ErrOrStderr(), true)
	}

	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, errors.Wrapf(err, "load config %s", flags.configPath)
	}
	level := cfg.LogLevel
	if flags.logLevel != "" {
		level = flags.logLevel
	}
	appLog.SetLevel(appLog.ParseLevel(level))

	store, err := snapshot.Open(cfg.DataFile)
	if err != nil {
		return nil, errors.Wrapf(err, "open snapshot %s", cfg.DataFile)
	}

	opts := board.Options{
		Location: cfg.Location(),
		Locale:   cfg.Locale,
		DayStart: time.Duration(cfg.WorkdayStartHour) * time.Hour,
		DayEnd:   time.Duration(cfg.WorkdayEndHour) * time.Hour,
	}
	if len(cfg.AbsenceFeeds) > 0 {
		sources := make([]ics.Source, 0, len(cfg.AbsenceFeeds))
		for _, f := range cfg.AbsenceFeeds {
			sources = append(sources, ics.Source{ID: f.ID, URL: f.URL})
		}
		opts.Feed = &ics.Feed{Fetcher: ics.NewFetcher(cfg.CacheDir, nil), Sources: sources}
	}

	appLog.Debug("effective config",
		"timezone", cfg.Timezone,
		"locale", cfg.Locale,
		"data_file", cfg.DataFile,
		"absence_feeds", len(cfg.AbsenceFeeds),
		"horizon_days", cfg.HorizonDays,
		"backfill_days", cfg.BackfillDays,
	)
	return &app{cfg: cfg, store: store, board: board.New(store, opts)}, nil
}

// view resolves --view, falling back to the configured default.
func (a *app) view(flag string) (model.View, error) {
	v := model.View(flag)
	if flag == "" {
		v = model.View(a.cfg.DefaultView)
	}
	if !v.Valid() {
		return "", errors.Errorf("unknown view %q (employee or project)", flag)
	}
	return v, nil
}

// window returns the inclusive window starting at from (YYYY-MM-DD) and
// spanning days calendar days. Empty from means BackfillDays before today;
// days <= 0 means backfill plus HorizonDays.
func (a *app) window(from string, days int, now time.Time) (time.Time, time.Time, error) {
	loc := a.board.Location()
	today := model.DateOf(now.In(loc))

	start := today.AddDays(-a.cfg.BackfillDays)
	if from != "" {
		d, err := model.ParseDate(from)
		if err != nil {
			return time.Time{}, time.Time{}, errors.Wrapf(err, "--from %q", from)
		}
		start = d
	}
	if days <= 0 {
		days = a.cfg.BackfillDays + a.cfg.HorizonDays
	}
	end := start.AddDays(days)
	return start.In(loc), end.In(loc).Add(-time.Millisecond), nil
}

// parseDay reads YYYY-MM-DD as local midnight.
func (a *app) parseDay(s string) (time.Time, error) {
	d, err := model.ParseDate(s)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "date %q", s)
	}
	return d.In(a.board.Location()), nil
}

// parseTime reads RFC 3339 or a local "2006-01-02T15:04".
func (a *app) parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02T15:04", s, a.board.Location())
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "time %q", s)
	}
	return t, nil
}
