package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/llehouerou/bilimusic/internal/app"
	"github.com/llehouerou/bilimusic/internal/avbv"
	"github.com/llehouerou/bilimusic/internal/config"
	"github.com/llehouerou/bilimusic/internal/errmsg"
	"github.com/llehouerou/bilimusic/internal/icons"
	"github.com/llehouerou/bilimusic/internal/logging"
	"github.com/llehouerou/bilimusic/internal/metrics"
	"github.com/llehouerou/bilimusic/internal/notify"
	"github.com/llehouerou/bilimusic/internal/playback"
	"github.com/llehouerou/bilimusic/internal/player"
	"github.com/llehouerou/bilimusic/internal/playlist"
	"github.com/llehouerou/bilimusic/internal/state"
	"github.com/llehouerou/bilimusic/internal/stderr"
)

var (
	errNotInPlaylist = errors.New("not in the playlist")
	errBadLoopMode   = errors.New("want LIST, SINGLE or NONE")
)

func commands() []*cli.Command {
	return []*cli.Command{
		{
			Name:      "play",
			Usage:     "Add a video and play the playlist without the TUI until interrupted",
			ArgsUsage: "<av|bv|url>",
			Arguments: []cli.Argument{&cli.StringArg{Name: "input"}},
			Action:    runPlay,
		},
		{
			Name:      "add",
			Usage:     "Resolve a video and append it to the playlist",
			ArgsUsage: "<av|bv|url>",
			Arguments: []cli.Argument{&cli.StringArg{Name: "input"}},
			Action:    runAdd,
		},
		{
			Name:   "list",
			Usage:  "Print the saved playlist",
			Action: runList,
		},
		{
			Name:      "remove",
			Aliases:   []string{"rm"},
			Usage:     "Remove an entry from the playlist",
			ArgsUsage: "<av|bv>",
			Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
			Action:    runRemove,
		},
		{
			Name:      "move",
			Usage:     "Move the entry at position FROM to position TO (as numbered by list)",
			ArgsUsage: "<from> <to>",
			Arguments: []cli.Argument{
				&cli.StringArg{Name: "from"},
				&cli.StringArg{Name: "to"},
			},
			Action: runMove,
		},
		{
			Name:      "loop",
			Usage:     "Set the loop mode",
			ArgsUsage: "<LIST|SINGLE|NONE>",
			Arguments: []cli.Argument{&cli.StringArg{Name: "mode"}},
			Action:    runLoop,
		},
		{
			Name:      "decode",
			Usage:     "Convert between av and bv ids",
			ArgsUsage: "<av|bv>",
			Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
			Action:    runDecode,
		},
	}
}

func requireArg(cmd *cli.Command, name string) (string, error) {
	v := cmd.StringArg(name)
	if v == "" {
		return "", fmt.Errorf("missing <%s> argument", name)
	}
	return v, nil
}

// runTUI is the default command.
func runTUI(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logFile, err := logging.OpenFile(cfg.Log.File)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	logger := logging.New(logFile, cfg.GetLogLevel())

	// Audio libraries write to fd 2, which would corrupt the screen.
	if err := stderr.Start(logger); err != nil {
		logger.Warn("stderr capture unavailable", "err", err)
	}
	defer stderr.Stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go serveMetrics(ctx, cfg.Metrics.Listen, logger)

	icons.Init(cfg.UI.Icons)
	titles := app.NewTitleSink()
	s, err := startSession(ctx, cfg, logger, sessionOptions{
		Output: true,
		Title:  player.TeeTitle(titles, nowPlaying(ctx, cfg, logger)),
	})
	if err != nil {
		return err
	}
	defer s.Close()

	m := app.New(app.Options{Controller: s.ctrl, Titles: titles, Logger: logger})
	// Bind after the TUI subscribed so a missing output shows in the status line.
	s.ctrl.Dispatch(s.initOutputIntent())

	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run TUI: %w", err)
	}
	return nil
}

func runPlay(ctx context.Context, cmd *cli.Command) error {
	input, err := requireArg(cmd, "input")
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := stderrLogger(cfg)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	go serveMetrics(ctx, cfg.Metrics.Listen, logger)

	s, err := startSession(ctx, cfg, logger, sessionOptions{
		Output: true,
		Title:  player.TeeTitle(player.NewWindowTitle(os.Stdout), nowPlaying(ctx, cfg, logger)),
	})
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.initOutput(ctx); err != nil {
		return err
	}

	sub := s.ctrl.Subscribe()
	if err := s.ctrl.Do(ctx, playback.Add{Input: input}); err != nil {
		return err
	}
	printSelected := selectionPrinter(os.Stdout)
	printSelected(s.ctrl.State())

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-sub.Done:
			return nil
		case e := <-sub.StateChanged:
			printSelected(e.State)
		case f := <-sub.Failed:
			fmt.Fprintln(os.Stderr, f.Message())
		}
	}
}

func runAdd(ctx context.Context, cmd *cli.Command) error {
	input, err := requireArg(cmd, "input")
	if err != nil {
		return err
	}
	return withSession(ctx, cmd, func(s *session) error {
		if err := s.ctrl.Do(ctx, playback.Add{Input: input}); err != nil {
			return err
		}
		st := s.ctrl.State()
		if e, ok := st.Selected(); ok {
			fmt.Printf("added %s  %s\n", e.ID, e.Name)
		}
		return nil
	})
}

func runList(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := state.Open(state.Options{Path: cfg.State.Path, Logger: stderrLogger(cfg)})
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpLoadPlaylist, err))
	}
	defer store.Close()

	printPlaylist(os.Stdout, store.LoadPlayer())
	return nil
}

func runRemove(ctx context.Context, cmd *cli.Command) error {
	raw, err := requireArg(cmd, "id")
	if err != nil {
		return err
	}
	id, err := avbv.Canonical(raw)
	if err != nil {
		return errors.New(errmsg.FormatWith(errmsg.OpRemove, raw, err))
	}
	return withSession(ctx, cmd, func(s *session) error {
		if s.ctrl.State().IndexOf(id) < 0 {
			return errors.New(errmsg.FormatWith(errmsg.OpRemove, id, errNotInPlaylist))
		}
		return s.ctrl.Do(ctx, playback.Remove{ID: id})
	})
}

func runMove(ctx context.Context, cmd *cli.Command) error {
	from, err := positionArg(cmd, "from")
	if err != nil {
		return err
	}
	to, err := positionArg(cmd, "to")
	if err != nil {
		return err
	}
	return withSession(ctx, cmd, func(s *session) error {
		n := len(s.ctrl.State().Playlist)
		if from >= n || to >= n {
			err := fmt.Errorf("position out of range, the playlist has %d entries", n)
			return errors.New(errmsg.Format(errmsg.OpReorder, err))
		}
		return s.ctrl.Do(ctx, playback.Reorder{From: from, To: to})
	})
}

// positionArg reads a 1-based position and returns it 0-based.
func positionArg(cmd *cli.Command, name string) (int, error) {
	raw, err := requireArg(cmd, name)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid <%s> %q: want a position starting at 1", name, raw)
	}
	return n - 1, nil
}

func runLoop(ctx context.Context, cmd *cli.Command) error {
	raw, err := requireArg(cmd, "mode")
	if err != nil {
		return err
	}
	mode, ok := playlist.ParseLoopMode(raw)
	if !ok {
		return errors.New(errmsg.FormatWith(errmsg.OpLoopMode, raw, errBadLoopMode))
	}
	return withSession(ctx, cmd, func(s *session) error {
		return s.ctrl.Do(ctx, playback.SetLoopMode{Mode: mode})
	})
}

func runDecode(_ context.Context, cmd *cli.Command) error {
	raw, err := requireArg(cmd, "id")
	if err != nil {
		return err
	}
	av, bv, err := convertID(raw)
	if err != nil {
		return errors.New(errmsg.FormatWith(errmsg.OpDecode, raw, err))
	}
	fmt.Printf("%s\t%s\n", av, bv)
	return nil
}

// nowPlaying returns the desktop notification sink, or nil when disabled.
func nowPlaying(ctx context.Context, cfg *config.Config, logger *log.Logger) player.Titler {
	if !cfg.Notify.Enabled {
		return nil
	}
	return notify.NewNowPlaying(ctx, notify.New(), logger)
}

// withSession runs fn against a controller with no output bound.
func withSession(ctx context.Context, cmd *cli.Command, fn func(*session) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	s, err := startSession(ctx, cfg, stderrLogger(cfg), sessionOptions{})
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

func serveMetrics(ctx context.Context, addr string, logger *log.Logger) {
	if err := metrics.Serve(ctx, addr); err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("metrics listener stopped", "addr", addr, "err", err)
	}
}
