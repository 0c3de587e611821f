package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/llehouerou/bilimusic/internal/config"
	"github.com/llehouerou/bilimusic/internal/logging"
	"github.com/llehouerou/bilimusic/internal/playback"
	"github.com/llehouerou/bilimusic/internal/player"
	"github.com/llehouerou/bilimusic/internal/resolver"
	"github.com/llehouerou/bilimusic/internal/state"
)

// session is a running controller and everything it owns.
type session struct {
	cfg     *config.Config
	logger  *log.Logger
	store   *state.Manager
	speaker *player.Speaker
	ctrl    *playback.Controller
	stop    context.CancelFunc
	stopped chan struct{}
}

type sessionOptions struct {
	// Output binds the configured output. One-shot commands that only
	// edit the playlist leave it unset.
	Output bool
	Title  playback.Titler
}

func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// stderrLogger is the logger for commands that do not own the terminal.
func stderrLogger(cfg *config.Config) *log.Logger {
	return logging.New(os.Stderr, cfg.GetLogLevel())
}

func startSession(ctx context.Context, cfg *config.Config, logger *log.Logger, opts sessionOptions) (*session, error) {
	store, err := state.Open(state.Options{
		Path:         cfg.State.Path,
		SaveDebounce: cfg.State.SaveDebounce,
		Logger:       logger,
	})
	if err != nil {
		return nil, fmt.Errorf("open state: %w", err)
	}

	rc := cfg.GetResolverConfig()
	res := resolver.New(resolver.Options{
		BaseURL:   rc.BaseURL,
		Timeout:   rc.Timeout,
		RateLimit: *rc.RateLimit,
		Logger:    logger,
	})

	pc := cfg.GetPlaybackConfig()
	outputs := player.NewRegistry()
	var spk *player.Speaker
	if opts.Output {
		spk = player.NewSpeaker(player.SpeakerOptions{
			Referer: pc.Referer,
			Logger:  logger.With("component", "speaker"),
			Volume:  pc.Volume,
		})
		outputs.Register(config.DefaultOutput, spk)
	}

	ctrl := playback.New(playback.Options{
		Resolver: res,
		Store:    store,
		Outputs:  outputs,
		Binder: playback.NewBinder(playback.BinderOptions{
			RetryDelay: pc.RetryDelay,
			MaxRetries: pc.MaxRetries,
			Title:      opts.Title,
			Logger:     logger,
		}),
		Logger: logger,
	})

	runCtx, stop := context.WithCancel(ctx)
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		if err := ctrl.Run(runCtx); err != nil && runCtx.Err() == nil {
			logger.Error("controller stopped", "err", err)
		}
	}()

	return &session{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		speaker: spk,
		ctrl:    ctrl,
		stop:    stop,
		stopped: stopped,
	}, nil
}

// initOutput binds the configured output and waits for the result.
func (s *session) initOutput(ctx context.Context) error {
	return s.ctrl.Do(ctx, s.initOutputIntent())
}

func (s *session) initOutputIntent() playback.InitOutput {
	return playback.InitOutput{Target: s.cfg.GetPlaybackConfig().Output}
}

// Close stops the controller and the output, then flushes the store.
func (s *session) Close() {
	_ = s.ctrl.Close()
	s.stop()
	<-s.stopped
	if s.speaker != nil {
		s.speaker.Close()
	}
	if err := s.store.Close(); err != nil {
		s.logger.Warn("close state", "err", err)
	}
}
