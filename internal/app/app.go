package app

import (
	"github.com/Nikola-Milovic/whisp-away/config"
	"github.com/Nikola-Milovic/whisp-away/internal/capture"
	"github.com/Nikola-Milovic/whisp-away/internal/session"
)

type App struct {
	Sessions *session.Coordinator
	Recorder *capture.Recorder
}

func New(cfg *config.Config) (*App, error) {
	recorder := capture.New(cfg.CaptureCommand)

	store := session.NewFileStore(cfg.RuntimeDir)
	lock := session.NewLock(cfg.LockPath())

	sessions := session.NewCoordinator(store, lock, recorder, cfg.RuntimeDir, cfg.ArtifactMaxAge)
	sessions.PollInterval = cfg.PIDPollInterval
	sessions.PollAttempts = cfg.PIDPollAttempts

	return &App{
		Sessions: sessions,
		Recorder: recorder,
	}, nil
}
