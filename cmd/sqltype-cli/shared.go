package main

import (
	"io"
	"os"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/sqltype/sqltype/pkg/infer"
	"github.com/sqltype/sqltype/pkg/util/log"
)

// session is the state shared by every command: the loaded config, the logger and an
// inferencer built from the config.
type session struct {
	cfg     *config
	logger  kitlog.Logger
	inf     *infer.Inferencer
	globals infer.Bindings
}

func newSession(opts *globalOptions) (*session, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	logger, err := log.InitLogger(cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	configIsValid(logger, cfg)

	inferOpts, err := cfg.Infer.Options(logger)
	if err != nil {
		return nil, err
	}
	globals, err := cfg.bindings()
	if err != nil {
		return nil, err
	}

	return &session{
		cfg:     cfg,
		logger:  logger,
		inf:     infer.New(inferOpts),
		globals: globals,
	}, nil
}

func configIsValid(logger kitlog.Logger, cfg *config) bool {
	// Warn the user for suspect configurations
	if warnings := cfg.CheckConfig(); len(warnings) != 0 {
		level.Warn(logger).Log("msg", "-- CONFIGURATION WARNINGS --")
		for _, w := range warnings {
			output := []any{"msg", w.Message}
			if w.Explain != "" {
				output = append(output, "explain", w.Explain)
			}
			level.Warn(logger).Log(output...)
		}
		return false
	}
	return true
}

func stdout(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}
