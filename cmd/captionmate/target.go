package main

import (
	"context"
	"fmt"

	"github.com/captionmate/captionmate/internal/config"
	"github.com/captionmate/captionmate/internal/logging"
	"github.com/captionmate/captionmate/internal/nas"
	"github.com/captionmate/captionmate/internal/scanner"
	"github.com/captionmate/captionmate/internal/service"
)

// target bundles the source, renamer, and saver for one directory,
// local or NAS.
type target struct {
	source  scanner.Source
	renamer service.Renamer
	saver   service.Saver
	cleanup func()
}

func (t *target) close() {
	if t.cleanup != nil {
		t.cleanup()
	}
}

// openTarget connects to the NAS unless local is set.
func openTarget(ctx context.Context, cfg *config.Config, local bool, log *logging.Logger) (*target, error) {
	if local {
		return &target{
			source:  scanner.LocalSource{},
			renamer: service.LocalRenamer{},
			saver:   service.LocalSaver{},
		}, nil
	}

	if cfg.NAS.Host == "" {
		return nil, fmt.Errorf("no NAS host configured (run 'captionmate config init', or use --local)")
	}

	client := nas.NewClient(cfg.NAS)
	if err := client.Connect(ctx); err != nil {
		return nil, err
	}
	log.Debug("nas", "connected", logging.F("host", cfg.NAS.Host))

	return &target{
		source:  scanner.NASSource{Client: client},
		renamer: service.NASRenamer{Client: client},
		saver:   service.NASSaver{Client: client},
		cleanup: func() { client.Close() },
	}, nil
}
