// Package service orchestrates the scan, match, plan, and rename steps
// over a directory of media files.
package service

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/captionmate/captionmate/internal/config"
	"github.com/captionmate/captionmate/internal/llm"
	"github.com/captionmate/captionmate/internal/logging"
	"github.com/captionmate/captionmate/internal/matcher"
	"github.com/captionmate/captionmate/internal/nas"
	"github.com/captionmate/captionmate/internal/scanner"
)

// Renamer executes a single file rename and answers existence checks.
// Implementations exist for the local filesystem and the NAS.
type Renamer interface {
	Rename(oldPath, newPath string) error
	Exists(path string) bool
}

// LocalRenamer renames files on the local filesystem.
type LocalRenamer struct{}

// Rename implements Renamer.
func (LocalRenamer) Rename(oldPath, newPath string) error {
	return os.Rename(oldPath, newPath)
}

// Exists implements Renamer.
func (LocalRenamer) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// NASRenamer renames files over SMB.
type NASRenamer struct {
	Client *nas.Client
}

// Rename implements Renamer.
func (r NASRenamer) Rename(oldPath, newPath string) error {
	return r.Client.Rename(oldPath, newPath)
}

// Exists implements Renamer.
func (r NASRenamer) Exists(path string) bool {
	return r.Client.PathExists(path)
}

// RenameOutcome records what happened to one planned rename.
type RenameOutcome struct {
	Operation matcher.RenameOperation `json:"operation"`
	Status    string                  `json:"status"` // renamed, skipped, error
	Reason    string                  `json:"reason,omitempty"`
}

// RenameSummary aggregates the outcomes of an execution pass.
type RenameSummary struct {
	Renamed  int             `json:"renamed"`
	Skipped  int             `json:"skipped"`
	Errors   int             `json:"errors"`
	Outcomes []RenameOutcome `json:"outcomes"`
}

// MatchReport is the result of a full scan-and-match pass.
type MatchReport struct {
	Scan    *scanner.Result           `json:"scan"`
	Results []matcher.MatchResult     `json:"results"`
	Plan    []matcher.RenameOperation `json:"plan"`
}

// Matched counts results with an attached subtitle.
func (r *MatchReport) Matched() int {
	n := 0
	for _, result := range r.Results {
		if result.HasMatch() {
			n++
		}
	}
	return n
}

// Service wires the scanner, matcher, and renamer together.
type Service struct {
	cfg     *config.Config
	scanner *scanner.Scanner
	matcher *matcher.Matcher
	renamer Renamer
	log     *logging.Logger
}

// Options selects per-run overrides on top of the config.
type Options struct {
	// Mode overrides the matching mode; empty means regex unless the
	// config enables AI.
	Mode matcher.Mode
	// Threshold overrides ai.threshold when positive.
	Threshold float64
}

// New builds a Service for the given source and renamer. The LLM provider
// is constructed from config when AI mode is requested.
func New(cfg *config.Config, source scanner.Source, renamer Renamer, opts Options, log *logging.Logger) (*Service, error) {
	if log == nil {
		log = logging.Nop()
	}

	mode := opts.Mode
	if mode == "" {
		mode = matcher.ModeRegex
		if cfg.AI.Enabled {
			mode = matcher.ModeAI
		}
	}

	threshold := cfg.AI.Threshold
	if opts.Threshold > 0 {
		threshold = opts.Threshold
	}

	var provider llm.Provider
	if mode == matcher.ModeAI {
		p, err := ProviderFromConfig(cfg.AI)
		if err != nil {
			return nil, err
		}
		provider = p
	}

	m, err := matcher.NewMatcher(matcher.Config{
		Threshold: threshold,
		Mode:      mode,
		Provider:  provider,
	})
	if err != nil {
		return nil, err
	}

	return &Service{
		cfg:     cfg,
		scanner: scanner.New(source, cfg.Scanning, cfg.Subtitles, log),
		matcher: m,
		renamer: renamer,
		log:     log,
	}, nil
}

// Scan walks the directory without matching.
func (s *Service) Scan(dir string) (*scanner.Result, error) {
	return s.scanner.Scan(dir)
}

// Match scans the directory and matches subtitles to videos without
// touching any file.
func (s *Service) Match(ctx context.Context, dir string) (*MatchReport, error) {
	scan, err := s.scanner.Scan(dir)
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	results := s.matcher.Match(ctx, scan.Videos, scan.Subtitles)
	report := &MatchReport{
		Scan:    scan,
		Results: results,
		Plan:    matcher.PlanRenames(results, s.cfg.Subtitles.NamingPattern),
	}

	s.log.Info("service", "matching complete",
		logging.F("dir", dir),
		logging.F("mode", s.matcher.Mode()),
		logging.F("videos", len(scan.Videos)),
		logging.F("matched", report.Matched()))

	return report, nil
}

// Execute applies a rename plan. Operations whose target name already
// exists are skipped unless force is set or scanning.skip_existing is
// disabled; a same-name operation is always a skip. Individual failures
// are recorded and do not stop the pass.
func (s *Service) Execute(plan []matcher.RenameOperation, force bool) *RenameSummary {
	summary := &RenameSummary{Outcomes: make([]RenameOutcome, 0, len(plan))}
	overwrite := force || !s.cfg.Scanning.SkipExisting

	for _, op := range plan {
		outcome := RenameOutcome{Operation: op}

		switch {
		case !op.NeedsRename():
			outcome.Status = "skipped"
			outcome.Reason = "already named correctly"
		default:
			newPath := siblingPath(op.Subtitle.Path, op.NewName)
			if !overwrite && s.renamer.Exists(newPath) {
				outcome.Status = "skipped"
				outcome.Reason = "target already exists"
				break
			}
			if err := s.renamer.Rename(op.Subtitle.Path, newPath); err != nil {
				outcome.Status = "error"
				outcome.Reason = err.Error()
				s.log.Error("service", "rename failed", err,
					logging.F("from", op.OldName), logging.F("to", op.NewName))
				break
			}
			outcome.Status = "renamed"
			s.log.Info("service", "renamed subtitle",
				logging.F("from", op.OldName), logging.F("to", op.NewName))
		}

		switch outcome.Status {
		case "renamed":
			summary.Renamed++
		case "skipped":
			summary.Skipped++
		case "error":
			summary.Errors++
		}
		summary.Outcomes = append(summary.Outcomes, outcome)
	}

	return summary
}

// ProviderFromConfig builds an LLM provider from the AI config section.
func ProviderFromConfig(cfg config.AIConfig) (llm.Provider, error) {
	timeout := cfg.Timeout()

	switch cfg.Provider {
	case "", "ollama":
		return llm.NewOllamaAdapter(cfg.Endpoint, cfg.Model, timeout), nil
	case "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai provider requires ai.api_key")
		}
		return llm.NewOpenAIAdapter(cfg.Endpoint, cfg.APIKey, cfg.Model, timeout), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}

// siblingPath replaces the final element of p with name, preserving the
// path flavor: slash-separated NAS paths stay slash-separated, local
// paths use the OS separator.
func siblingPath(p, name string) string {
	if strings.ContainsRune(p, '/') {
		return path.Join(path.Dir(p), name)
	}
	return filepath.Join(filepath.Dir(p), name)
}
