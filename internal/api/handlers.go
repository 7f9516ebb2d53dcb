package api

import (
	"encoding/json"
	"net/http"

	"github.com/captionmate/captionmate/internal/matcher"
	"github.com/captionmate/captionmate/internal/scanner"
	"github.com/captionmate/captionmate/internal/service"
)

type healthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	NASHost   string `json:"nas_host"`
	AIEnabled bool   `json:"ai_enabled"`
}

type scanRequest struct {
	Path string `json:"path"`
}

type matchRequest struct {
	Path      string  `json:"path"`
	Mode      string  `json:"mode,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
}

type renameRequest struct {
	Path      string  `json:"path"`
	Mode      string  `json:"mode,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
	Force     bool    `json:"force,omitempty"`
	DryRun    bool    `json:"dry_run,omitempty"`
}

type renameResponse struct {
	Plan    []matcher.RenameOperation `json:"plan"`
	Summary *service.RenameSummary    `json:"summary,omitempty"`
	DryRun  bool                      `json:"dry_run"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Version:   s.version,
		NASHost:   s.cfg.NAS.Host,
		AIEnabled: s.cfg.AI.Enabled,
	})
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, "missing_path", "path is required")
		return
	}

	var result *scanner.Result
	err := s.withService(r, service.Options{}, func(svc *service.Service) error {
		var scanErr error
		result, scanErr = svc.Scan(req.Path)
		return scanErr
	})
	if err != nil {
		writeError(w, http.StatusBadGateway, "scan_failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, "missing_path", "path is required")
		return
	}
	if !validMode(req.Mode) {
		writeError(w, http.StatusBadRequest, "bad_mode", "mode must be regex or ai")
		return
	}

	var report *service.MatchReport
	err := s.withService(r, service.Options{Mode: matcher.Mode(req.Mode), Threshold: req.Threshold}, func(svc *service.Service) error {
		var matchErr error
		report, matchErr = svc.Match(r.Context(), req.Path)
		return matchErr
	})
	if err != nil {
		writeError(w, http.StatusBadGateway, "match_failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleRename(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, "missing_path", "path is required")
		return
	}
	if !validMode(req.Mode) {
		writeError(w, http.StatusBadRequest, "bad_mode", "mode must be regex or ai")
		return
	}

	response := renameResponse{DryRun: req.DryRun}
	err := s.withService(r, service.Options{Mode: matcher.Mode(req.Mode), Threshold: req.Threshold}, func(svc *service.Service) error {
		report, matchErr := svc.Match(r.Context(), req.Path)
		if matchErr != nil {
			return matchErr
		}
		response.Plan = report.Plan
		if !req.DryRun {
			response.Summary = svc.Execute(report.Plan, req.Force)
		}
		return nil
	})
	if err != nil {
		writeError(w, http.StatusBadGateway, "rename_failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// withService builds a per-request service, runs fn, and releases the
// connection.
func (s *Server) withService(r *http.Request, opts service.Options, fn func(*service.Service) error) error {
	svc, cleanup, err := s.factory(r.Context(), opts)
	if err != nil {
		return err
	}
	defer cleanup()
	return fn(svc)
}

func validMode(mode string) bool {
	switch matcher.Mode(mode) {
	case "", matcher.ModeRegex, matcher.ModeAI:
		return true
	}
	return false
}

func decodeRequest(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"code":    code,
		"message": message,
	})
}
