package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/captionmate/captionmate/internal/config"
	"github.com/captionmate/captionmate/internal/nas"
	"github.com/captionmate/captionmate/internal/service"
)

// fakeSource serves one canned directory for every path.
type fakeSource struct {
	entries []nas.FileEntry
	err     error
}

func (f fakeSource) ListDirectory(path string) ([]nas.FileEntry, error) {
	return f.entries, f.err
}

// fakeRenamer records renames.
type fakeRenamer struct {
	renamed map[string]string
}

func (f *fakeRenamer) Rename(oldPath, newPath string) error {
	f.renamed[oldPath] = newPath
	return nil
}

func (f *fakeRenamer) Exists(path string) bool { return false }

func testServer(t *testing.T, src fakeSource) (*Server, *fakeRenamer) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.NAS.Host = "nas.local"
	renamer := &fakeRenamer{renamed: map[string]string{}}

	factory := func(ctx context.Context, opts service.Options) (*service.Service, func(), error) {
		svc, err := service.New(cfg, src, renamer, opts, nil)
		if err != nil {
			return nil, nil, err
		}
		return svc, func() {}, nil
	}

	return NewServerWithFactory(cfg, "1.0.0-test", factory, nil), renamer
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func mediaEntries() []nas.FileEntry {
	return []nas.FileEntry{
		{Name: "Movie.2023.1080p.mkv", Path: "/Media/Movie.2023.1080p.mkv", Size: 1000},
		{Name: "movie.2023.srt", Path: "/Media/movie.2023.srt", Size: 50},
		{Name: "unrelated.srt", Path: "/Media/unrelated.srt", Size: 40},
	}
}

func TestHealth(t *testing.T) {
	server, _ := testServer(t, fakeSource{})
	handler := server.Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "1.0.0-test", resp.Version)
	assert.Equal(t, "nas.local", resp.NASHost)
}

func TestScanEndpoint(t *testing.T) {
	server, _ := testServer(t, fakeSource{entries: mediaEntries()})
	rec := postJSON(t, server.Handler(), "/api/v1/scan", scanRequest{Path: "/Media"})

	require.Equal(t, http.StatusOK, rec.Code)
	var result struct {
		Videos    []json.RawMessage `json:"videos"`
		Subtitles []json.RawMessage `json:"subtitles"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Len(t, result.Videos, 1)
	assert.Len(t, result.Subtitles, 2)
}

func TestScanEndpointRequiresPath(t *testing.T) {
	server, _ := testServer(t, fakeSource{})
	rec := postJSON(t, server.Handler(), "/api/v1/scan", scanRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMatchEndpoint(t *testing.T) {
	server, _ := testServer(t, fakeSource{entries: mediaEntries()})
	rec := postJSON(t, server.Handler(), "/api/v1/match", matchRequest{Path: "/Media", Threshold: 0.8})

	require.Equal(t, http.StatusOK, rec.Code)
	var report service.MatchReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	require.Len(t, report.Results, 1)
	assert.True(t, report.Results[0].HasMatch())
	require.Len(t, report.Plan, 1)
	assert.Equal(t, "Movie.2023.1080p.zh-cn.srt", report.Plan[0].NewName)
}

func TestMatchEndpointRejectsBadMode(t *testing.T) {
	server, _ := testServer(t, fakeSource{})
	rec := postJSON(t, server.Handler(), "/api/v1/match", matchRequest{Path: "/Media", Mode: "psychic"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMatchEndpointScanFailure(t *testing.T) {
	server, _ := testServer(t, fakeSource{err: errors.New("share offline")})
	rec := postJSON(t, server.Handler(), "/api/v1/match", matchRequest{Path: "/Media"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestRenameEndpointDryRun(t *testing.T) {
	server, renamer := testServer(t, fakeSource{entries: mediaEntries()})
	rec := postJSON(t, server.Handler(), "/api/v1/rename", renameRequest{Path: "/Media", DryRun: true})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp renameResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.DryRun)
	assert.Len(t, resp.Plan, 1)
	assert.Nil(t, resp.Summary)
	assert.Empty(t, renamer.renamed)
}

func TestRenameEndpointExecutes(t *testing.T) {
	server, renamer := testServer(t, fakeSource{entries: mediaEntries()})
	rec := postJSON(t, server.Handler(), "/api/v1/rename", renameRequest{Path: "/Media"})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp renameResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Summary)
	assert.Equal(t, 1, resp.Summary.Renamed)
	assert.Equal(t, "/Media/Movie.2023.1080p.zh-cn.srt", renamer.renamed["/Media/movie.2023.srt"])
}

func TestInvalidJSONBody(t *testing.T) {
	server, _ := testServer(t, fakeSource{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scan", bytes.NewReader([]byte("{broken")))
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFactoryErrorSurfaces(t *testing.T) {
	cfg := config.DefaultConfig()
	factory := func(ctx context.Context, opts service.Options) (*service.Service, func(), error) {
		return nil, nil, errors.New("connection refused")
	}
	server := NewServerWithFactory(cfg, "dev", factory, nil)

	rec := postJSON(t, server.Handler(), "/api/v1/scan", scanRequest{Path: "/Media"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
