// Package opensubtitles wraps the OpenSubtitles REST API for subtitle
// search and download.
package opensubtitles

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/captionmate/captionmate/internal/media"
)

const (
	defaultBaseURL     = "https://api.opensubtitles.com/api/v1"
	defaultUserAgent   = "captionmate-v1.0"
	defaultHTTPTimeout = 30 * time.Second
)

// Config describes the OpenSubtitles client configuration. Username and
// Password are optional; when both are set, Login exchanges them for a
// JWT that raises the download quota.
type Config struct {
	APIKey     string
	UserAgent  string
	Username   string
	Password   string
	BaseURL    string
	HTTPClient *http.Client
}

// Client wraps the OpenSubtitles REST API.
type Client struct {
	apiKey    string
	userAgent string
	username  string
	password  string
	token     string
	baseURL   *url.URL
	http      *http.Client
}

// New creates a Client from the supplied configuration.
func New(cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("opensubtitles: api key is required")
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("opensubtitles: parse base url: %w", err)
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Client{
		apiKey:    apiKey,
		userAgent: userAgent,
		username:  strings.TrimSpace(cfg.Username),
		password:  cfg.Password,
		baseURL:   baseURL,
		http:      client,
	}, nil
}

// Login authenticates with the configured username and password and keeps
// the returned bearer token for later requests. A no-op when credentials
// are not configured.
func (c *Client) Login(ctx context.Context) error {
	if c.username == "" || c.password == "" {
		return nil
	}

	payload, err := json.Marshal(map[string]string{
		"username": c.username,
		"password": c.password,
	})
	if err != nil {
		return fmt.Errorf("opensubtitles: encode login request: %w", err)
	}

	endpoint := c.baseURL.JoinPath("login")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("opensubtitles: build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.applyHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("opensubtitles: login request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("opensubtitles: login failed (%s): %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("opensubtitles: decode login response: %w", err)
	}
	c.token = result.Token
	return nil
}

// SearchRequest describes subtitle discovery filters. MovieHash and
// MovieByteSize together identify an exact release; Query is the
// free-text fallback.
type SearchRequest struct {
	Query         string
	MovieHash     string
	MovieByteSize int64
	Languages     []string
}

// Subtitle is one candidate returned by a search.
type Subtitle struct {
	ID        string  `json:"id"`
	FileID    int64   `json:"file_id"`
	Language  string  `json:"language"`
	FileName  string  `json:"filename"`
	Release   string  `json:"release"`
	Downloads int     `json:"downloads"`
	Rating    float64 `json:"rating"`
	FileSize  int64   `json:"file_size"`
}

// SizeHuman returns the subtitle file size in human readable form.
func (s Subtitle) SizeHuman() string {
	return media.FormatSize(s.FileSize)
}

// DownloadResult captures the downloaded subtitle payload.
type DownloadResult struct {
	Data     []byte
	FileName string
	Language string
}

// Search queries for matching subtitles, best candidates first (most
// downloaded, then highest rated).
func (c *Client) Search(ctx context.Context, req SearchRequest) ([]Subtitle, error) {
	if c == nil {
		return nil, errors.New("opensubtitles: client is nil")
	}

	endpoint := c.baseURL.JoinPath("subtitles")
	params := url.Values{}
	if req.Query != "" {
		params.Set("query", req.Query)
	}
	if req.MovieHash != "" {
		params.Set("moviehash", req.MovieHash)
	}
	if req.MovieByteSize > 0 {
		params.Set("moviebytesize", strconv.FormatInt(req.MovieByteSize, 10))
	}
	if len(req.Languages) > 0 {
		params.Set("languages", strings.Join(req.Languages, ","))
	}
	endpoint.RawQuery = params.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("opensubtitles: build search request: %w", err)
	}
	c.applyHeaders(httpReq)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("opensubtitles: search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("opensubtitles: search failed (%s): %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("opensubtitles: decode search response: %w", err)
	}

	subtitles := make([]Subtitle, 0, len(payload.Data))
	for _, entry := range payload.Data {
		attrs := entry.Attributes
		if len(attrs.Files) == 0 {
			continue
		}
		file := attrs.Files[0]
		subtitles = append(subtitles, Subtitle{
			ID:        entry.ID,
			FileID:    file.FileID,
			Language:  attrs.Language,
			FileName:  file.FileName,
			Release:   attrs.Release,
			Downloads: attrs.DownloadCount,
			Rating:    attrs.Rating,
			FileSize:  file.FileSize,
		})
	}

	sort.SliceStable(subtitles, func(i, j int) bool {
		if subtitles[i].Downloads != subtitles[j].Downloads {
			return subtitles[i].Downloads > subtitles[j].Downloads
		}
		return subtitles[i].Rating > subtitles[j].Rating
	})

	return subtitles, nil
}

// Download retrieves the subtitle contents for the specified file. The
// API hands out a short-lived link first; the payload is fetched from it
// in a second request.
func (c *Client) Download(ctx context.Context, fileID int64) (DownloadResult, error) {
	if c == nil {
		return DownloadResult{}, errors.New("opensubtitles: client is nil")
	}
	if fileID <= 0 {
		return DownloadResult{}, errors.New("opensubtitles: invalid file id")
	}

	payload, err := json.Marshal(map[string]any{"file_id": fileID})
	if err != nil {
		return DownloadResult{}, fmt.Errorf("opensubtitles: encode download request: %w", err)
	}

	endpoint := c.baseURL.JoinPath("download")
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return DownloadResult{}, fmt.Errorf("opensubtitles: build download request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.applyHeaders(httpReq)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return DownloadResult{}, fmt.Errorf("opensubtitles: download request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return DownloadResult{}, fmt.Errorf("opensubtitles: download negotiation failed (%s): %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var info downloadResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return DownloadResult{}, fmt.Errorf("opensubtitles: decode download response: %w", err)
	}
	if info.Link == "" {
		return DownloadResult{}, errors.New("opensubtitles: download response missing link")
	}

	downloadURL, err := endpoint.Parse(info.Link)
	if err != nil {
		downloadURL, err = url.Parse(info.Link)
		if err != nil {
			return DownloadResult{}, fmt.Errorf("opensubtitles: parse download url: %w", err)
		}
	}

	dataReq, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL.String(), nil)
	if err != nil {
		return DownloadResult{}, fmt.Errorf("opensubtitles: build link request: %w", err)
	}
	dataReq.Header.Set("User-Agent", c.userAgent)

	dataResp, err := c.http.Do(dataReq)
	if err != nil {
		return DownloadResult{}, fmt.Errorf("opensubtitles: fetch subtitle payload: %w", err)
	}
	defer dataResp.Body.Close()

	if dataResp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(dataResp.Body, 4096))
		return DownloadResult{}, fmt.Errorf("opensubtitles: subtitle download failed (%s): %s", dataResp.Status, strings.TrimSpace(string(body)))
	}

	data, err := io.ReadAll(dataResp.Body)
	if err != nil {
		return DownloadResult{}, fmt.Errorf("opensubtitles: read subtitle data: %w", err)
	}

	return DownloadResult{
		Data:     data,
		FileName: info.FileName,
		Language: info.Language,
	}, nil
}

func (c *Client) applyHeaders(req *http.Request) {
	req.Header.Set("Api-Key", c.apiKey)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

type searchResponse struct {
	Data []struct {
		ID         string           `json:"id"`
		Attributes searchAttributes `json:"attributes"`
	} `json:"data"`
}

type searchAttributes struct {
	Language      string       `json:"language"`
	Release       string       `json:"release"`
	DownloadCount int          `json:"download_count"`
	Rating        float64      `json:"rating"`
	Files         []searchFile `json:"files"`
}

type searchFile struct {
	FileID   int64  `json:"file_id"`
	FileName string `json:"file_name"`
	FileSize int64  `json:"file_size"`
}

type downloadResponse struct {
	Link     string `json:"link"`
	FileName string `json:"file_name"`
	Language string `json:"language"`
}
