// Package analyzer extracts video metadata with ffprobe. Probe data is
// best effort: a missing ffprobe binary or an unreadable file leaves the
// video's probe fields zero instead of failing the scan.
package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/captionmate/captionmate/internal/logging"
	"github.com/captionmate/captionmate/internal/media"
)

// probeResult is the subset of ffprobe JSON output we consume.
type probeResult struct {
	Streams []probeStream `json:"streams"`
	Format  probeFormat   `json:"format"`
}

type probeStream struct {
	CodecName  string `json:"codec_name"`
	CodecType  string `json:"codec_type"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	RFrameRate string `json:"r_frame_rate"`
}

type probeFormat struct {
	Duration string `json:"duration"`
	BitRate  string `json:"bit_rate"`
}

// Analyzer probes local video files.
type Analyzer struct {
	binary string
	log    *logging.Logger
}

// New creates an Analyzer. An empty binary defaults to "ffprobe" on PATH.
func New(binary string, log *logging.Logger) *Analyzer {
	if binary == "" {
		binary = "ffprobe"
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Analyzer{binary: binary, log: log}
}

// Available reports whether the ffprobe binary can be found.
func (a *Analyzer) Available() bool {
	_, err := exec.LookPath(a.binary)
	return err == nil
}

// Probe runs ffprobe on path and decodes the result.
func (a *Analyzer) Probe(ctx context.Context, path string) (*probeResult, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("ffprobe: empty path")
	}

	cmd := exec.CommandContext(ctx, a.binary,
		"-v", "error", "-hide_banner",
		"-show_format", "-show_streams",
		"-of", "json", "--", path)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("ffprobe: %w: %s", err, strings.TrimSpace(string(output)))
	}

	var result probeResult
	if err := json.Unmarshal(output, &result); err != nil {
		return nil, fmt.Errorf("ffprobe parse: %w", err)
	}
	return &result, nil
}

// Enrich fills the probe fields of a video in place. Probe failures are
// logged and swallowed so scanning continues without metadata.
func (a *Analyzer) Enrich(ctx context.Context, video *media.VideoFile) {
	result, err := a.Probe(ctx, video.Path)
	if err != nil {
		a.log.Debug("analyzer", "probe failed",
			logging.F("path", video.Path), logging.F("error", err))
		return
	}
	applyProbe(video, result)
}

// EnrichAll probes every video in the slice. A missing ffprobe binary
// short-circuits without touching any entry.
func (a *Analyzer) EnrichAll(ctx context.Context, videos []media.VideoFile) {
	if !a.Available() {
		a.log.Warn("analyzer", "ffprobe not found, skipping metadata",
			logging.F("binary", a.binary))
		return
	}
	for i := range videos {
		a.Enrich(ctx, &videos[i])
	}
}

func applyProbe(video *media.VideoFile, result *probeResult) {
	video.Duration = parseProbeFloat(result.Format.Duration)
	video.Bitrate = int64(parseProbeFloat(result.Format.BitRate))

	for _, stream := range result.Streams {
		if !strings.EqualFold(stream.CodecType, "video") {
			continue
		}
		video.Codec = stream.CodecName
		video.Width = stream.Width
		video.Height = stream.Height
		video.FPS = parseFrameRate(stream.RFrameRate)
		break
	}
}

func parseProbeFloat(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}

// parseFrameRate converts an ffprobe rational like "24000/1001" to
// frames per second.
func parseFrameRate(value string) float64 {
	num, den, found := strings.Cut(strings.TrimSpace(value), "/")
	if !found {
		return parseProbeFloat(value)
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0
	}
	return n / d
}
