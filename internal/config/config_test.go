package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "smb", cfg.NAS.Protocol)
	assert.Equal(t, 445, cfg.NAS.Port)
	assert.Equal(t, []string{"zh-cn", "en"}, cfg.Subtitles.Languages)
	assert.Equal(t, 0.8, cfg.AI.Threshold)
	assert.True(t, cfg.Scanning.Recursive)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.NAS.Host = "nas.local"
	cfg.NAS.Username = "media"
	cfg.AI.Enabled = true
	cfg.AI.Provider = "openai"
	cfg.AI.Endpoint = "https://api.deepseek.com/v1"
	cfg.AI.APIKey = "secret"
	cfg.AI.Model = "deepseek-reasoner"
	cfg.OpenSubtitles.APIKey = "os-key"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "nas.local", loaded.NAS.Host)
	assert.Equal(t, "media", loaded.NAS.Username)
	assert.True(t, loaded.AI.Enabled)
	assert.Equal(t, "deepseek-reasoner", loaded.AI.Model)
	assert.Equal(t, "os-key", loaded.OpenSubtitles.APIKey)
	assert.Equal(t, "captionmate-v1.0", loaded.OpenSubtitles.UserAgent)
	assert.Equal(t, []string{"zh-cn", "en"}, loaded.Subtitles.Languages)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("nas:\n  host: partial.local\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "partial.local", cfg.NAS.Host)
	assert.Equal(t, "smb", cfg.NAS.Protocol)
	assert.Equal(t, []string{"srt", "ass"}, cfg.Subtitles.Formats)
}

func TestLoad_CanonicalizesLanguageTags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "subtitles:\n  languages:\n    - zh_CN\n    - EN\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"zh-cn", "en"}, cfg.Subtitles.Languages)
	assert.Equal(t, "zh-cn", cfg.Subtitles.DefaultLanguage())
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	errs := cfg.Validate()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "NAS host")

	cfg.NAS.Host = "nas.local"
	assert.Empty(t, cfg.Validate())

	cfg.NAS.Protocol = "nfs"
	errs = cfg.Validate()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "protocol")

	cfg.NAS.Protocol = "smb"
	cfg.AI.Enabled = true
	cfg.AI.Provider = "openai"
	cfg.AI.APIKey = ""
	errs = cfg.Validate()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "api_key")
}

func TestGetSet(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.Set("nas.host", "nas.local"))
	got, err := cfg.Get("nas.host")
	require.NoError(t, err)
	assert.Equal(t, "nas.local", got)

	require.NoError(t, cfg.Set("nas.port", "139"))
	assert.Equal(t, 139, cfg.NAS.Port)

	require.NoError(t, cfg.Set("ai.threshold", "0.65"))
	assert.Equal(t, 0.65, cfg.AI.Threshold)

	require.NoError(t, cfg.Set("ai.enabled", "yes"))
	assert.True(t, cfg.AI.Enabled)

	require.NoError(t, cfg.Set("subtitles.languages", "en, ja"))
	assert.Equal(t, []string{"en", "ja"}, cfg.Subtitles.Languages)

	// Loose tags are canonicalized.
	require.NoError(t, cfg.Set("subtitles.languages", "zh_CN, EN"))
	assert.Equal(t, []string{"zh-cn", "en"}, cfg.Subtitles.Languages)

	require.NoError(t, cfg.Set("opensubtitles.api_key", "os-key"))
	got, err = cfg.Get("opensubtitles.api_key")
	require.NoError(t, err)
	assert.Equal(t, "os-key", got)

	assert.Error(t, cfg.Set("nas.port", "not-a-number"))
	assert.Error(t, cfg.Set("unknown.key", "x"))
	assert.Error(t, cfg.Set("nokey", "x"))

	_, err = cfg.Get("unknown.key")
	assert.Error(t, err)
}
