package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/captionmate/captionmate/internal/config"
	"github.com/captionmate/captionmate/internal/media"
	"github.com/captionmate/captionmate/internal/opensubtitles"
)

// fakeSaver records saved payloads and serves a canned existence set.
type fakeSaver struct {
	saved    map[string][]byte
	existing map[string]bool
}

func newFakeSaver() *fakeSaver {
	return &fakeSaver{saved: map[string][]byte{}, existing: map[string]bool{}}
}

func (f *fakeSaver) Save(path string, data []byte, overwrite bool) error {
	f.saved[path] = data
	return nil
}

func (f *fakeSaver) Exists(path string) bool {
	return f.existing[path]
}

const downloaderSearchPayload = `{
  "data": [
    {
      "id": "201",
      "attributes": {
        "language": "zh-cn",
        "download_count": 500,
        "files": [{"file_id": 1, "file_name": "release-chs.srt", "file_size": 1000}]
      }
    },
    {
      "id": "202",
      "attributes": {
        "language": "en",
        "download_count": 300,
        "files": [{"file_id": 2, "file_name": "release-eng.srt", "file_size": 1000}]
      }
    }
  ]
}`

// testDownloader serves search results and payloads from a stub API and
// records the query parameters of the last search.
func testDownloader(t *testing.T, cfg *config.Config, saver Saver, searchBody string) (*Downloader, *map[string]string) {
	t.Helper()

	lastQuery := map[string]string{}
	mux := http.NewServeMux()
	mux.HandleFunc("/subtitles", func(w http.ResponseWriter, r *http.Request) {
		for key := range r.URL.Query() {
			lastQuery[key] = r.URL.Query().Get(key)
		}
		w.Write([]byte(searchBody))
	})
	mux.HandleFunc("/download", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"link": "/payload", "file_name": "payload.srt"}`))
	})
	mux.HandleFunc("/payload", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("subtitle body"))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	api, err := opensubtitles.New(opensubtitles.Config{
		APIKey:     "test-key",
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
	})
	require.NoError(t, err)

	return NewDownloader(cfg, api, saver, nil), &lastQuery
}

func TestDownloadForVideo(t *testing.T) {
	saver := newFakeSaver()
	dl, lastQuery := testDownloader(t, config.DefaultConfig(), saver, downloaderSearchPayload)

	video := media.VideoFile{
		Filename: "Movie.2023.1080p.BluRay.mkv",
		Path:     "/Media/Movie.2023.1080p.BluRay.mkv",
		Size:     1 << 30,
	}

	outcomes, err := dl.DownloadForVideo(context.Background(), video, nil, "")
	require.NoError(t, err)

	// One subtitle per configured language, named by the pattern, next to
	// the video.
	require.Len(t, outcomes, 2)
	assert.Equal(t, "zh-cn", outcomes[0].Language)
	assert.Equal(t, "/Media/Movie.2023.1080p.BluRay.zh-cn.srt", outcomes[0].Path)
	assert.Equal(t, "en", outcomes[1].Language)
	assert.Equal(t, "/Media/Movie.2023.1080p.BluRay.en.srt", outcomes[1].Path)
	assert.Equal(t, []byte("subtitle body"), saver.saved[outcomes[0].Path])

	// The NAS path is not a readable local file, so the release tokens
	// were stripped into a title query.
	assert.Equal(t, "movie 2023", (*lastQuery)["query"])
	assert.Equal(t, "zh-cn,en", (*lastQuery)["languages"])
}

func TestDownloadForVideo_OutputDir(t *testing.T) {
	saver := newFakeSaver()
	dl, _ := testDownloader(t, config.DefaultConfig(), saver, downloaderSearchPayload)

	video := media.VideoFile{Filename: "Movie.2023.mkv", Path: "/Media/Movie.2023.mkv"}
	outcomes, err := dl.DownloadForVideo(context.Background(), video, []string{"en"}, "/Subs/incoming")
	require.NoError(t, err)

	require.Len(t, outcomes, 1)
	assert.Equal(t, "/Subs/incoming/Movie.2023.en.srt", outcomes[0].Path)
}

func TestDownloadForVideo_NoCandidates(t *testing.T) {
	dl, _ := testDownloader(t, config.DefaultConfig(), newFakeSaver(), `{"data": []}`)

	video := media.VideoFile{Filename: "Obscure.Short.mkv", Path: "/Media/Obscure.Short.mkv"}
	outcomes, err := dl.DownloadForVideo(context.Background(), video, nil, "")
	require.NoError(t, err)
	assert.Empty(t, outcomes)
}

func TestSearchForVideo_HashStrategyForLocalFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Movie.2023.mkv")
	require.NoError(t, os.WriteFile(path, make([]byte, 65536*2), 0o644))

	dl, lastQuery := testDownloader(t, config.DefaultConfig(), newFakeSaver(), downloaderSearchPayload)

	video := media.VideoFile{Filename: "Movie.2023.mkv", Path: path, Size: 65536 * 2}
	results, err := dl.SearchForVideo(context.Background(), video, []string{"en"})
	require.NoError(t, err)

	assert.NotEmpty(t, results)
	assert.Equal(t, "0000000000020000", (*lastQuery)["moviehash"])
	assert.Equal(t, "131072", (*lastQuery)["moviebytesize"])
}

func TestBestForLanguagePrefersConfiguredFormats(t *testing.T) {
	dl, _ := testDownloader(t, config.DefaultConfig(), newFakeSaver(), `{}`)

	candidates := []opensubtitles.Subtitle{
		{FileID: 1, Language: "en", FileName: "popular.sub", Downloads: 900},
		{FileID: 2, Language: "en", FileName: "decent.srt", Downloads: 100},
		{FileID: 3, Language: "ja", FileName: "other.srt", Downloads: 999},
	}

	best, ok := dl.BestForLanguage(candidates, "en")
	require.True(t, ok)
	assert.Equal(t, int64(2), best.FileID)

	// Without a preferred-format candidate the best overall wins.
	best, ok = dl.BestForLanguage(candidates[:1], "en")
	require.True(t, ok)
	assert.Equal(t, int64(1), best.FileID)

	_, ok = dl.BestForLanguage(candidates, "ko")
	assert.False(t, ok)
}

func TestHasSubtitle(t *testing.T) {
	saver := newFakeSaver()
	dl, _ := testDownloader(t, config.DefaultConfig(), saver, `{}`)

	video := media.VideoFile{Filename: "Movie.2023.mkv", Path: "/Media/Movie.2023.mkv"}
	assert.False(t, dl.HasSubtitle(video))

	saver.existing["/Media/Movie.2023.zh-cn.srt"] = true
	assert.True(t, dl.HasSubtitle(video))

	// The bare "<stem>.<format>" shape counts as well.
	delete(saver.existing, "/Media/Movie.2023.zh-cn.srt")
	saver.existing["/Media/Movie.2023.ass"] = true
	assert.True(t, dl.HasSubtitle(video))
}

func TestOpenSubtitlesFromConfig_RequiresAPIKey(t *testing.T) {
	_, err := OpenSubtitlesFromConfig(config.OpenSubtitlesConfig{})
	assert.Error(t, err)

	client, err := OpenSubtitlesFromConfig(config.OpenSubtitlesConfig{APIKey: "k"})
	require.NoError(t, err)
	assert.NotNil(t, client)
}
