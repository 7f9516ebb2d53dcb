package opensubtitles

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchPayload = `{
  "data": [
    {
      "id": "101",
      "attributes": {
        "language": "en",
        "release": "Movie.2023.1080p.BluRay",
        "download_count": 50,
        "rating": 8.0,
        "files": [{"file_id": 11, "file_name": "movie-en.srt", "file_size": 40960}]
      }
    },
    {
      "id": "102",
      "attributes": {
        "language": "zh-cn",
        "release": "Movie.2023.WEBRip",
        "download_count": 900,
        "rating": 6.5,
        "files": [{"file_id": 22, "file_name": "movie-chs.srt", "file_size": 51200}]
      }
    },
    {
      "id": "103",
      "attributes": {
        "language": "en",
        "release": "no files on this one",
        "download_count": 9999,
        "files": []
      }
    },
    {
      "id": "104",
      "attributes": {
        "language": "en",
        "release": "same downloads, better rating",
        "download_count": 50,
        "rating": 9.5,
        "files": [{"file_id": 44, "file_name": "movie-en-alt.srt", "file_size": 1024}]
      }
    }
  ]
}`

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(Config{
		APIKey:     "test-key",
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
	})
	require.NoError(t, err)
	return c
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestSearch(t *testing.T) {
	var gotQuery map[string]string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/subtitles", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("Api-Key"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))

		gotQuery = map[string]string{}
		for key := range r.URL.Query() {
			gotQuery[key] = r.URL.Query().Get(key)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(searchPayload))
	})

	c := newTestClient(t, handler)
	results, err := c.Search(context.Background(), SearchRequest{
		Query:     "movie 2023",
		Languages: []string{"zh-cn", "en"},
	})
	require.NoError(t, err)

	assert.Equal(t, "movie 2023", gotQuery["query"])
	assert.Equal(t, "zh-cn,en", gotQuery["languages"])

	// The file-less entry is dropped; the rest sort by downloads then
	// rating, best first.
	require.Len(t, results, 3)
	assert.Equal(t, int64(22), results[0].FileID)
	assert.Equal(t, int64(44), results[1].FileID)
	assert.Equal(t, int64(11), results[2].FileID)
	assert.Equal(t, "movie-chs.srt", results[0].FileName)
	assert.Equal(t, "zh-cn", results[0].Language)
	assert.Equal(t, 900, results[0].Downloads)
}

func TestSearch_HashParameters(t *testing.T) {
	var gotHash, gotSize string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHash = r.URL.Query().Get("moviehash")
		gotSize = r.URL.Query().Get("moviebytesize")
		w.Write([]byte(`{"data": []}`))
	})

	c := newTestClient(t, handler)
	results, err := c.Search(context.Background(), SearchRequest{
		MovieHash:     "00000000002f0000",
		MovieByteSize: 3221225472,
	})
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, "00000000002f0000", gotHash)
	assert.Equal(t, "3221225472", gotSize)
}

func TestSearch_ServerError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "invalid api key"}`, http.StatusUnauthorized)
	})

	c := newTestClient(t, handler)
	_, err := c.Search(context.Background(), SearchRequest{Query: "movie"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestDownload(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/download", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		w.Write([]byte(`{"link": "/payload/22", "file_name": "movie-chs.srt", "language": "zh-cn"}`))
	})
	mux.HandleFunc("/payload/22", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("1\n00:00:01,000 --> 00:00:02,000\nhello\n"))
	})

	c := newTestClient(t, mux)
	result, err := c.Download(context.Background(), 22)
	require.NoError(t, err)

	assert.Equal(t, "movie-chs.srt", result.FileName)
	assert.Equal(t, "zh-cn", result.Language)
	assert.Contains(t, string(result.Data), "hello")
}

func TestDownload_InvalidFileID(t *testing.T) {
	c := newTestClient(t, http.NewServeMux())
	_, err := c.Download(context.Background(), 0)
	assert.Error(t, err)
}

func TestDownload_MissingLink(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	c := newTestClient(t, handler)
	_, err := c.Download(context.Background(), 22)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing link")
}

func TestLogin(t *testing.T) {
	var authHeader string
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		w.Write([]byte(`{"token": "jwt-token"}`))
	})
	mux.HandleFunc("/subtitles", func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		w.Write([]byte(`{"data": []}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := New(Config{
		APIKey:     "test-key",
		Username:   "user",
		Password:   "pass",
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
	})
	require.NoError(t, err)

	require.NoError(t, c.Login(context.Background()))
	_, err = c.Search(context.Background(), SearchRequest{Query: "movie"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer jwt-token", authHeader)
}

func TestLogin_NoCredentialsIsNoop(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected without credentials")
	}))
	assert.NoError(t, c.Login(context.Background()))
}
