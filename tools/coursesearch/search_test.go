package coursesearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func serperStub(t *testing.T, hits []map[string]string, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			calls.Add(1)
		}
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "test-key", r.Header.Get("X-API-KEY"))

		var req searchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.NotEmpty(t, req.Query)

		resp := map[string]any{"organic": hits}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, endpoint string, cache Cache) *Client {
	t.Helper()
	return NewClient(Config{
		Endpoint:          endpoint,
		APIKey:            "test-key",
		RequestsPerMinute: 600,
	}, cache, zap.NewNop())
}

func TestSearchFiltersAndCapsResults(t *testing.T) {
	srv := serperStub(t, []map[string]string{
		{"title": "Go Concurrency Course", "link": "https://www.coursera.org/go", "snippet": "Learn Go"},
		{"title": "Random blog post", "link": "https://example.com/post", "snippet": "unrelated"},
		{"title": "System Design Training", "link": "https://www.udemy.com/sd", "snippet": "training class"},
		{"title": "Kubernetes Tutorial", "link": "https://www.edx.org/k8s", "snippet": "hands-on tutorial"},
		{"title": "Another Course", "link": "https://www.pluralsight.com/x", "snippet": "video course"},
	}, nil)

	res, err := newTestClient(t, srv.URL, nil).Search(context.Background(), "system design", "online", 10)

	require.NoError(t, err)
	assert.Equal(t, "system design", res.SkillGap)
	assert.Len(t, res.Courses, MaxCourses, "capped at three even when more match")
	assert.Equal(t, "Coursera", res.Courses[0].Provider)
	assert.Equal(t, "Udemy", res.Courses[1].Provider)
	for _, c := range res.Courses {
		assert.NotEmpty(t, c.Link)
		assert.NotEmpty(t, c.Description)
	}
}

func TestSearchReturnsPlaceholderWhenNothingMatches(t *testing.T) {
	srv := serperStub(t, []map[string]string{
		{"title": "Unrelated result", "link": "https://example.com", "snippet": "nothing here"},
	}, nil)

	res, err := newTestClient(t, srv.URL, nil).Search(context.Background(), "rust macros", "", 3)

	require.NoError(t, err)
	require.Len(t, res.Courses, 1)
	assert.Contains(t, res.Courses[0].Name, "rust macros")
	assert.Contains(t, res.Courses[0].Link, "google.com/search")
}

func TestSearchUsesRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	cache := NewRedisCache(rdb)

	var calls atomic.Int32
	srv := serperStub(t, []map[string]string{
		{"title": "Go Course", "link": "https://www.coursera.org/go", "snippet": "learn go"},
	}, &calls)

	client := newTestClient(t, srv.URL, cache)
	ctx := context.Background()

	first, err := client.Search(ctx, "golang", "online", 3)
	require.NoError(t, err)
	second, err := client.Search(ctx, "golang", "online", 3)
	require.NoError(t, err)

	assert.EqualValues(t, 1, calls.Load(), "second search must hit the cache")
	assert.Equal(t, first, second)

	// Expired entries trigger a fresh search.
	mr.FastForward(25 * time.Hour)
	_, err = client.Search(ctx, "golang", "online", 3)
	require.NoError(t, err)
	assert.EqualValues(t, 2, calls.Load())
}

func TestSearchAPIErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "invalid api key", http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	_, err := newTestClient(t, srv.URL, nil).Search(context.Background(), "golang", "online", 3)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestClampDescriptionMultibyteSnippet(t *testing.T) {
	got := clampDescription(strings.Repeat("课程介绍", 200), "https://example.com")

	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 300, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, "..."))

	short := clampDescription("brief snippet", "https://example.com")
	assert.Equal(t, "brief snippet", short)
}

func TestProviderFromURL(t *testing.T) {
	cases := map[string]string{
		"https://www.coursera.org/learn/go": "Coursera",
		"https://www.udemy.com/course/x":    "Udemy",
		"https://www.edx.org/course/y":      "edX",
		"https://www.linkedin.com/learning": "LinkedIn Learning",
		"https://www.khanacademy.org/cs":    "Khan Academy",
		"https://random.site/course":        "Unknown",
	}
	for url, want := range cases {
		assert.Equal(t, want, providerFromURL(url), url)
	}
}

func TestToolExecuteValidatesParams(t *testing.T) {
	srv := serperStub(t, []map[string]string{
		{"title": "Go Course", "link": "https://www.coursera.org/go", "snippet": "learn go"},
	}, nil)
	tool := NewTool(newTestClient(t, srv.URL, nil))

	_, err := tool.Execute(context.Background(), map[string]any{})
	assert.Error(t, err, "skill_gap is required")

	out, err := tool.Execute(context.Background(), map[string]any{
		"skill_gap":   "golang",
		"max_results": float64(2),
	})
	require.NoError(t, err)

	var res SearchResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "golang", res.SkillGap)
	assert.LessOrEqual(t, res.CoursesFound, 2)
}
