// Package coursesearch finds learning courses for a skill gap through a
// Serper-style web search API. Results are filtered to course-like hits,
// capped at three, cached, and rate limited.
package coursesearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// MaxCourses caps how many courses a single search returns.
const MaxCourses = 3

// Course is one recommended learning resource.
type Course struct {
	Name        string `json:"name"`
	Provider    string `json:"provider"`
	Link        string `json:"link"`
	Price       string `json:"price"`
	Duration    string `json:"duration"`
	Rating      string `json:"rating"`
	Description string `json:"description"`
}

// SearchResult is the structured answer for one skill gap.
type SearchResult struct {
	SkillGap      string   `json:"skill_gap"`
	LearningStyle string   `json:"learning_style"`
	CoursesFound  int      `json:"courses_found"`
	Courses       []Course `json:"courses"`
}

// Config configures the search client.
type Config struct {
	// Endpoint is the search API URL, e.g. "https://google.serper.dev/search".
	Endpoint string
	// APIKey authenticates against the search API.
	APIKey string
	// RequestsPerMinute bounds outbound search calls. Defaults to 20.
	RequestsPerMinute int
	// CacheTTL is how long results stay cached. Defaults to 24h.
	CacheTTL time.Duration
	// Timeout bounds each HTTP call. Defaults to 10s.
	Timeout time.Duration
}

// Client performs course searches.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	cache   Cache
	logger  *zap.Logger
}

// NewClient creates a search client. cache may be nil to disable caching.
func NewClient(cfg Config, cache Cache, logger *zap.Logger) *Client {
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 20
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 24 * time.Hour
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), cfg.RequestsPerMinute),
		cache:   cache,
		logger:  logger.With(zap.String("component", "course_search")),
	}
}

// serper wire types

type searchRequest struct {
	Query    string `json:"q"`
	Num      int    `json:"num"`
	Country  string `json:"gl"`
	Language string `json:"hl"`
}

type searchResponse struct {
	Organic []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic"`
}

var courseKeywords = []string{"course", "learn", "training", "tutorial", "class", "education"}

// Search finds up to max courses matching the skill gap and learning style.
// A cached result is returned without touching the network. When nothing
// course-like is found, a single placeholder entry points at a manual search.
func (c *Client) Search(ctx context.Context, skillGap, learningStyle string, max int) (*SearchResult, error) {
	if max <= 0 || max > MaxCourses {
		max = MaxCourses
	}
	if learningStyle == "" {
		learningStyle = "online"
	}

	key := cacheKey(skillGap, learningStyle, max)
	if c.cache != nil {
		if cached, ok, err := c.cache.Get(ctx, key); err == nil && ok {
			var res SearchResult
			if err := json.Unmarshal([]byte(cached), &res); err == nil {
				c.logger.Debug("course search cache hit", zap.String("skill_gap", skillGap))
				return &res, nil
			}
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	query := fmt.Sprintf("%s course %s learning", skillGap, learningStyle)
	body, err := json.Marshal(searchRequest{
		Query:    query,
		Num:      max * 2, // fetch extra so keyword filtering still fills the cap
		Country:  "us",
		Language: "en",
	})
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("X-API-KEY", c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 300))
		return nil, fmt.Errorf("search API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	courses := make([]Course, 0, max)
	for _, hit := range parsed.Organic {
		if len(courses) >= max {
			break
		}
		if !looksLikeCourse(hit.Title, hit.Snippet) {
			continue
		}
		courses = append(courses, Course{
			Name:        hit.Title,
			Provider:    providerFromURL(hit.Link),
			Link:        hit.Link,
			Price:       "Varies",
			Duration:    "Varies",
			Rating:      "N/A",
			Description: clampDescription(hit.Snippet, hit.Link),
		})
	}

	if len(courses) == 0 {
		courses = append(courses, placeholderCourse(skillGap))
	}

	result := &SearchResult{
		SkillGap:      skillGap,
		LearningStyle: learningStyle,
		CoursesFound:  len(courses),
		Courses:       courses,
	}

	if c.cache != nil {
		if raw, err := json.Marshal(result); err == nil {
			if err := c.cache.Set(ctx, key, string(raw), c.cfg.CacheTTL); err != nil {
				c.logger.Warn("course search cache write failed", zap.Error(err))
			}
		}
	}

	c.logger.Debug("course search completed",
		zap.String("skill_gap", skillGap),
		zap.Int("courses_found", len(courses)),
	)
	return result, nil
}

func cacheKey(skillGap, style string, max int) string {
	return fmt.Sprintf("coursesearch:%s|%s|%d", strings.ToLower(strings.TrimSpace(skillGap)), style, max)
}

func looksLikeCourse(title, snippet string) bool {
	haystack := strings.ToLower(title + " " + snippet)
	for _, kw := range courseKeywords {
		if strings.Contains(haystack, kw) {
			return true
		}
	}
	return false
}

func clampDescription(snippet, link string) string {
	desc := strings.TrimSpace(snippet)
	if desc == "" {
		desc = "Course available at " + link
	}
	if utf8.RuneCountInString(desc) > 300 {
		desc = string([]rune(desc)[:297]) + "..."
	}
	return desc
}

func placeholderCourse(skillGap string) Course {
	return Course{
		Name:        fmt.Sprintf("Learning Resources for %s", skillGap),
		Provider:    "Various Platforms",
		Link:        "https://www.google.com/search?q=" + strings.ReplaceAll(skillGap, " ", "+") + "+course",
		Price:       "Varies",
		Duration:    "Varies",
		Rating:      "N/A",
		Description: fmt.Sprintf("Search for %s courses on online learning platforms", skillGap),
	}
}

// providerFromURL maps well-known learning platforms from the result domain.
func providerFromURL(url string) string {
	lower := strings.ToLower(url)
	switch {
	case strings.Contains(lower, "coursera.org"):
		return "Coursera"
	case strings.Contains(lower, "udemy.com"):
		return "Udemy"
	case strings.Contains(lower, "edx.org"):
		return "edX"
	case strings.Contains(lower, "pluralsight.com"):
		return "Pluralsight"
	case strings.Contains(lower, "linkedin.com"), strings.Contains(lower, "lynda.com"):
		return "LinkedIn Learning"
	case strings.Contains(lower, "khanacademy.org"):
		return "Khan Academy"
	case strings.Contains(lower, "codecademy.com"):
		return "Codecademy"
	}
	return "Unknown"
}
