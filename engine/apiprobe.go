package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"

	"github.com/bencium/agi-detector/models"
	"github.com/bencium/agi-detector/pool"
	"github.com/bencium/agi-detector/urlutil"
)

// apiPaths are conventional JSON endpoints probed relative to the target's
// base. WordPress REST is by far the most common for lab blogs.
var apiPaths = []string{
	"/wp-json/wp/v2/posts?per_page=20",
	"/api/posts",
	"/posts.json",
	"/feed.json",
}

// APIProbeStrategy probes conventional JSON endpoints with a resty client
// behind a Cloudflare-bypass transport.
type APIProbeStrategy struct {
	client *resty.Client
	agents *pool.Pool
}

// NewAPIProbeStrategy creates the probe strategy. Proxies rotate
// round-robin per request.
func NewAPIProbeStrategy(timeout time.Duration, agents, proxies *pool.Pool) *APIProbeStrategy {
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetTransport(cloudflarebp.AddCloudFlareByPass(&http.Transport{
		Proxy: proxySelector(proxies),
	}))
	return &APIProbeStrategy{client: client, agents: agents}
}

func (s *APIProbeStrategy) Kind() models.StrategyKind { return models.StrategyAPI }

// Acquire tries each candidate endpoint, decoding the first JSON response
// that yields items.
func (s *APIProbeStrategy) Acquire(ctx context.Context, target models.AcquisitionTarget) (*models.Payload, error) {
	endpoints, err := s.candidates(target)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for _, endpoint := range endpoints {
		req := s.client.R().
			SetContext(ctx).
			SetHeader("Accept", "application/json")
		if ua := s.agents.Next(); ua != "" {
			req.SetHeader("User-Agent", ua)
		}

		resp, err := req.Get(endpoint)
		if err != nil {
			lastErr = fmt.Errorf("api: get %s: %w", endpoint, err)
			continue
		}
		if resp.StatusCode() == 403 {
			// Access denial is terminal for this strategy; let the cascade
			// fall through rather than retry a blocked path.
			return nil, fmt.Errorf("api: access denied (403) at %s", endpoint)
		}
		if resp.StatusCode() >= 400 {
			lastErr = fmt.Errorf("api: HTTP %d at %s", resp.StatusCode(), endpoint)
			continue
		}

		items, err := decodeItems(resp.Body())
		if err != nil {
			lastErr = fmt.Errorf("api: decode %s: %w", endpoint, err)
			continue
		}
		if len(items) == 0 {
			continue
		}
		slog.Debug("api probe succeeded", "endpoint", endpoint, "items", len(items))
		return &models.Payload{Items: items}, nil
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, nil
}

// candidates returns the endpoints to probe: the target itself when it
// already looks like an API URL, else the conventional paths off its base.
func (s *APIProbeStrategy) candidates(target models.AcquisitionTarget) ([]string, error) {
	lower := strings.ToLower(target.URL)
	if strings.Contains(lower, "/api/") || strings.Contains(lower, "/wp-json/") || strings.HasSuffix(lower, ".json") {
		return []string{target.URL}, nil
	}
	base, err := urlutil.Base(target.URL)
	if err != nil {
		return nil, fmt.Errorf("api: %w", err)
	}
	urls := make([]string, 0, len(apiPaths))
	for _, p := range apiPaths {
		urls = append(urls, base+p)
	}
	return urls, nil
}

// jsonPost covers the handful of JSON shapes seen in the wild: WordPress
// REST (rendered title/excerpt), JSON Feed, and plain title/link lists.
type jsonPost struct {
	Title       json.RawMessage `json:"title"`
	Link        string          `json:"link"`
	URL         string          `json:"url"`
	Date        string          `json:"date"`
	DatePub     string          `json:"date_published"`
	Content     json.RawMessage `json:"content"`
	ContentText string          `json:"content_text"`
	ContentHTML string          `json:"content_html"`
	Excerpt     json.RawMessage `json:"excerpt"`
	Description string          `json:"description"`
	Body        string          `json:"body"`
}

// decodeItems parses body as either a top-level array of posts or an object
// wrapping one under items/posts/data/results.
func decodeItems(body []byte) ([]models.Item, error) {
	var posts []jsonPost
	if err := json.Unmarshal(body, &posts); err == nil {
		return postsToItems(posts), nil
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(body, &wrapper); err != nil {
		return nil, fmt.Errorf("neither array nor object: %w", err)
	}
	for _, key := range []string{"items", "posts", "data", "results"} {
		raw, ok := wrapper[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, &posts); err == nil {
			return postsToItems(posts), nil
		}
	}
	return nil, nil
}

func postsToItems(posts []jsonPost) []models.Item {
	items := make([]models.Item, 0, len(posts))
	for _, p := range posts {
		link := p.Link
		if link == "" {
			link = p.URL
		}
		title := renderedString(p.Title)
		if title == "" && link == "" {
			continue
		}

		body := p.ContentText
		if body == "" {
			body = p.ContentHTML
		}
		if body == "" {
			body = renderedString(p.Content)
		}
		if body == "" {
			body = renderedString(p.Excerpt)
		}
		if body == "" {
			body = p.Description
		}
		if body == "" {
			body = p.Body
		}

		items = append(items, models.Item{
			Title:       title,
			URL:         link,
			Body:        body,
			PublishedAt: parsePostDate(p),
		})
	}
	return items
}

// renderedString accepts either a bare JSON string or the WordPress
// {"rendered": "..."} object.
func renderedString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var obj struct {
		Rendered string `json:"rendered"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return strings.TrimSpace(obj.Rendered)
	}
	return ""
}

func parsePostDate(p jsonPost) time.Time {
	for _, raw := range []string{p.Date, p.DatePub} {
		if raw == "" {
			continue
		}
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, raw); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}
