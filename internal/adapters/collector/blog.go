package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"brand-profiler/internal/domain"
	"brand-profiler/internal/infra/metrics"
)

// Blog собирает публикации блога через JSON API платформы.
// Блог — длиннотекстовый источник: ни медиа, ни реакции API не отдаёт.
type Blog struct {
	http    *http.Client
	baseURL string
	log     zerolog.Logger
}

var _ domain.Collector = (*Blog)(nil)

// NewBlog создаёт сборщик блога.
func NewBlog(baseURL string, timeout time.Duration, log zerolog.Logger) *Blog {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Blog{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
		log:     log,
	}
}

type blogPost struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Tags        []string `json:"tags"`
	URL         string   `json:"url"`
	PublishedAt string   `json:"published_at"`
}

type blogPostsResponse struct {
	Posts []blogPost `json:"posts"`
}

// Collect выгружает посты блога. Любой сбой даёт пустой срез.
func (b *Blog) Collect(ctx context.Context, locator string, maxItems int) []domain.RawRecord {
	records, err := b.fetch(ctx, locator, maxItems)
	if err != nil {
		metrics.CollectorErrors.WithLabelValues(domain.PlatformBlog).Inc()
		b.log.Warn().Err(err).Str("locator", locator).Msg("blog: сбор не удался")
		return nil
	}
	metrics.CollectorItems.WithLabelValues(domain.PlatformBlog).Add(float64(len(records)))
	return records
}

func (b *Blog) fetch(ctx context.Context, locator string, maxItems int) ([]domain.RawRecord, error) {
	endpoint, err := url.Parse(b.baseURL + "/posts")
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	query := endpoint.Query()
	query.Set("blog_id", locator)
	query.Set("limit", strconv.Itoa(maxItems))
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	start := time.Now()
	resp, err := b.http.Do(req)
	metrics.ObserveNetworkRequest("blog", "list_posts", locator, start, err)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	var parsed blogPostsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	records := make([]domain.RawRecord, 0, len(parsed.Posts))
	for i, post := range parsed.Posts {
		if maxItems > 0 && i >= maxItems {
			break
		}
		records = append(records, domain.RawRecord{
			"platform":     domain.PlatformBlog,
			"id":           post.ID,
			"title":        post.Title,
			"content":      post.Content,
			"tags":         post.Tags,
			"url":          post.URL,
			"published_at": post.PublishedAt,
		})
	}
	return records, nil
}
