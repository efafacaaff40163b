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

const instagramMediaFields = "caption,media_type,media_url,permalink,timestamp,like_count,comments_count,children{media_url,media_type}"

// Instagram собирает медиа-ленту аккаунта через Graph API.
type Instagram struct {
	http        *http.Client
	baseURL     string
	accessToken string
	log         zerolog.Logger
}

var _ domain.Collector = (*Instagram)(nil)

// NewInstagram создаёт сборщик ленты Instagram.
func NewInstagram(baseURL, accessToken string, timeout time.Duration, log zerolog.Logger) *Instagram {
	if baseURL == "" {
		baseURL = "https://graph.instagram.com"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Instagram{
		http:        &http.Client{Timeout: timeout},
		baseURL:     baseURL,
		accessToken: accessToken,
		log:         log,
	}
}

type igMediaChild struct {
	MediaURL  string `json:"media_url"`
	MediaType string `json:"media_type"`
}

type igMedia struct {
	Caption       string `json:"caption"`
	MediaType     string `json:"media_type"`
	MediaURL      string `json:"media_url"`
	Permalink     string `json:"permalink"`
	Timestamp     string `json:"timestamp"`
	LikeCount     int64  `json:"like_count"`
	CommentsCount int64  `json:"comments_count"`
	Children      struct {
		Data []igMediaChild `json:"data"`
	} `json:"children"`
}

type igMediaResponse struct {
	Data []igMedia `json:"data"`
}

// Collect выгружает ленту аккаунта. Любой сбой даёт пустой срез.
func (i *Instagram) Collect(ctx context.Context, locator string, maxItems int) []domain.RawRecord {
	records, err := i.fetch(ctx, locator, maxItems)
	if err != nil {
		metrics.CollectorErrors.WithLabelValues(domain.PlatformInstagram).Inc()
		i.log.Warn().Err(err).Str("locator", locator).Msg("instagram: сбор не удался")
		return nil
	}
	metrics.CollectorItems.WithLabelValues(domain.PlatformInstagram).Add(float64(len(records)))
	return records
}

func (i *Instagram) fetch(ctx context.Context, locator string, maxItems int) ([]domain.RawRecord, error) {
	endpoint, err := url.Parse(fmt.Sprintf("%s/%s/media", i.baseURL, url.PathEscape(locator)))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	query := endpoint.Query()
	query.Set("fields", instagramMediaFields)
	query.Set("limit", strconv.Itoa(maxItems))
	query.Set("access_token", i.accessToken)
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	start := time.Now()
	resp, err := i.http.Do(req)
	metrics.ObserveNetworkRequest("instagram", "list_media", locator, start, err)
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
	var parsed igMediaResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	records := make([]domain.RawRecord, 0, len(parsed.Data))
	for idx, media := range parsed.Data {
		if maxItems > 0 && idx >= maxItems {
			break
		}
		urls := make([]string, 0, 1+len(media.Children.Data))
		if media.MediaURL != "" {
			urls = append(urls, media.MediaURL)
		}
		// карусель несёт вложения в children, родительский URL может отсутствовать
		for _, child := range media.Children.Data {
			if child.MediaURL != "" {
				urls = append(urls, child.MediaURL)
			}
		}
		records = append(records, domain.RawRecord{
			"platform":       domain.PlatformInstagram,
			"caption":        media.Caption,
			"media_type":     media.MediaType,
			"media_urls":     urls,
			"permalink":      media.Permalink,
			"timestamp":      media.Timestamp,
			"like_count":     media.LikeCount,
			"comments_count": media.CommentsCount,
		})
	}
	return records, nil
}
