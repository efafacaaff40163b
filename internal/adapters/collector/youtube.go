package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"brand-profiler/internal/domain"
	"brand-profiler/internal/infra/metrics"
)

// YouTube собирает последние ролики канала через Data API v3:
// сначала поиск видео канала, затем статистика по их идентификаторам
// и статистика самого канала.
type YouTube struct {
	http    *http.Client
	baseURL string
	apiKey  string
	log     zerolog.Logger
}

var _ domain.Collector = (*YouTube)(nil)

// NewYouTube создаёт сборщик канала YouTube.
func NewYouTube(baseURL, apiKey string, timeout time.Duration, log zerolog.Logger) *YouTube {
	if baseURL == "" {
		baseURL = "https://www.googleapis.com/youtube/v3"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &YouTube{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
		apiKey:  apiKey,
		log:     log,
	}
}

type ytSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
	} `json:"items"`
}

type ytVideo struct {
	ID      string `json:"id"`
	Snippet struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		PublishedAt string   `json:"publishedAt"`
		Tags        []string `json:"tags"`
		Thumbnails  struct {
			High struct {
				URL string `json:"url"`
			} `json:"high"`
		} `json:"thumbnails"`
	} `json:"snippet"`
	Statistics struct {
		ViewCount    string `json:"viewCount"`
		LikeCount    string `json:"likeCount"`
		CommentCount string `json:"commentCount"`
	} `json:"statistics"`
}

type ytVideosResponse struct {
	Items []ytVideo `json:"items"`
}

type ytChannelsResponse struct {
	Items []struct {
		Statistics struct {
			SubscriberCount string `json:"subscriberCount"`
			VideoCount      string `json:"videoCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// Collect выгружает ролики канала. Любой сбой даёт пустой срез.
func (y *YouTube) Collect(ctx context.Context, locator string, maxItems int) []domain.RawRecord {
	records, err := y.fetch(ctx, locator, maxItems)
	if err != nil {
		metrics.CollectorErrors.WithLabelValues(domain.PlatformYouTube).Inc()
		y.log.Warn().Err(err).Str("locator", locator).Msg("youtube: сбор не удался")
		return nil
	}
	metrics.CollectorItems.WithLabelValues(domain.PlatformYouTube).Add(float64(len(records)))
	return records
}

func (y *YouTube) fetch(ctx context.Context, channelID string, maxItems int) ([]domain.RawRecord, error) {
	videoIDs, err := y.searchVideos(ctx, channelID, maxItems)
	if err != nil {
		return nil, err
	}
	if len(videoIDs) == 0 {
		return nil, nil
	}

	subscriberCount, videoCount, err := y.channelStats(ctx, channelID)
	if err != nil {
		// статистика канала не критична для сбора роликов
		y.log.Debug().Err(err).Str("channel", channelID).Msg("youtube: статистика канала недоступна")
	}

	videos, err := y.videoDetails(ctx, videoIDs)
	if err != nil {
		return nil, err
	}

	records := make([]domain.RawRecord, 0, len(videos))
	for _, video := range videos {
		records = append(records, domain.RawRecord{
			"platform":         domain.PlatformYouTube,
			"video_id":         video.ID,
			"title":            video.Snippet.Title,
			"description":      video.Snippet.Description,
			"tags":             video.Snippet.Tags,
			"published_at":     video.Snippet.PublishedAt,
			"thumbnail_url":    video.Snippet.Thumbnails.High.URL,
			"video_url":        "https://www.youtube.com/watch?v=" + video.ID,
			"view_count":       parseCount(video.Statistics.ViewCount),
			"like_count":       parseCount(video.Statistics.LikeCount),
			"comment_count":    parseCount(video.Statistics.CommentCount),
			"subscriber_count": subscriberCount,
			"channel_videos":   videoCount,
		})
	}
	return records, nil
}

func (y *YouTube) searchVideos(ctx context.Context, channelID string, maxItems int) ([]string, error) {
	query := url.Values{}
	query.Set("part", "id")
	query.Set("channelId", channelID)
	query.Set("order", "date")
	query.Set("type", "video")
	query.Set("maxResults", strconv.Itoa(maxItems))
	query.Set("key", y.apiKey)

	var parsed ytSearchResponse
	if err := y.get(ctx, "search", query, channelID, &parsed); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item.ID.VideoID != "" {
			ids = append(ids, item.ID.VideoID)
		}
	}
	return ids, nil
}

func (y *YouTube) videoDetails(ctx context.Context, videoIDs []string) ([]ytVideo, error) {
	query := url.Values{}
	query.Set("part", "snippet,statistics")
	query.Set("id", strings.Join(videoIDs, ","))
	query.Set("key", y.apiKey)

	var parsed ytVideosResponse
	if err := y.get(ctx, "videos", query, "videos", &parsed); err != nil {
		return nil, err
	}
	return parsed.Items, nil
}

func (y *YouTube) channelStats(ctx context.Context, channelID string) (int64, int64, error) {
	query := url.Values{}
	query.Set("part", "statistics")
	query.Set("id", channelID)
	query.Set("key", y.apiKey)

	var parsed ytChannelsResponse
	if err := y.get(ctx, "channels", query, channelID, &parsed); err != nil {
		return 0, 0, err
	}
	if len(parsed.Items) == 0 {
		return 0, 0, fmt.Errorf("channel %s not found", channelID)
	}
	stats := parsed.Items[0].Statistics
	return parseCount(stats.SubscriberCount), parseCount(stats.VideoCount), nil
}

func (y *YouTube) get(ctx context.Context, resource string, query url.Values, target string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, y.baseURL+"/"+resource+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	start := time.Now()
	resp, err := y.http.Do(req)
	metrics.ObserveNetworkRequest("youtube", resource, target, start, err)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// parseCount разбирает числовые счётчики, которые Data API отдаёт строками.
func parseCount(value string) int64 {
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return parsed
}
