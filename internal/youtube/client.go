// Package youtube – Data API v3 client.
//
// The client requests the snippet, content-details, and statistics parts for
// a resolved video id and normalizes the result. The base URL is injectable
// so tests can point the client at a local httptest server.
package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/maple-video/maple-backend/internal/domain"
)

// DefaultBaseURL is the production Data API v3 endpoint.
const DefaultBaseURL = "https://www.googleapis.com/youtube/v3"

// ErrNotFound is returned when the API result set for a video id is empty.
var ErrNotFound = errors.New("video not found")

// Client calls the YouTube Data API v3. One attempt per call, no retries;
// network failures and non-2xx responses propagate as plain errors for the
// caller to classify as upstream failures.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient constructs a Client. baseURL falls back to DefaultBaseURL when
// empty; timeout bounds each request on top of the caller's context.
func NewClient(apiKey, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

// videoListResponse mirrors the subset of the videos.list response we read.
type videoListResponse struct {
	Items []struct {
		Snippet struct {
			Title        string `json:"title"`
			Description  string `json:"description"`
			ChannelTitle string `json:"channelTitle"`
			PublishedAt  string `json:"publishedAt"`
			Thumbnails   struct {
				High struct {
					URL string `json:"url"`
				} `json:"high"`
			} `json:"thumbnails"`
		} `json:"snippet"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
		Statistics struct {
			ViewCount string `json:"viewCount"`
			LikeCount string `json:"likeCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// Video fetches and normalizes metadata for the given video id.
// Returns ErrNotFound when the result set is empty.
func (c *Client) Video(ctx context.Context, id string) (*domain.VideoDetails, error) {
	q := url.Values{}
	q.Set("part", "snippet,contentDetails,statistics")
	q.Set("id", id)
	q.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/videos?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("youtube api request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("youtube api: unexpected status %d", resp.StatusCode)
	}

	var body videoListResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("youtube api response: %w", err)
	}
	if len(body.Items) == 0 {
		return nil, ErrNotFound
	}

	v := body.Items[0]
	return &domain.VideoDetails{
		Title:       v.Snippet.Title,
		Description: v.Snippet.Description,
		Channel:     v.Snippet.ChannelTitle,
		PublishedAt: v.Snippet.PublishedAt,
		Duration:    v.ContentDetails.Duration,
		Views:       v.Statistics.ViewCount,
		Likes:       v.Statistics.LikeCount,
		Thumbnail:   v.Snippet.Thumbnails.High.URL,
	}, nil
}
