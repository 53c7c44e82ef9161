package yahoo

import (
	"context"
	"net/url"
	"strconv"

	"AnomalyLens/internal/domain/models"
	domrepo "AnomalyLens/internal/domain/repository"
)

type searchResponse struct {
	News []struct {
		UUID                string `json:"uuid"`
		Title               string `json:"title"`
		Publisher           string `json:"publisher"`
		Link                string `json:"link"`
		ProviderPublishTime int64  `json:"providerPublishTime"`
		Type                string `json:"type"`
		Thumbnail           *struct {
			Resolutions []struct {
				URL    string `json:"url"`
				Width  int    `json:"width"`
				Height int    `json:"height"`
			} `json:"resolutions"`
		} `json:"thumbnail"`
	} `json:"news"`
}

// GetNews returns up to newsCount recent headlines for ticker.
func (c *Client) GetNews(ctx context.Context, ticker string) ([]models.NewsItem, error) {
	if c.newsCount == 0 {
		return []models.NewsItem{}, nil
	}
	q := url.Values{}
	q.Set("q", ticker)
	q.Set("newsCount", strconv.Itoa(c.newsCount))
	q.Set("quotesCount", "0")

	var resp searchResponse
	if err := c.getJSON(ctx, "/v1/finance/search", q, &resp); err != nil {
		return nil, err
	}

	out := make([]models.NewsItem, 0, len(resp.News))
	for _, n := range resp.News {
		if len(out) == c.newsCount {
			break
		}
		item := models.NewsItem{
			UUID:                n.UUID,
			Title:               n.Title,
			Publisher:           n.Publisher,
			Link:                n.Link,
			ProviderPublishTime: n.ProviderPublishTime,
			Type:                n.Type,
		}
		if n.Thumbnail != nil && len(n.Thumbnail.Resolutions) > 0 {
			item.Thumbnail = n.Thumbnail.Resolutions[0].URL
		}
		out = append(out, item)
	}
	return out, nil
}

var _ domrepo.NewsSource = (*Client)(nil)
