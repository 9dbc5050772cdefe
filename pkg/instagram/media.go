package instagram

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"

	"igmirror/pkg/errors"
	"igmirror/pkg/logger"
)

// MediaFetcher downloads media bytes from CDN URLs.
type MediaFetcher struct {
	client *resty.Client
	logger logger.Logger
}

// NewMediaFetcher creates a fetcher with a bounded timeout
func NewMediaFetcher(timeout time.Duration, userAgent string, log logger.Logger) *MediaFetcher {
	if log == nil {
		log = logger.GetLogger()
	}

	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "image/webp,video/mp4,*/*").
		SetHeader("Referer", BaseURL+"/")

	return &MediaFetcher{
		client: client,
		logger: log,
	}
}

// Fetch downloads the media at the given URL
func (f *MediaFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.logger.DebugWithFields("downloading media", map[string]interface{}{
		"url": url,
	})

	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, errors.Newf(errors.ErrorTypeTransport, "media download failed: %v", err)
	}

	if resp.IsError() {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeTransport,
			Message: "media download returned " + resp.Status(),
			Code:    resp.StatusCode(),
		}
	}

	f.logger.DebugWithFields("media downloaded", map[string]interface{}{
		"url":  url,
		"size": len(resp.Body()),
	})

	return resp.Body(), nil
}
