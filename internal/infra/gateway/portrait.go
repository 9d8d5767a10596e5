package gateway

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"time"

	_ "image/gif"
	_ "image/png"

	"github.com/pkg/errors"
)

const (
	portraitFetchTimeout = 10 * time.Second
	portraitMaxBytes     = 16 << 20
	portraitJPEGQuality  = 70
)

// PortraitFetcher downloads a portrait that is only reachable by URL and
// re-encodes it to JPEG so the transformation capability gets a known format.
type PortraitFetcher struct {
	client *http.Client
}

func NewPortraitFetcher() *PortraitFetcher {
	return &PortraitFetcher{
		client: &http.Client{Timeout: portraitFetchTimeout},
	}
}

func (f *PortraitFetcher) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", errors.Wrap(err, "portrait request failed")
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", errors.Wrap(err, "portrait download failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("portrait download failed: status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, portraitMaxBytes))
	if err != nil {
		return nil, "", errors.Wrap(err, "portrait read failed")
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, "", errors.Wrap(err, "portrait decode failed")
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: portraitJPEGQuality}); err != nil {
		return nil, "", errors.Wrap(err, "portrait re-encode failed")
	}

	return buf.Bytes(), "image/jpeg", nil
}
