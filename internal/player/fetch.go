package player

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) bilimusic/1.0"

// download fetches url into a temporary file positioned at its start.
// Decoders for the M4A container need to seek, so the body cannot be
// streamed straight from the response.
func download(ctx context.Context, client *http.Client, url, referer string) (*os.File, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if referer != "" {
		req.Header.Set("Referer", referer)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, 0, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	f, err := os.CreateTemp("", "bilimusic-*.audio")
	if err != nil {
		return nil, 0, err
	}
	n, err := io.Copy(f, resp.Body)
	if err == nil {
		_, err = f.Seek(0, io.SeekStart)
	}
	if err != nil {
		removeFile(f)
		return nil, 0, fmt.Errorf("read body: %w", err)
	}
	return f, n, nil
}

func removeFile(f *os.File) {
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
}
