// Package fetcher acquires analyzable content: remote text from URLs and
// base64 payloads from uploaded images.
package fetcher

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/professor-icebear/Mistral-Fact-Checker/internal/apierr"
	"github.com/professor-icebear/Mistral-Fact-Checker/internal/config"
	"github.com/professor-icebear/Mistral-Fact-Checker/internal/models"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

type Fetcher struct {
	client        *http.Client
	maxContentLen int
	maxImageMB    int
}

func New(cfg config.Config) *Fetcher {
	return &Fetcher{
		client:        &http.Client{Timeout: time.Duration(cfg.URLTimeoutSeconds) * time.Second},
		maxContentLen: cfg.MaxURLContentLength,
		maxImageMB:    cfg.MaxImageSizeMB,
	}
}

// FetchURLContent issues a GET (redirects followed) and returns the raw body
// truncated to the configured length. The body is passed through untouched;
// no HTML extraction is attempted.
func (f *Fetcher) FetchURLContent(ctx context.Context, rawURL string) (string, error) {
	slog.Info("Fetching URL content", "url", rawURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", apierr.URLFetch(err.Error())
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			slog.Warn("Timeout fetching URL", "url", rawURL)
			return "", apierr.URLFetch("Request timed out")
		}
		slog.Error("Error fetching URL", "url", rawURL, "error", err)
		return "", apierr.URLFetch(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.Warn("HTTP error fetching URL", "url", rawURL, "status", resp.StatusCode)
		return "", apierr.URLFetch(fmt.Sprintf("HTTP %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			slog.Warn("Timeout reading URL body", "url", rawURL)
			return "", apierr.URLFetch("Request timed out")
		}
		slog.Error("Error reading URL body", "url", rawURL, "error", err)
		return "", apierr.URLFetch(err.Error())
	}

	content := truncateRunes(string(body), f.maxContentLen)
	slog.Info("Fetched URL content", "url", rawURL, "chars", len(content))
	return content, nil
}

// ProcessImage validates the declared MIME type and size cap, then base64
// encodes the payload. The image bytes are not decoded or verified beyond
// the declared type.
func (f *Fetcher) ProcessImage(data []byte, mimeType string) (models.EncodedImage, error) {
	if !strings.HasPrefix(mimeType, "image/") {
		slog.Warn("Invalid file type uploaded", "mime", mimeType)
		return models.EncodedImage{}, apierr.InvalidFile("File must be an image")
	}

	sizeMB := float64(len(data)) / (1024 * 1024)
	if sizeMB > float64(f.maxImageMB) {
		slog.Warn("Image too large", "size_mb", fmt.Sprintf("%.2f", sizeMB), "max_mb", f.maxImageMB)
		return models.EncodedImage{}, apierr.ContentTooLarge(fmt.Sprintf(
			"Image size (%.2fMB) exceeds maximum allowed size (%dMB)", sizeMB, f.maxImageMB))
	}

	slog.Info("Processing image", "mime", mimeType, "size_mb", fmt.Sprintf("%.2f", sizeMB))
	return models.EncodedImage{
		Base64: base64.StdEncoding.EncodeToString(data),
		MIME:   mimeType,
	}, nil
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

func truncateRunes(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen])
}
