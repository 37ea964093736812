package generator

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultDownloadTimeout        = 5 * time.Minute
	downloadRequestFailedTemplate = "unable to request %s: %w"
	downloadStatusFailedTemplate  = "download of %s failed with HTTP status %d"
)

// Downloader retrieves remote files.
type Downloader interface {
	Fetch(executionContext context.Context, url string) (io.ReadCloser, error)
}

// HTTPDownloader fetches files over HTTP(S).
type HTTPDownloader struct {
	client *http.Client
}

// NewHTTPDownloader constructs a downloader. A nil client uses one with a generous timeout.
func NewHTTPDownloader(client *http.Client) *HTTPDownloader {
	if client == nil {
		client = &http.Client{Timeout: defaultDownloadTimeout}
	}
	return &HTTPDownloader{client: client}
}

// Fetch issues a GET request and returns the body of a 200 response.
func (downloader *HTTPDownloader) Fetch(executionContext context.Context, url string) (io.ReadCloser, error) {
	request, requestError := http.NewRequestWithContext(executionContext, http.MethodGet, url, nil)
	if requestError != nil {
		return nil, fmt.Errorf(downloadRequestFailedTemplate, url, requestError)
	}
	response, responseError := downloader.client.Do(request)
	if responseError != nil {
		return nil, fmt.Errorf(downloadRequestFailedTemplate, url, responseError)
	}
	if response.StatusCode != http.StatusOK {
		_ = response.Body.Close()
		return nil, fmt.Errorf(downloadStatusFailedTemplate, url, response.StatusCode)
	}
	return response.Body, nil
}
