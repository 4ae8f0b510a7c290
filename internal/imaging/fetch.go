package imaging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Response is the outcome of a single fetch. Fetchers report local failures
// through StatusCode (HTTP semantics) rather than as errors so that file and
// remote sources share one code path.
type Response struct {
	StatusCode int
	Body       io.ReadCloser
}

// Fetcher retrieves the raw bytes behind a URI.
type Fetcher interface {
	Fetch(ctx context.Context, u *url.URL) (*Response, error)
}

// FetchError reports a non-200 response for a locator.
type FetchError struct {
	Locator    string
	StatusCode int
	Message    string
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("failed to fetch %s: status %d", e.Locator, e.StatusCode)
	if e.Message != "" {
		msg += " (" + e.Message + ")"
	}
	return msg
}

// HTTPFetcher fetches http and https URIs with a single GET and no retries.
type HTTPFetcher struct {
	Client    *http.Client
	UserAgent string
}

// NewHTTPFetcher creates an HTTPFetcher whose client gives up after timeout.
func NewHTTPFetcher(timeout time.Duration, userAgent string) *HTTPFetcher {
	return &HTTPFetcher{
		Client:    &http.Client{Timeout: timeout},
		UserAgent: userAgent,
	}
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, u *url.URL) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	return &Response{StatusCode: resp.StatusCode, Body: resp.Body}, nil
}

// FileFetcher serves file:// URIs from the local filesystem.
//
// The host part of the URI is read as leading path segments, so both
// file:///tmp/a.png and file://tmp/a.png name /tmp/a.png. A first segment
// ending in ':' or '|' is a Windows drive ("C:" or "C|").
type FileFetcher struct{}

// Fetch implements Fetcher. It never returns an error: not found maps to 404,
// permission denied to 403, and anything else (including directories) to 400.
func (FileFetcher) Fetch(_ context.Context, u *url.URL) (*Response, error) {
	path, err := filePath(u)
	if err != nil {
		return statusResponse(http.StatusNotFound, err), nil
	}
	return OpenFile(path), nil
}

// OpenFile opens a local path and wraps it as a Response, translating I/O
// failures into status codes.
func OpenFile(path string) *Response {
	f, err := os.Open(path)
	if err != nil {
		return statusResponse(errorStatus(err), err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return statusResponse(errorStatus(err), err)
	}
	if info.IsDir() {
		f.Close()
		return statusResponse(http.StatusBadRequest, fmt.Errorf("%s is a directory", path))
	}

	return &Response{StatusCode: http.StatusOK, Body: f}
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound
	case errors.Is(err, fs.ErrPermission):
		return http.StatusForbidden
	default:
		return http.StatusBadRequest
	}
}

func statusResponse(code int, err error) *Response {
	return &Response{
		StatusCode: code,
		Body:       io.NopCloser(bytes.NewBufferString(err.Error())),
	}
}

// filePath turns a file URI into a local path, rejecting segments that would
// smuggle a path separator past the split on '/'. Empty segments are dropped.
func filePath(u *url.URL) (string, error) {
	var raw []string
	if u.Host != "" {
		raw = append(raw, u.Host)
	}
	raw = append(raw, strings.Split(u.EscapedPath(), "/")...)

	var parts []string
	for _, p := range raw {
		seg, err := url.PathUnescape(p)
		if err != nil {
			return "", err
		}
		if seg == "" {
			continue
		}
		if strings.ContainsRune(seg, filepath.Separator) || strings.ContainsRune(seg, '/') {
			return "", fs.ErrNotExist
		}
		parts = append(parts, seg)
	}

	sep := string(filepath.Separator)
	if len(parts) > 0 && (strings.HasSuffix(parts[0], ":") || strings.HasSuffix(parts[0], "|")) {
		drive := strings.TrimRight(parts[0], ":|") + ":"
		return drive + sep + strings.Join(parts[1:], sep), nil
	}
	return sep + strings.Join(parts, sep), nil
}
