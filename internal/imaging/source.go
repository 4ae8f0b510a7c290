package imaging

import (
	"bufio"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/image-tools/internal/logging"
	"github.com/ironsheep/image-tools/internal/textenc"
)

const (
	// DefaultConcurrency bounds parallel fetches in ResolveAll.
	DefaultConcurrency = 4

	// DefaultHTTPTimeout is the per-request timeout of the default http fetcher.
	DefaultHTTPTimeout = 30 * time.Second

	maxStdinLine = 256 << 20
	maxMessage   = 200
)

// Source resolves locators into decoded images.
//
// A locator is a bare filesystem path, a file:// URI, or an http:// or
// https:// URI. Fetchers are mounted per scheme; NewSource mounts the local
// file fetcher and a default HTTP fetcher. Mount must not be called
// concurrently with Resolve.
type Source struct {
	fetchers    map[string]Fetcher
	cache       *Cache
	concurrency int
}

// NewSource creates a Source with the default fetchers and an empty cache.
func NewSource() *Source {
	httpFetcher := NewHTTPFetcher(DefaultHTTPTimeout, "")
	return &Source{
		fetchers: map[string]Fetcher{
			"file":  FileFetcher{},
			"http":  httpFetcher,
			"https": httpFetcher,
		},
		cache:       NewCache(),
		concurrency: DefaultConcurrency,
	}
}

// Mount registers f for a URI scheme, replacing any previous fetcher.
func (s *Source) Mount(scheme string, f Fetcher) {
	s.fetchers[strings.ToLower(scheme)] = f
}

// SetConcurrency bounds the number of parallel fetches in ResolveAll.
// Values below 1 are ignored.
func (s *Source) SetConcurrency(n int) {
	if n > 0 {
		s.concurrency = n
	}
}

// Resolve fetches and decodes the image behind locator.
//
// The format is sniffed from the fetched bytes, never from the locator's
// extension. A non-200 fetch yields a *FetchError; undecodable bytes yield an
// error wrapping ErrUnsupportedFormat.
func (s *Source) Resolve(ctx context.Context, locator string) (*Handle, error) {
	return s.cache.Load(locator, func() (*Handle, error) {
		return s.resolve(ctx, locator)
	})
}

func (s *Source) resolve(ctx context.Context, locator string) (*Handle, error) {
	resp, err := s.fetch(ctx, locator)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(data))
		if len(msg) > maxMessage {
			msg = msg[:maxMessage] + "..."
		}
		return nil, &FetchError{Locator: locator, StatusCode: resp.StatusCode, Message: msg}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", locator, err)
	}

	h, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", locator, err)
	}
	logging.Debug("Resolved image", "locator", locator, "format", h.Format, "width", h.Width(), "height", h.Height())
	return h, nil
}

func (s *Source) fetch(ctx context.Context, locator string) (*Response, error) {
	if !strings.Contains(locator, "://") {
		return OpenFile(locator), nil
	}

	u, err := url.Parse(locator)
	if err != nil {
		return nil, fmt.Errorf("invalid locator %q: %w", locator, err)
	}
	f, ok := s.fetchers[strings.ToLower(u.Scheme)]
	if !ok {
		return nil, fmt.Errorf("unsupported locator scheme %q", u.Scheme)
	}

	resp, err := f.Fetch(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", locator, err)
	}
	return resp, nil
}

// ResolveAll resolves every locator independently and in parallel.
//
// The returned slice is index-aligned with locators; entries whose resolution
// failed are nil. A failure never cancels the other fetches. The error joins
// every individual failure.
func (s *Source) ResolveAll(ctx context.Context, locators []string) ([]*Handle, error) {
	handles := make([]*Handle, len(locators))
	errs := make([]error, len(locators))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, locator := range locators {
		g.Go(func() error {
			handles[i], errs[i] = s.Resolve(ctx, locator)
			return nil
		})
	}
	_ = g.Wait()

	return handles, errors.Join(errs...)
}

// ErrNoStdinImage is returned by ResolveStdin when r holds no image lines.
var ErrNoStdinImage = errors.New("no image data on standard input")

// ResolveStdin reads one Base64-encoded image per non-blank line of r.
//
// Lines are decoded from the process's local text encoding before Base64
// decoding, falling back to UTF-8 with replacement characters.
func ResolveStdin(r io.Reader) ([]*Handle, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxStdinLine)

	var handles []*Handle
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(textenc.Decode(scanner.Bytes()))
		if line == "" {
			continue
		}

		data, err := base64.StdEncoding.DecodeString(line)
		if err != nil {
			return nil, fmt.Errorf("standard input line %d: invalid base64: %w", lineNo, err)
		}
		h, err := Decode(data)
		if err != nil {
			return nil, fmt.Errorf("standard input line %d: %w", lineNo, err)
		}
		handles = append(handles, h)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read standard input: %w", err)
	}
	if len(handles) == 0 {
		return nil, ErrNoStdinImage
	}

	return handles, nil
}
