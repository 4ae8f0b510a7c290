package imaging

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/spakin/netpbm"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// encodeFixture encodes img with the standard encoder for format.
func encodeFixture(t *testing.T, img image.Image, format string) []byte {
	t.Helper()
	var buf bytes.Buffer
	var err error
	switch format {
	case FormatPNG:
		err = png.Encode(&buf, img)
	case FormatJPEG:
		err = jpeg.Encode(&buf, img, nil)
	case FormatGIF:
		err = gif.Encode(&buf, img, nil)
	case FormatBMP:
		err = bmp.Encode(&buf, img)
	case FormatTIFF:
		err = tiff.Encode(&buf, img, nil)
	case FormatPPM:
		err = netpbm.Encode(&buf, img, &netpbm.EncodeOptions{Format: netpbm.PPM, MaxValue: 255})
	default:
		t.Fatalf("no fixture encoder for %s", format)
	}
	if err != nil {
		t.Fatalf("failed to encode %s fixture: %v", format, err)
	}
	return buf.Bytes()
}

// writeFixture writes an encoded image to a temp file and returns its path.
func writeFixture(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

func TestDetectFormat(t *testing.T) {
	img := createPatternImage(8, 8)

	for _, format := range []string{FormatPNG, FormatJPEG, FormatGIF, FormatBMP, FormatTIFF, FormatPPM} {
		t.Run(format, func(t *testing.T) {
			data := encodeFixture(t, img, format)
			if got := DetectFormat(data); got != format {
				t.Errorf("DetectFormat: got %q, want %q", got, format)
			}

			h, err := Decode(data)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if h.Format != format || h.Width() != 8 || h.Height() != 8 {
				t.Errorf("got %s %dx%d, want %s 8x8", h.Format, h.Width(), h.Height(), format)
			}
		})
	}
}

func TestDecode_Unsupported(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("hello, world"), []byte("P9 not netpbm")} {
		if _, err := Decode(data); !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("Decode(%q): got %v, want ErrUnsupportedFormat", data, err)
		}
	}
}

func TestEncode_ConvertsContainer(t *testing.T) {
	img := createPatternImage(6, 6)

	for _, format := range []string{FormatPNG, FormatJPEG, FormatGIF, FormatBMP, FormatTIFF, FormatPGM, FormatPPM} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Encode(&buf, img, format, 90); err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			if got := DetectFormat(buf.Bytes()); got != format {
				t.Errorf("encoded bytes sniffed as %q, want %q", got, format)
			}
		})
	}
}

func TestEncode_Aliases(t *testing.T) {
	img := createPatternImage(4, 4)

	for _, tt := range []struct{ ext, want string }{{"jpeg", FormatJPEG}, {"TIF", FormatTIFF}} {
		var buf bytes.Buffer
		if err := Encode(&buf, img, tt.ext, 0); err != nil {
			t.Fatalf("Encode(%s) failed: %v", tt.ext, err)
		}
		if got := DetectFormat(buf.Bytes()); got != tt.want {
			t.Errorf("Encode(%s): sniffed %q, want %q", tt.ext, got, tt.want)
		}
	}
}

func TestEncode_Unsupported(t *testing.T) {
	img := createPatternImage(4, 4)

	for _, format := range []string{"a", "webp", ""} {
		var buf bytes.Buffer
		err := Encode(&buf, img, format, 0)
		if !errors.Is(err, ErrFormatNotSupported) {
			t.Errorf("Encode(%q): got %v, want ErrFormatNotSupported", format, err)
		}
		if buf.Len() != 0 {
			t.Errorf("Encode(%q) wrote %d bytes", format, buf.Len())
		}
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]string{
		"out.TIFF":        "tiff",
		"/a/b/c.jpg":      "jpg",
		"noext":           "",
		"dir.d/file.png":  "png",
		"archive.tar.gz":  "gz",
		"/tmp/.hidden.pn": "pn",
	}
	for path, want := range tests {
		if got := FormatFromPath(path); got != want {
			t.Errorf("FormatFromPath(%q): got %q, want %q", path, got, want)
		}
	}
}

func TestFilePath(t *testing.T) {
	sep := string(filepath.Separator)

	tests := []struct {
		name    string
		uri     string
		want    string
		wantErr bool
	}{
		{"absolute", "file:///tmp/images/a.png", sep + filepath.Join("tmp", "images", "a.png"), false},
		{"host as segment", "file://tmp/a.png", sep + filepath.Join("tmp", "a.png"), false},
		{"escaped space", "file:///tmp/my%20image.png", sep + filepath.Join("tmp", "my image.png"), false},
		{"drive colon", "file:///C:/images/a.png", "C:" + sep + "images" + sep + "a.png", false},
		{"drive pipe", "file:///C|/images/a.png", "C:" + sep + "images" + sep + "a.png", false},
		{"encoded slash", "file:///tmp/..%2Fetc%2Fpasswd", "", true},
		{"encoded slash in host part", "file:///a%2Fb/c.png", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := url.Parse(tt.uri)
			if err != nil {
				t.Fatalf("url.Parse failed: %v", err)
			}
			got, err := filePath(u)
			if tt.wantErr {
				if err == nil {
					t.Errorf("filePath should fail, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("filePath failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFileFetcher_Status(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, "ok.png", encodeFixture(t, createPatternImage(2, 2), FormatPNG))

	tests := []struct {
		name string
		uri  string
		want int
	}{
		{"found", "file://" + filepath.ToSlash(path), http.StatusOK},
		{"missing", "file://" + filepath.ToSlash(filepath.Join(dir, "missing.png")), http.StatusNotFound},
		{"directory", "file://" + filepath.ToSlash(dir), http.StatusBadRequest},
		{"traversal", "file://" + filepath.ToSlash(dir) + "/..%2Fok.png", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := url.Parse(tt.uri)
			if err != nil {
				t.Fatalf("url.Parse failed: %v", err)
			}
			resp, err := FileFetcher{}.Fetch(context.Background(), u)
			if err != nil {
				t.Fatalf("Fetch returned an error: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Errorf("status: got %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestOpenFile_PermissionDenied(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced here")
	}
	path := writeFixture(t, "secret.png", []byte("x"))
	if err := os.Chmod(path, 0); err != nil {
		t.Fatalf("chmod failed: %v", err)
	}

	resp := OpenFile(path)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("status: got %d, want 403", resp.StatusCode)
	}
}

func TestSource_Resolve(t *testing.T) {
	data := encodeFixture(t, createPatternImage(5, 4), FormatPNG)
	// A misleading extension must not influence format detection.
	path := writeFixture(t, "image.jpg", data)

	src := NewSource()
	ctx := context.Background()

	for _, locator := range []string{path, "file://" + filepath.ToSlash(path)} {
		h, err := src.Resolve(ctx, locator)
		if err != nil {
			t.Fatalf("Resolve(%s) failed: %v", locator, err)
		}
		if h.Format != FormatPNG {
			t.Errorf("Resolve(%s): format %q, want png", locator, h.Format)
		}
		if h.Width() != 5 || h.Height() != 4 {
			t.Errorf("Resolve(%s): got %dx%d, want 5x4", locator, h.Width(), h.Height())
		}
	}
}

func TestSource_ResolveErrors(t *testing.T) {
	dir := t.TempDir()
	garbage := writeFixture(t, "garbage.png", []byte("not an image"))
	src := NewSource()
	ctx := context.Background()

	_, err := src.Resolve(ctx, filepath.Join(dir, "missing.png"))
	var fe *FetchError
	if !errors.As(err, &fe) || fe.StatusCode != http.StatusNotFound {
		t.Errorf("missing file: got %v, want FetchError 404", err)
	}

	if _, err := src.Resolve(ctx, garbage); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("garbage file: got %v, want ErrUnsupportedFormat", err)
	}

	if _, err := src.Resolve(ctx, "ftp://example.com/a.png"); err == nil || !strings.Contains(err.Error(), "ftp") {
		t.Errorf("unknown scheme: got %v", err)
	}
}

func TestSource_ResolveHTTP(t *testing.T) {
	data := encodeFixture(t, createPatternImage(3, 3), FormatGIF)
	var hits atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Header.Get("User-Agent") != "image-tools-test" {
			http.Error(w, "bad agent", http.StatusBadRequest)
			return
		}
		if r.URL.Path != "/pic" {
			http.NotFound(w, r)
			return
		}
		w.Write(data)
	}))
	defer srv.Close()

	src := NewSource()
	src.Mount("http", NewHTTPFetcher(DefaultHTTPTimeout, "image-tools-test"))
	ctx := context.Background()

	h, err := src.Resolve(ctx, srv.URL+"/pic")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if h.Format != FormatGIF {
		t.Errorf("format: got %q, want gif", h.Format)
	}

	// Served from the cache the second time.
	if _, err := src.Resolve(ctx, srv.URL+"/pic"); err != nil {
		t.Fatalf("second Resolve failed: %v", err)
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("server hits: got %d, want 1", got)
	}

	_, err = src.Resolve(ctx, srv.URL+"/nope")
	var fe *FetchError
	if !errors.As(err, &fe) || fe.StatusCode != http.StatusNotFound {
		t.Errorf("missing remote: got %v, want FetchError 404", err)
	}
}

func TestSource_ResolveAll(t *testing.T) {
	dir := t.TempDir()
	a := writeFixture(t, "a.png", encodeFixture(t, createPatternImage(2, 2), FormatPNG))
	b := writeFixture(t, "b.bmp", encodeFixture(t, createPatternImage(3, 3), FormatBMP))
	missing := filepath.Join(dir, "missing.png")

	src := NewSource()
	src.SetConcurrency(2)

	handles, err := src.ResolveAll(context.Background(), []string{a, missing, b})
	if err == nil || !strings.Contains(err.Error(), "missing.png") {
		t.Errorf("error should name the failed locator, got %v", err)
	}
	if len(handles) != 3 {
		t.Fatalf("got %d handles, want 3", len(handles))
	}
	if handles[0] == nil || handles[0].Format != FormatPNG {
		t.Errorf("handles[0]: got %+v, want png", handles[0])
	}
	if handles[1] != nil {
		t.Errorf("handles[1]: got %+v, want nil", handles[1])
	}
	if handles[2] == nil || handles[2].Format != FormatBMP {
		t.Errorf("handles[2]: got %+v, want bmp", handles[2])
	}
}

func TestResolveStdin(t *testing.T) {
	pngData := encodeFixture(t, createPatternImage(4, 4), FormatPNG)
	gifData := encodeFixture(t, createPatternImage(2, 2), FormatGIF)
	input := base64.StdEncoding.EncodeToString(pngData) + "\n\n" +
		base64.StdEncoding.EncodeToString(gifData) + "\r\n"

	handles, err := ResolveStdin(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ResolveStdin failed: %v", err)
	}
	if len(handles) != 2 {
		t.Fatalf("got %d handles, want 2", len(handles))
	}
	if handles[0].Format != FormatPNG || handles[1].Format != FormatGIF {
		t.Errorf("formats: got %s and %s", handles[0].Format, handles[1].Format)
	}
}

func TestResolveStdin_Errors(t *testing.T) {
	tests := map[string]string{
		"empty":      "",
		"blank only": "\n  \n",
		"not base64": "%%%\n",
		"not image":  base64.StdEncoding.EncodeToString([]byte("plain text")) + "\n",
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ResolveStdin(strings.NewReader(input))
			if err == nil {
				t.Fatal("ResolveStdin should fail")
			}
			empty := strings.TrimSpace(input) == ""
			if errors.Is(err, ErrNoStdinImage) != empty {
				t.Errorf("errors.Is(err, ErrNoStdinImage) = %v, want %v (err: %v)", !empty, empty, err)
			}
		})
	}
}

func TestCache(t *testing.T) {
	c := NewCache()
	calls := 0
	h, _ := NewHandle(createInMemoryImage(1, 1, color.Black), FormatPNG)
	load := func() (*Handle, error) {
		calls++
		return h, nil
	}

	for i := 0; i < 3; i++ {
		got, err := c.Load("a", load)
		if err != nil || got != h {
			t.Fatalf("Load: got %v, %v", got, err)
		}
	}
	if calls != 1 {
		t.Errorf("load calls: got %d, want 1", calls)
	}

	if _, err := c.Load("b", func() (*Handle, error) { return nil, ErrEmptyImage }); err == nil {
		t.Error("failed load should return its error")
	}
	if c.Len() != 1 {
		t.Errorf("failed loads must not be cached, Len = %d", c.Len())
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len after Clear: got %d", c.Len())
	}
}
