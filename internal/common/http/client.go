// internal/common/http/client.go
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"
)

var (
	ErrDocumentTooLarge    = errors.New("DOCUMENT_TOO_LARGE")
	ErrUnsupportedLocation = errors.New("UNSUPPORTED_DOCUMENT_LOCATION")
)

// ObjectOpener resolves s3:// references.
type ObjectOpener interface {
	Open(ctx context.Context, uri string) (io.ReadCloser, error)
}

// Document is a fetched file with its detected media type.
type Document struct {
	Data     []byte
	MIMEType string
}

type Client struct {
	httpClient *http.Client
	objects    ObjectOpener
	maxBytes   int64
}

// NewClient builds a fetcher. objects may be nil, in which case s3:// references are rejected.
func NewClient(timeout time.Duration, maxBytes int64, objects ObjectOpener) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		objects:    objects,
		maxBytes:   maxBytes,
	}
}

// Fetch downloads the document behind ref, which is an http(s) URL or an s3:// URI.
func (c *Client) Fetch(ctx context.Context, ref string) (*Document, error) {
	switch {
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return c.fetchHTTP(ctx, ref)
	case strings.HasPrefix(ref, "s3://"):
		if c.objects == nil {
			return nil, fmt.Errorf("%w: s3 storage not configured", ErrUnsupportedLocation)
		}
		body, err := c.objects.Open(ctx, ref)
		if err != nil {
			return nil, err
		}
		defer body.Close()
		return c.readDocument(body, "", ref)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLocation, ref)
	}
}

func (c *Client) fetchHTTP(ctx context.Context, url string) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}
	if c.maxBytes > 0 && resp.ContentLength > c.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrDocumentTooLarge, resp.ContentLength)
	}

	return c.readDocument(resp.Body, resp.Header.Get("Content-Type"), url)
}

func (c *Client) readDocument(r io.Reader, contentType, ref string) (*Document, error) {
	if c.maxBytes > 0 {
		r = io.LimitReader(r, c.maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	if c.maxBytes > 0 && int64(len(data)) > c.maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrDocumentTooLarge, c.maxBytes)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("document %s is empty", ref)
	}

	return &Document{Data: data, MIMEType: detectMIMEType(data, contentType, ref)}, nil
}

func detectMIMEType(data []byte, contentType, ref string) string {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil && mt != "application/octet-stream" {
		return mt
	}
	clean := ref
	if i := strings.IndexAny(clean, "?#"); i >= 0 {
		clean = clean[:i]
	}
	if byExt := mime.TypeByExtension(path.Ext(clean)); byExt != "" {
		mt, _, _ := mime.ParseMediaType(byExt)
		return mt
	}
	mt, _, _ := mime.ParseMediaType(http.DetectContentType(data))
	return mt
}
