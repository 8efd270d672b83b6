// Package storage uploads files to the hosted object storage API and
// produces their public URLs.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// Object describes a stored file.
type Object struct {
	Bucket      string
	Name        string
	ContentType string
	Size        int
	PublicURL   string
}

// Error is a non-2xx answer from the storage API.
type Error struct {
	Op     string
	Status int
	Body   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("storage %s failed with status %d: %s", e.Op, e.Status, e.Body)
}

// Client talks to the storage REST API with the service role key.
type Client struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
}

// NewClient creates a storage client for the project at baseURL.
func NewClient(baseURL, serviceKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		httpClient: httpClient,
	}
}

// ObjectName builds a collision-free object name under prefix that keeps the
// lower-cased extension of the uploaded filename.
func ObjectName(prefix, filename string) string {
	name := uuid.NewString() + strings.ToLower(filepath.Ext(filename))
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

// PublicURL returns the public download URL of an object.
func (c *Client) PublicURL(bucket, name string) string {
	return c.baseURL + "/storage/v1/object/public/" + url.PathEscape(bucket) + "/" + escapeName(name)
}

// Upload stores body as bucket/name. The content type is sniffed from the
// bytes rather than trusted from the client.
func (c *Client) Upload(ctx context.Context, bucket, name string, body []byte) (*Object, error) {
	if bucket == "" || name == "" {
		return nil, fmt.Errorf("bucket and object name are required")
	}
	contentType := mimetype.Detect(body).String()

	endpoint := c.baseURL + "/storage/v1/object/" + url.PathEscape(bucket) + "/" + escapeName(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "false")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s/%s: %w", bucket, name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &Error{Op: "upload", Status: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	return &Object{
		Bucket:      bucket,
		Name:        name,
		ContentType: contentType,
		Size:        len(body),
		PublicURL:   c.PublicURL(bucket, name),
	}, nil
}

// escapeName escapes each path segment of an object name.
func escapeName(name string) string {
	segments := strings.Split(name, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
