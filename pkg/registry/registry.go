// Package registry retrieves package metadata from the PyPI JSON API.
//
// Lookups are best-effort enrichment: callers treat a failed lookup as
// "no metadata", never as a scan failure. The client pins an exact
// version when the spec names one and falls back to the latest release
// for range specs.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/credtally/credtally/pkg/errors"
	"github.com/credtally/credtally/pkg/inventory"
)

// DefaultBaseURL is the public PyPI JSON API.
const DefaultBaseURL = "https://pypi.org/pypi"

// defaultTimeout bounds a single lookup when the caller's context does
// not already carry a deadline.
const defaultTimeout = 5 * time.Second

// userAgent identifies the scanner to the registry.
const userAgent = "credtally/1.0 (+https://github.com/credtally/credtally)"

// maxResponseBytes caps a metadata response read.
const maxResponseBytes = 4 << 20

// Client is a PyPI metadata client. The zero value is not usable; use
// New.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different registry endpoint, such
// as an internal mirror or a test server.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// New creates a registry client.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// pypiResponse is the subset of the PyPI JSON document the client
// reads.
type pypiResponse struct {
	Info struct {
		Name        string            `json:"name"`
		Version     string            `json:"version"`
		License     string            `json:"license"`
		HomePage    string            `json:"home_page"`
		ProjectURL  string            `json:"project_url"`
		Author      string            `json:"author"`
		Summary     string            `json:"summary"`
		ProjectURLs map[string]string `json:"project_urls"`
		Classifiers []string          `json:"classifiers"`
	} `json:"info"`
}

// Lookup fetches metadata for a package. An exact version spec
// ("==1.2.3") queries that release; anything else queries the latest.
// A package the registry does not know yields ErrNotFound via the
// returned APIError.
func (c *Client) Lookup(ctx context.Context, name, versionSpec string) (*inventory.RegistryInfo, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.NewValidationError("name", name, "package name is empty")
	}

	url := fmt.Sprintf("%s/%s/json", c.baseURL, name)
	if version := exactVersion(versionSpec); version != "" {
		url = fmt.Sprintf("%s/%s/%s/json", c.baseURL, name, version)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.WrapAPI("pypi", 0, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.WrapAPI("pypi", 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewAPIError("pypi", resp.StatusCode, "lookup of "+name)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, errors.WrapAPI("pypi", resp.StatusCode, err)
	}

	var doc pypiResponse
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, errors.WrapParse("json", url, err)
	}

	info := &inventory.RegistryInfo{
		Name:       doc.Info.Name,
		Version:    doc.Info.Version,
		License:    normalizeLicense(doc.Info.License, doc.Info.Classifiers),
		HomePage:   doc.Info.HomePage,
		ProjectURL: doc.Info.ProjectURL,
		Author:     doc.Info.Author,
		Summary:    doc.Info.Summary,
	}
	if info.HomePage == "" {
		for _, key := range []string{"Homepage", "homepage", "Home", "Repository", "Source"} {
			if v := doc.Info.ProjectURLs[key]; v != "" {
				info.HomePage = v
				break
			}
		}
	}
	return info, nil
}

// exactVersion returns the pinned version from a spec like "==1.2.3",
// or "" when the spec is a range, unknown, or empty.
func exactVersion(spec string) string {
	spec = strings.TrimSpace(spec)
	if spec == "" || spec == inventory.VersionUnknown {
		return ""
	}
	if strings.Contains(spec, ",") {
		return ""
	}
	if rest, ok := strings.CutPrefix(spec, "=="); ok && !strings.HasPrefix(rest, "=") {
		version := strings.TrimSpace(rest)
		// "==1.2.*" is still a range.
		if strings.ContainsAny(version, "*<>!~") {
			return ""
		}
		return version
	}
	return ""
}

// normalizeLicense prefers a short license field, falling back to the
// trove classifiers when the field holds full license text or nothing.
func normalizeLicense(field string, classifiers []string) string {
	field = strings.TrimSpace(field)
	if field != "" && len(field) <= 64 && !strings.ContainsAny(field, "\n") {
		return field
	}
	for _, c := range classifiers {
		if rest, ok := strings.CutPrefix(c, "License :: "); ok {
			parts := strings.Split(rest, " :: ")
			return strings.TrimSpace(parts[len(parts)-1])
		}
	}
	return field
}
