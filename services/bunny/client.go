package bunny

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

const (
	// BaseURL is the Bunny Stream API base URL
	BaseURL = "https://video.bunnycdn.com"
	// DefaultTimeout is the HTTP client timeout for metadata calls
	DefaultTimeout = 30 * time.Second
	// DefaultDialTimeout is the timeout for establishing TCP connections
	DefaultDialTimeout = 10 * time.Second
	// DefaultTLSTimeout is the timeout for TLS handshake
	DefaultTLSTimeout = 10 * time.Second
	// DefaultHeaderTimeout is the timeout for waiting for response headers
	DefaultHeaderTimeout = 30 * time.Second
)

var (
	// ErrMissingCredentials is returned before any network call when the
	// library ID or access key is absent.
	ErrMissingCredentials = errors.New("bunny credentials missing")
)

// APIError describes a non-2xx response from the video host
type APIError struct {
	StatusCode int
	Phase      string // "create", "upload" or "delete"
}

func (e *APIError) Error() string {
	return fmt.Sprintf("bunny %s request failed with status %d", e.Phase, e.StatusCode)
}

// Client talks to the Bunny Stream HTTP API for one video library
type Client struct {
	libraryID   string
	apiKey      string
	cdnHostname string
	baseURL     string
	httpClient  *http.Client // metadata calls (create, delete)
	uploadClient *http.Client // byte uploads: connection timeouts only, no overall deadline
}

// Config holds configuration for the Bunny Stream client
type Config struct {
	LibraryID   string
	APIKey      string
	CDNHostname string // optional; falls back to the library-derived hostname
	BaseURL     string // overridable for tests
	Timeout     time.Duration
}

// NewClient creates a new Bunny Stream client. Missing credentials are a
// fatal precondition, reported immediately without attempting any request.
func NewClient(config Config) (*Client, error) {
	if config.LibraryID == "" || config.APIKey == "" {
		return nil, ErrMissingCredentials
	}
	if config.BaseURL == "" {
		config.BaseURL = BaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}

	// Large uploads must not be killed by an overall client deadline; only
	// connection establishment is bounded.
	uploadTransport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: DefaultDialTimeout,
		}).DialContext,
		TLSHandshakeTimeout:   DefaultTLSTimeout,
		ResponseHeaderTimeout: 0,
	}

	return &Client{
		libraryID:   config.LibraryID,
		apiKey:      config.APIKey,
		cdnHostname: config.CDNHostname,
		baseURL:     config.BaseURL,
		httpClient:  &http.Client{Timeout: config.Timeout},
		uploadClient: &http.Client{Transport: uploadTransport},
	}, nil
}

type createVideoRequest struct {
	Title string `json:"title"`
}

type createVideoResponse struct {
	GUID string `json:"guid"`
}

// CreateVideo declares a video placeholder with the given display title and
// returns the host's opaque identifier. This must succeed before any bytes
// are sent.
func (c *Client) CreateVideo(ctx context.Context, title string) (string, error) {
	body, err := json.Marshal(createVideoRequest{Title: title})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/library/%s/videos", c.baseURL, c.libraryID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("AccessKey", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("bunny create request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return "", &APIError{StatusCode: res.StatusCode, Phase: "create"}
	}

	var created createVideoResponse
	if err := json.NewDecoder(res.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("bunny create response: %w", err)
	}
	if created.GUID == "" {
		return "", errors.New("bunny create response missing guid")
	}

	return created.GUID, nil
}

// UploadVideo transfers the raw file bytes to the placeholder addressed by guid
func (c *Client) UploadVideo(ctx context.Context, guid string, data io.Reader) error {
	url := fmt.Sprintf("%s/library/%s/videos/%s", c.baseURL, c.libraryID, guid)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, data)
	if err != nil {
		return err
	}
	req.Header.Set("AccessKey", c.apiKey)

	res, err := c.uploadClient.Do(req)
	if err != nil {
		return fmt.Errorf("bunny upload request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return &APIError{StatusCode: res.StatusCode, Phase: "upload"}
	}

	return nil
}

// DeleteVideo removes a video (or an orphaned placeholder) from the host
func (c *Client) DeleteVideo(ctx context.Context, guid string) error {
	url := fmt.Sprintf("%s/library/%s/videos/%s", c.baseURL, c.libraryID, guid)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("AccessKey", c.apiKey)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("bunny delete request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return &APIError{StatusCode: res.StatusCode, Phase: "delete"}
	}

	return nil
}

// EmbedURL derives the embeddable player URL for a video. Pure string
// template, no network call.
func (c *Client) EmbedURL(guid string) string {
	return fmt.Sprintf("https://iframe.mediadelivery.net/embed/%s/%s", c.libraryID, guid)
}

// HLSURL derives the direct adaptive-streaming playlist URL, using the
// configured CDN hostname or the library-derived default.
func (c *Client) HLSURL(guid string) string {
	if c.cdnHostname != "" {
		return fmt.Sprintf("https://%s/%s/playlist.m3u8", c.cdnHostname, guid)
	}
	return fmt.Sprintf("https://vz-%s.b-cdn.net/%s/playlist.m3u8", c.libraryID, guid)
}

// GUIDFromEmbedURL extracts the host identifier from an embed URL previously
// produced by EmbedURL. Returns empty for external links, so delete flows can
// tell hosted videos apart from linked ones.
func GUIDFromEmbedURL(link string) string {
	const marker = "iframe.mediadelivery.net/embed/"
	idx := strings.Index(link, marker)
	if idx < 0 {
		return ""
	}
	rest := link[idx+len(marker):]
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[1] == "" {
		return ""
	}
	// Strip any query string
	guid := parts[1]
	if q := strings.IndexByte(guid, '?'); q >= 0 {
		guid = guid[:q]
	}
	return guid
}
