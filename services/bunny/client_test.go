package bunny

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	client, err := NewClient(Config{
		LibraryID: "12345",
		APIKey:    "test-key",
		BaseURL:   baseURL,
	})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return client
}

func TestNewClientRequiresCredentials(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{"missing both", Config{}},
		{"missing key", Config{LibraryID: "123"}},
		{"missing library", Config{APIKey: "key"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewClient(tt.config); err != ErrMissingCredentials {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})
	}
}

func TestCreateVideoReturnsGUID(t *testing.T) {
	var gotPath, gotKey, gotTitle string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("AccessKey")

		var body struct {
			Title string `json:"title"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		gotTitle = body.Title

		json.NewEncoder(w).Encode(map[string]string{"guid": "abc-123"})
	}))
	defer server.Close()

	client := testClient(t, server.URL)

	guid, err := client.CreateVideo(context.Background(), "Lesson 1")
	if err != nil {
		t.Fatalf("CreateVideo returned error: %v", err)
	}
	if guid != "abc-123" {
		t.Errorf("guid = %q, want abc-123", guid)
	}
	if gotPath != "/library/12345/videos" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("AccessKey header = %q", gotKey)
	}
	if gotTitle != "Lesson 1" {
		t.Errorf("title = %q", gotTitle)
	}
}

func TestCreateVideoSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := testClient(t, server.URL)

	_, err := client.CreateVideo(context.Background(), "Lesson 1")
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d", apiErr.StatusCode)
	}
	if apiErr.Phase != "create" {
		t.Errorf("Phase = %q, want create", apiErr.Phase)
	}
}

func TestCreateVideoRejectsMissingGUID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer server.Close()

	client := testClient(t, server.URL)

	if _, err := client.CreateVideo(context.Background(), "Lesson 1"); err == nil {
		t.Error("expected error for response without guid")
	}
}

func TestUploadVideoSendsBytes(t *testing.T) {
	var gotMethod, gotPath, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
	}))
	defer server.Close()

	client := testClient(t, server.URL)

	err := client.UploadVideo(context.Background(), "abc-123", strings.NewReader("video bytes"))
	if err != nil {
		t.Fatalf("UploadVideo returned error: %v", err)
	}
	if gotMethod != http.MethodPut {
		t.Errorf("method = %q, want PUT", gotMethod)
	}
	if gotPath != "/library/12345/videos/abc-123" {
		t.Errorf("path = %q", gotPath)
	}
	if gotBody != "video bytes" {
		t.Errorf("body = %q", gotBody)
	}
}

func TestUploadVideoSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := testClient(t, server.URL)

	err := client.UploadVideo(context.Background(), "abc-123", strings.NewReader("x"))
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.Phase != "upload" {
		t.Errorf("Phase = %q, want upload", apiErr.Phase)
	}
}

func TestDeleteVideo(t *testing.T) {
	var gotMethod, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
	}))
	defer server.Close()

	client := testClient(t, server.URL)

	if err := client.DeleteVideo(context.Background(), "abc-123"); err != nil {
		t.Fatalf("DeleteVideo returned error: %v", err)
	}
	if gotMethod != http.MethodDelete {
		t.Errorf("method = %q, want DELETE", gotMethod)
	}
	if gotPath != "/library/12345/videos/abc-123" {
		t.Errorf("path = %q", gotPath)
	}
}

func TestEmbedURL(t *testing.T) {
	client := testClient(t, "http://unused")

	got := client.EmbedURL("abc-123")
	want := "https://iframe.mediadelivery.net/embed/12345/abc-123"
	if got != want {
		t.Errorf("EmbedURL = %q, want %q", got, want)
	}
}

func TestHLSURL(t *testing.T) {
	client := testClient(t, "http://unused")

	got := client.HLSURL("abc-123")
	want := "https://vz-12345.b-cdn.net/abc-123/playlist.m3u8"
	if got != want {
		t.Errorf("HLSURL = %q, want %q", got, want)
	}

	withCDN, err := NewClient(Config{
		LibraryID:   "12345",
		APIKey:      "key",
		CDNHostname: "cdn.example.com",
	})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	got = withCDN.HLSURL("abc-123")
	want = "https://cdn.example.com/abc-123/playlist.m3u8"
	if got != want {
		t.Errorf("HLSURL with CDN hostname = %q, want %q", got, want)
	}
}

func TestGUIDFromEmbedURL(t *testing.T) {
	tests := []struct {
		name string
		link string
		want string
	}{
		{"embed url", "https://iframe.mediadelivery.net/embed/12345/abc-123", "abc-123"},
		{"embed url with query", "https://iframe.mediadelivery.net/embed/12345/abc-123?autoplay=true", "abc-123"},
		{"external link", "https://youtube.com/watch?v=xyz", ""},
		{"empty", "", ""},
		{"embed without guid", "https://iframe.mediadelivery.net/embed/12345/", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GUIDFromEmbedURL(tt.link); got != tt.want {
				t.Errorf("GUIDFromEmbedURL(%q) = %q, want %q", tt.link, got, tt.want)
			}
		})
	}
}
