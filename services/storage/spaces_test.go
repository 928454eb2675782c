package storage

import (
	"strings"
	"testing"
)

func TestNewSpacesClientRequiresCredentials(t *testing.T) {
	tests := []struct {
		name   string
		config SpacesConfig
	}{
		{"missing everything", SpacesConfig{}},
		{"missing secret", SpacesConfig{AccessKey: "key", Bucket: "bucket"}},
		{"missing bucket", SpacesConfig{AccessKey: "key", SecretKey: "secret"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewSpacesClient(tt.config); err != ErrMissingCredentials {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})
	}
}

func TestGenerateKey(t *testing.T) {
	key := GenerateKey(PrefixCourseThumbnails, "My Photo.JPG")

	if !strings.HasPrefix(key, PrefixCourseThumbnails+"/") {
		t.Errorf("key %q does not start with prefix", key)
	}
	if !strings.HasSuffix(key, ".jpg") {
		t.Errorf("key %q should carry the lowercased extension", key)
	}

	other := GenerateKey(PrefixCourseThumbnails, "My Photo.JPG")
	if key == other {
		t.Error("expected unique keys for repeated uploads of the same filename")
	}
}

func TestGenerateKeyWithoutExtension(t *testing.T) {
	key := GenerateKey(PrefixDocuments, "README")
	if strings.Contains(key, ".") {
		t.Errorf("key %q should have no extension", key)
	}
}

func TestContentTypeFor(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"photo.jpg", "image/jpeg"},
		{"photo.JPEG", "image/jpeg"},
		{"diagram.png", "image/png"},
		{"syllabus.pdf", "application/pdf"},
		{"lesson.mp4", "video/mp4"},
		{"notes.txt", "text/plain"},
		{"unknown.xyz", "application/octet-stream"},
		{"noextension", "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := ContentTypeFor(tt.filename); got != tt.want {
				t.Errorf("ContentTypeFor(%q) = %q, want %q", tt.filename, got, tt.want)
			}
		})
	}
}
