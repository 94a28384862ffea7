package storage

import (
	"strings"
	"testing"
)

func TestObjectKey(t *testing.T) {
	tests := []struct {
		folder, contentType string
		kind                Kind
		wantPrefix          string
		wantSuffix          string
	}{
		{"cv", "application/pdf", KindDocument, "cv/document/", ".pdf"},
		{"", "image/png", KindImage, "uploads/image/", ".png"},
		{"../../etc", "image/jpeg; charset=binary", KindImage, "etc/image/", ".jpg"},
		{"profile", "application/octet-stream", KindImage, "profile/image/", ""},
	}

	for _, tt := range tests {
		key := objectKey(tt.folder, tt.kind, tt.contentType)
		if !strings.HasPrefix(key, tt.wantPrefix) {
			t.Errorf("objectKey(%q): expected prefix %q, got %q", tt.folder, tt.wantPrefix, key)
		}
		if !strings.HasSuffix(key, tt.wantSuffix) {
			t.Errorf("objectKey(%q): expected suffix %q, got %q", tt.folder, tt.wantSuffix, key)
		}
	}
}

func TestNewS3Storage_PublicURL(t *testing.T) {
	s := newS3Storage(nil, S3Config{Bucket: "media", Region: "eu-west-1"})
	if s.baseURL != "https://media.s3.eu-west-1.amazonaws.com" {
		t.Errorf("Unexpected base URL %q", s.baseURL)
	}

	s = newS3Storage(nil, S3Config{Bucket: "media", Endpoint: "http://localhost:4566/"})
	if s.baseURL != "http://localhost:4566/media" {
		t.Errorf("Unexpected endpoint base URL %q", s.baseURL)
	}

	s = newS3Storage(nil, S3Config{Bucket: "media", PublicBaseURL: "https://cdn.example.com/"})
	if s.baseURL != "https://cdn.example.com" {
		t.Errorf("Unexpected public base URL %q", s.baseURL)
	}
}

func TestParseKind(t *testing.T) {
	if ParseKind("document") != KindDocument || ParseKind("anything") != KindImage {
		t.Error("Unexpected kind parsing")
	}
}
