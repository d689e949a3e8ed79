package storage

import (
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestNewSpacesClientRequiresConfig(t *testing.T) {
	if _, err := NewSpacesClient(SpacesConfig{Bucket: "media"}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("NewSpacesClient = %v, want ErrNotConfigured", err)
	}
}

func TestPresignGet(t *testing.T) {
	client, err := NewSpacesClient(SpacesConfig{
		AccessKey: "AKIDEXAMPLE",
		SecretKey: "secret",
		Bucket:    "media",
		Region:    "nyc3",
		Endpoint:  "nyc3.digitaloceanspaces.com",
	})
	if err != nil {
		t.Fatalf("NewSpacesClient: %v", err)
	}

	raw, err := client.PresignGet("courses/1/lessons/2/intro.mp4", 15*time.Minute)
	if err != nil {
		t.Fatalf("PresignGet: %v", err)
	}
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	if !strings.HasSuffix(u.Path, "/courses/1/lessons/2/intro.mp4") {
		t.Fatalf("path = %q", u.Path)
	}
	q := u.Query()
	if q.Get("X-Amz-Signature") == "" || q.Get("X-Amz-Expires") != "900" {
		t.Fatalf("query = %v", q)
	}
}

func TestLessonMediaKey(t *testing.T) {
	key := LessonMediaKey(3, 7, "Intro.MP4")
	if !strings.HasPrefix(key, "courses/3/lessons/7/") || !strings.HasSuffix(key, ".mp4") {
		t.Fatalf("key = %q", key)
	}
	if ContentType("clip.webm") != "video/webm" || ContentType("x.bin") != "application/octet-stream" {
		t.Fatalf("unexpected content types")
	}
}
