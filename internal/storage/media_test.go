package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/your-org/treemap/internal/config"
)

func TestNormalizeBaseURL(t *testing.T) {
	cases := map[string]string{
		"cdn.example.org":          "https://cdn.example.org",
		"cdn.example.org/":         "https://cdn.example.org",
		"http://localhost:9000":    "http://localhost:9000",
		"https://cdn.example.org/": "https://cdn.example.org",
	}
	for in, want := range cases {
		if got := normalizeBaseURL(in); got != want {
			t.Errorf("normalizeBaseURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNewAssetIDIncludesFolder(t *testing.T) {
	id := newAssetID("yvr-user-photos")
	if !strings.HasPrefix(id, "yvr-user-photos/") {
		t.Errorf("asset id %q does not carry the folder prefix", id)
	}
	if rest := strings.TrimPrefix(id, "yvr-user-photos/"); strings.Contains(rest, "-") {
		t.Errorf("asset id suffix %q should be opaque hex without dashes", rest)
	}

	if got := newAssetID(""); strings.Contains(got, "/") {
		t.Errorf("folderless asset id %q should not contain a separator", got)
	}
}

func TestObjectKey(t *testing.T) {
	if got := objectKey("yvr-user-photos/abc123"); got != "yvr-user-photos/abc123.jpg" {
		t.Errorf("objectKey = %q, want yvr-user-photos/abc123.jpg", got)
	}
}

// Delete must be idempotent: removing a missing or already-removed object is
// success. S3-style hosts answer 204 either way; both calls must return nil.
func TestDeleteIsIdempotent(t *testing.T) {
	var deletes atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			deletes.Add(1)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	store, err := NewMinIOStore(config.MediaConfig{
		Endpoint:  strings.TrimPrefix(srv.URL, "http://"),
		AccessKey: "test",
		SecretKey: "test",
		Bucket:    "treemap-photos",
		UseSSL:    false,
	})
	if err != nil {
		t.Fatalf("NewMinIOStore() = %v", err)
	}

	ctx := context.Background()
	if err := store.Delete(ctx, "yvr-user-photos/ghost"); err != nil {
		t.Fatalf("first Delete() = %v, want nil", err)
	}
	if err := store.Delete(ctx, "yvr-user-photos/ghost"); err != nil {
		t.Fatalf("second Delete() = %v, want nil", err)
	}
	if deletes.Load() != 2 {
		t.Errorf("media host saw %d deletes, want 2", deletes.Load())
	}
}
