package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lingo-build/lingo/pkg/cache"
)

func TestDownloaderGet(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("archive"))
	}))
	defer srv.Close()

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	d := &Downloader{Client: srv.Client(), Cache: fc, Delay: time.Millisecond}

	body, err := d.Get(context.Background(), srv.URL+"/pkg.tar.gz")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(body) != "archive" {
		t.Errorf("body = %q", body)
	}
	if hits.Load() != 2 {
		t.Errorf("server hits = %d, want 2 (one retry)", hits.Load())
	}

	if _, err := d.Get(context.Background(), srv.URL+"/pkg.tar.gz"); err != nil {
		t.Fatal(err)
	}
	if hits.Load() != 2 {
		t.Errorf("cached Get hit the server again (%d hits)", hits.Load())
	}
}

func TestDownloaderErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			http.NotFound(w, r)
		default:
			_, _ = w.Write([]byte(strings.Repeat("x", 64)))
		}
	}))
	defer srv.Close()

	d := &Downloader{Client: srv.Client(), Delay: time.Millisecond, MaxSize: 16}

	if _, err := d.Get(context.Background(), srv.URL+"/missing"); err == nil || IsRetryable(err) {
		t.Errorf("404: err = %v, want permanent error", err)
	}
	if _, err := d.Get(context.Background(), srv.URL+"/big"); err == nil || !strings.Contains(err.Error(), "max size") {
		t.Errorf("oversize: err = %v", err)
	}
}

func TestDownloaderUserAgent(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	d := &Downloader{Client: srv.Client(), UserAgent: "lingo/test"}
	if _, err := d.Get(context.Background(), srv.URL); err != nil {
		t.Fatal(err)
	}
	if got != "lingo/test" {
		t.Errorf("User-Agent = %q", got)
	}
}
