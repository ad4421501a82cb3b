package net

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadPage_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); !strings.HasPrefix(ua, "scrollreveal/") {
			t.Errorf("user agent = %q", ua)
		}
		switch r.URL.Path {
		case "/page":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write([]byte(`<div data-aos="fade"></div>`))
		case "/data":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	got, err := ReadPage(ctx, srv.URL+"/page")
	if err != nil || got != `<div data-aos="fade"></div>` {
		t.Errorf("ReadPage = %q, %v", got, err)
	}
	if _, err := ReadPage(ctx, srv.URL+"/data"); err == nil {
		t.Error("expected a content type error")
	}
	if _, err := ReadPage(ctx, srv.URL+"/missing"); err == nil || !strings.Contains(err.Error(), "HTTP 404") {
		t.Errorf("expected a status error, got %v", err)
	}
}

func TestReadPage_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.html")
	if err := os.WriteFile(path, []byte("<p>hi</p>"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := ReadPage(context.Background(), path)
	if err != nil || got != "<p>hi</p>" {
		t.Errorf("ReadPage = %q, %v", got, err)
	}
	if _, err := ReadPage(context.Background(), path+".missing"); err == nil {
		t.Error("expected a missing file error")
	}
}

func TestFetch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := Fetch(ctx, "http://127.0.0.1:1/"); err == nil {
		t.Error("expected an error for a cancelled context")
	}
}

func TestIsNetworkURL(t *testing.T) {
	for s, want := range map[string]bool{
		"http://a":    true,
		"https://a/b": true,
		"file:///x":   false,
		"index.html":  false,
	} {
		if got := IsNetworkURL(s); got != want {
			t.Errorf("IsNetworkURL(%q) = %v", s, got)
		}
	}
}
