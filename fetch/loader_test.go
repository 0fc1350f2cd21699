package fetch_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"csscull/fetch"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestLoad_OrderPreserved(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.css", ".a { x: 1; }")
	b := writeFile(t, dir, "b.css", ".b { x: 2; }")
	c := writeFile(t, dir, "c.css", ".c { x: 3; }")

	l := fetch.NewLoader(zaptest.NewLogger(t))
	got, err := l.Load(context.Background(), []string{c, a, b})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
	for i, want := range []string{".c", ".a", ".b"} {
		if !strings.HasPrefix(string(got[i]), want) {
			t.Errorf("result %d out of order: %q", i, got[i])
		}
	}
}

func TestLoad_MissingFile(t *testing.T) {
	l := fetch.NewLoader(zaptest.NewLogger(t))

	missing := filepath.Join(t.TempDir(), "nope.css")
	_, err := l.Load(context.Background(), []string{missing})
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "could not open "+missing) {
		t.Errorf("error must identify the unreadable source: %v", err)
	}
}

func TestLoad_Remote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/style.css":
			w.Write([]byte(".remote { x: 1; }"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	l := fetch.NewLoader(zaptest.NewLogger(t))

	got, err := l.Load(context.Background(), []string{srv.URL + "/style.css"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got[0]) != ".remote { x: 1; }" {
		t.Errorf("unexpected content: %q", got[0])
	}

	if _, err := l.Load(context.Background(), []string{srv.URL + "/absent.css"}); err == nil {
		t.Error("expected error for 404 response")
	}
}

func TestLoad_RejectsBinaryContent(t *testing.T) {
	dir := t.TempDir()
	// PNG signature
	png := filepath.Join(dir, "style.css")
	if err := os.WriteFile(png, []byte("\x89PNG\r\n\x1a\n0000000000"), 0644); err != nil {
		t.Fatal(err)
	}

	l := fetch.NewLoader(zaptest.NewLogger(t))
	_, err := l.Load(context.Background(), []string{png})
	if err == nil {
		t.Fatal("expected error for binary content")
	}
	if !strings.Contains(err.Error(), "not a stylesheet") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoad_AggregatesFailures(t *testing.T) {
	dir := t.TempDir()
	ok := writeFile(t, dir, "ok.css", ".ok {}")

	l := fetch.NewLoader(zaptest.NewLogger(t))
	_, err := l.Load(context.Background(), []string{
		ok,
		filepath.Join(dir, "first-missing.css"),
		filepath.Join(dir, "second-missing.css"),
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "first-missing.css") || !strings.Contains(err.Error(), "second-missing.css") {
		t.Errorf("expected both failures reported: %v", err)
	}
}
