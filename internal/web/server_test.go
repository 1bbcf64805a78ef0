package web

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Eigenbraid/Dice/internal/config"
	"github.com/Eigenbraid/Dice/internal/heritage"
)

type fakeStats struct {
	counts []heritage.HeritageCount
	err    error
}

func (f fakeStats) HeritageStats(context.Context) ([]heritage.HeritageCount, error) {
	return f.counts, f.err
}

func newTestServer(t *testing.T, stats StatsSource) *Server {
	t.Helper()

	root := t.TempDir()
	files := map[string]string{
		"index.html":    "<h1>dice</h1>",
		"DiceRoller.js": "export const roll = () => 4;",
		"theme.css":     "body { color: black; }",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(root, name), []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
	}

	cfg := config.ServerConfig{Host: "127.0.0.1", Port: 8114, Root: root, ShutdownTimeout: time.Second}
	return NewServer(cfg, stats)
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestStaticFiles(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		path        string
		status      int
		contentType string
		body        string
	}{
		{"/", http.StatusOK, "text/html", "<h1>dice</h1>"},
		{"/DiceRoller.js", http.StatusOK, "application/javascript", "roll"},
		{"/theme.css", http.StatusOK, "text/css", "color"},
		{"/missing.txt", http.StatusNotFound, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := get(t, s, tt.path)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, tt.contentType) {
				t.Errorf("Content-Type = %q, want prefix %q", ct, tt.contentType)
			}
			if !strings.Contains(rec.Body.String(), tt.body) {
				t.Errorf("body %q does not contain %q", rec.Body.String(), tt.body)
			}
		})
	}
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, nil)

	rec := get(t, s, "/healthz")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("got %d %q, want 200 ok", rec.Code, rec.Body.String())
	}
}

func TestStatsPage(t *testing.T) {
	s := newTestServer(t, fakeStats{counts: []heritage.HeritageCount{
		{Heritage: "Akoros", First: 3, Last: 2},
		{Heritage: "<Skovlan>", Nickname: 1},
	}})

	rec := get(t, s, "/stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"<td>Akoros</td><td>5</td><td>3</td><td>2</td><td>0</td>",
		"&lt;Skovlan&gt;",
		"<th>All</th><th>6</th><th>3</th><th>2</th><th>1</th>",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
}

func TestStatsPage_Empty(t *testing.T) {
	s := newTestServer(t, fakeStats{})

	rec := get(t, s, "/stats")
	if !strings.Contains(rec.Body.String(), "No heritage tags found") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestStatsPage_Error(t *testing.T) {
	s := newTestServer(t, fakeStats{err: errors.New("no such table: names")})

	rec := get(t, s, "/stats")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, "(DB008)") || strings.Contains(body, "no such table") {
		t.Errorf("body = %q, want user message only", body)
	}
}

func TestStatsPage_ErrorJSON(t *testing.T) {
	s := newTestServer(t, fakeStats{err: errors.New("no such table: names")})

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	var resp ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != "DB008" || resp.Error == "" {
		t.Errorf("response = %+v, want code DB008", resp)
	}
}

func TestStats_DisabledWithoutSource(t *testing.T) {
	s := newTestServer(t, nil)

	// Falls through to the file server, which has no "stats" file.
	if rec := get(t, s, "/stats"); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	s := newTestServer(t, nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
