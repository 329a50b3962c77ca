package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/sanonone/kektorgraph/pkg/config"
	"github.com/sanonone/kektorgraph/pkg/engine"
	"github.com/sanonone/kektorgraph/pkg/graph"
)

const database = `t # 1
v 0 C
v 1 C
v 2 O
e 0 1 -
e 1 2 -
t # 2
v 0 C
v 1 C
v 2 O
v 3 H
e 0 1 -
e 1 2 -
e 2 3 -
`

const token = "test-secret-token"

func testOptions() engine.Options {
	opts := engine.DefaultOptions()
	opts.Workers = 2
	return opts
}

func newTestServer(t *testing.T, withIndex bool, cfg config.ServerConfig) (*Server, *httptest.Server) {
	t.Helper()
	var idx *engine.Index
	if withIndex {
		graphs, err := graph.Parse(strings.NewReader(database))
		if err != nil {
			t.Fatal(err)
		}
		idx, err = engine.NewIndex(context.Background(), graphs, testOptions())
		if err != nil {
			t.Fatal(err)
		}
	}
	cfg.AuthToken = token
	s := NewServer(idx, testOptions(), cfg)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func do(t *testing.T, method, url, body string, auth bool) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if auth {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestPublicEndpoints(t *testing.T) {
	_, ts := newTestServer(t, true, config.ServerConfig{})

	resp := do(t, http.MethodGet, ts.URL+"/healthz", "", false)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz expected 200, got %d", resp.StatusCode)
	}
	var health HealthResponse
	decode(t, resp, &health)
	if !health.Ready {
		t.Errorf("healthz reports not ready with an index loaded")
	}

	resp = do(t, http.MethodGet, ts.URL+"/metrics", "", false)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("metrics expected 200, got %d", resp.StatusCode)
	}
}

func TestAuth(t *testing.T) {
	_, ts := newTestServer(t, true, config.ServerConfig{})

	if resp := do(t, http.MethodGet, ts.URL+"/v1/index", "", false); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("protected expected 401, got %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/v1/index", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("wrong token expected 401, got %d", resp.StatusCode)
	}

	if resp := do(t, http.MethodGet, ts.URL+"/v1/index", "", true); resp.StatusCode != http.StatusOK {
		t.Errorf("protected with token expected 200, got %d", resp.StatusCode)
	}
}

func TestIndexStats(t *testing.T) {
	_, ts := newTestServer(t, true, config.ServerConfig{})

	resp := do(t, http.MethodGet, ts.URL+"/v1/index", "", true)
	var stats engine.Stats
	decode(t, resp, &stats)
	if stats.Graphs != 2 || stats.Features == 0 || stats.H2 != 1024 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestCandidates(t *testing.T) {
	_, ts := newTestServer(t, true, config.ServerConfig{})

	query := "t # q\nv 0 C\nv 1 O\ne 0 1 -\n"
	resp := do(t, http.MethodPost, ts.URL+"/v1/candidates", query, true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("candidates expected 200, got %d", resp.StatusCode)
	}
	var body CandidatesResponse
	decode(t, resp, &body)

	want := []engine.Result{{Query: 1, QueryID: "q", Candidates: []int{1, 2}, CandidateIDs: []string{"1", "2"}}}
	if !reflect.DeepEqual(body.Results, want) {
		t.Errorf("results = %+v, want %+v", body.Results, want)
	}
}

func TestCandidatesErrors(t *testing.T) {
	_, ts := newTestServer(t, true, config.ServerConfig{})
	if resp := do(t, http.MethodPost, ts.URL+"/v1/candidates", "t # 1\nx 0\n", true); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("malformed graph expected 400, got %d", resp.StatusCode)
	}

	_, empty := newTestServer(t, false, config.ServerConfig{})
	if resp := do(t, http.MethodPost, empty.URL+"/v1/candidates", "t # 1\nv 0 C\n", true); resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("no index expected 503, got %d", resp.StatusCode)
	}
}

func TestRebuild(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "db.txt")
	if err := os.WriteFile(dbPath, []byte(database), 0644); err != nil {
		t.Fatal(err)
	}
	cfg := config.ServerConfig{
		DatabasePath:   dbPath,
		DictionaryPath: filepath.Join(dir, "features.txt"),
		MatrixPath:     filepath.Join(dir, "db.kgm"),
	}
	s, ts := newTestServer(t, false, cfg)

	resp := do(t, http.MethodPost, ts.URL+"/v1/index/rebuild", "", true)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("rebuild expected 202, got %d", resp.StatusCode)
	}
	var started RebuildResponse
	decode(t, resp, &started)

	deadline := time.Now().Add(10 * time.Second)
	for {
		var view TaskView
		decode(t, do(t, http.MethodGet, ts.URL+"/v1/tasks/"+started.TaskID, "", true), &view)
		if view.Status == TaskStatusCompleted {
			break
		}
		if view.Status == TaskStatusFailed {
			t.Fatalf("rebuild failed: %s", view.Error)
		}
		if time.Now().After(deadline) {
			t.Fatalf("rebuild did not finish, last status %q", view.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}

	if s.Index() == nil || s.Index().Stats().Graphs != 2 {
		t.Fatalf("rebuilt index not swapped in")
	}
	if _, err := engine.OpenIndex(cfg.DictionaryPath, cfg.MatrixPath, testOptions()); err != nil {
		t.Errorf("rebuilt index not saved: %v", err)
	}
}

func TestRebuildWithoutDatabase(t *testing.T) {
	_, ts := newTestServer(t, true, config.ServerConfig{})
	if resp := do(t, http.MethodPost, ts.URL+"/v1/index/rebuild", "", true); resp.StatusCode != http.StatusConflict {
		t.Errorf("rebuild without database expected 409, got %d", resp.StatusCode)
	}
	if resp := do(t, http.MethodGet, ts.URL+"/v1/tasks/nope", "", true); resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown task expected 404, got %d", resp.StatusCode)
	}
}

func TestShutdownCancelsRebuild(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "db.txt")
	if err := os.WriteFile(dbPath, []byte(database), 0644); err != nil {
		t.Fatal(err)
	}
	s, ts := newTestServer(t, false, config.ServerConfig{DatabasePath: dbPath})
	s.Shutdown()

	resp := do(t, http.MethodPost, ts.URL+"/v1/index/rebuild", "", true)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("rebuild expected 202, got %d", resp.StatusCode)
	}
	var started RebuildResponse
	decode(t, resp, &started)

	task, _ := s.taskManager.GetTask(started.TaskID)
	deadline := time.Now().Add(10 * time.Second)
	for task.View().Status != TaskStatusFailed {
		if time.Now().After(deadline) {
			t.Fatalf("rebuild after shutdown ended as %q, want failed", task.View().Status)
		}
		time.Sleep(10 * time.Millisecond)
	}
	if !strings.Contains(task.View().Error, context.Canceled.Error()) {
		t.Errorf("task error = %q, want context canceled", task.View().Error)
	}
	if s.Index() != nil {
		t.Errorf("canceled rebuild swapped in an index")
	}
}
