package viewer

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/user/termtrace/internal/state"
	"github.com/user/termtrace/internal/types"
	"github.com/user/termtrace/internal/workspace"
)

var testTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func setupServer(t *testing.T) (*Server, *workspace.Manager) {
	t.Helper()
	manager := workspace.NewManager(t.TempDir())
	return NewServer(manager), manager
}

func seedSession(t *testing.T, manager *workspace.Manager, ws types.WorkspaceName, records ...*types.Record) *types.SessionIndex {
	t.Helper()
	if _, err := manager.Ensure(ws); err != nil {
		t.Fatal(err)
	}
	store := state.NewSessionStore(manager.Dir(ws))
	sess, err := store.Create(ws, "")
	if err != nil {
		t.Fatal(err)
	}
	log := state.NewLog(sess.LogPath)
	for _, rec := range records {
		if err := log.Append(rec); err != nil {
			t.Fatal(err)
		}
	}
	return sess
}

func get(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := setupServer(t)

	w := get(t, srv, "/health")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %q", body["status"])
	}
}

func TestWorkspacesEndpoint(t *testing.T) {
	srv, manager := setupServer(t)
	seedSession(t, manager, "alpha")
	seedSession(t, manager, "beta")

	w := get(t, srv, "/api/workspaces")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var got []workspaceResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("workspaces = %d, want 2", len(got))
	}
	if got[0].Name != "alpha" || got[1].Name != "beta" {
		t.Errorf("names = %q, %q", got[0].Name, got[1].Name)
	}
}

func TestWorkspacesEndpointEmpty(t *testing.T) {
	srv, _ := setupServer(t)

	w := get(t, srv, "/api/workspaces")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("body = %q, want empty array", w.Body.String())
	}
}

func TestSessionsEndpoint(t *testing.T) {
	srv, manager := setupServer(t)
	seedSession(t, manager, "work",
		types.NewCommand(testTime, "ls", "a.txt\n", 0),
		types.NewNote(testTime, "# looking around"),
	)

	w := get(t, srv, "/api/workspaces/work/sessions")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var got []sessionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("sessions = %d, want 1", len(got))
	}
	if got[0].Status != types.StatusActive {
		t.Errorf("status = %q", got[0].Status)
	}
	if got[0].RecordCount != 2 {
		t.Errorf("record count = %d, want 2", got[0].RecordCount)
	}
}

func TestRecordsEndpoint(t *testing.T) {
	srv, manager := setupServer(t)
	sess := seedSession(t, manager, "work",
		types.NewCommand(testTime, "make build", "ok\n", 0),
		types.NewCommand(testTime, "make test", "FAIL\n", 2),
	)

	w := get(t, srv, "/api/workspaces/work/sessions/"+string(sess.SessionID)+"/records")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var got []*types.Record
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("records = %d, want 2", len(got))
	}
	if got[1].Command != "make test" || got[1].ExitCode != 2 {
		t.Errorf("record = %+v", got[1])
	}
}

func TestRecordsEndpointLimit(t *testing.T) {
	srv, manager := setupServer(t)
	sess := seedSession(t, manager, "work",
		types.NewCommand(testTime, "first", "", 0),
		types.NewCommand(testTime, "second", "", 0),
		types.NewCommand(testTime, "third", "", 0),
	)

	w := get(t, srv, "/api/workspaces/work/sessions/"+string(sess.SessionID)+"/records?limit=2")

	var got []*types.Record
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("records = %d, want 2", len(got))
	}
	if got[0].Command != "second" || got[1].Command != "third" {
		t.Errorf("limit should keep the newest records: %q, %q", got[0].Command, got[1].Command)
	}
}

func TestRecordsEndpointArchivedSession(t *testing.T) {
	srv, manager := setupServer(t)
	sess := seedSession(t, manager, "work",
		types.NewCommand(testTime, "ls", "a.txt\n", 0),
	)

	if _, err := state.Archive(sess.LogPath); err != nil {
		t.Fatal(err)
	}
	store := state.NewSessionStore(manager.Dir("work"))
	sess.Status = types.StatusArchived
	if err := store.Update(sess); err != nil {
		t.Fatal(err)
	}

	w := get(t, srv, "/api/workspaces/work/sessions/"+string(sess.SessionID)+"/records")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var got []*types.Record
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Command != "ls" {
		t.Errorf("records = %+v", got)
	}
}

func TestRecordsEndpointUnknownSession(t *testing.T) {
	srv, manager := setupServer(t)
	seedSession(t, manager, "work")

	w := get(t, srv, "/api/workspaces/work/sessions/nope/records")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestUnknownAPIPath(t *testing.T) {
	srv, manager := setupServer(t)
	seedSession(t, manager, "work")

	w := get(t, srv, "/api/workspaces/work/bogus")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestIndexServesHTML(t *testing.T) {
	srv, _ := setupServer(t)

	w := get(t, srv, "/")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/html" {
		t.Errorf("content type = %q", ct)
	}
	if !strings.Contains(w.Body.String(), "termtrace") {
		t.Error("index page missing title")
	}
}
