// internal/viewer/server.go
package viewer

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/user/termtrace/internal/state"
	"github.com/user/termtrace/internal/types"
	"github.com/user/termtrace/internal/workspace"
)

// Server is a read-only HTTP view over workspaces and session logs.
type Server struct {
	workspaces *workspace.Manager
	mux        *http.ServeMux
}

// NewServer creates a viewer Server over the given workspace root.
func NewServer(workspaces *workspace.Manager) *Server {
	s := &Server{
		workspaces: workspaces,
		mux:        http.NewServeMux(),
	}
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/workspaces", s.handleWorkspaces)
	s.mux.HandleFunc("GET /api/workspaces/", s.handleWorkspacePaths)
	s.mux.HandleFunc("GET /", s.handleIndex)
	return s
}

// ServeHTTP delegates to the internal mux, implementing http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

type workspaceResponse struct {
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	Mode      string `json:"summarize_mode"`
}

func (s *Server) handleWorkspaces(w http.ResponseWriter, r *http.Request) {
	manifests, err := s.workspaces.List()
	if err != nil {
		slog.Error("list workspaces failed", "error", err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	result := make([]workspaceResponse, 0, len(manifests))
	for _, m := range manifests {
		result = append(result, workspaceResponse{
			Name:      string(m.Name),
			CreatedAt: m.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			Mode:      m.Summarize.Mode,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// handleWorkspacePaths dispatches /api/workspaces/{name}/sessions and
// /api/workspaces/{name}/sessions/{id}/records.
func (s *Server) handleWorkspacePaths(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/workspaces/")
	parts := strings.Split(path, "/")

	switch {
	case len(parts) == 2 && parts[1] == "sessions":
		s.handleSessions(w, r, types.WorkspaceName(parts[0]))
	case len(parts) == 4 && parts[1] == "sessions" && parts[3] == "records":
		s.handleRecords(w, r, types.WorkspaceName(parts[0]), types.SessionID(parts[2]))
	default:
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
	}
}

type sessionResponse struct {
	SessionID   string `json:"session_id"`
	Name        string `json:"name"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
	RecordCount int64  `json:"record_count"`
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request, name types.WorkspaceName) {
	store := state.NewSessionStore(s.workspaces.Dir(name))
	sessions, err := store.List()
	if err != nil {
		slog.Error("list sessions failed", "workspace", name, "error", err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	result := make([]sessionResponse, 0, len(sessions))
	for _, sess := range sessions {
		count, err := state.NewLog(sess.LogPath).Count()
		if err != nil {
			slog.Warn("count records failed", "session_id", sess.SessionID, "error", err)
		}
		result = append(result, sessionResponse{
			SessionID:   string(sess.SessionID),
			Name:        sess.Name,
			Status:      sess.Status,
			CreatedAt:   sess.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			UpdatedAt:   sess.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
			RecordCount: count,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt > result[j].UpdatedAt
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request, name types.WorkspaceName, id types.SessionID) {
	store := state.NewSessionStore(s.workspaces.Dir(name))
	sess, err := store.Get(id)
	if err != nil {
		http.Error(w, `{"error":"session not found"}`, http.StatusNotFound)
		return
	}

	records, err := s.loadRecords(sess)
	if err != nil {
		slog.Error("read records failed", "session_id", id, "error", err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	limit := 200
	if q := r.URL.Query().Get("limit"); q != "" {
		if n, err := strconv.Atoi(q); err == nil && n > 0 {
			limit = n
		}
	}
	if len(records) > limit {
		records = records[len(records)-limit:]
	}
	if records == nil {
		records = []*types.Record{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}

// loadRecords reads a session's records, transparently decompressing
// archived logs.
func (s *Server) loadRecords(sess *types.SessionIndex) ([]*types.Record, error) {
	if sess.Status != types.StatusArchived {
		return state.NewLog(sess.LogPath).ReadAll()
	}

	data, err := state.ReadArchived(sess.LogPath + ".zst")
	if err != nil {
		return nil, err
	}
	return state.ParseRecords(data), nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	w.Write([]byte(indexPage))
}

const indexPage = `<!DOCTYPE html>
<html>
<head><title>termtrace</title>
<style>
body { font-family: monospace; margin: 2em; }
pre { background: #f4f4f4; padding: 0.5em; }
.note { color: #0a6; }
.fail { color: #a00; }
</style>
</head>
<body>
<h1>termtrace</h1>
<div id="content">loading...</div>
<script>
async function load() {
  const ws = await (await fetch('/api/workspaces')).json();
  const el = document.getElementById('content');
  el.innerHTML = '';
  for (const w of ws) {
    const h = document.createElement('h2');
    h.textContent = w.name;
    el.appendChild(h);
    const sessions = await (await fetch('/api/workspaces/' + w.name + '/sessions')).json();
    for (const s of sessions) {
      const d = document.createElement('details');
      const sum = document.createElement('summary');
      sum.textContent = s.name + ' (' + s.status + ', ' + s.record_count + ' records)';
      d.appendChild(sum);
      d.addEventListener('toggle', async () => {
        if (!d.open || d.dataset.loaded) return;
        d.dataset.loaded = '1';
        const recs = await (await fetch('/api/workspaces/' + w.name + '/sessions/' + s.session_id + '/records')).json();
        for (const r of recs) {
          const p = document.createElement('pre');
          if (r.type === 'note') {
            p.className = 'note';
            p.textContent = '[' + r.timestamp + '] # ' + r.text;
          } else {
            if (r.exit_code !== 0) p.className = 'fail';
            p.textContent = '[' + r.timestamp + '] $ ' + r.command + '\n' + r.output;
          }
          d.appendChild(p);
        }
      });
      el.appendChild(d);
    }
  }
}
load();
</script>
</body>
</html>
`
