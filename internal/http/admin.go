package httpadmin

import (
	"context"
	"encoding/json"
	"net/http"
)

type Rescanner interface {
	Rescan(ctx context.Context) (imported int, err error)
}

type Server struct {
	res Rescanner
}

func New(res Rescanner) *Server { return &Server{res: res} }

func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/admin/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/admin/rescan", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		imported, err := s.res.Rescan(r.Context())
		if err != nil {
			http.Error(w, "rescan failed: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "imported": imported})
	})
}
