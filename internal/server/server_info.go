package server

import (
	"net/http"
	"os"
	"strings"

	"github.com/sheetfold/sheetfold/internal/server/httpx"
	"github.com/sheetfold/sheetfold/internal/version"
)

type serverInfoResponse struct {
	Name       string `json:"name"`
	APIVersion int    `json:"api_version"`
	Version    string `json:"version"`
	Hostname   string `json:"hostname,omitempty"`
}

type healthzResponse struct {
	Status string `json:"status"`
}

func serverInfoHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	host, _ := os.Hostname()
	host = strings.TrimSpace(host)
	httpx.WriteJSON(w, http.StatusOK, serverInfoResponse{
		Name:       "sheetfold",
		APIVersion: 1,
		Version:    version.Current(),
		Hostname:   host,
	})
}

func (s *Server) healthzHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			httpx.WriteJSON(w, http.StatusServiceUnavailable, healthzResponse{Status: "storage unavailable"})
			return
		}
	}
	httpx.WriteJSON(w, http.StatusOK, healthzResponse{Status: "ok"})
}
