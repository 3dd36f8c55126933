package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sheetfold/sheetfold/internal/accordion"
	"github.com/sheetfold/sheetfold/internal/media"
	"github.com/sheetfold/sheetfold/internal/retry"
	"github.com/sheetfold/sheetfold/internal/search"
	"github.com/sheetfold/sheetfold/internal/server/httpx"
)

var errNoCountdown = errors.New("no retry countdown is running")

type instanceView struct {
	accordion.Snapshot
	HTML string `json:"html"`
	// Fonts lists every font stylesheet loaded so far; the page adds the
	// ones it lacks.
	Fonts []string `json:"fonts,omitempty"`
}

type listInstancesResponse struct {
	Instances []instanceView `json:"instances"`
}

type hoverResponse struct {
	Index        int    `json:"index"`
	Materialized bool   `json:"materialized"`
	Cancelled    bool   `json:"cancelled,omitempty"`
	HTML         string `json:"html,omitempty"`
}

type searchResponse struct {
	Stale  bool           `json:"stale,omitempty"`
	Result *search.Result `json:"result,omitempty"`
	// Contents maps each affected instance id to its repainted content.
	Contents map[string]string `json:"contents,omitempty"`
	Fonts    []string          `json:"fonts,omitempty"`
}

type retryResponse struct {
	Pending bool `json:"pending"`
	*retry.State
	// Display is the remaining time as the panel shows it.
	Display string `json:"seconds,omitempty"`
}

func (s *Server) view(in *accordion.Instance) instanceView {
	return instanceView{Snapshot: in.Snapshot(), HTML: in.ContentHTML(), Fonts: s.fonts.Stylesheets()}
}

func (s *Server) listInstancesHandler(w http.ResponseWriter, r *http.Request) {
	instances := s.registry.Instances()
	out := listInstancesResponse{Instances: make([]instanceView, 0, len(instances))}
	for _, in := range instances {
		out.Instances = append(out.Instances, s.view(in))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) instance(w http.ResponseWriter, r *http.Request) (*accordion.Instance, bool) {
	in, err := s.registry.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return in, true
}

func (s *Server) instanceHandler(w http.ResponseWriter, r *http.Request) {
	in, ok := s.instance(w, r)
	if !ok {
		return
	}
	httpx.WriteJSON(w, http.StatusOK, s.view(in))
}

// reloadHandler fetches again. A failed fetch is reported through the
// instance status, not the response code.
func (s *Server) reloadHandler(w http.ResponseWriter, r *http.Request) {
	in, ok := s.instance(w, r)
	if !ok {
		return
	}
	_ = in.Load(r.Context())
	s.syncHealth()
	httpx.WriteJSON(w, http.StatusOK, s.view(in))
}

func itemIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "index")
	index, err := strconv.Atoi(raw)
	if err != nil || index < 0 {
		httpx.WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid item index %q", raw))
		return 0, false
	}
	return index, true
}

func (s *Server) toggleHandler(w http.ResponseWriter, r *http.Request) {
	in, ok := s.instance(w, r)
	if !ok {
		return
	}
	index, ok := itemIndex(w, r)
	if !ok {
		return
	}
	res, err := in.Toggle(index)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

// hoverHandler holds the request open for the hover delay. Leaving the row
// (DELETE) or dropping the request abandons the load.
func (s *Server) hoverHandler(w http.ResponseWriter, r *http.Request) {
	in, ok := s.instance(w, r)
	if !ok {
		return
	}
	index, ok := itemIndex(w, r)
	if !ok {
		return
	}
	done, err := in.Hover(index)
	if err != nil {
		writeError(w, err)
		return
	}
	select {
	case loaded := <-done:
		if !loaded {
			httpx.WriteJSON(w, http.StatusOK, hoverResponse{Index: index, Cancelled: true})
			return
		}
		httpx.WriteJSON(w, http.StatusOK, hoverResponse{Index: index, Materialized: true, HTML: in.ItemHTML(index)})
	case <-r.Context().Done():
		_ = in.CancelHover(index)
	}
}

func (s *Server) cancelHoverHandler(w http.ResponseWriter, r *http.Request) {
	in, ok := s.instance(w, r)
	if !ok {
		return
	}
	index, ok := itemIndex(w, r)
	if !ok {
		return
	}
	if err := in.CancelHover(index); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) searchHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	res, stale, err := s.search.Debounced(r.Context(), id, r.URL.Query().Get("q"))
	if err != nil {
		if r.Context().Err() != nil {
			return
		}
		writeError(w, err)
		return
	}
	if stale {
		httpx.WriteJSON(w, http.StatusOK, searchResponse{Stale: true})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, s.searchResult(res))
}

// chipHandler applies a common-search chip right away. The "All" chip
// clears the search.
func (s *Server) chipHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	res, err := s.search.Search(id, search.ChipTerm(r.URL.Query().Get("label")))
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, s.searchResult(res))
}

func (s *Server) searchResult(res search.Result) searchResponse {
	out := searchResponse{Result: &res, Contents: map[string]string{}, Fonts: s.fonts.Stylesheets()}
	for id := range res.Instances {
		if in, err := s.registry.Get(id); err == nil {
			out.Contents[id] = in.ContentHTML()
		}
	}
	return out
}

func (s *Server) retryStateHandler(w http.ResponseWriter, r *http.Request) {
	in, ok := s.instance(w, r)
	if !ok {
		return
	}
	c, running := in.Countdown()
	if !running {
		httpx.WriteJSON(w, http.StatusOK, retryResponse{})
		return
	}
	st := c.State()
	httpx.WriteJSON(w, http.StatusOK, retryResponse{Pending: true, State: &st, Display: st.Seconds()})
}

func (s *Server) retryPauseHandler(w http.ResponseWriter, r *http.Request) {
	s.retryAction(w, r, (*retry.Countdown).Pause)
}

func (s *Server) retryResumeHandler(w http.ResponseWriter, r *http.Request) {
	s.retryAction(w, r, (*retry.Countdown).Resume)
}

func (s *Server) retryAction(w http.ResponseWriter, r *http.Request, action func(*retry.Countdown)) {
	in, ok := s.instance(w, r)
	if !ok {
		return
	}
	c, running := in.Countdown()
	if !running {
		writeError(w, errNoCountdown)
		return
	}
	action(c)
	st := c.State()
	httpx.WriteJSON(w, http.StatusOK, retryResponse{Pending: true, State: &st, Display: st.Seconds()})
}

func (s *Server) viewedRefreshHandler(w http.ResponseWriter, r *http.Request) {
	s.registry.RefreshBadges()
	httpx.WriteJSON(w, http.StatusOK, map[string]int{"refreshed": len(s.registry.Instances())})
}

// mediaHandler resolves one lazy placeholder. Sizing follows the instance
// named by ?instance=, or the first mounted one.
func (s *Server) mediaHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var in *accordion.Instance
	if id := q.Get("instance"); id != "" {
		var err error
		if in, err = s.registry.Get(id); err != nil {
			writeError(w, err)
			return
		}
	} else if all := s.registry.Instances(); len(all) > 0 {
		in = all[0]
	} else {
		httpx.WriteError(w, http.StatusNotFound, "no accordion is mounted")
		return
	}
	inCell, _ := strconv.ParseBool(q.Get("in_cell"))
	m, err := in.Embedder().Resolve(media.Kind(q.Get("kind")), q.Get("data"), inCell)
	if err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error(), "fallback": m.Fallback})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, m)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, accordion.ErrUnknownInstance), errors.Is(err, accordion.ErrUnknownItem):
		httpx.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, accordion.ErrNotExpandable), errors.Is(err, errNoCountdown):
		httpx.WriteError(w, http.StatusConflict, err.Error())
	default:
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
	}
}
