package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/forcegraph/pkg/buildinfo"
	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/observability"
	"github.com/matzehuels/forcegraph/pkg/render/nodelink"
	"github.com/matzehuels/forcegraph/pkg/render/svg"
	"github.com/matzehuels/forcegraph/pkg/sim"
)

// maxBodyBytes bounds request bodies; every payload is a handful of numbers.
const maxBodyBytes = 1 << 16

// StateResponse is the body of GET /api/state.
type StateResponse struct {
	Session string  `json:"session"`
	State   string  `json:"state"`
	Alpha   float64 `json:"alpha"`
	Tick    int     `json:"tick"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
}

// PinRequest is the body of POST /api/nodes/{id}/pin.
type PinRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// FindRequest is the body of POST /api/find. Radius <= 0 means unlimited.
type FindRequest struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
}

// ResizeRequest is the body of POST /api/resize.
type ResizeRequest struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type errorResponse struct {
	Code  errors.Code `json:"code"`
	Error string      `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	body := buildinfo.Info()
	body["status"] = "ok"
	body["session"] = s.session
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	width, height := s.sim.Viewport()
	resp := StateResponse{
		Session: s.session,
		State:   s.sim.State().String(),
		Alpha:   s.sim.Alpha(),
		Tick:    s.sim.Ticks(),
		Width:   width,
		Height:  height,
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	l, err := s.sim.Snapshot()
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, err)
		return
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		writeJSON(w, http.StatusOK, l)
	case "svg":
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write(svg.RenderSVG(l, svg.WithLabels(s.cfg.Labels), svg.WithPinnedMarkers()))
	case "dot":
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		_, _ = w.Write([]byte(nodelink.ToDOT(l, nodelink.Options{})))
	default:
		s.writeError(w, errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q (must be one of: json, svg, dot)", format))
	}
}

func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	n, err := s.sim.Node(id)
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// handlePin starts or continues a drag: the node follows the pointer and
// the simulation stays warm until the drag ends.
func (s *Server) handlePin(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req PinRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	s.mu.Lock()
	n, err := s.pin(id, req.X, req.Y)
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, err)
		return
	}
	observability.Session().OnPin(r.Context(), s.session, id)
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) pin(id string, x, y float64) (graph.PlacedNode, error) {
	if err := s.sim.Pin(id, x, y); err != nil {
		return graph.PlacedNode{}, err
	}
	if err := s.sim.Reheat(sim.DefaultDragAlpha); err != nil {
		return graph.PlacedNode{}, err
	}
	s.settled = false
	return s.sim.Node(id)
}

// handleUnpin ends a drag and lets the simulation cool.
func (s *Server) handleUnpin(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	err := s.sim.Unpin(id)
	if err == nil {
		err = s.sim.Reheat(0)
	}
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, err)
		return
	}
	observability.Session().OnUnpin(r.Context(), s.session, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFind(w http.ResponseWriter, r *http.Request) {
	var req FindRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := errors.ValidateCoordinate(req.X, req.Y); err != nil {
		s.writeError(w, err)
		return
	}

	s.mu.Lock()
	id, err := s.sim.Find(req.X, req.Y, req.Radius)
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	var req ResizeRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	s.mu.Lock()
	err := s.sim.Resize(req.Width, req.Height)
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Debug("resized", "width", req.Width, "height", req.Height)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRestart(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	err := s.sim.Restart()
	if err == nil {
		s.settled = false
	}
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Debug("restarted")
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Helpers
// =============================================================================

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, errorResponse{Code: errors.GetCode(err), Error: errors.UserMessage(err)})
}
