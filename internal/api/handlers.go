package api

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/kindness-map/internal/locate"
	"github.com/sells-group/kindness-map/internal/model"
	"github.com/sells-group/kindness-map/internal/render"
	"github.com/sells-group/kindness-map/internal/view"
)

// sessionResponse is a session id plus its view state.
type sessionResponse struct {
	ID string `json:"id"`
	view.State
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"source":   s.pipeline.Source.Name(),
		"sessions": s.sessions.Stats(),
	})
}

// handleSpots serves GET /api/spots?lat=&lng=&zoom= without session state.
func (s *Server) handleSpots(w http.ResponseWriter, r *http.Request) {
	center := s.resolver.Default().Coordinate
	q := r.URL.Query()
	if q.Has("lat") || q.Has("lng") {
		c, err := parseCoordinate(q.Get("lat"), q.Get("lng"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		center = c
	}
	zoom, err := parseZoom(q.Get("zoom"), s.opts.DefaultZoom)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	markers, err := s.pipeline.Markers(r.Context(), center)
	if err != nil {
		zap.L().Warn("api: spot fetch failed",
			zap.String("source", s.pipeline.Source.Name()),
			zap.Error(err),
		)
		markers = nil
	}

	layer := render.NewLayer()
	layer.Replace(markers)
	if s.opts.Cluster && q.Has("zoom") {
		clusters := render.NewClusterGroup(layer, s.opts.ClusterZoomOffset).Clusters(zoom)
		writeGeoJSON(w, render.ClusterFeatureCollection(clusters))
		return
	}
	writeGeoJSON(w, render.FeatureCollection(layer.Markers()))
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	id, ctrl := s.sessions.Create()
	if err := ctrl.Init(r.Context()); err != nil && !errors.Is(err, view.ErrSuperseded) {
		zap.L().Warn("api: session init failed", zap.String("session", id), zap.Error(err))
	}
	zap.L().Info("api: session created", zap.String("session", id))
	writeJSON(w, http.StatusCreated, sessionResponse{ID: id, State: ctrl.State()})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, ctrl, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: id, State: ctrl.State()})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if !s.sessions.Delete(chi.URLParam(r, "id")) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type geolocationRequest struct {
	Lat   *float64 `json:"lat"`
	Lng   *float64 `json:"lng"`
	Error string   `json:"error"`
}

// handleGeolocation relays the browser's geolocation outcome.
func (s *Server) handleGeolocation(w http.ResponseWriter, r *http.Request) {
	id, ctrl, ok := s.session(w, r)
	if !ok {
		return
	}
	var req geolocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reported := locate.Reported{Err: req.Error}
	if req.Error == "" && req.Lat != nil && req.Lng != nil {
		reported.Coordinate = &model.Coordinate{Lat: *req.Lat, Lng: *req.Lng}
	}
	s.respondTransition(w, id, ctrl, ctrl.Geolocated(r.Context(), reported))
}

// handleIPGeolocation approximates the viewer's position from the client
// address. Lookup failures fall back to the default coordinate.
func (s *Server) handleIPGeolocation(w http.ResponseWriter, r *http.Request) {
	if s.opts.IPLocator == nil {
		writeError(w, http.StatusNotImplemented, "ip geolocation not configured")
		return
	}
	id, ctrl, ok := s.session(w, r)
	if !ok {
		return
	}
	ip := clientIP(r)
	zap.L().Debug("api: ip geolocation", zap.String("session", id), zap.String("ip", ip))
	g := locate.IPGeolocator{Client: s.opts.IPLocator, IP: ip}
	s.respondTransition(w, id, ctrl, ctrl.Geolocated(r.Context(), g))
}

// clientIP strips the port from RemoteAddr. RealIP has already applied any
// forwarding headers.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type searchRequest struct {
	Lat   *float64 `json:"lat"`
	Lng   *float64 `json:"lng"`
	Label string   `json:"label"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	id, ctrl, ok := s.session(w, r)
	if !ok {
		return
	}
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Lat == nil || req.Lng == nil {
		writeError(w, http.StatusBadRequest, "lat and lng are required")
		return
	}

	zap.L().Debug("api: search selected",
		zap.String("session", id),
		zap.String("label", req.Label),
	)
	err := ctrl.SearchSelected(r.Context(), model.Coordinate{Lat: *req.Lat, Lng: *req.Lng})
	if errors.Is(err, view.ErrInvalidCoordinate) {
		writeError(w, http.StatusBadRequest, "invalid coordinate")
		return
	}
	s.respondTransition(w, id, ctrl, err)
}

type layerRequest struct {
	Visible *bool `json:"visible"`
}

func (s *Server) handleSetLayer(w http.ResponseWriter, r *http.Request) {
	id, ctrl, ok := s.session(w, r)
	if !ok {
		return
	}
	var req layerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Visible == nil {
		writeError(w, http.StatusBadRequest, "visible is required")
		return
	}
	ctrl.SetLayerVisible(*req.Visible)
	writeJSON(w, http.StatusOK, sessionResponse{ID: id, State: ctrl.State()})
}

func (s *Server) handleToggleLayer(w http.ResponseWriter, r *http.Request) {
	id, ctrl, ok := s.session(w, r)
	if !ok {
		return
	}
	ctrl.ToggleLayer()
	writeJSON(w, http.StatusOK, sessionResponse{ID: id, State: ctrl.State()})
}

func (s *Server) handleMarkers(w http.ResponseWriter, r *http.Request) {
	_, ctrl, ok := s.session(w, r)
	if !ok {
		return
	}
	zoom, err := parseZoom(r.URL.Query().Get("zoom"), -1)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeGeoJSON(w, ctrl.FeatureCollection(zoom))
}

// session resolves the {id} URL parameter, answering 404 when unknown.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (string, *view.Controller, bool) {
	id := chi.URLParam(r, "id")
	ctrl, ok := s.sessions.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return "", nil, false
	}
	return id, ctrl, true
}

// respondTransition maps a controller transition result onto a response.
// Superseded transitions answer 409 with the newer state.
func (s *Server) respondTransition(w http.ResponseWriter, id string, ctrl *view.Controller, err error) {
	status := http.StatusOK
	switch {
	case errors.Is(err, view.ErrSuperseded):
		status = http.StatusConflict
	case err != nil:
		zap.L().Warn("api: transition failed", zap.String("session", id), zap.Error(err))
	}
	writeJSON(w, status, sessionResponse{ID: id, State: ctrl.State()})
}

func parseCoordinate(latStr, lngStr string) (model.Coordinate, error) {
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return model.Coordinate{}, eris.New("invalid lat")
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return model.Coordinate{}, eris.New("invalid lng")
	}
	c := model.Coordinate{Lat: lat, Lng: lng}
	if !c.Valid() {
		return model.Coordinate{}, eris.New("coordinate out of range")
	}
	return c, nil
}

func parseZoom(s string, fallback int) (int, error) {
	if s == "" {
		return fallback, nil
	}
	z, err := strconv.Atoi(s)
	if err != nil || z < 0 || z > 22 {
		return 0, eris.New("invalid zoom")
	}
	return z, nil
}
