package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/testdesk/backend/internal/engine"
	"github.com/testdesk/backend/internal/storage"
)

type Server struct {
	Engine *engine.Engine
	Logger *logrus.Entry
	Router *http.ServeMux
}

func NewServer(eng *engine.Engine, logger *logrus.Entry) *Server {
	if logger == nil {
		logger = logrus.WithField("component", "api")
	}
	s := &Server{
		Engine: eng,
		Logger: logger,
		Router: http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	// Text similarity
	s.Router.HandleFunc("POST /api/v1/similarity", s.handleSimilarity)
	s.Router.HandleFunc("POST /api/v1/similar", s.handleFindSimilar)
	s.Router.HandleFunc("POST /api/v1/keywords", s.handleKeywords)
	s.Router.HandleFunc("POST /api/v1/cluster", s.handleCluster)
	s.Router.HandleFunc("POST /api/v1/features", s.handleFeatures)

	// Bugs
	s.Router.HandleFunc("POST /api/v1/bugs", s.handleCreateBug)
	s.Router.HandleFunc("GET /api/v1/bugs", s.handleListBugs)
	s.Router.HandleFunc("GET /api/v1/bugs/{id}", s.handleGetBug)
	s.Router.HandleFunc("POST /api/v1/bugs/{id}/similar", s.handleSimilarBugs)
	s.Router.HandleFunc("POST /api/v1/bugs/{id}/analyze", s.handleAnalyze)
	s.Router.HandleFunc("GET /api/v1/search", s.handleSearch)
	s.Router.HandleFunc("POST /api/v1/testcases/generate", s.handleGenerateTestCases)
	s.Router.HandleFunc("POST /api/v1/testcases/enhance", s.handleEnhanceTestCase)

	// Projects
	s.Router.HandleFunc("GET /api/v1/projects/{id}/keywords", s.handleProjectKeywords)
	s.Router.HandleFunc("GET /api/v1/projects/{id}/clusters", s.handleProjectClusters)

	// Background scan
	s.Router.HandleFunc("POST /api/v1/scan", s.handleScan)
	s.Router.HandleFunc("GET /api/v1/status", s.handleStatus)
}

func (s *Server) Start(addr string) error {
	s.Logger.Infof("Starting API Server on %s", addr)
	return http.ListenAndServe(addr, s.Router)
}

// Responses
type ErrorResponse struct {
	Error string `json:"error"`
}

// decodeJSON reads the request body into v. An empty body is accepted when
// allowEmpty is set and leaves v untouched.
func decodeJSON(r *http.Request, v interface{}, allowEmpty bool) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if allowEmpty && errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		jsonResponse(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, engine.ErrInvalidInput):
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, engine.ErrScanRunning):
		jsonResponse(w, http.StatusConflict, ErrorResponse{Error: err.Error()})
	default:
		s.Logger.WithError(err).Error("Request failed")
		jsonResponse(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}
}

func jsonResponse(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
