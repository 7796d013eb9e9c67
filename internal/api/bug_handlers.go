package api

import (
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/testdesk/backend/internal/bug"
	"github.com/testdesk/backend/internal/provider"
)

const snippetLength = 200

type BugListResponse struct {
	Bugs []*bug.Bug `json:"bugs"`
}

type SimilarBugsRequest struct {
	Threshold  float64 `json:"threshold"`
	MaxResults int     `json:"max_results"`
}

type SimilarBugsResponse struct {
	BugID       string           `json:"bug_id"`
	SimilarBugs []bug.SimilarBug `json:"similar_bugs"`
}

type SearchResponse struct {
	Query   string             `json:"query"`
	Results []SearchResultView `json:"results"`
}

type SearchResultView struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Score float64 `json:"score"`
	Text  string  `json:"snippet"`
}

type ProjectKeywordsResponse struct {
	ProjectID string   `json:"project_id"`
	Keywords  []string `json:"keywords"`
}

type ProjectClustersResponse struct {
	ProjectID string     `json:"project_id"`
	Clusters  [][]string `json:"clusters"`
}

type ScanRequest struct {
	ProjectID string `json:"project_id"`
}

type StatusResponse struct {
	Running         bool   `json:"running"`
	ProjectID       string `json:"project_id,omitempty"`
	TotalBugs       int    `json:"total_bugs"`
	BugsScanned     int64  `json:"bugs_scanned"`
	DuplicatesFound int64  `json:"duplicates_found"`
	LastError       string `json:"last_error,omitempty"`
	IndexedBugs     int    `json:"indexed_bugs"`
	Uptime          string `json:"uptime"`
}

func (s *Server) handleCreateBug(w http.ResponseWriter, r *http.Request) {
	var b bug.Bug
	if err := decodeJSON(r, &b, false); err != nil {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON"})
		return
	}
	// Identity, timestamps and similarity results are assigned by the server.
	b.ID = ""
	b.CreatedAt = time.Time{}
	b.SimilarBugs = nil
	b.SimilarityScore = 0

	saved, err := s.Engine.SaveBug(&b)
	if err != nil {
		s.writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, saved)
}

func (s *Server) handleListBugs(w http.ResponseWriter, r *http.Request) {
	bugs, err := s.Engine.ListBugs(r.URL.Query().Get("project"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, BugListResponse{Bugs: bugs})
}

func (s *Server) handleGetBug(w http.ResponseWriter, r *http.Request) {
	b, err := s.Engine.GetBug(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, b)
}

func (s *Server) handleSimilarBugs(w http.ResponseWriter, r *http.Request) {
	var req SimilarBugsRequest
	if err := decodeJSON(r, &req, true); err != nil {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON"})
		return
	}

	id := r.PathValue("id")
	similar, err := s.Engine.FindSimilarBugs(r.Context(), id, req.Threshold, req.MaxResults)
	if err != nil {
		s.writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, SimilarBugsResponse{BugID: id, SimilarBugs: similar})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	includeSimilar := true
	if v := r.URL.Query().Get("include_similar"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "include_similar must be a boolean"})
			return
		}
		includeSimilar = parsed
	}

	analysis, err := s.Engine.AnalyzeRootCause(r.Context(), r.PathValue("id"), includeSimilar)
	if err != nil {
		s.writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, analysis)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Query 'q' is required"})
		return
	}
	topK, ok := intParam(r, "top_k")
	if !ok {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "top_k must be an integer"})
		return
	}

	hits := s.Engine.Search(query, topK)

	response := SearchResponse{
		Query:   query,
		Results: make([]SearchResultView, len(hits)),
	}
	for i, hit := range hits {
		response.Results[i] = SearchResultView{
			ID:    hit.ID,
			Title: hit.Title,
			Score: hit.Score,
			Text:  snippet(hit.Document.Content),
		}
	}

	jsonResponse(w, http.StatusOK, response)
}

func (s *Server) handleGenerateTestCases(w http.ResponseWriter, r *http.Request) {
	var req provider.TestCaseRequest
	if err := decodeJSON(r, &req, false); err != nil {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON"})
		return
	}

	result, err := s.Engine.GenerateTestCases(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, result)
}

func (s *Server) handleEnhanceTestCase(w http.ResponseWriter, r *http.Request) {
	var req provider.EnhanceRequest
	if err := decodeJSON(r, &req, false); err != nil {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON"})
		return
	}

	result, err := s.Engine.EnhanceTestCase(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, result)
}

func (s *Server) handleProjectKeywords(w http.ResponseWriter, r *http.Request) {
	topK, ok := intParam(r, "top_k")
	if !ok {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "top_k must be an integer"})
		return
	}

	projectID := r.PathValue("id")
	keywords, err := s.Engine.ProjectKeywords(projectID, topK)
	if err != nil {
		s.writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, ProjectKeywordsResponse{ProjectID: projectID, Keywords: keywords})
}

func (s *Server) handleProjectClusters(w http.ResponseWriter, r *http.Request) {
	var threshold float64
	if v := r.URL.Query().Get("threshold"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "threshold must be a number"})
			return
		}
		threshold = parsed
	}

	projectID := r.PathValue("id")
	clusters, err := s.Engine.ClusterProject(projectID, threshold)
	if err != nil {
		s.writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, ProjectClustersResponse{ProjectID: projectID, Clusters: clusters})
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if err := decodeJSON(r, &req, false); err != nil {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON"})
		return
	}

	if req.ProjectID == "" {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "project_id is required"})
		return
	}

	if err := s.Engine.StartScan(req.ProjectID); err != nil {
		s.writeError(w, err)
		return
	}

	jsonResponse(w, http.StatusAccepted, map[string]string{"status": "scan_started", "project_id": req.ProjectID})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats := s.Engine.Stats()
	running := s.Engine.IsRunning()

	resp := StatusResponse{
		Running:         running,
		ProjectID:       stats.ProjectID,
		TotalBugs:       stats.TotalBugs,
		BugsScanned:     stats.BugsScanned,
		DuplicatesFound: stats.DuplicatesFound,
		LastError:       stats.LastError,
		IndexedBugs:     s.Engine.Index.Len(),
		Uptime:          "0s",
	}
	if running {
		resp.Uptime = time.Since(stats.StartTime).Round(time.Second).String()
	}

	jsonResponse(w, http.StatusOK, resp)
}

// intParam parses an optional integer query parameter; absent means 0.
func intParam(r *http.Request, name string) (int, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, true
	}
	n, err := strconv.Atoi(v)
	return n, err == nil
}

func snippet(text string) string {
	if utf8.RuneCountInString(text) <= snippetLength {
		return text
	}
	return string([]rune(text)[:snippetLength]) + "..."
}
