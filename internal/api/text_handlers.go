package api

import (
	"net/http"

	"github.com/testdesk/backend/internal/similarity"
)

type SimilarityRequest struct {
	TextA  string `json:"text_a"`
	TextB  string `json:"text_b"`
	Method string `json:"method"`
}

type SimilarityResponse struct {
	Score  float64           `json:"score"`
	Method similarity.Method `json:"method"`
}

type FindSimilarRequest struct {
	Target     string   `json:"target"`
	Candidates []string `json:"candidates"`
	Threshold  *float64 `json:"threshold"`
	MaxResults *int     `json:"max_results"`
}

type FindSimilarResponse struct {
	Matches []similarity.Match `json:"matches"`
}

type KeywordsRequest struct {
	Text string `json:"text"`
	TopK *int   `json:"top_k"`
}

type KeywordsResponse struct {
	Keywords []string `json:"keywords"`
}

type ClusterRequest struct {
	Texts     []string `json:"texts"`
	Threshold *float64 `json:"threshold"`
}

type ClusterResponse struct {
	Clusters [][]int `json:"clusters"`
}

type FeaturesRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleSimilarity(w http.ResponseWriter, r *http.Request) {
	var req SimilarityRequest
	if err := decodeJSON(r, &req, false); err != nil {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON"})
		return
	}

	method, ok := similarity.ParseMethod(req.Method)
	if !ok {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Unsupported method: " + req.Method})
		return
	}

	score := s.Engine.Similarity.Similarity(req.TextA, req.TextB, method)
	jsonResponse(w, http.StatusOK, SimilarityResponse{Score: score, Method: method})
}

func (s *Server) handleFindSimilar(w http.ResponseWriter, r *http.Request) {
	var req FindSimilarRequest
	if err := decodeJSON(r, &req, false); err != nil {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON"})
		return
	}

	threshold := s.Engine.Config.Similarity.Threshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	maxResults := s.Engine.Config.Similarity.MaxResults
	if req.MaxResults != nil {
		maxResults = *req.MaxResults
	}

	matches := s.Engine.Similarity.FindSimilar(req.Target, req.Candidates, threshold, maxResults)
	jsonResponse(w, http.StatusOK, FindSimilarResponse{Matches: matches})
}

func (s *Server) handleKeywords(w http.ResponseWriter, r *http.Request) {
	var req KeywordsRequest
	if err := decodeJSON(r, &req, false); err != nil {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON"})
		return
	}

	topK := s.Engine.Config.Similarity.KeywordCount
	if req.TopK != nil {
		topK = *req.TopK
	}

	jsonResponse(w, http.StatusOK, KeywordsResponse{Keywords: s.Engine.Similarity.ExtractKeywords(req.Text, topK)})
}

func (s *Server) handleCluster(w http.ResponseWriter, r *http.Request) {
	var req ClusterRequest
	if err := decodeJSON(r, &req, false); err != nil {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON"})
		return
	}

	threshold := s.Engine.Config.Similarity.ClusterThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	jsonResponse(w, http.StatusOK, ClusterResponse{Clusters: s.Engine.Similarity.Cluster(req.Texts, threshold)})
}

func (s *Server) handleFeatures(w http.ResponseWriter, r *http.Request) {
	var req FeaturesRequest
	if err := decodeJSON(r, &req, false); err != nil {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON"})
		return
	}

	jsonResponse(w, http.StatusOK, s.Engine.Similarity.Features(req.Text))
}
