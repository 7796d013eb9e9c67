package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/testdesk/backend/internal/api"
	"github.com/testdesk/backend/internal/bug"
	"github.com/testdesk/backend/internal/config"
	"github.com/testdesk/backend/internal/engine"
	"github.com/testdesk/backend/internal/similarity"
	"github.com/testdesk/backend/internal/storage"
)

type MockLLMProvider struct {
	mock.Mock
}

func (m *MockLLMProvider) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func (m *MockLLMProvider) Name() string {
	args := m.Called()
	return args.String(0)
}

func setupServer(t *testing.T) *api.Server {
	t.Helper()

	cfg := config.Load()
	cfg.LLM.Provider = "none"
	cfg.Similarity.Threshold = 0.5
	cfg.Similarity.MaxResults = 10
	cfg.Similarity.ClusterThreshold = 0.8
	cfg.Similarity.KeywordCount = 10

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	entry := logger.WithField("test", "api")

	store, err := storage.NewFileStorage(t.TempDir())
	require.NoError(t, err)
	sim := similarity.NewWithSegmenter(similarity.DefaultWeights(), nil, entry)

	eng, err := engine.NewEngine(cfg, entry, store, sim, nil)
	require.NoError(t, err)

	return api.NewServer(eng, entry)
}

func do(server *api.Server, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v), rr.Body.String())
}

func seedBugs(t *testing.T, server *api.Server) {
	t.Helper()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	bugs := []*bug.Bug{
		{ID: "b1", ProjectID: "p1", Title: "Login button crashes app", Description: "Tapping login crashes the app on startup", CreatedAt: base},
		{ID: "b2", ProjectID: "p1", Title: "Login button crashes the app", Description: "Tapping login crashes app at startup", CreatedAt: base.Add(time.Minute)},
		{ID: "b3", ProjectID: "p1", Title: "Export report as PDF", Description: "The PDF export produces an empty file", CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, b := range bugs {
		_, err := server.Engine.SaveBug(b)
		require.NoError(t, err)
	}
}

func TestHandleStatus(t *testing.T) {
	server := setupServer(t)

	rr := do(server, http.MethodGet, "/api/v1/status", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var resp api.StatusResponse
	decode(t, rr, &resp)
	assert.False(t, resp.Running)
	assert.Equal(t, "0s", resp.Uptime)
}

func TestHandleSimilarity(t *testing.T) {
	server := setupServer(t)

	rr := do(server, http.MethodPost, "/api/v1/similarity", `{"text_a": "Login fails", "text_b": "login FAILS!"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp api.SimilarityResponse
	decode(t, rr, &resp)
	assert.Equal(t, 1.0, resp.Score)
	assert.Equal(t, similarity.MethodCombined, resp.Method)

	rr = do(server, http.MethodPost, "/api/v1/similarity", `{"text_a": "login fails", "text_b": "export fails", "method": "jaccard"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	decode(t, rr, &resp)
	assert.InDelta(t, 1.0/3.0, resp.Score, 1e-9)
	assert.Equal(t, similarity.MethodJaccard, resp.Method)
}

func TestHandleSimilarity_BadRequests(t *testing.T) {
	server := setupServer(t)

	rr := do(server, http.MethodPost, "/api/v1/similarity", `{"text_a": "a", "text_b": "b", "method": "soundex"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(server, http.MethodPost, "/api/v1/similarity", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	var resp api.ErrorResponse
	decode(t, rr, &resp)
	assert.Equal(t, "Invalid JSON", resp.Error)

	rr = do(server, http.MethodGet, "/api/v1/similarity", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestHandleFindSimilar(t *testing.T) {
	server := setupServer(t)

	body := `{
		"target": "Login button crashes app",
		"candidates": ["Export report as PDF", "Login button crashes app", "login button crashes the app"],
		"threshold": 0.5
	}`
	rr := do(server, http.MethodPost, "/api/v1/similar", body)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp api.FindSimilarResponse
	decode(t, rr, &resp)
	require.Len(t, resp.Matches, 2)
	assert.Equal(t, 1, resp.Matches[0].Index)
	assert.Equal(t, 1.0, resp.Matches[0].Score)
	assert.Equal(t, 2, resp.Matches[1].Index)

	rr = do(server, http.MethodPost, "/api/v1/similar", `{"target": "x", "candidates": ["x"], "max_results": 0}`)
	require.Equal(t, http.StatusOK, rr.Code)
	decode(t, rr, &resp)
	assert.Empty(t, resp.Matches)
	assert.Contains(t, rr.Body.String(), `"matches":[]`)
}

func TestHandleKeywords(t *testing.T) {
	server := setupServer(t)

	rr := do(server, http.MethodPost, "/api/v1/keywords", `{"text": "timeout on export, export retry, export", "top_k": 2}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp api.KeywordsResponse
	decode(t, rr, &resp)
	assert.Equal(t, []string{"export", "timeout"}, resp.Keywords)
}

func TestHandleCluster(t *testing.T) {
	server := setupServer(t)

	body := `{"texts": ["login fails", "export fails", "login fails", "export fails"], "threshold": 0.99}`
	rr := do(server, http.MethodPost, "/api/v1/cluster", body)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp api.ClusterResponse
	decode(t, rr, &resp)
	assert.Equal(t, [][]int{{0, 2}, {1, 3}}, resp.Clusters)
}

func TestHandleFeatures(t *testing.T) {
	server := setupServer(t)

	rr := do(server, http.MethodPost, "/api/v1/features", `{"text": "Login fails. Retry fails!"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp similarity.Features
	decode(t, rr, &resp)
	assert.Equal(t, 4, resp.WordCount)
	assert.Equal(t, 3, resp.SentenceCount)
	assert.Equal(t, 4, resp.TokenCount)
	assert.Equal(t, 3, resp.UniqueTokens)
}

func TestHandleBugs(t *testing.T) {
	server := setupServer(t)

	rr := do(server, http.MethodPost, "/api/v1/bugs", `{"project_id": "p1", "title": "Crash on save", "description": "<p>Editor <b>crashes</b></p>"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	var created bug.Bug
	decode(t, rr, &created)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, bug.SeverityMedium, created.Severity)

	rr = do(server, http.MethodGet, "/api/v1/bugs/"+created.ID, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var loaded bug.Bug
	decode(t, rr, &loaded)
	assert.Equal(t, "Crash on save", loaded.Title)

	rr = do(server, http.MethodGet, "/api/v1/bugs?project=p1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var list api.BugListResponse
	decode(t, rr, &list)
	assert.Len(t, list.Bugs, 1)

	rr = do(server, http.MethodGet, "/api/v1/bugs?project=other", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"bugs":[]`)
}

func TestHandleCreateBug_IgnoresServerFields(t *testing.T) {
	server := setupServer(t)

	rr := do(server, http.MethodPost, "/api/v1/bugs", `{"project_id": "p1", "title": "Original", "description": "first"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	var first bug.Bug
	decode(t, rr, &first)

	body := `{"id": "` + first.ID + `", "project_id": "p2", "title": "Hijack",
		"created_at": "2001-01-01T00:00:00Z", "similarity_score": 0.99,
		"similar_bugs": [{"id": "x", "similarity": 0.99}]}`
	rr = do(server, http.MethodPost, "/api/v1/bugs", body)
	require.Equal(t, http.StatusCreated, rr.Code)
	var second bug.Bug
	decode(t, rr, &second)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Empty(t, second.SimilarBugs)
	assert.Zero(t, second.SimilarityScore)
	assert.True(t, second.CreatedAt.After(time.Date(2001, 1, 2, 0, 0, 0, 0, time.UTC)))

	rr = do(server, http.MethodGet, "/api/v1/bugs/"+first.ID, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var loaded bug.Bug
	decode(t, rr, &loaded)
	assert.Equal(t, "Original", loaded.Title)
	assert.Equal(t, "p1", loaded.ProjectID)
}

func TestHandleBugs_Errors(t *testing.T) {
	server := setupServer(t)

	rr := do(server, http.MethodPost, "/api/v1/bugs", `{"project_id": "p1"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(server, http.MethodPost, "/api/v1/bugs", `[`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(server, http.MethodGet, "/api/v1/bugs/missing", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(server, http.MethodPost, "/api/v1/bugs/missing/similar", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(server, http.MethodPost, "/api/v1/bugs/missing/analyze", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandleSimilarBugs(t *testing.T) {
	server := setupServer(t)
	seedBugs(t, server)

	rr := do(server, http.MethodPost, "/api/v1/bugs/b1/similar", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp api.SimilarBugsResponse
	decode(t, rr, &resp)
	assert.Equal(t, "b1", resp.BugID)
	require.Len(t, resp.SimilarBugs, 1)
	assert.Equal(t, "b2", resp.SimilarBugs[0].ID)

	rr = do(server, http.MethodPost, "/api/v1/bugs/b1/similar", `{"threshold": 0.0001, "max_results": 5}`)
	require.Equal(t, http.StatusOK, rr.Code)
	decode(t, rr, &resp)
	assert.Len(t, resp.SimilarBugs, 2)
}

func TestHandleAnalyze(t *testing.T) {
	server := setupServer(t)
	seedBugs(t, server)

	rr := do(server, http.MethodPost, "/api/v1/bugs/b1/analyze", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp engine.Analysis
	decode(t, rr, &resp)
	assert.Equal(t, "b1", resp.BugID)
	assert.Equal(t, "stability", resp.Category)
	assert.Equal(t, engine.SourceRules, resp.Source)
	assert.Len(t, resp.SimilarBugs, 1)

	rr = do(server, http.MethodPost, "/api/v1/bugs/b1/analyze?include_similar=false", "")
	require.Equal(t, http.StatusOK, rr.Code)
	resp = engine.Analysis{}
	decode(t, rr, &resp)
	assert.Empty(t, resp.SimilarBugs)

	rr = do(server, http.MethodPost, "/api/v1/bugs/b1/analyze?include_similar=maybe", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleAnalyze_LLM(t *testing.T) {
	server := setupServer(t)
	seedBugs(t, server)

	mockLLM := new(MockLLMProvider)
	mockLLM.On("Generate", mock.Anything, mock.AnythingOfType("string")).
		Return(`{"root_cause": "Nil session", "category": "stability", "confidence": 0.9, "suggestions": []}`, nil)
	server.Engine.LLM = mockLLM

	rr := do(server, http.MethodPost, "/api/v1/bugs/b3/analyze?include_similar=false", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp engine.Analysis
	decode(t, rr, &resp)
	assert.Equal(t, engine.SourceLLM, resp.Source)
	assert.Equal(t, "Nil session", resp.RootCause.RootCause)
	mockLLM.AssertExpectations(t)
}

func TestHandleSearch(t *testing.T) {
	server := setupServer(t)
	seedBugs(t, server)

	rr := do(server, http.MethodGet, "/api/v1/search?q=pdf+export", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp api.SearchResponse
	decode(t, rr, &resp)
	assert.Equal(t, "pdf export", resp.Query)
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, "b3", resp.Results[0].ID)
	assert.Equal(t, "Export report as PDF", resp.Results[0].Title)

	rr = do(server, http.MethodGet, "/api/v1/search", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(server, http.MethodGet, "/api/v1/search?q=pdf&top_k=abc", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleGenerateTestCases(t *testing.T) {
	server := setupServer(t)

	rr := do(server, http.MethodPost, "/api/v1/testcases/generate", `{"requirement": "password reset", "test_type": "api", "count": 2}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp engine.GeneratedTestCases
	decode(t, rr, &resp)
	assert.Equal(t, engine.SourceRules, resp.Source)
	require.Len(t, resp.TestCases, 2)
	assert.Equal(t, "API test - password reset - case 2", resp.TestCases[1].Title)

	rr = do(server, http.MethodPost, "/api/v1/testcases/generate", `{"requirement": ""}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleEnhanceTestCase(t *testing.T) {
	server := setupServer(t)

	body := `{"kind": "steps", "test_case": {"title": "Reset password", "steps": ["Open the reset page", "Submit the form"]}}`
	rr := do(server, http.MethodPost, "/api/v1/testcases/enhance", body)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp engine.EnhancedTestCase
	decode(t, rr, &resp)
	assert.Equal(t, engine.SourceRules, resp.Source)
	assert.Equal(t, "steps", resp.Kind)
	require.Len(t, resp.TestCase.Steps, 4)
	assert.True(t, strings.HasPrefix(resp.TestCase.Steps[0], "Precondition:"))
	assert.True(t, strings.HasPrefix(resp.TestCase.Steps[3], "Cleanup:"))

	rr = do(server, http.MethodPost, "/api/v1/testcases/enhance", `{"kind": "translate", "test_case": {"title": "x"}}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(server, http.MethodPost, "/api/v1/testcases/enhance", `{"kind": "data", "test_case": {}}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleProjectKeywordsAndClusters(t *testing.T) {
	server := setupServer(t)
	seedBugs(t, server)

	rr := do(server, http.MethodGet, "/api/v1/projects/p1/keywords?top_k=1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var kw api.ProjectKeywordsResponse
	decode(t, rr, &kw)
	assert.Equal(t, "p1", kw.ProjectID)
	assert.Equal(t, []string{"login"}, kw.Keywords)

	rr = do(server, http.MethodGet, "/api/v1/projects/p1/clusters?threshold=0.5", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var cl api.ProjectClustersResponse
	decode(t, rr, &cl)
	assert.Equal(t, [][]string{{"b1", "b2"}, {"b3"}}, cl.Clusters)

	rr = do(server, http.MethodGet, "/api/v1/projects/p1/clusters?threshold=high", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleScan(t *testing.T) {
	server := setupServer(t)
	seedBugs(t, server)

	rr := do(server, http.MethodPost, "/api/v1/scan", `{"project_id": "p1"}`)
	require.Equal(t, http.StatusAccepted, rr.Code)
	server.Engine.WaitScan()

	rr = do(server, http.MethodGet, "/api/v1/status", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp api.StatusResponse
	decode(t, rr, &resp)
	assert.False(t, resp.Running)
	assert.Equal(t, "p1", resp.ProjectID)
	assert.Equal(t, int64(3), resp.BugsScanned)
	assert.Equal(t, int64(2), resp.DuplicatesFound)
	assert.Equal(t, 3, resp.IndexedBugs)

	rr = do(server, http.MethodPost, "/api/v1/scan", `{}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
