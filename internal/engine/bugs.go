package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/testdesk/backend/internal/bug"
	"github.com/testdesk/backend/internal/search"
)

// LoadIndex adds every stored bug to the search index.
func (e *Engine) LoadIndex() (int, error) {
	bugs, err := e.Storage.List("")
	if err != nil {
		return 0, fmt.Errorf("failed to list bugs: %w", err)
	}

	docs := make([]search.Document, 0, len(bugs))
	for _, b := range bugs {
		docs = append(docs, indexDocument(b))
	}
	e.Index.Add(docs...)
	return len(docs), nil
}

// SaveBug validates, stores and indexes b.
func (e *Engine) SaveBug(b *bug.Bug) (*bug.Bug, error) {
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	b.ApplyDefaults()

	if err := e.Storage.Save(b); err != nil {
		return nil, fmt.Errorf("failed to save bug: %w", err)
	}
	e.Index.Add(indexDocument(b))

	e.Logger.WithFields(logrus.Fields{
		"bug_id":     b.ID,
		"project_id": b.ProjectID,
	}).Debug("Bug saved")
	return b, nil
}

func (e *Engine) GetBug(id string) (*bug.Bug, error) {
	return e.Storage.Get(id)
}

func (e *Engine) ListBugs(projectID string) ([]*bug.Bug, error) {
	return e.Storage.List(projectID)
}

// Search runs a free-text query over the indexed bugs.
func (e *Engine) Search(query string, topK int) []search.Result {
	if topK <= 0 {
		topK = e.Config.Similarity.MaxResults
	}
	return e.Index.Search(query, topK)
}

// FindSimilarBugs compares a bug with the other bugs of its project and
// stores the matches on it. A threshold or maxResults of zero or less selects the
// configured default.
func (e *Engine) FindSimilarBugs(ctx context.Context, bugID string, threshold float64, maxResults int) ([]bug.SimilarBug, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if threshold <= 0 {
		threshold = e.Config.Similarity.Threshold
	}
	if maxResults <= 0 {
		maxResults = e.Config.Similarity.MaxResults
	}

	target, err := e.Storage.Get(bugID)
	if err != nil {
		return nil, err
	}
	project, err := e.Storage.List(target.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project bugs: %w", err)
	}

	others := make([]*bug.Bug, 0, len(project))
	texts := make([]string, 0, len(project))
	for _, b := range project {
		if b.ID == target.ID {
			continue
		}
		others = append(others, b)
		texts = append(texts, b.Document().Text())
	}

	matches := e.Similarity.FindSimilar(target.Document().Text(), texts, threshold, maxResults)
	similar := make([]bug.SimilarBug, 0, len(matches))
	for _, m := range matches {
		similar = append(similar, others[m.Index].Reference(m.Score))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	target.SetSimilar(similar)
	if err := e.Storage.Save(target); err != nil {
		return nil, fmt.Errorf("failed to save similar bugs: %w", err)
	}

	e.Logger.WithFields(logrus.Fields{
		"bug_id":     bugID,
		"candidates": len(others),
		"matches":    len(similar),
	}).Debug("Similar bugs computed")
	return similar, nil
}

// ProjectKeywords extracts the top k keywords across a project's bugs.
func (e *Engine) ProjectKeywords(projectID string, k int) ([]string, error) {
	if k <= 0 {
		k = e.Config.Similarity.KeywordCount
	}
	bugs, err := e.Storage.List(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project bugs: %w", err)
	}

	var sb strings.Builder
	for _, b := range bugs {
		doc := b.Document()
		sb.WriteString(" ")
		sb.WriteString(doc.Title)
		sb.WriteString(" ")
		sb.WriteString(doc.Description)
	}
	return e.Similarity.ExtractKeywords(sb.String(), k), nil
}

// ClusterProject groups a project's bugs by similarity and returns the bug
// ids of each group. Groups and members follow creation order.
func (e *Engine) ClusterProject(projectID string, threshold float64) ([][]string, error) {
	if threshold <= 0 {
		threshold = e.Config.Similarity.ClusterThreshold
	}
	bugs, err := e.Storage.List(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project bugs: %w", err)
	}

	texts := make([]string, len(bugs))
	for i, b := range bugs {
		texts[i] = b.Document().Text()
	}

	clusters := e.Similarity.Cluster(texts, threshold)
	groups := make([][]string, len(clusters))
	for i, cluster := range clusters {
		ids := make([]string, len(cluster))
		for j, idx := range cluster {
			ids[j] = bugs[idx].ID
		}
		groups[i] = ids
	}
	return groups, nil
}

func indexDocument(b *bug.Bug) search.Document {
	doc := b.Document()
	return search.Document{
		ID:      b.ID,
		Title:   doc.Title,
		Content: doc.Text(),
	}
}
