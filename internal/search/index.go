package search

import (
	"math"
	"sort"
	"sync"
)

// Result holds a matching document and its score
type Result struct {
	Document Document `json:"-"`
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Score    float64  `json:"score"`
}

// Index is a TF-IDF index over bug documents. Every Add refits the
// vectorizer on the whole corpus so IDF weights stay current.
type Index struct {
	mu         sync.RWMutex
	docs       []Document
	positions  map[string]int
	vectorizer Vectorizer
}

func NewIndex(tokenizer Tokenizer) *Index {
	return &Index{
		positions:  make(map[string]int),
		vectorizer: NewTFIDFVectorizer(tokenizer),
	}
}

// Add indexes docs, replacing any document with the same ID
func (idx *Index) Add(docs ...Document) {
	if len(docs) == 0 {
		return
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	for _, d := range docs {
		if pos, ok := idx.positions[d.ID]; ok {
			idx.docs[pos] = d
			continue
		}
		idx.positions[d.ID] = len(idx.docs)
		idx.docs = append(idx.docs, d)
	}

	rawTexts := make([]string, len(idx.docs))
	for i, d := range idx.docs {
		rawTexts[i] = d.Content
	}
	idx.vectorizer.Fit(rawTexts)

	for i := range idx.docs {
		idx.docs[i].Vector = idx.vectorizer.Transform(idx.docs[i].Content)
	}
}

// Len returns the number of indexed documents
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.docs)
}

// Search finds the documents most similar to the query
func (idx *Index) Search(query string, topK int) []Result {
	results := make([]Result, 0)
	if topK <= 0 {
		return results
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	queryVector := idx.vectorizer.Transform(query)
	for _, doc := range idx.docs {
		score := CosineSimilarity(queryVector, doc.Vector)
		if score > 0 {
			results = append(results, Result{
				Document: doc,
				ID:       doc.ID,
				Title:    doc.Title,
				Score:    score,
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > topK {
		return results[:topK]
	}
	return results
}

// CosineSimilarity calculates the cosine similarity between two vectors
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
