package search

// Document is an indexed bug
type Document struct {
	ID      string
	Title   string
	Content string
	Vector  []float64
}

// Tokenizer splits text into index terms
type Tokenizer interface {
	Tokenize(text string) []string
}
