// Package document defines the text unit compared by the similarity engine.
package document

import "strings"

// Document is the title and description of a bug or test case.
type Document struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// New builds a Document, reducing an HTML description to plain text.
func New(title, description string) Document {
	return Document{
		Title:       strings.TrimSpace(title),
		Description: StripHTML(description),
	}
}

// Text joins the title and description with a single space.
func (d Document) Text() string {
	switch {
	case d.Title == "":
		return d.Description
	case d.Description == "":
		return d.Title
	}
	return d.Title + " " + d.Description
}

// IsEmpty reports whether the document carries no text at all.
func (d Document) IsEmpty() bool {
	return strings.TrimSpace(d.Title) == "" && strings.TrimSpace(d.Description) == ""
}

// Texts returns Text() for each document, in order.
func Texts(docs []Document) []string {
	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Text()
	}
	return texts
}
