package document

import (
	"strings"

	"golang.org/x/net/html"
)

// Tags that separate words when rendered.
var blockTags = map[string]bool{
	"br": true, "p": true, "div": true, "li": true, "ul": true, "ol": true,
	"tr": true, "td": true, "th": true, "pre": true, "blockquote": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// StripHTML extracts the visible text of an HTML fragment, skipping script
// and style content and collapsing whitespace. Input without markup only has
// its whitespace collapsed. Malformed markup yields whatever text was read
// before the error.
func StripHTML(input string) string {
	if !strings.ContainsAny(input, "<&") {
		return cleanText(input)
	}

	tokenizer := html.NewTokenizer(strings.NewReader(input))
	var textBuilder strings.Builder
	skipDepth := 0

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			// io.EOF or a read error; either way the text so far is all we get.
			return cleanText(textBuilder.String())

		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := tokenizer.TagName()
			tag := string(name)
			if tag == "script" || tag == "style" {
				skipDepth++
			} else if blockTags[tag] {
				textBuilder.WriteByte(' ')
			}

		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			tag := string(name)
			if (tag == "script" || tag == "style") && skipDepth > 0 {
				skipDepth--
			} else if blockTags[tag] {
				textBuilder.WriteByte(' ')
			}

		case html.TextToken:
			if skipDepth == 0 {
				textBuilder.WriteString(tokenizer.Token().Data)
			}
		}
	}
}

// cleanText removes excessive whitespace
func cleanText(input string) string {
	return strings.Join(strings.Fields(input), " ")
}
