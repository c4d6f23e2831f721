// Package htmltext flattens the rich-text HTML the API stores for circulars.
package htmltext

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// CleanText collapses whitespace, including non-breaking spaces.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

const blockSelector = "p, li, h1, h2, h3, h4, h5, h6, blockquote, pre, td"

// Paragraphs splits HTML into readable text blocks. List items are prefixed with a bullet.
// Input without block elements comes back as one paragraph.
func Paragraphs(html string) []string {
	if strings.TrimSpace(html) == "" {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		if t := CleanText(html); t != "" {
			return []string{t}
		}
		return nil
	}
	doc.Find("script, style").Remove()

	var out []string
	doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		// nested blocks are reported by their innermost element
		if s.Find(blockSelector).Length() > 0 {
			return
		}
		t := CleanText(s.Text())
		if t == "" {
			return
		}
		if goquery.NodeName(s) == "li" {
			t = "• " + t
		}
		out = append(out, t)
	})
	if len(out) == 0 {
		if t := CleanText(doc.Text()); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Excerpt returns at most n runes of plain text, cut on a word boundary when possible.
func Excerpt(html string, n int) string {
	return Truncate(strings.Join(Paragraphs(html), " "), n)
}

// Truncate shortens s to n runes and appends an ellipsis when it cut anything.
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)[:n]
	cut := string(r)
	if i := strings.LastIndexByte(cut, ' '); i > len(cut)/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}
