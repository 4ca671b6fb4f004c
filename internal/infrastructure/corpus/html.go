package corpus

import (
	"fmt"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/DSdoesVS/fake-news-detector/internal/domain"
)

// loadHTMLFile extracts one article from a saved HTML page. Scripts,
// styles and navigation chrome are dropped before the body text is
// collected.
func loadHTMLFile(path string, label domain.Label) ([]domain.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	doc.Find("script, style, nav, header, footer, aside").Remove()

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}

	var parts []string
	body := doc.Find("article")
	if body.Length() == 0 {
		body = doc.Find("body")
	}
	body.Find("p, h1, h2, h3").Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	if len(parts) == 0 {
		if text := strings.TrimSpace(body.Text()); text != "" {
			parts = append(parts, text)
		}
	}

	text := strings.Join(parts, " ")
	if title == "" && text == "" {
		return nil, nil
	}

	return []domain.Document{{Title: title, Text: text, Label: label}}, nil
}
