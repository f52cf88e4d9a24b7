// Package scraper extracts readable article text from web pages.
package scraper

import (
	"context"
	"strings"

	"github.com/gocolly/colly/v2"
)

const (
	userAgent = "Mozilla/5.0 (compatible; WanderHubBot/1.0; +https://wanderhub.app/bot)"

	// Paragraphs shorter than this are usually captions, ads or nav.
	minParagraph = 50
)

// Common containers for the main body of an article or event page.
var contentSelectors = "article, main, .event-description, .entry-content, .article-content, #main-content"

type Scraper struct {
	collector *colly.Collector
}

func New() *Scraper {
	return &Scraper{
		collector: colly.NewCollector(
			colly.UserAgent(userAgent),
			colly.AllowURLRevisit(),
		),
	}
}

// Article visits url and returns the long paragraphs found in its content
// area, separated by blank lines.
func (s *Scraper) Article(ctx context.Context, url string) (string, error) {
	var b strings.Builder

	c := s.collector.Clone()
	c.Context = ctx

	seen := map[string]bool{}
	c.OnHTML(contentSelectors, func(e *colly.HTMLElement) {
		e.ForEach("p", func(_ int, el *colly.HTMLElement) {
			text := strings.Join(strings.Fields(el.Text), " ")
			if len(text) < minParagraph || seen[text] {
				return
			}
			seen[text] = true
			b.WriteString(text)
			b.WriteString("\n\n")
		})
	})

	if err := c.Visit(url); err != nil {
		return "", err
	}
	c.Wait()

	return strings.TrimSpace(b.String()), nil
}
