package service

import (
	"context"
	"fmt"
	"strings"

	"anoa.com/wanderhub/pkg/llm"
	"anoa.com/wanderhub/pkg/sanitize"
)

const (
	maxScrapedRunes     = 6000
	maxDescriptionRunes = 1000
)

// Describer writes a description for an imported event that arrived
// without one.
type Describer interface {
	Describe(ctx context.Context, name, link string) (string, error)
}

type PageReader interface {
	Article(ctx context.Context, url string) (string, error)
}

type pageDescriber struct {
	pages PageReader
	model llm.Provider
}

// NewPageDescriber reads the event page. With a model it condenses the page
// into a short blurb, otherwise the page text is trimmed.
func NewPageDescriber(pages PageReader, model llm.Provider) Describer {
	return &pageDescriber{pages: pages, model: model}
}

func (d *pageDescriber) Describe(ctx context.Context, name, link string) (string, error) {
	text, err := d.pages.Article(ctx, link)
	if err != nil {
		return "", fmt.Errorf("scrape %s: %w", link, err)
	}
	text = truncate(text, maxScrapedRunes)
	if text == "" {
		return "", nil
	}

	if d.model == nil {
		return truncate(firstParagraph(text), maxDescriptionRunes), nil
	}

	prompt := fmt.Sprintf(`Write a friendly two or three sentence description of the event %q for travellers browsing a city guide.
Mention what happens, when and where if the page says so. Plain text only, no markdown, no invented facts.

Page text:
%s`, name, text)

	out, err := d.model.GenerateText(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("summarise %s: %w", link, err)
	}
	return truncate(sanitize.Text(out), maxDescriptionRunes), nil
}

func firstParagraph(text string) string {
	if i := strings.Index(text, "\n\n"); i > 0 {
		return text[:i]
	}
	return text
}
