// Package content normalizes raw or rendered HTML into acquisition payload
// items using Mozilla Readability extraction and Markdown conversion.
package content

import (
	"log/slog"
	nurl "net/url"
	"strings"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	readability "github.com/go-shiori/go-readability"

	"github.com/bencium/agi-detector/models"
)

// minContentLength is the minimum extracted text length (in characters) for
// the result to count as usable content. Below this the page is assumed to
// be a shell and the strategy reports a miss.
const minContentLength = 80

// conv is shared; the converter is goroutine-safe once constructed.
var conv = newMarkdownConverter()

// newMarkdownConverter builds a Converter that strips script/style/head
// noise, renders CommonMark, and preserves table structure with minimal
// cell padding.
func newMarkdownConverter() *converter.Converter {
	return converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(
				table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
			),
		),
	)
}

// Extract runs readability over rawHTML and converts the article body to
// Markdown, returning a single-item payload. A nil payload (not an error)
// means the page held no usable article content, which the cascade treats
// as a strategy miss.
func Extract(rawHTML, sourceURL, fallbackTitle string) *models.Payload {
	parsedURL, err := nurl.Parse(sourceURL)
	if err != nil {
		slog.Warn("content: invalid source URL", "url", sourceURL, "error", err)
		return nil
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), parsedURL)
	if err != nil {
		slog.Warn("content: readability extraction failed", "url", sourceURL, "error", err)
		return nil
	}
	if len(strings.TrimSpace(article.TextContent)) < minContentLength {
		return nil
	}

	body, err := conv.ConvertString(article.Content, converter.WithDomain(parsedURL.Host))
	if err != nil {
		slog.Warn("content: markdown conversion failed, using plain text",
			"url", sourceURL, "error", err)
		body = article.TextContent
	}

	title := strings.TrimSpace(article.Title)
	if title == "" {
		title = fallbackTitle
	}

	return &models.Payload{
		Items: []models.Item{{
			Title:       title,
			URL:         sourceURL,
			Body:        body,
			PublishedAt: publishedAt(article),
		}},
	}
}

func publishedAt(article readability.Article) time.Time {
	if article.PublishedTime != nil {
		return *article.PublishedTime
	}
	return time.Time{}
}
