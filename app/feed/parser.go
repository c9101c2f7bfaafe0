package feed

import (
	"bytes"
	"cmp"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
)

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

// Run parses an RSS, Atom or JSON feed document. Items keep the order the
// source lists them in.
func (p *Parser) Run(data []byte) (*Metadata, []Candidate, error) {
	feed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	metadata := &Metadata{
		Title:    feed.Title,
		Link:     feed.Link,
		Language: feed.Language,
	}

	items := make([]Candidate, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		items = append(items, p.normalizeItem(item))
	}

	return metadata, items, nil
}

func (p *Parser) normalizeItem(item *gofeed.Item) Candidate {
	link := strings.TrimSpace(item.Link)
	if link == "" && len(item.Links) > 0 {
		link = strings.TrimSpace(item.Links[0])
	}

	normalized := Candidate{
		Title:   CleanText(item.Title),
		Link:    link,
		Content: CleanText(cmp.Or(item.Content, item.Description)),
	}

	if item.PublishedParsed != nil {
		published := item.PublishedParsed.UTC()
		normalized.PublishedAt = &published
	} else if item.UpdatedParsed != nil {
		updated := item.UpdatedParsed.UTC()
		normalized.PublishedAt = &updated
	}

	return normalized
}
