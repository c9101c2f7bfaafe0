package feed

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestParseRSS2(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <link>https://example.com</link>
    <description>Test Description</description>
    <language>en-us</language>
    <item>
      <title>Test Item 1</title>
      <link>https://example.com/item1</link>
      <description>&lt;p&gt;Test &lt;b&gt;Item 1&lt;/b&gt; Description&lt;/p&gt;</description>
      <guid>item-1</guid>
      <pubDate>Mon, 03 Jul 2023 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Test Item 2</title>
      <link>https://example.com/item2</link>
      <description>Test Item 2 Description</description>
    </item>
  </channel>
</rss>`

	parser := NewParser()
	metadata, items, err := parser.Run([]byte(rssData))

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if metadata.Title != "Test Feed" {
		t.Errorf("Expected title 'Test Feed', got: %s", metadata.Title)
	}
	if metadata.Language != "en-us" {
		t.Errorf("Expected language 'en-us', got: %s", metadata.Language)
	}

	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got: %d", len(items))
	}

	item1 := items[0]
	if item1.Title != "Test Item 1" {
		t.Errorf("Expected title 'Test Item 1', got: %s", item1.Title)
	}
	if item1.Link != "https://example.com/item1" {
		t.Errorf("Expected link 'https://example.com/item1', got: %s", item1.Link)
	}
	if item1.Content != "Test Item 1 Description" {
		t.Errorf("Expected HTML stripped from description, got: %q", item1.Content)
	}
	if item1.PublishedAt == nil {
		t.Fatal("Expected published date to be parsed")
	}
	expected := time.Date(2023, 7, 3, 10, 0, 0, 0, time.UTC)
	if !item1.PublishedAt.Equal(expected) {
		t.Errorf("Expected published %v, got %v", expected, *item1.PublishedAt)
	}

	item2 := items[1]
	if item2.PublishedAt != nil {
		t.Errorf("Expected nil published date, got %v", *item2.PublishedAt)
	}
}

func TestParseAtom(t *testing.T) {
	atomData := `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Test Atom Feed</title>
  <link href="https://example.com"/>
  <updated>2023-07-03T12:00:00Z</updated>
  <id>urn:uuid:1234567890</id>
  <entry>
    <title>Test Entry</title>
    <link href="https://example.com/entry1"/>
    <id>urn:uuid:entry-1</id>
    <updated>2023-07-03T10:00:00Z</updated>
    <content type="html">Test content</content>
  </entry>
</feed>`

	parser := NewParser()
	metadata, items, err := parser.Run([]byte(atomData))

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if metadata.Title != "Test Atom Feed" {
		t.Errorf("Expected title 'Test Atom Feed', got: %s", metadata.Title)
	}

	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got: %d", len(items))
	}

	item := items[0]
	if item.Link != "https://example.com/entry1" {
		t.Errorf("Expected link 'https://example.com/entry1', got: %s", item.Link)
	}
	if item.Content != "Test content" {
		t.Errorf("Expected content 'Test content', got: %s", item.Content)
	}
	if item.PublishedAt == nil {
		t.Error("Expected updated date to stand in for a missing published date")
	}
}

func TestParseInvalidFeed(t *testing.T) {
	parser := NewParser()
	_, _, err := parser.Run([]byte("invalid xml"))

	if err == nil {
		t.Error("Expected error for invalid XML")
	}
}

func TestParseKeepsSourceOrder(t *testing.T) {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?><rss version="2.0"><channel><title>Order</title>`)
	// Deliberately not chronological
	for _, n := range []int{3, 1, 2} {
		fmt.Fprintf(&b, `<item><title>Item %d</title><link>https://example.com/%d</link><pubDate>Mon, 0%d Jul 2023 10:00:00 GMT</pubDate></item>`, n, n, n)
	}
	b.WriteString(`</channel></rss>`)

	_, items, err := NewParser().Run([]byte(b.String()))
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"Item 3", "Item 1", "Item 2"}
	for i, title := range want {
		if items[i].Title != title {
			t.Errorf("Expected item %d to be %q, got %q", i, title, items[i].Title)
		}
	}
}

func TestParseItemsMissingFields(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Sparse</title>
    <item><title>No link</title></item>
    <item><link>https://example.com/untitled</link></item>
  </channel>
</rss>`

	_, items, err := NewParser().Run([]byte(rssData))
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}
	for i, item := range items {
		if item.Valid() {
			t.Errorf("Expected item %d to be invalid: %+v", i, item)
		}
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "  hello   world ", "hello world"},
		{"markup", "<p>Hello <em>there</em></p><script>alert(1)</script>", "Hello there"},
		{"entities", "Fish &amp; Chips", "Fish & Chips"},
		{"empty", "", ""},
		{"decomposed accent", "Cafe\u0301", "Caf\u00e9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanText(tt.input); got != tt.want {
				t.Errorf("CleanText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
