package render

import (
	"encoding/xml"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/tagslug"
)

type atomFeed struct {
	XMLName xml.Name    `xml:"http://www.w3.org/2005/Atom feed"`
	Title   string      `xml:"title"`
	ID      string      `xml:"id"`
	Updated string      `xml:"updated"`
	Links   []atomLink  `xml:"link"`
	Author  *atomAuthor `xml:"author,omitempty"`
	Entries []atomEntry `xml:"entry"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr,omitempty"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

type atomEntry struct {
	Title      string         `xml:"title"`
	ID         string         `xml:"id"`
	Link       atomLink       `xml:"link"`
	Published  string         `xml:"published"`
	Updated    string         `xml:"updated"`
	Summary    string         `xml:"summary,omitempty"`
	Categories []atomCategory `xml:"category"`
	Content    atomContent    `xml:"content"`
}

type atomCategory struct {
	Term  string `xml:"term,attr"`
	Label string `xml:"label,attr"`
}

type atomContent struct {
	Type string `xml:"type,attr"`
	Body string `xml:",chardata"`
}

// Feed renders an Atom feed of the newest Blog.FeedSize posts.
func (s *Site) Feed() ([]byte, error) {
	rc := s.rc
	posts := rc.Posts.Recent(rc.Blog.FeedSize)

	feed := atomFeed{
		Title: rc.Site.Title,
		ID:    rc.Links.Absolute("/"),
		Links: []atomLink{
			{Href: rc.Links.Absolute("/feed.xml"), Rel: "self"},
			{Href: rc.Links.Absolute("/")},
		},
	}
	if rc.Site.Author != "" {
		feed.Author = &atomAuthor{Name: rc.Site.Author}
	}

	var updated time.Time
	for _, p := range posts {
		html, err := rc.PostHTML(p)
		if err != nil {
			return nil, err
		}
		if p.Updated().After(updated) {
			updated = p.Updated()
		}
		entry := atomEntry{
			Title:     p.Title,
			ID:        rc.Links.Absolute(p.URL()),
			Link:      atomLink{Href: rc.Links.Absolute(p.URL())},
			Published: p.Date.UTC().Format(time.RFC3339),
			Updated:   p.Updated().UTC().Format(time.RFC3339),
			Summary:   p.Summary,
			Content:   atomContent{Type: "html", Body: string(html)},
		}
		for _, tag := range p.Tags {
			entry.Categories = append(entry.Categories, atomCategory{Term: rc.Links.Absolute(tagslug.Identifier(tag)), Label: tag})
		}
		feed.Entries = append(feed.Entries, entry)
	}
	feed.Updated = updated.UTC().Format(time.RFC3339)

	body, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryRender, "failed to encode feed").Build()
	}
	return append([]byte(xml.Header), append(body, '\n')...), nil
}
