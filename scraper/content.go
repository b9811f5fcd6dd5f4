package scraper

import (
	"log"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FetchThreadContent retrieves a thread's full self-text from its
// comments page. It returns "" on any failure or for link-only posts:
// enrichment is additive, so the caller keeps whatever inline snippet it
// already extracted.
func (s *Scraper) FetchThreadContent(threadPageURL string) string {
	u := threadPageURL
	if !strings.Contains(u, "old.reddit.com") {
		u = strings.Replace(u, "www.reddit.com", "old.reddit.com", 1)
		u = strings.Replace(u, "//reddit.com", "//old.reddit.com", 1)
	}

	resp, err := s.get(u)
	if err != nil {
		log.Printf("ERROR: fetching thread %s: %v", u, err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		log.Printf("ERROR: access denied (403) for %s; reddit is throttling this client, retry later", u)
		return ""
	}
	if resp.StatusCode != http.StatusOK {
		log.Printf("WARN: status %d fetching thread %s", resp.StatusCode, u)
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		log.Printf("ERROR: parsing thread markup: %v", err)
		return ""
	}

	if body := selftextFrom(doc.Find(".expando")); body != "" {
		return body
	}
	// Link posts nest the body container differently; search again from
	// the document root before concluding there is no self-text.
	return selftextFrom(doc.Selection)
}

// selftextFrom extracts self-text from within root, preferring the clean
// markdown sub-element's paragraphs (joined with newlines) over the raw
// container text. Truncated to 3000 characters either way.
func selftextFrom(root *goquery.Selection) string {
	container := root.Find(".usertext-body").First()
	if container.Length() == 0 {
		return ""
	}

	if md := container.Find(".md").First(); md.Length() > 0 {
		var paras []string
		md.Children().Each(func(_ int, p *goquery.Selection) {
			if text := strings.TrimSpace(p.Text()); text != "" {
				paras = append(paras, text)
			}
		})
		if len(paras) > 0 {
			return truncate(strings.Join(paras, "\n"), 3000)
		}
		return truncate(strings.TrimSpace(md.Text()), 3000)
	}

	return truncate(strings.TrimSpace(container.Text()), 3000)
}
