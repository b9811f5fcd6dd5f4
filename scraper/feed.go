package scraper

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

// scrapeFeed pulls the subreddit's Atom feed as a fallback listing
// source. Reddit publishes every listing as <listing>/.rss; the feed
// survives the markup churn that breaks HTML extraction, at the cost of
// carrying no flair and only HTML-formatted bodies.
func (s *Scraper) scrapeFeed(subreddit string, maxThreads int) []Thread {
	feedURL := fmt.Sprintf("https://old.reddit.com/r/%s/new/.rss", subreddit)

	fp := s.feedParser()

	s.limiter.Wait()
	feed, err := fp.ParseURL(feedURL)
	s.limiter.Record()
	if err != nil {
		log.Printf("ERROR: fetching feed %s: %v", feedURL, err)
		return nil
	}

	threads := make([]Thread, 0, maxThreads)
	for _, item := range feed.Items {
		if len(threads) >= maxThreads {
			break
		}

		id := feedEntryID(item.GUID)
		if id == "" {
			continue
		}

		title := item.Title
		if title == "" {
			title = "Post " + id
		}

		author := "Unknown"
		if item.Author != nil && item.Author.Name != "" {
			author = item.Author.Name
		}

		postedTime := "Unknown"
		createdDate := time.Now().Format(time.RFC3339)
		if item.PublishedParsed != nil {
			createdDate = item.PublishedParsed.Format(time.RFC3339)
			postedTime = item.Published
		}

		threads = append(threads, Thread{
			ThreadID:    id,
			Subreddit:   subreddit,
			Title:       title,
			Author:      author,
			PostedTime:  postedTime,
			CreatedDate: createdDate,
			Flair:       "General",
			Content:     truncate(stripTags(item.Content), 500),
			URL:         threadURL(subreddit, id),
		})
	}

	return threads
}

// feedParser builds a gofeed parser that fetches through the scraper's
// own HTTP client, so the configured request timeout applies to feed
// fetches too.
func (s *Scraper) feedParser() *gofeed.Parser {
	fp := gofeed.NewParser()
	fp.UserAgent = s.userAgent
	fp.Client = s.client
	return fp
}

// feedEntryID extracts the thread id from an Atom entry GUID like
// "t3_1abcde".
func feedEntryID(guid string) string {
	if i := strings.Index(guid, "t3_"); i >= 0 {
		return guid[i+3:]
	}
	return ""
}

// stripTags flattens an HTML feed body to plain text.
func stripTags(s string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return collapseSpace(s)
	}
	return collapseSpace(doc.Text())
}
