package scraper

import "fmt"

// Thread represents a single submission extracted from a subreddit
// listing. Field values are best-effort: extraction fills in sentinel
// defaults rather than dropping partial records.
type Thread struct {
	ThreadID    string `json:"thread_id"`
	Subreddit   string `json:"subreddit"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	PostedTime  string `json:"posted_time"`
	CreatedDate string `json:"created_date"`
	Flair       string `json:"flair"`
	Content     string `json:"content"`
	URL         string `json:"url"`
}

// threadURL derives the canonical comments URL for a thread.
func threadURL(subreddit, id string) string {
	return fmt.Sprintf("https://www.reddit.com/r/%s/comments/%s/", subreddit, id)
}
