package scraper

import (
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// A browser-like User-Agent; reddit serves obvious bots an interstitial
// instead of the listing.
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

const maxThreadsLimit = 100

var (
	subredditRe   = regexp.MustCompile(`(?i)/?r/([^/\s?&#]+)`)
	sortSegmentRe = regexp.MustCompile(`/(new|hot|top|rising)$`)
)

// Config controls a Scraper's pacing and transport.
type Config struct {
	MinDelay       time.Duration
	MaxDelay       time.Duration
	RequestTimeout time.Duration
	UserAgent      string
}

// DefaultConfig returns the pacing reddit tolerates without blocking.
func DefaultConfig() Config {
	return Config{
		MinDelay:       5 * time.Second,
		MaxDelay:       8 * time.Second,
		RequestTimeout: 12 * time.Second,
		UserAgent:      defaultUserAgent,
	}
}

// Scraper downloads subreddit listings and recovers structured thread
// records from their markup. One Scraper owns one RateLimiter, which is
// what makes the single last-request timestamp sufficient: records are
// fetched strictly sequentially. Instances are not safe for concurrent
// use; give each concurrent caller its own Scraper.
type Scraper struct {
	client    *http.Client
	limiter   *RateLimiter
	userAgent string
}

// New creates a Scraper. Zero config fields fall back to DefaultConfig
// values.
func New(cfg Config) *Scraper {
	def := DefaultConfig()
	if cfg.MinDelay <= 0 {
		cfg.MinDelay = def.MinDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = def.MaxDelay
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = def.RequestTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}

	return &Scraper{
		client:    &http.Client{Timeout: cfg.RequestTimeout},
		limiter:   NewRateLimiter(cfg.MinDelay, cfg.MaxDelay),
		userAgent: cfg.UserAgent,
	}
}

// ExtractSubredditName pulls the subreddit name out of a URL or a bare
// "r/name" form. Returns "" when no name is recognizable.
func ExtractSubredditName(rawURL string) string {
	m := subredditRe.FindStringSubmatch(rawURL)
	if m == nil {
		return ""
	}
	return m[1]
}

// NormalizeListingURL rewrites a subreddit URL (or bare name) to the
// old-reddit mirror's listing form, which is lighter to fetch and renders
// the more reliable legacy markup. A /new/ sort segment is appended
// unless the URL already names a sort.
func NormalizeListingURL(rawURL string) string {
	name := ExtractSubredditName(rawURL)
	if name == "" {
		return ""
	}

	u := strings.TrimSpace(rawURL)
	if !strings.HasPrefix(u, "http") {
		u = fmt.Sprintf("https://old.reddit.com/r/%s/", name)
	}

	// Prefer the old.reddit mirror, taking care not to rewrite a URL
	// already pointing at it.
	if !strings.Contains(u, "old.reddit.com") {
		u = strings.Replace(u, "www.reddit.com", "old.reddit.com", 1)
		u = strings.Replace(u, "//reddit.com", "//old.reddit.com", 1)
	}

	// Queries and fragments would otherwise end up with path segments
	// appended after them.
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}

	if !strings.HasSuffix(u, "/") {
		u += "/"
	}
	if !sortSegmentRe.MatchString(strings.TrimSuffix(u, "/")) {
		u += "new/"
	}
	return u
}

// ScrapeSubreddit fetches a subreddit listing and extracts up to
// maxThreads records in document order. When fetchContent is set, each
// record's body is additionally retrieved from its thread page,
// sequentially and through the same rate limiter.
//
// Failures never propagate as errors: unrecognizable input, transport
// failures, and blocked responses all log and shrink the result, down to
// an empty list.
func (s *Scraper) ScrapeSubreddit(subredditURL string, maxThreads int, fetchContent bool) []Thread {
	name := ExtractSubredditName(subredditURL)
	if name == "" {
		log.Printf("WARN: could not extract subreddit name from %q", subredditURL)
		return nil
	}
	if maxThreads < 1 {
		maxThreads = 1
	}
	if maxThreads > maxThreadsLimit {
		maxThreads = maxThreadsLimit
	}

	listingURL := NormalizeListingURL(subredditURL)
	log.Printf("INFO: fetching listing %s", listingURL)

	threads := s.scrapeListing(listingURL, name, maxThreads)
	if len(threads) == 0 {
		// A blocked or reshuffled listing page; the Atom feed is a
		// second chance.
		log.Printf("INFO: listing yielded no threads, trying feed for r/%s", name)
		threads = s.scrapeFeed(name, maxThreads)
	}

	if fetchContent {
		for i := range threads {
			if body := s.FetchThreadContent(threads[i].URL); body != "" {
				threads[i].Content = body
			}
		}
	}

	log.Printf("INFO: scraped %d threads from r/%s", len(threads), name)
	return threads
}

func (s *Scraper) scrapeListing(listingURL, subreddit string, maxThreads int) []Thread {
	resp, err := s.get(listingURL)
	if err != nil {
		log.Printf("ERROR: fetching %s: %v", listingURL, err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		log.Printf("ERROR: access denied (403) for %s; reddit is throttling this client, retry later", listingURL)
		return nil
	}
	if resp.StatusCode != http.StatusOK {
		log.Printf("ERROR: unexpected status %d for %s", resp.StatusCode, listingURL)
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		log.Printf("ERROR: parsing listing markup: %v", err)
		return nil
	}

	return ExtractThreads(doc, subreddit, maxThreads)
}

// get issues one rate-limited GET. The limiter records the request even
// when it fails, so errors still count toward pacing.
func (s *Scraper) get(rawURL string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.userAgent)

	s.limiter.Wait()
	resp, err := s.client.Do(req)
	s.limiter.Record()
	return resp, err
}
