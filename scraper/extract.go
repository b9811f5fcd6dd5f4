package scraper

import (
	"regexp"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// knownFlairs is the whitelist of flair strings reddit renders as
// standalone lines in the modern markup; matched verbatim per line.
var knownFlairs = []string{"Discussion", "Scam", "Support", "Question", "Meta"}

var mentionRe = regexp.MustCompile(`u/[\w-]+`)

var titleGlyphReplacer = strings.NewReplacer("•", " ", "·", " ", "|", " ")

// schemaKind tags which markup generation a post node came from.
type schemaKind int

const (
	schemaModern schemaKind = iota // shreddit-post custom elements
	schemaLegacy                   // old-reddit div.thing containers
)

type postNode struct {
	kind schemaKind
	sel  *goquery.Selection
}

// detectPostNodes locates post nodes in listing markup. Modern
// shreddit-post elements are searched first; when they fall short of the
// requested count, the legacy old-reddit containers are scanned too and,
// if present, win outright. The legacy markup tags every field in its own
// sub-element, so it beats text-segmentation guesswork whenever reddit
// serves it.
func detectPostNodes(doc *goquery.Document, maxThreads int) []postNode {
	var nodes []postNode
	doc.Find("shreddit-post").EachWithBreak(func(i int, s *goquery.Selection) bool {
		// Overscan so nodes skipped for missing identifiers still leave
		// enough to fill the requested count.
		if i >= maxThreads*2 {
			return false
		}
		nodes = append(nodes, postNode{schemaModern, s})
		return true
	})

	if len(nodes) < maxThreads {
		var legacy []postNode
		doc.Find("div.thing").EachWithBreak(func(i int, s *goquery.Selection) bool {
			if i >= maxThreads*2 {
				return false
			}
			legacy = append(legacy, postNode{schemaLegacy, s})
			return true
		})
		if len(legacy) > 0 {
			nodes = legacy
		}
	}

	return nodes
}

// ExtractThreads recovers up to maxThreads records from listing markup,
// in document order. A node contributes no record only when it carries no
// identifier at all; every other failure mode degrades to sentinel
// defaults.
func ExtractThreads(doc *goquery.Document, subreddit string, maxThreads int) []Thread {
	nodes := detectPostNodes(doc, maxThreads)

	threads := make([]Thread, 0, maxThreads)
	for _, node := range nodes {
		if len(threads) >= maxThreads {
			break
		}

		var th *Thread
		switch node.kind {
		case schemaLegacy:
			th = extractLegacyPost(node.sel, subreddit)
		case schemaModern:
			th = extractModernPost(node.sel, subreddit)
		}
		if th != nil {
			threads = append(threads, *th)
		}
	}
	return threads
}

// extractLegacyPost reads a post from old-reddit markup, where each field
// lives in a dedicated sub-element.
func extractLegacyPost(s *goquery.Selection, subreddit string) *Thread {
	id := strings.TrimPrefix(s.AttrOr("data-fullname", ""), "t3_")
	if id == "" {
		id = strings.TrimPrefix(s.AttrOr("id", ""), "thing_t3_")
	}
	if id == "" {
		return nil
	}

	rawTitle := strings.TrimSpace(s.Find("a.title").First().Text())
	title := rawTitle
	if title == "" {
		title = "Post " + id
	}

	author := strings.TrimSpace(s.Find("a.author").First().Text())
	if author == "" {
		author = "Unknown"
	}

	postedTime := "Unknown"
	createdDate := time.Now().Format(time.RFC3339)
	if t := s.Find("time").First(); t.Length() > 0 {
		if text := strings.TrimSpace(t.Text()); text != "" {
			postedTime = text
		}
		if dt, ok := t.Attr("datetime"); ok {
			if parsed, err := parseTimestamp(dt); err == nil {
				createdDate = parsed.Format(time.RFC3339)
			} else {
				createdDate = ParseRelativeTime(postedTime)
			}
		} else {
			createdDate = ParseRelativeTime(postedTime)
		}
	}

	flair := strings.TrimSpace(s.Find(".linkflairlabel").First().Text())
	if flair == "" {
		flair = "General"
	}

	var content string
	if md := s.Find(".usertext-body .md").First(); md.Length() > 0 {
		content = truncate(collapseSpace(md.Text()), 1000)
	} else if entry := s.Find(".entry").First(); entry.Length() > 0 {
		content = truncate(collapseSpace(entry.Text()), 500)
	}
	if content == "" {
		if rawTitle != "" {
			content = "Link post: " + rawTitle
		} else {
			content = "No content available"
		}
	}

	return &Thread{
		ThreadID:    id,
		Subreddit:   subreddit,
		Title:       title,
		Author:      author,
		PostedTime:  postedTime,
		CreatedDate: createdDate,
		Flair:       flair,
		Content:     content,
		URL:         threadURL(subreddit, id),
	}
}

// extractModernPost reads a post from the modern markup, where field
// boundaries in the flattened text are unmarked. Extraction is an ordered
// heuristic cascade over the node's non-empty text lines; each step
// degrades to a safe default because a partial record beats a dropped
// one.
func extractModernPost(s *goquery.Selection, subreddit string) *Thread {
	id := strings.TrimPrefix(s.AttrOr("id", ""), "t3_")
	if id == "" {
		return nil
	}

	fullText := s.Text()
	lines := splitLines(fullText)

	var title, author, postedTime, flair string
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "u/") && author == "":
			author = line
			if postedTime == "" && i+1 < len(lines) && looksLikeTimeAfterAuthor(lines[i+1]) {
				postedTime = lines[i+1]
			}
		case looksLikeTime(line):
			if postedTime == "" {
				postedTime = line
			}
		case isKnownFlair(line):
			// Later flair lines overwrite earlier ones; reddit sometimes
			// repeats the flair closer to the body.
			flair = line
		case title == "" && len(line) > 20 && !strings.Contains(line, "ago"):
			if loc := mentionRe.FindStringIndex(line); loc != nil {
				title = strings.TrimSpace(line[:loc[0]])
				if author == "" {
					author = line[loc[0]:loc[1]]
				}
			} else {
				title = line
			}
		}
	}

	title = cleanTitle(title)
	if len(title) < 4 {
		// Primary pass came up empty or near-empty; rescan with a lower
		// length bar, skipping metadata lines.
		title = ""
		for _, line := range lines {
			if len(line) > 10 && !strings.Contains(line, "u/") && !strings.Contains(line, "ago") {
				if cleaned := cleanTitle(line); len(cleaned) >= 4 {
					title = cleaned
					break
				}
			}
		}
	}
	if title == "" {
		if len(lines) > 0 {
			title = truncate(lines[0], 100)
		} else {
			title = "Post " + id
		}
	}

	content := modernBody(lines, fullText, title, author, postedTime, flair)

	createdDate := time.Now().Format(time.RFC3339)
	if postedTime != "" {
		createdDate = ParseRelativeTime(postedTime)
	} else {
		postedTime = "Unknown"
	}
	if author == "" {
		author = "Unknown"
	}
	if flair == "" {
		flair = "General"
	}

	return &Thread{
		ThreadID:    id,
		Subreddit:   subreddit,
		Title:       title,
		Author:      author,
		PostedTime:  postedTime,
		CreatedDate: createdDate,
		Flair:       flair,
		Content:     content,
		URL:         threadURL(subreddit, id),
	}
}

// modernBody collects up to three lines following the flair-or-time
// marker, excluding lines already claimed by another field. When no such
// lines exist the first 200 characters of the whole node text stand in.
func modernBody(lines []string, fullText, title, author, postedTime, flair string) string {
	var parts []string
	started := false
	for _, line := range lines {
		if started && line != title && line != author && line != postedTime && line != flair {
			parts = append(parts, line)
			if len(parts) == 3 {
				break
			}
		} else if (flair != "" && line == flair) || (postedTime != "" && line == postedTime) {
			started = true
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, " ")
	}
	return truncate(collapseSpace(fullText), 200)
}

// cleanTitle strips mention tokens, separator glyphs, and inline flair
// strings, collapses whitespace, and undoes the first-half-repeated
// rendering artifact some titles pick up.
func cleanTitle(title string) string {
	title = mentionRe.ReplaceAllString(title, "")
	title = titleGlyphReplacer.Replace(title)
	for _, flair := range knownFlairs {
		title = strings.ReplaceAll(title, flair, "")
	}
	title = collapseSpace(title)

	words := strings.Fields(title)
	if len(words) > 10 {
		half := strings.Join(words[:len(words)/2], " ")
		if strings.Contains(strings.Join(words[len(words)/2:], " "), half) {
			title = half
		}
	}

	return strings.TrimSpace(title)
}

func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func looksLikeTime(line string) bool {
	return strings.Contains(line, "ago") ||
		(strings.Contains(line, "hr") && strings.Contains(line, "."))
}

// looksLikeTimeAfterAuthor is the looser check applied to the line
// directly below an author mention, where a bare "5 hr" still reads as
// a timestamp.
func looksLikeTimeAfterAuthor(line string) bool {
	return strings.Contains(line, "ago") || strings.Contains(line, "hr")
}

func isKnownFlair(line string) bool {
	return slices.Contains(knownFlairs, line)
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate caps s at n bytes without splitting a multi-byte rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
