package scraper

import "time"

// timestampLayouts covers RFC 3339 plus the zone-less form legacy time
// attributes and older database rows may carry.
var timestampLayouts = []string{time.RFC3339, "2006-01-02T15:04:05"}

func parseTimestamp(s string) (time.Time, error) {
	var t time.Time
	var err error
	for _, layout := range timestampLayouts {
		t, err = time.ParseInLocation(layout, s, time.Local)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// FilterByDateRange keeps threads whose CreatedDate falls within the
// inclusive calendar-date window [startDate, endDate] (both in
// "2006-01-02" form; the end date runs through 23:59:59).
//
// The filter fails open: a thread whose CreatedDate cannot be parsed is
// kept, and unparseable window bounds return the input unchanged. A
// normalization bug upstream must never silently delete data -- only
// records positively confirmed out of range are removed.
func FilterByDateRange(threads []Thread, startDate, endDate string) []Thread {
	start, err := time.ParseInLocation("2006-01-02", startDate, time.Local)
	if err != nil {
		return threads
	}
	end, err := time.ParseInLocation("2006-01-02", endDate, time.Local)
	if err != nil {
		return threads
	}
	end = end.Add(24*time.Hour - time.Second)

	filtered := make([]Thread, 0, len(threads))
	for _, th := range threads {
		created, err := parseTimestamp(th.CreatedDate)
		if err != nil {
			filtered = append(filtered, th)
			continue
		}
		if !created.Before(start) && !created.After(end) {
			filtered = append(filtered, th)
		}
	}
	return filtered
}
