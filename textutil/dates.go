package textutil

import (
	"regexp"
	"time"
)

// Vietnamese publishers render dates as dd/mm/yyyy, often with a trailing
// clock and surrounding labels ("Thứ sáu, 20/12/2024, 14:05 (GMT+7)").
var (
	reDateTime = regexp.MustCompile(`(\d{1,2}/\d{1,2}/\d{4}), (\d{1,2}:\d{2})`)
	reDate     = regexp.MustCompile(`(\d{1,2}/\d{1,2}/\d{4})`)
)

// ParseVietnameseDate extracts a timestamp from a listing or detail-page
// date string. Returns nil when no recognizable date is present.
func ParseVietnameseDate(raw string) *time.Time {
	if m := reDateTime.FindStringSubmatch(raw); m != nil {
		if t, err := time.ParseInLocation("2/1/2006 15:04", m[1]+" "+m[2], time.Local); err == nil {
			return &t
		}
	}
	if m := reDate.FindStringSubmatch(raw); m != nil {
		if t, err := time.ParseInLocation("2/1/2006", m[1], time.Local); err == nil {
			return &t
		}
	}
	return nil
}

// ParseRequestDate parses the DD/MM/YYYY format used on the crawl API.
func ParseRequestDate(raw string) (time.Time, error) {
	return time.ParseInLocation("02/01/2006", raw, time.Local)
}
