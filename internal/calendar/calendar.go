package calendar

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DateLayout is the wire and storage format for calendar days.
	DateLayout = "2006-01-02"
	// MonthLayout keys monthly report buckets.
	MonthLayout = "2006-01"

	buddhistEraOffset = 543
)

var thaiMonths = [...]string{
	"มกราคม", "กุมภาพันธ์", "มีนาคม", "เมษายน", "พฤษภาคม", "มิถุนายน",
	"กรกฎาคม", "สิงหาคม", "กันยายน", "ตุลาคม", "พฤศจิกายน", "ธันวาคม",
}

// ParseDate accepts a YYYY-MM-DD string (optionally followed by a time part),
// or a time.Time, and returns the calendar day at UTC midnight.
func ParseDate(value interface{}) (time.Time, error) {
	if t, ok := value.(time.Time); ok {
		if t.IsZero() {
			return time.Time{}, fmt.Errorf("empty date")
		}
		return StartOfDay(t), nil
	}

	str := strings.TrimSpace(fmt.Sprint(value))
	if str == "" || str == "<nil>" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if len(str) > 10 {
		str = str[:10]
	}
	return time.Parse(DateLayout, str)
}

// ParseMonth parses a YYYY-MM bucket key.
func ParseMonth(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty month")
	}
	return time.Parse(MonthLayout, value)
}

// StartOfDay truncates t to midnight of its calendar day, expressed in UTC.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DayKey is the bucket key of t's calendar day.
func DayKey(t time.Time) string {
	return t.Format(DateLayout)
}

// MonthKey is the bucket key of t's calendar month.
func MonthKey(t time.Time) string {
	return t.Format(MonthLayout)
}

// PreviousDay returns the calendar day before t.
func PreviousDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, -1)
}

// Window is an inclusive range of calendar days.
type Window struct {
	From time.Time
	To   time.Time
}

// NewWindow normalizes both ends to calendar days and swaps them if reversed.
func NewWindow(from, to time.Time) Window {
	from, to = StartOfDay(from), StartOfDay(to)
	if to.Before(from) {
		from, to = to, from
	}
	return Window{From: from, To: to}
}

// TrailingWindow covers the given number of days ending on end (inclusive).
func TrailingWindow(end time.Time, days int) Window {
	if days < 1 {
		days = 1
	}
	end = StartOfDay(end)
	return Window{From: end.AddDate(0, 0, -(days - 1)), To: end}
}

// PreviousWindow covers the given number of days ending the day before w.From.
func (w Window) PreviousWindow(days int) Window {
	return TrailingWindow(PreviousDay(w.From), days)
}

// Days counts the calendar days in the window.
func (w Window) Days() int {
	return int(w.To.Sub(w.From).Hours()/24) + 1
}

// Contains reports whether t falls on a day inside the window.
func (w Window) Contains(t time.Time) bool {
	day := StartOfDay(t)
	return !day.Before(w.From) && !day.After(w.To)
}

// FormatThaiDate renders t as dd/mm/yy in the Buddhist Era calendar.
func FormatThaiDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	year := (t.Year() + buddhistEraOffset) % 100
	return fmt.Sprintf("%02d/%02d/%02d", t.Day(), int(t.Month()), year)
}

// FormatThaiMonth renders a YYYY-MM key as "<thai month name> <BE year>".
func FormatThaiMonth(key string) string {
	t, err := ParseMonth(key)
	if err != nil {
		return key
	}
	return fmt.Sprintf("%s %d", thaiMonths[t.Month()-1], t.Year()+buddhistEraOffset)
}
