package logstore

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	DateLayout  = "02-01-2006"
	ClockLayout = "15:04:05"
)

// FormatClock renders a timestamp as HH:MM:SS.
func FormatClock(t time.Time) string {
	return t.Format(ClockLayout)
}

// FormatDuration renders d as HH:MM:SS, hours not wrapping at 24.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, (secs%3600)/60, secs%60)
}

// ParseDuration reads an HH:MM:SS duration as written by FormatDuration.
func ParseDuration(s string) (time.Duration, error) {
	var h, m, sec int
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d:%d:%d", &h, &m, &sec); err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	if h < 0 || m < 0 || m > 59 || sec < 0 || sec > 59 {
		return 0, fmt.Errorf("parse duration %q: out of range", s)
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(sec)*time.Second, nil
}

// ParseRow rebuilds a record from the textual columns of a log row. The
// exit clock carries no date: the duration column decides how many days
// after the entry it falls. Without a duration an exit clock earlier than
// the entry clock means the next day.
func ParseRow(date, entry, exit, duration, personID, name string, loc *time.Location) (Record, error) {
	if loc == nil {
		loc = time.Local
	}

	entryAt, err := time.ParseInLocation(DateLayout+" "+ClockLayout, strings.TrimSpace(date)+" "+strings.TrimSpace(entry), loc)
	if err != nil {
		return Record{}, fmt.Errorf("parse entry time: %w", err)
	}

	rec := Record{
		PersonID: strings.TrimSpace(personID),
		Name:     strings.TrimSpace(name),
		EntryAt:  entryAt,
	}

	if strings.TrimSpace(exit) == "" {
		return rec, nil
	}

	exitAt, err := time.ParseInLocation(DateLayout+" "+ClockLayout, strings.TrimSpace(date)+" "+strings.TrimSpace(exit), loc)
	if err != nil {
		return Record{}, fmt.Errorf("parse exit time: %w", err)
	}
	if exitAt.Before(entryAt) {
		exitAt = exitAt.Add(24 * time.Hour)
	}

	if strings.TrimSpace(duration) != "" {
		d, err := ParseDuration(duration)
		if err != nil {
			return Record{}, err
		}
		days := math.Round(entryAt.Add(d).Sub(exitAt).Hours() / 24)
		exitAt = exitAt.AddDate(0, 0, int(days))
	}
	rec.ExitAt = &exitAt

	return rec, nil
}

// Row renders r in Header column order. Open rows leave exit and duration
// empty.
func Row(r Record) []string {
	row := []string{r.Date(), FormatClock(r.EntryAt), "", r.PersonID, r.Name, ""}
	if r.ExitAt != nil {
		row[2] = FormatClock(*r.ExitAt)
		row[5] = FormatDuration(r.Duration())
	}
	return row
}

// OnDate keeps the records whose entry falls on date (DD-MM-YYYY). An
// empty date keeps everything.
func OnDate(records []Record, date string) []Record {
	if date == "" {
		return records
	}
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.Date() == date {
			out = append(out, r)
		}
	}
	return out
}
