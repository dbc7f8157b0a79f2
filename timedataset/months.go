package timedataset

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aouyang1/go-paysynth/errs"
	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
)

var ErrStartAfterEnd = fmt.Errorf("start date is after end date, %w", errs.ErrConfiguration)

// MonthMarker places a calendar month on the time axis.
type MonthMarker interface {
	Mark(year int, month time.Month, loc *time.Location) time.Time
	String() string
}

type monthEnd struct{}

func (monthEnd) Mark(year int, month time.Month, loc *time.Location) time.Time {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc)
}

func (monthEnd) String() string {
	return "month_end"
}

type monthStart struct{}

func (monthStart) Mark(year int, month time.Month, loc *time.Location) time.Time {
	return time.Date(year, month, 1, 0, 0, 0, 0, loc)
}

func (monthStart) String() string {
	return "month_start"
}

var (
	// MonthEnd marks a month by its last calendar day
	MonthEnd MonthMarker = monthEnd{}

	// MonthStart marks a month by its first calendar day
	MonthStart MonthMarker = monthStart{}
)

// BusinessMonthEnd marks a month by its last workday according to a business calendar.
type BusinessMonthEnd struct {
	cal *cal.BusinessCalendar
}

// NewBusinessMonthEnd creates a business month end marker over a Monday to Friday week
// skipping the provided holidays. US federal holidays are used if none are provided.
func NewBusinessMonthEnd(holidays ...*cal.Holiday) *BusinessMonthEnd {
	if len(holidays) == 0 {
		holidays = us.Holidays
	}
	c := cal.NewBusinessCalendar()
	c.AddHoliday(holidays...)
	return &BusinessMonthEnd{cal: c}
}

func (b *BusinessMonthEnd) Mark(year int, month time.Month, loc *time.Location) time.Time {
	t := MonthEnd.Mark(year, month, loc)
	for t.Month() == month && !b.cal.IsWorkday(t) {
		t = t.AddDate(0, 0, -1)
	}
	return t
}

func (b *BusinessMonthEnd) String() string {
	return "business_month_end"
}

// DayOfMonth marks a month by a fixed day and time of day. Days past the end of a short
// month fall on its last day.
type DayOfMonth struct {
	Day   int
	Clock time.Duration
}

func (d DayOfMonth) Mark(year int, month time.Month, loc *time.Location) time.Time {
	day := min(d.Day, MonthEnd.Mark(year, month, loc).Day())
	return time.Date(year, month, day, 0, 0, 0, int(d.Clock), loc)
}

func (d DayOfMonth) String() string {
	if d.Clock == 0 {
		return fmt.Sprintf("%s%d", dayOfMonthPrefix, d.Day)
	}
	return fmt.Sprintf("%s%d_%s", dayOfMonthPrefix, d.Day, d.Clock)
}

const dayOfMonthPrefix = "day_"

// inferDayOfMonth places the dates on the latest day of month seen at the time of day of the
// first date
func inferDayOfMonth(t TimeSlice) DayOfMonth {
	var d DayOfMonth
	for _, tPnt := range t {
		d.Day = max(d.Day, tPnt.Day())
	}
	hour, minute, sec := t[0].Clock()
	d.Clock = time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute +
		time.Duration(sec)*time.Second + time.Duration(t[0].Nanosecond())
	return d
}

// ParseMonthMarker resolves a marker name as returned by String
func ParseMonthMarker(name string) (MonthMarker, error) {
	switch name {
	case "", MonthEnd.String():
		return MonthEnd, nil
	case MonthStart.String():
		return MonthStart, nil
	case "business_month_end":
		return NewBusinessMonthEnd(), nil
	}

	if rest, found := strings.CutPrefix(name, dayOfMonthPrefix); found {
		dayStr, clockStr, hasClock := strings.Cut(rest, "_")
		day, err := strconv.Atoi(dayStr)
		if err == nil && day >= 1 && day <= 31 {
			d := DayOfMonth{Day: day}
			if !hasClock {
				return d, nil
			}
			if d.Clock, err = time.ParseDuration(clockStr); err == nil && d.Clock >= 0 && d.Clock < 24*time.Hour {
				return d, nil
			}
		}
	}
	return nil, fmt.Errorf("unknown month marker %q, %w", name, errs.ErrConfiguration)
}

// MonthIndex returns a count of months since year 0 so consecutive calendar months
// differ by exactly one.
func MonthIndex(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}

// MarkIndex returns the marker date of the month at the given MonthIndex
func MarkIndex(marker MonthMarker, idx int, loc *time.Location) time.Time {
	year := idx / 12
	month := time.Month(idx%12 + 1)
	return marker.Mark(year, month, loc)
}

// MonthRange returns every month marker within the closed range [start, end] in the
// location of start.
func MonthRange(start, end time.Time, marker MonthMarker) (TimeSlice, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("start %s, end %s, %w", start.Format(time.DateOnly), end.Format(time.DateOnly), ErrStartAfterEnd)
	}
	if marker == nil {
		marker = MonthEnd
	}

	loc := start.Location()
	endIdx := MonthIndex(end)
	t := make(TimeSlice, 0, endIdx-MonthIndex(start)+1)
	for idx := MonthIndex(start); idx <= endIdx; idx++ {
		tPnt := MarkIndex(marker, idx, loc)
		if tPnt.Before(start) || tPnt.After(end) {
			continue
		}
		t = append(t, tPnt)
	}
	return t, nil
}

func followsMarker(t TimeSlice, marker MonthMarker) bool {
	for _, tPnt := range t {
		if !tPnt.Equal(marker.Mark(tPnt.Year(), tPnt.Month(), tPnt.Location())) {
			return false
		}
	}
	return true
}
