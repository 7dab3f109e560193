package attendance

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
)

const (
	shortFormFields = 8
	longFormFields  = 10

	// Terminal days start at 06:00; earlier before-noon clocks belong to the previous work date.
	rolloverHour = 6
)

var dateToken = regexp.MustCompile(`^(\d{4})\.\s*(\d{1,2})\.\s*(\d{1,2})\.?$`)

var modeLabels = map[string]attendance.Mode{
	"출근":        attendance.ModeCheckIn,
	"퇴근":        attendance.ModeCheckOut,
	"해제":        attendance.ModeUnlock,
	"설정":        attendance.ModeLock,
	"경비":        attendance.ModeLock,
	"출입":        attendance.ModePassage,
	"check-in":  attendance.ModeCheckIn,
	"check_in":  attendance.ModeCheckIn,
	"checkin":   attendance.ModeCheckIn,
	"check-out": attendance.ModeCheckOut,
	"check_out": attendance.ModeCheckOut,
	"checkout":  attendance.ModeCheckOut,
	"unlock":    attendance.ModeUnlock,
	"disarm":    attendance.ModeUnlock,
	"lock":      attendance.ModeLock,
	"arm":       attendance.ModeLock,
	"passage":   attendance.ModePassage,
	"access":    attendance.ModePassage,
}

var webSources = map[string]bool{"web": true, "웹": true}

// Parser turns terminal export lines into records. Clocks are read in loc.
type Parser struct {
	loc *time.Location
}

func NewParser(loc *time.Location) *Parser {
	if loc == nil {
		loc = time.UTC
	}
	return &Parser{loc: loc}
}

// Parse parses every line. Blank lines are skipped; failures are collected
// and never stop the batch. lineNo is 1-based.
func (p *Parser) Parse(lines []string) ([]attendance.RawRecord, []attendance.LineError) {
	var (
		records []attendance.RawRecord
		errs    []attendance.LineError
	)
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		rec, err := p.ParseLine(i+1, line)
		if err != nil {
			errs = append(errs, attendance.NewLineError(i+1, line, err))
			continue
		}
		records = append(records, rec)
	}
	return records, errs
}

func (p *Parser) ParseLine(lineNo int, raw string) (attendance.RawRecord, error) {
	line := strings.TrimRight(raw, "\r\n")
	sep := "\t"
	if !strings.Contains(line, sep) {
		sep = ","
	}
	fields := strings.Split(line, sep)
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	switch {
	case len(fields) == shortFormFields:
		common, err := p.parseCommon(lineNo, line, fields[0], fields[1], fields[2:7])
		if err != nil {
			return nil, err
		}
		common.Source = attendance.SourceWeb
		return attendance.WebOriginRecord{RecordFields: common}, nil

	case len(fields) >= longFormFields:
		common, err := p.parseCommon(lineNo, line, fields[0], fields[1], fields[4:9])
		if err != nil {
			return nil, err
		}
		common.Source = parseSource(fields[9])
		rec := attendance.TerminalOriginRecord{
			RecordFields:    common,
			TerminalID:      fields[2],
			ExternalUserRef: fields[3],
		}
		if len(fields) > longFormFields {
			rec.ResultFlag = fields[10]
		}
		return rec, nil

	default:
		return nil, fmt.Errorf("%w: got %d, want %d or at least %d", attendance.ErrMalformedLine, len(fields), shortFormFields, longFormFields)
	}
}

// parseCommon reads date, time and the five identity/mode columns
// (name, employee number, job title, category, mode).
func (p *Parser) parseCommon(lineNo int, raw, dateText, timeText string, cols []string) (attendance.RecordFields, error) {
	date, err := ParseDate(dateText, p.loc)
	if err != nil {
		return attendance.RecordFields{}, err
	}
	clock, err := ParseClock(timeText)
	if err != nil {
		return attendance.RecordFields{}, err
	}
	if cols[0] == "" {
		return attendance.RecordFields{}, attendance.ErrMissingName
	}
	mode, ok := ParseMode(cols[4])
	if !ok {
		return attendance.RecordFields{}, fmt.Errorf("%w: %q", attendance.ErrUnknownMode, cols[4])
	}

	return attendance.RecordFields{
		Line:             lineNo,
		Raw:              raw,
		OccurredDate:     date,
		OccurredTimeText: timeText,
		Timestamp:        clock.On(date),
		WorkDate:         clock.WorkDate(date),
		DisplayName:      cols[0],
		EmployeeNumber:   cols[1],
		JobTitle:         cols[2],
		Category:         cols[3],
		Mode:             mode,
	}, nil
}

// ParseDate accepts "YYYY. M. D." with the trailing dot optional.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	m := dateToken.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return time.Time{}, fmt.Errorf("%w: %q", attendance.ErrInvalidDate, s)
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if d.Year() != year || int(d.Month()) != month || d.Day() != day {
		return time.Time{}, fmt.Errorf("%w: %q is not a calendar date", attendance.ErrInvalidDate, s)
	}
	return d, nil
}

// Clock is a parsed time token.
type Clock struct {
	Hour, Minute, Second int
	// BeforeNoon is true for AM tokens and for 24-hour tokens before 12:00.
	BeforeNoon bool
}

// On combines the clock with the literal calendar date.
func (c Clock) On(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), c.Hour, c.Minute, c.Second, 0, date.Location())
}

// WorkDate applies the midnight rollover to the literal date.
func (c Clock) WorkDate(date time.Time) time.Time {
	d := attendance.DateOnly(date)
	if c.BeforeNoon && c.Hour < rolloverHour {
		return d.AddDate(0, 0, -1)
	}
	return d
}

// ParseClock accepts "PM 4:30:33", "오후 4:30:33", "4:30:33 PM" and bare 24-hour
// "16:30:33" or "16:30".
func ParseClock(s string) (Clock, error) {
	text := strings.TrimSpace(s)
	marker := ""
	for _, m := range []struct{ label, norm string }{
		{"AM", "AM"}, {"PM", "PM"}, {"am", "AM"}, {"pm", "PM"}, {"오전", "AM"}, {"오후", "PM"},
	} {
		if strings.HasPrefix(text, m.label) {
			marker, text = m.norm, strings.TrimSpace(strings.TrimPrefix(text, m.label))
			break
		}
		if strings.HasSuffix(text, m.label) {
			marker, text = m.norm, strings.TrimSpace(strings.TrimSuffix(text, m.label))
			break
		}
	}

	parts := strings.Split(text, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return Clock{}, fmt.Errorf("%w: %q", attendance.ErrInvalidTime, s)
	}
	nums := make([]int, 3)
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return Clock{}, fmt.Errorf("%w: %q", attendance.ErrInvalidTime, s)
		}
		nums[i] = n
	}
	c := Clock{Hour: nums[0], Minute: nums[1], Second: nums[2]}
	if c.Minute > 59 || c.Second > 59 {
		return Clock{}, fmt.Errorf("%w: %q", attendance.ErrInvalidTime, s)
	}

	switch marker {
	case "":
		if c.Hour > 23 {
			return Clock{}, fmt.Errorf("%w: %q", attendance.ErrInvalidTime, s)
		}
		c.BeforeNoon = c.Hour < 12
	default:
		if c.Hour < 1 || c.Hour > 12 {
			return Clock{}, fmt.Errorf("%w: %q hour out of 12-hour range", attendance.ErrInvalidTime, s)
		}
		c.BeforeNoon = marker == "AM"
		switch {
		case marker == "AM" && c.Hour == 12:
			c.Hour = 0
		case marker == "PM" && c.Hour < 12:
			c.Hour += 12
		}
	}
	return c, nil
}

// ParseMode maps a native or English mode label.
func ParseMode(label string) (attendance.Mode, bool) {
	mode, ok := modeLabels[strings.ToLower(strings.TrimSpace(label))]
	return mode, ok
}

func parseSource(s string) attendance.SourceSystem {
	if webSources[strings.ToLower(strings.TrimSpace(s))] {
		return attendance.SourceWeb
	}
	return attendance.SourceTerminal
}
