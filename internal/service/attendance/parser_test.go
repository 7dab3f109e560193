package attendance

import (
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seoul(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)
	return loc
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in         string
		hour, min  int
		beforeNoon bool
	}{
		{"오전 9:00:00", 9, 0, true},
		{"오후 4:30:33", 16, 30, false},
		{"PM 4:30:33", 16, 30, false},
		{"4:30:33 PM", 16, 30, false},
		{"오전 12:10:00", 0, 10, true},
		{"오후 12:10:00", 12, 10, false},
		{"16:30", 16, 30, false},
		{"02:15:00", 2, 15, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, err := ParseClock(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.hour, c.Hour)
			assert.Equal(t, tt.min, c.Minute)
			assert.Equal(t, tt.beforeNoon, c.BeforeNoon)
		})
	}
}

func TestParseClock_Invalid(t *testing.T) {
	for _, in := range []string{"", "9", "오후 13:00:00", "24:00", "10:61", "ab:cd", "오전 0:30:00"} {
		_, err := ParseClock(in)
		assert.ErrorIs(t, err, attendance.ErrInvalidTime, in)
	}
}

func TestParseDate(t *testing.T) {
	loc := seoul(t)

	d, err := ParseDate("2025. 6. 19.", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 19, 0, 0, 0, 0, loc), d)

	d, err = ParseDate("2025.06.19", loc)
	require.NoError(t, err)
	assert.Equal(t, 19, d.Day())

	for _, in := range []string{"2025-06-19", "2025. 2. 30.", "19. 6. 2025."} {
		_, err := ParseDate(in, loc)
		assert.ErrorIs(t, err, attendance.ErrInvalidDate, in)
	}
}

func TestParser_ShortForm(t *testing.T) {
	loc := seoul(t)
	p := NewParser(loc)

	rec, err := p.ParseLine(1, "2025. 6. 19.\t오후 4:30:00\t이재혁\t\t사원\t정규\t퇴근\t웹")
	require.NoError(t, err)

	web, ok := rec.(attendance.WebOriginRecord)
	require.True(t, ok)
	assert.Equal(t, "이재혁", web.DisplayName)
	assert.Equal(t, attendance.ModeCheckOut, web.Mode)
	assert.Equal(t, attendance.SourceWeb, web.Source)
	assert.Equal(t, time.Date(2025, 6, 19, 16, 30, 0, 0, loc), web.Timestamp)
	assert.Equal(t, time.Date(2025, 6, 19, 0, 0, 0, 0, loc), web.WorkDate)
}

func TestParser_LongForm(t *testing.T) {
	p := NewParser(seoul(t))

	rec, err := p.ParseLine(3, "2025. 6. 19.\t오전 8:55:12\tT-01\tU-77\t이재혁\t1001\t사원\t정규\t해제\t단말기\tOK")
	require.NoError(t, err)

	term, ok := rec.(attendance.TerminalOriginRecord)
	require.True(t, ok)
	assert.Equal(t, "T-01", term.TerminalID)
	assert.Equal(t, "U-77", term.ExternalUserRef)
	assert.Equal(t, "OK", term.ResultFlag)
	assert.Equal(t, "1001", term.EmployeeNumber)
	assert.Equal(t, attendance.ModeUnlock, term.Mode)
	assert.Equal(t, attendance.SourceTerminal, term.Source)
	assert.Equal(t, 3, term.Line)
}

func TestParser_MidnightRollover(t *testing.T) {
	loc := seoul(t)
	p := NewParser(loc)

	rec, err := p.ParseLine(1, "2025. 6. 20.\t오전 2:10:00\t이재혁\t\t사원\t정규\t퇴근\t웹")
	require.NoError(t, err)

	f := rec.Fields()
	assert.Equal(t, time.Date(2025, 6, 20, 2, 10, 0, 0, loc), f.Timestamp, "the timestamp keeps the literal date")
	assert.Equal(t, time.Date(2025, 6, 19, 0, 0, 0, 0, loc), f.WorkDate, "the work date rolls back one day")

	rec, err = p.ParseLine(2, "2025. 6. 20.\t오전 6:00:00\t이재혁\t\t사원\t정규\t출근\t웹")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 20, 0, 0, 0, 0, loc), rec.Fields().WorkDate)
}

func TestParser_CommaSeparated(t *testing.T) {
	p := NewParser(seoul(t))

	rec, err := p.ParseLine(1, "2025. 6. 19.,09:00:00,이재혁,,사원,정규,check-in,web")
	require.NoError(t, err)
	assert.Equal(t, attendance.ModeCheckIn, rec.Fields().Mode)
}

func TestParser_CollectsLineErrors(t *testing.T) {
	p := NewParser(seoul(t))

	lines := []string{
		"2025. 6. 19.\t오전 9:00:00\t이재혁\t\t사원\t정규\t출근\t웹",
		"",
		"2025. 6. 19.\t오전 9:00:00\t이재혁",
		"2025. 6. 19.\t오전 9:00:00\t\t\t사원\t정규\t출근\t웹",
		"2025. 6. 19.\t오전 9:00:00\t이재혁\t\t사원\t정규\t점심\t웹",
		"2025. 6. 19.\t오후 6:00:00\t이재혁\t\t사원\t정규\t퇴근\t웹",
	}
	records, errs := p.Parse(lines)

	assert.Len(t, records, 2)
	require.Len(t, errs, 3)
	assert.Equal(t, 3, errs[0].Line)
	assert.True(t, errors.Is(errs[0], attendance.ErrMalformedLine))
	assert.True(t, errors.Is(errs[1], attendance.ErrMissingName))
	assert.True(t, errors.Is(errs[2], attendance.ErrUnknownMode))
}

func TestParseMode(t *testing.T) {
	tests := map[string]attendance.Mode{
		"출근":        attendance.ModeCheckIn,
		"퇴근":        attendance.ModeCheckOut,
		"해제":        attendance.ModeUnlock,
		"경비":        attendance.ModeLock,
		"출입":        attendance.ModePassage,
		"Check-Out": attendance.ModeCheckOut,
	}
	for label, want := range tests {
		got, ok := ParseMode(label)
		assert.True(t, ok, label)
		assert.Equal(t, want, got, label)
	}

	_, ok := ParseMode("외출")
	assert.False(t, ok)
}
