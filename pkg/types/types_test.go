package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeStringFromString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    TimeString
		wantErr bool
	}{
		{name: "valid morning", input: "09:30", want: "09:30"},
		{name: "valid midnight", input: "00:00", want: "00:00"},
		{name: "valid end of day", input: "23:59", want: "23:59"},
		{name: "invalid hour", input: "25:00", wantErr: true},
		{name: "invalid minutes", input: "10:61", wantErr: true},
		{name: "missing leading zero rejected", input: "9:30", wantErr: true},
		{name: "garbage", input: "abc", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewTimeStringFromString(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTimeFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeString_AddMinutes(t *testing.T) {
	tests := []struct {
		name    string
		start   TimeString
		minutes int
		want    TimeString
	}{
		{name: "within hour", start: "10:00", minutes: 30, want: "10:30"},
		{name: "across hour", start: "10:45", minutes: 30, want: "11:15"},
		{name: "clamped at end of day", start: "23:30", minutes: 120, want: "23:59"},
		{name: "negative clamped at midnight", start: "00:10", minutes: -60, want: "00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.start.AddMinutes(tt.minutes)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeString_Compare(t *testing.T) {
	assert.True(t, TimeString("09:00").IsBefore("17:00"))
	assert.False(t, TimeString("17:00").IsBefore("17:00"))
	assert.True(t, TimeString("17:01").IsAfter("17:00"))
}

func TestTimeString_Scan(t *testing.T) {
	var ts TimeString
	require.NoError(t, ts.Scan("19:00:00"))
	assert.Equal(t, TimeString("19:00"), ts)

	require.NoError(t, ts.Scan([]byte("08:15")))
	assert.Equal(t, TimeString("08:15"), ts)

	require.NoError(t, ts.Scan(time.Date(2025, 5, 1, 14, 45, 0, 0, time.UTC)))
	assert.Equal(t, TimeString("14:45"), ts)
}

func TestNewTimeRangeFromString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    TimeRange
		wantErr bool
	}{
		{name: "valid", input: "19:00-21:00", want: TimeRange{Start: "19:00", End: "21:00"}},
		{name: "valid with spaces", input: "08:00 - 10:00", want: TimeRange{Start: "08:00", End: "10:00"}},
		{name: "start equals end", input: "10:00-10:00", wantErr: true},
		{name: "start after end", input: "12:00-10:00", wantErr: true},
		{name: "missing dash", input: "10:00", wantErr: true},
		{name: "bad start", input: "xx:00-10:00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewTimeRangeFromString(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRangeFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeRange_Overlaps(t *testing.T) {
	mustRange := func(s string) TimeRange {
		r, err := NewTimeRangeFromString(s)
		require.NoError(t, err)
		return r
	}

	tests := []struct {
		name string
		a    string
		b    string
		want bool
	}{
		{name: "real overlap", a: "11:30-12:00", b: "11:20-11:40", want: true},
		{name: "adjacent before", a: "11:30-12:00", b: "11:00-11:30", want: false},
		{name: "adjacent after", a: "11:30-12:00", b: "12:00-12:30", want: false},
		{name: "contained", a: "10:00-14:00", b: "11:00-12:00", want: true},
		{name: "disjoint", a: "08:00-09:00", b: "19:00-21:00", want: false},
		{name: "identical", a: "19:00-21:00", b: "19:00-21:00", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := mustRange(tt.a), mustRange(tt.b)
			assert.Equal(t, tt.want, a.Overlaps(b))
			assert.Equal(t, tt.want, b.Overlaps(a))
		})
	}
}

func TestTimeRange_DurationMinutes(t *testing.T) {
	r, err := NewTimeRangeFromString("19:00-21:00")
	require.NoError(t, err)

	minutes, err := r.DurationMinutes()
	require.NoError(t, err)
	assert.Equal(t, 120, minutes)
}
