package template

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatMoment(t *testing.T) {
	ts := time.Date(2022, 4, 8, 15, 4, 5, 123_000_000, time.UTC)

	tests := []struct {
		format string
		want   string
	}{
		{"YYYYMMDD", "20220408"},
		{"YYYY-MM-DD", "2022-04-08"},
		{"YY/M/D", "22/4/8"},
		{"HH:mm:ss", "15:04:05"},
		{"H:m:s", "15:4:5"},
		{"hh A", "03 PM"},
		{"h a", "3 pm"},
		{"kk", "15"},
		{"SSS", "123"},
		{"SS", "12"},
		{"S", "1"},
		{"MMMM MMM", "April Apr"},
		{"dddd ddd dd d", "Friday Fri Fr 5"},
		{"Do", "8th"},
		{"DDD DDDD", "98 098"},
		{"Q", "2"},
		{"E", "5"},
		{"W WW", "14 14"},
		{"Z ZZ", "+00:00 +0000"},
		{"X", "1649430245"},
		{"x", "1649430245123"},
		{"[YYYY]YYYY", "YYYY2022"},
		{"YYYY_MM_DD-", "2022_04_08-"},
		{"[_", "[_"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatMoment(ts, tt.format))
		})
	}
}

func TestFormatMoment_MidnightHours(t *testing.T) {
	ts := time.Date(2022, 1, 1, 0, 30, 0, 0, time.UTC)

	assert.Equal(t, "12 AM", FormatMoment(ts, "h A"))
	assert.Equal(t, "24", FormatMoment(ts, "k"))
	assert.Equal(t, "00", FormatMoment(ts, "HH"))
}

func TestOrdinal(t *testing.T) {
	tests := map[int]string{
		1: "1st", 2: "2nd", 3: "3rd", 4: "4th",
		11: "11th", 12: "12th", 13: "13th",
		21: "21st", 22: "22nd", 23: "23rd", 31: "31st",
	}
	for n, want := range tests {
		assert.Equal(t, want, ordinal(n))
	}
}
