package template

import (
	"strconv"
	"strings"
	"time"
)

// momentTokens lists the supported Moment.js format tokens. Longer tokens
// sharing a first letter come first so the scan is greedy.
var momentTokens = []string{
	"YYYY", "YY",
	"MMMM", "MMM", "MM", "M",
	"DDDD", "DDD", "Do", "DD", "D",
	"dddd", "ddd", "dd", "d",
	"HH", "H", "hh", "h", "kk", "k",
	"mm", "m",
	"ss", "s",
	"SSS", "SS", "S",
	"A", "a",
	"Q",
	"X", "x",
	"ZZ", "Z",
	"E",
	"WW", "W",
}

// FormatMoment formats t with a Moment.js style format string, e.g.
// "YYYY-MM-DD HH:mm". Text inside square brackets is copied literally, and
// characters that do not start a token are copied verbatim.
func FormatMoment(t time.Time, format string) string {
	var b strings.Builder
	b.Grow(len(format) + 8)

	for i := 0; i < len(format); {
		if format[i] == '[' {
			end := strings.IndexByte(format[i+1:], ']')
			if end >= 0 {
				b.WriteString(format[i+1 : i+1+end])
				i += end + 2
				continue
			}
		}

		tok := matchToken(format[i:])
		if tok == "" {
			b.WriteByte(format[i])
			i++
			continue
		}
		b.WriteString(formatToken(t, tok))
		i += len(tok)
	}

	return b.String()
}

func matchToken(s string) string {
	for _, tok := range momentTokens {
		if strings.HasPrefix(s, tok) {
			return tok
		}
	}
	return ""
}

func formatToken(t time.Time, tok string) string {
	switch tok {
	case "YYYY":
		return pad(t.Year(), 4)
	case "YY":
		return pad(t.Year()%100, 2)
	case "MMMM":
		return t.Month().String()
	case "MMM":
		return t.Month().String()[:3]
	case "MM":
		return pad(int(t.Month()), 2)
	case "M":
		return strconv.Itoa(int(t.Month()))
	case "DDDD":
		return pad(t.YearDay(), 3)
	case "DDD":
		return strconv.Itoa(t.YearDay())
	case "Do":
		return ordinal(t.Day())
	case "DD":
		return pad(t.Day(), 2)
	case "D":
		return strconv.Itoa(t.Day())
	case "dddd":
		return t.Weekday().String()
	case "ddd":
		return t.Weekday().String()[:3]
	case "dd":
		return t.Weekday().String()[:2]
	case "d":
		return strconv.Itoa(int(t.Weekday()))
	case "HH":
		return pad(t.Hour(), 2)
	case "H":
		return strconv.Itoa(t.Hour())
	case "hh":
		return pad(hour12(t.Hour()), 2)
	case "h":
		return strconv.Itoa(hour12(t.Hour()))
	case "kk":
		return pad(hour24(t.Hour()), 2)
	case "k":
		return strconv.Itoa(hour24(t.Hour()))
	case "mm":
		return pad(t.Minute(), 2)
	case "m":
		return strconv.Itoa(t.Minute())
	case "ss":
		return pad(t.Second(), 2)
	case "s":
		return strconv.Itoa(t.Second())
	case "SSS":
		return pad(t.Nanosecond()/int(time.Millisecond), 3)
	case "SS":
		return pad(t.Nanosecond()/(10*int(time.Millisecond)), 2)
	case "S":
		return strconv.Itoa(t.Nanosecond() / (100 * int(time.Millisecond)))
	case "A":
		if t.Hour() < 12 {
			return "AM"
		}
		return "PM"
	case "a":
		if t.Hour() < 12 {
			return "am"
		}
		return "pm"
	case "Q":
		return strconv.Itoa((int(t.Month())-1)/3 + 1)
	case "X":
		return strconv.FormatInt(t.Unix(), 10)
	case "x":
		return strconv.FormatInt(t.UnixMilli(), 10)
	case "ZZ":
		return t.Format("-0700")
	case "Z":
		return t.Format("-07:00")
	case "E":
		wd := int(t.Weekday())
		if wd == 0 {
			wd = 7
		}
		return strconv.Itoa(wd)
	case "WW":
		_, week := t.ISOWeek()
		return pad(week, 2)
	case "W":
		_, week := t.ISOWeek()
		return strconv.Itoa(week)
	}
	return tok
}

func pad(n, width int) string {
	s := strconv.Itoa(n)
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}

func hour12(h int) int {
	if h%12 == 0 {
		return 12
	}
	return h % 12
}

func hour24(h int) int {
	if h == 0 {
		return 24
	}
	return h
}

func ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}
