package lyrics

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

var timeTag = regexp.MustCompile(`\[(\d{2}):(\d{2})\.(\d{2,3})\]`)

// Line is a single cue of a lyric timeline. Lines without a time are blank
// dividers and are always placed after the timed lines.
type Line struct {
	Time  time.Duration
	Timed bool
	Text  string
}

// Timeline is an ordered sequence of lines for one track. The timed lines
// form a prefix sorted by time.
type Timeline []Line

// Timed returns the number of timed lines.
func (tl Timeline) Timed() int {
	return sort.Search(len(tl), func(i int) bool { return !tl[i].Timed })
}

// Parse reads LRC formatted text. Each [mm:ss.xx] or [mm:ss.xxx] tag on a
// line produces a cue carrying the text that remains after all tags are
// removed. Blank lines produce untimed cues, lines without any time tag are
// skipped.
//
// Parse never fails, malformed input just results in fewer lines.
func Parse(raw string) Timeline {
	if strings.TrimSpace(raw) == "" {
		return Timeline{}
	}

	tl := Timeline{}
	for _, row := range strings.Split(raw, "\n") {
		if strings.TrimSpace(row) == "" {
			tl = append(tl, Line{})
			continue
		}
		tags := timeTag.FindAllStringSubmatch(row, -1)
		if len(tags) == 0 {
			continue
		}
		text := strings.TrimSpace(timeTag.ReplaceAllString(row, ""))
		for _, tag := range tags {
			tl = append(tl, Line{Time: tagTime(tag[1], tag[2], tag[3]), Timed: true, Text: text})
		}
	}

	sort.SliceStable(tl, func(i, j int) bool {
		a, b := tl[i], tl[j]
		if a.Timed != b.Timed {
			return a.Timed
		}
		return a.Time < b.Time
	})
	return tl
}

func tagTime(min, sec, frac string) time.Duration {
	m, _ := strconv.Atoi(min)
	s, _ := strconv.Atoi(sec)
	f, _ := strconv.Atoi(frac)
	unit := time.Second
	for range frac {
		unit /= 10
	}
	return time.Duration(m)*time.Minute + time.Duration(s)*time.Second + time.Duration(f)*unit
}
