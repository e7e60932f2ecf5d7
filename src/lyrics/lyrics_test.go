package lyrics

import (
	"reflect"
	"testing"
	"time"
)

func TestParseTagTime(t *testing.T) {
	cases := []struct {
		tag  string
		time time.Duration
	}{
		{"[01:02.50]", 62500 * time.Millisecond},
		{"[00:00.00]", 0},
		{"[00:07.05]", 7050 * time.Millisecond},
		{"[00:07.050]", 7050 * time.Millisecond},
		{"[02:30.125]", 150125 * time.Millisecond},
		{"[10:00.999]", 600999 * time.Millisecond},
	}
	for _, c := range cases {
		tl := Parse(c.tag + "text")
		if len(tl) != 1 {
			t.Fatalf("%s: expected one line, got %#v", c.tag, tl)
		}
		if !tl[0].Timed || tl[0].Time != c.time {
			t.Fatalf("%s: expected %v, got %#v", c.tag, c.time, tl[0])
		}
	}
}

func TestParseOrdering(t *testing.T) {
	raw := "[ar:Radiohead]\n" +
		"[00:10.00]third\n" +
		"\n" +
		"[00:05.00]first\n" +
		"untagged text\n" +
		"[00:05.00]second\n" +
		"[00:20.00][00:01.00] both\r\n"
	expected := Timeline{
		{Time: time.Second, Timed: true, Text: "both"},
		{Time: 5 * time.Second, Timed: true, Text: "first"},
		{Time: 5 * time.Second, Timed: true, Text: "second"},
		{Time: 10 * time.Second, Timed: true, Text: "third"},
		{Time: 20 * time.Second, Timed: true, Text: "both"},
		{},
		{},
	}
	if tl := Parse(raw); !reflect.DeepEqual(tl, expected) {
		t.Fatalf("Unexpected timeline:\n%#v\nexpected:\n%#v", tl, expected)
	}
}

func TestParseTagsAnywhere(t *testing.T) {
	tl := Parse("hello [00:03.00] world")
	expected := Timeline{{Time: 3 * time.Second, Timed: true, Text: "hello  world"}}
	if !reflect.DeepEqual(tl, expected) {
		t.Fatalf("Unexpected timeline: %#v", tl)
	}
}

func TestParseEmpty(t *testing.T) {
	for _, raw := range []string{"", "  \n\t"} {
		if tl := Parse(raw); len(tl) != 0 {
			t.Fatalf("Expected an empty timeline for %q, got %#v", raw, tl)
		}
	}
	if tl := Parse("[ti:nothing timed]\nplain"); len(tl) != 0 {
		t.Fatalf("Expected an empty timeline, got %#v", tl)
	}
}

func TestTimed(t *testing.T) {
	tl := Parse("[00:01.00]a\n\n[00:02.00]b\n")
	if n := tl.Timed(); n != 2 {
		t.Fatalf("Expected 2 timed lines, got %d", n)
	}
	if n := (Timeline{}).Timed(); n != 0 {
		t.Fatalf("Expected 0 timed lines, got %d", n)
	}
}
