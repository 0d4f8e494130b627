package caption

import (
	"strings"
	"testing"
	"time"
)

func TestExtractMergesCloseBlocks(t *testing.T) {
	doc := `1
00:00:01,000 --> 00:00:02,000
Hello

2
00:00:02,500 --> 00:00:03,000
world
`
	got := Extract(doc)
	if len(got) != 1 {
		t.Fatalf("expected 1 caption, got %d: %v", len(got), got)
	}
	want := Caption{Start: 1 * time.Second, End: 3 * time.Second, Text: "Hello world"}
	if got[0] != want {
		t.Errorf("expected %v, got %v", want, got[0])
	}
}

func TestExtractEmptyInput(t *testing.T) {
	for _, doc := range []string{"", "\n\n", "not a subtitle file"} {
		got := Extract(doc)
		if got == nil {
			t.Errorf("Extract(%q) returned nil, want empty slice", doc)
		}
		if len(got) != 0 {
			t.Errorf("Extract(%q) = %v, want no captions", doc, got)
		}
	}
}

func TestExtractMergeThreshold(t *testing.T) {
	tests := []struct {
		name      string
		secondEnd string
		wantCount int
	}{
		// end 10 - start 1 = 9 < 10: merge
		{"just inside window", "00:00:10,999", 1},
		// end 11 - start 1 = 10: separate
		{"at window", "00:00:11,000", 2},
		{"past window", "00:00:30,000", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := "1\n00:00:01,000 --> 00:00:02,000\nfirst\n\n" +
				"2\n00:00:09,000 --> " + tt.secondEnd + "\nsecond\n"
			got := Extract(doc)
			if len(got) != tt.wantCount {
				t.Fatalf("expected %d captions, got %d: %v", tt.wantCount, len(got), got)
			}
			if tt.wantCount == 2 && got[1].Start != 9*time.Second {
				t.Errorf("second caption: expected start 9s, got %v", got[1].Start)
			}
		})
	}
}

func TestExtractMergeWindowAnchorsOnPreviousStart(t *testing.T) {
	// each block ends within 10s of the block before it, but the merge window
	// is measured from the start of the accumulated caption
	doc := `1
00:00:00,000 --> 00:00:04,000
a

2
00:00:04,000 --> 00:00:08,000
b

3
00:00:08,000 --> 00:00:12,000
c

4
00:00:12,000 --> 00:00:16,000
d
`
	got := Extract(doc)
	want := []Caption{
		{Start: 0, End: 8 * time.Second, Text: "a b"},
		{Start: 8 * time.Second, End: 16 * time.Second, Text: "c d"},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d captions, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("caption %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestExtractRoundsStartUpAndEndDown(t *testing.T) {
	doc := "1\n00:00:01,200 --> 00:00:15,800\nrounded\n"
	got := Extract(doc)
	if len(got) != 1 {
		t.Fatalf("expected 1 caption, got %d", len(got))
	}
	if got[0].Start != 2*time.Second {
		t.Errorf("expected start 2s, got %v", got[0].Start)
	}
	if got[0].End != 15*time.Second {
		t.Errorf("expected end 15s, got %v", got[0].End)
	}
}

func TestExtractKeepsInvertedTimes(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want Caption
	}{
		{
			name: "sub-second block",
			doc:  "1\n00:00:01,500 --> 00:00:01,700\nblink\n",
			want: Caption{Start: 2 * time.Second, End: 1 * time.Second, Text: "blink"},
		},
		{
			name: "earlier block merged into later one",
			doc:  "1\n00:00:10,000 --> 00:00:12,000\nfirst\n\n2\n00:00:05,000 --> 00:00:06,000\nearlier\n",
			want: Caption{Start: 10 * time.Second, End: 6 * time.Second, Text: "first earlier"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.doc)
			if len(got) != 1 || got[0] != tt.want {
				t.Errorf("Extract() = %v, want [%v]", got, tt.want)
			}
		})
	}
}

func TestExtractCleansText(t *testing.T) {
	doc := "1\n00:00:01,000 --> 00:00:20,000\n<i>Hello</i>,   <font color=\"red\">brave</font>\n  new world  \n"
	got := Extract(doc)
	if len(got) != 1 {
		t.Fatalf("expected 1 caption, got %d", len(got))
	}
	if got[0].Text != "Hello, brave new world" {
		t.Errorf("expected cleaned text, got %q", got[0].Text)
	}
}

func TestExtractSkipsMalformedBlocks(t *testing.T) {
	doc := `1
00:00:01,000 --> 00:00:02,000
kept

2
1:2:3 --> broken
dropped

3
00:00:40,000 --> 00:00:45,000
also kept
`
	got, warnings := Scan(doc)
	if len(got) != 2 {
		t.Fatalf("expected 2 captions, got %d: %v", len(got), got)
	}
	if got[0].Text != "kept" || got[1].Text != "also kept" {
		t.Errorf("unexpected texts: %q, %q", got[0].Text, got[1].Text)
	}
	if len(warnings) == 0 {
		t.Fatal("expected a warning for the malformed block")
	}
	if warnings[0].Line != 5 {
		t.Errorf("expected warning on line 5, got %d", warnings[0].Line)
	}
	if !strings.Contains(warnings[0].Message, "timecode") {
		t.Errorf("expected timecode warning, got %q", warnings[0].Message)
	}
}

func TestScanWarningsDoNotChangeResult(t *testing.T) {
	doc := "garbage\n\n1\n00:00:01,000 --> 00:00:02,000\nhi\n\n7\n"
	captions, warnings := Scan(doc)
	plain := Extract(doc)
	if len(captions) != len(plain) || captions[0] != plain[0] {
		t.Errorf("Scan and Extract disagree: %v vs %v", captions, plain)
	}
	if len(warnings) != 2 {
		t.Errorf("expected 2 warnings, got %d: %v", len(warnings), warnings)
	}
}

func TestExtractLineEndingsAndBOM(t *testing.T) {
	doc := "\ufeff1\r\n00:00:01,000 --> 00:00:02,000\r\nfirst\r\n\r\n2\r\n00:00:30,000 --> 00:00:31,000\r\nsecond"
	got := Extract(doc)
	if len(got) != 2 {
		t.Fatalf("expected 2 captions, got %d: %v", len(got), got)
	}
	if got[1].Text != "second" {
		t.Errorf("expected final block without trailing newline, got %q", got[1].Text)
	}
}

func TestExtractBlocksWithoutBlankSeparator(t *testing.T) {
	doc := "1\n00:00:01,000 --> 00:00:02,000\nfirst\n2\n00:00:30,000 --> 00:00:31,000\nsecond\n"
	got := Extract(doc)
	if len(got) != 2 {
		t.Fatalf("expected 2 captions, got %d: %v", len(got), got)
	}
	if got[0].Text != "first" {
		t.Errorf("expected 'first', got %q", got[0].Text)
	}
}

func TestExtractNumericTextLine(t *testing.T) {
	doc := "1\n00:00:01,000 --> 00:00:20,000\nThe year was\n1984\n"
	got := Extract(doc)
	if len(got) != 1 || got[0].Text != "The year was 1984" {
		t.Errorf("expected numeric line kept as text, got %v", got)
	}
}

func TestExtractDoesNotLeaveDanglingSpaces(t *testing.T) {
	doc := "1\n00:00:01,000 --> 00:00:02,000\nHello\n\n2\n00:00:02,000 --> 00:00:03,000\n<br>\n"
	got := Extract(doc)
	if len(got) != 1 {
		t.Fatalf("expected 1 caption, got %d", len(got))
	}
	if got[0].Text != "Hello" {
		t.Errorf("expected %q, got %q", "Hello", got[0].Text)
	}
}
