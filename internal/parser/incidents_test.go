package parser

import "testing"

func TestSegmentErrors(t *testing.T) {
	text := `00:00:00.000 |I| start
    orphan continuation
00:00:01.000 |E| first error
    at A()
00:00:02.000 |I| info between

00:00:03.000 |E| second error
	at B()
    at C()
00:00:04.000 |W| trailing warning
`
	got := SegmentErrors(text)
	if len(got) != 2 {
		t.Fatalf("got %d incidents, want 2", len(got))
	}
	if len(got[0].Lines) != 2 {
		t.Errorf("first incident has %d lines, want 2", len(got[0].Lines))
	}
	if len(got[1].Lines) != 3 {
		t.Errorf("second incident has %d lines, want 3", len(got[1].Lines))
	}
	if got[1].Text() != "00:00:03.000 |E| second error\n\tat B()\n    at C()" {
		t.Errorf("Text() = %q", got[1].Text())
	}
}

func TestIncidentsSearch(t *testing.T) {
	in := SegmentErrors(sampleLog)
	tests := []struct {
		name  string
		terms []string
		want  bool
	}{
		{"first line", []string{"ResultFsTargetNotFound"}, true},
		{"continuation line", []string{"Process.Run"}, true},
		{"any term", []string{"nope", "Open()"}, true},
		{"outside incidents", []string{"Hid Configure"}, false},
		{"no terms", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := in.Search(tt.terms...); got != tt.want {
				t.Errorf("Search(%v) = %v, want %v", tt.terms, got, tt.want)
			}
		})
	}
}

func TestLatestSnippet(t *testing.T) {
	got, ok := SegmentErrors(sampleLog).LatestSnippet()
	if !ok {
		t.Fatal("LatestSnippet() not found")
	}
	want := "00:00:04.000 |E| HLE.FileSystem ResultFsTargetNotFound\n    at Ryujinx.HLE.FileSystem.Open()"
	if got != want {
		t.Errorf("LatestSnippet() = %q, want %q", got, want)
	}

	single, ok := SegmentErrors("00:00:00.000 |E| lonely").LatestSnippet()
	if !ok || single != "00:00:00.000 |E| lonely" {
		t.Errorf("LatestSnippet() = %q, %v", single, ok)
	}

	if _, ok := SegmentErrors("00:00:00.000 |I| fine").LatestSnippet(); ok {
		t.Error("LatestSnippet() found snippet in clean log")
	}
}
