package core

import (
	"reflect"
	"testing"
)

// ----------------------------------------------------------------------------
// Tag Tests
// ----------------------------------------------------------------------------

func TestSplitTags(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "empty", input: "", want: nil},
		{name: "whitespace only", input: "   ", want: nil},
		{name: "single", input: "Default", want: []string{"Default"}},
		{name: "two tags", input: "Blades - Skovlan|Blades In The Dark", want: []string{"Blades - Skovlan", "Blades In The Dark"}},
		{name: "trims pieces", input: " Default | Backer Names ", want: []string{"Default", "Backer Names"}},
		{name: "drops empty pieces", input: "Default||Backer Names|", want: []string{"Default", "Backer Names"}},
		{name: "preserves order and repeats", input: "B|A|B", want: []string{"B", "A", "B"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitTags(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitTags(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestJoinTags(t *testing.T) {
	if got := JoinTags(nil); got != "" {
		t.Errorf("JoinTags(nil) = %q, want empty", got)
	}
	if got := JoinTags([]string{"A", "B"}); got != "A|B" {
		t.Errorf("JoinTags = %q, want A|B", got)
	}
}

func TestRow_Tags(t *testing.T) {
	row := Row{Tags: "Blades - Akoros| Blades In The Dark"}

	if !row.HasTag("Blades In The Dark") {
		t.Error("HasTag should match a trimmed tag")
	}
	if row.HasTag("Blades") {
		t.Error("HasTag must not match a prefix")
	}

	row.SetTags([]string{"Default"})
	if row.Tags != "Default" {
		t.Errorf("SetTags: Tags = %q, want Default", row.Tags)
	}
}

// ----------------------------------------------------------------------------
// Weight Tests
// ----------------------------------------------------------------------------

func TestParseWeight(t *testing.T) {
	tests := []struct {
		input  string
		want   float64
		wantOK bool
	}{
		{"", DefaultWeight, true},
		{"  ", DefaultWeight, true},
		{"1.0", 1, true},
		{" 0.5 ", 0.5, true},
		{"2", 2, true},
		{"1e3", 1000, true},
		{"-1", -1, true}, // range is the validator's concern
		{"0", 0, true},
		{"heavy", 0, false},
		{"1,5", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"-Inf", 0, false},
		{"Infinity", 0, false},
		{"0x1p4", 0, false},
		{"0X10", 0, false},
		{"1_000", 0, false},
		{"+2.5", 2.5, true},
		{"2.5E-1", 0.25, true},
		{".5", 0.5, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseWeight(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseWeight(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ParseWeight(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatWeight(t *testing.T) {
	tests := []struct {
		input float64
		want  string
	}{
		{1, "1.0"},
		{0.25, "0.25"},
		{2.5, "2.5"},
		{100, "100.0"},
		{0.1, "0.1"},
		{1.0 / 3, "0.3333333333333333"},
	}

	for _, tt := range tests {
		if got := FormatWeight(tt.input); got != tt.want {
			t.Errorf("FormatWeight(%v) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFormatWeight_RoundTrip(t *testing.T) {
	for _, s := range []string{"1.0", "0.25", "3.0", "0.125", "12.75"} {
		w, ok := ParseWeight(s)
		if !ok {
			t.Fatalf("ParseWeight(%q) failed", s)
		}
		if got := FormatWeight(w); got != s {
			t.Errorf("FormatWeight(ParseWeight(%q)) = %q", s, got)
		}
	}
}

// ----------------------------------------------------------------------------
// Header Tests
// ----------------------------------------------------------------------------

func TestCleanHeader(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Name", "Name"},
		{"  Name  ", "Name"},
		{`="Name"`, "Name"},
		{"=Name", "Name"},
		{`"Name"`, "Name"},
		{"'Tags'", "Tags"},
	}

	for _, tt := range tests {
		if got := CleanHeader(tt.input); got != tt.want {
			t.Errorf("CleanHeader(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestMakeHeaderIndex(t *testing.T) {
	idx := MakeHeaderIndex([]string{"TAGS", " name ", "Position", "Gender", "name"})

	if idx["name"] != 1 {
		t.Errorf("name index = %d, want 1 (first occurrence wins)", idx["name"])
	}
	if idx["tags"] != 0 {
		t.Errorf("tags index = %d, want 0", idx["tags"])
	}
	if missing := idx.Missing(); len(missing) != 0 {
		t.Errorf("Missing() = %v, want none (Weight and Tags are optional)", missing)
	}
}

func TestHeaderIndex_Missing(t *testing.T) {
	idx := MakeHeaderIndex([]string{"Name", "Weight"})

	want := []string{"Position", "Gender"}
	if got := idx.Missing(); !reflect.DeepEqual(got, want) {
		t.Errorf("Missing() = %v, want %v", got, want)
	}
}

func TestHeaderIndex_Row(t *testing.T) {
	idx := MakeHeaderIndex([]string{"Gender", "Name", "Position"})

	got := idx.Row([]string{"male", "Angus", "first"})
	want := Row{Name: "Angus", Position: "first", Gender: "male"}
	if got != want {
		t.Errorf("Row() = %+v, want %+v", got, want)
	}

	// Short records yield empty fields rather than panicking.
	got = idx.Row([]string{"male"})
	if got.Name != "" || got.Gender != "male" {
		t.Errorf("short record Row() = %+v", got)
	}
}

func TestExportedName_Row(t *testing.T) {
	n := ExportedName{
		Name:     "Angus",
		Position: "first",
		Gender:   "male",
		Weight:   1,
		Tags:     []string{"Blades - Skovlan", "Blades In The Dark"},
	}

	want := Row{Name: "Angus", Position: "first", Gender: "male", Weight: "1.0", Tags: "Blades - Skovlan|Blades In The Dark"}
	if got := n.Row(); got != want {
		t.Errorf("Row() = %+v, want %+v", got, want)
	}
}
