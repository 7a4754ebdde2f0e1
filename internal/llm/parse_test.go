package llm

import (
	"testing"

	"novel-translator/internal/glossary"
)

func TestParseProposedEntries(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
		wantErr bool
	}{
		{
			name:    "plain array",
			content: `[{"original_term":"林冲","translation":"Lin Chong","category":"character"}]`,
			want:    1,
		},
		{
			name: "fenced with language tag",
			content: "```json\n" +
				`[{"original_term":"梁山泊","translation":"Mount Liang","category":"place"}]` +
				"\n```",
			want: 1,
		},
		{
			name: "prose around the array",
			content: "Here are the terms I found:\n" +
				`[{"original_term":"禁军","translation":"Imperial Guard","category":"organization"}]` +
				"\nLet me know if you need more.",
			want: 1,
		},
		{
			name: "malformed element skipped",
			content: `[{"original_term":"高俅","translation":"Gao Qiu","category":"character"},` +
				`"not an object",` +
				`{"original_term":"鲁智深","translation":"Lu Zhishen","category":"character"}]`,
			want: 2,
		},
		{
			name:    "empty term skipped",
			content: `[{"original_term":"  ","translation":"x","category":"character"}]`,
			want:    0,
		},
		{
			name:    "empty array",
			content: `[]`,
			want:    0,
		},
		{
			name:    "no array at all",
			content: "I could not find any glossary terms.",
			wantErr: true,
		},
		{
			name:    "broken json",
			content: `[{"original_term": "x"`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseProposedEntries(tt.content)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(got) != tt.want {
				t.Errorf("got %d entries, want %d", len(got), tt.want)
			}
		})
	}
}

func TestParseProposedEntriesInvalidCategory(t *testing.T) {
	got, err := ParseProposedEntries(
		`[{"original_term":"神行法","translation":"Divine Travel Art","category":"magic"}]`)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d entries, want 1", len(got))
	}
	if got[0].Category != glossary.CategoryOther {
		t.Errorf("unknown category mapped to %q, want other", got[0].Category)
	}
}

func TestParseProposedEntriesTrimsFields(t *testing.T) {
	got, err := ParseProposedEntries(
		`[{"original_term":" 林冲 ","translation":" Lin Chong ","category":"character"}]`)
	if err != nil {
		t.Fatal(err)
	}
	if got[0].OriginalTerm != "林冲" || got[0].Translation != "Lin Chong" {
		t.Errorf("fields not trimmed: %+v", got[0])
	}
}
