package export

import (
	"strings"
	"testing"

	"traitcore/pkg/valuetable"
)

func TestRenderTableCSVEscapesNothingForNumericCells(t *testing.T) {
	table := &valuetable.Table{
		Schema: valuetable.EdgeEffectSchema(),
		Rows: []valuetable.Row{
			{"trait_id": 0, "edge_id": 0, "effect_size": 2.0},
			{"trait_id": 0, "edge_id": 1, "effect_size": -0.5},
		},
	}
	payload, contentType, err := renderTable(FormatCSV, table)
	if err != nil {
		t.Fatalf("render csv: %v", err)
	}
	if contentType != "text/csv" {
		t.Fatalf("unexpected content type %s", contentType)
	}
	want := "trait_id,edge_id,effect_size\n0,0,2\n0,1,-0.5\n"
	if string(payload) != want {
		t.Fatalf("csv mismatch:\n got %q\nwant %q", payload, want)
	}
}

func TestRenderTableJSONKeepsSchema(t *testing.T) {
	table := &valuetable.Table{Schema: valuetable.GeneticValueSchema(valuetable.LevelNode)}
	payload, contentType, err := renderTable(FormatJSON, table)
	if err != nil {
		t.Fatalf("render json: %v", err)
	}
	if contentType != "application/json" {
		t.Fatalf("unexpected content type %s", contentType)
	}
	if !strings.Contains(string(payload), `"node_id"`) {
		t.Fatalf("schema missing from payload: %s", payload)
	}
}

func TestRenderTableRejectsUnknownFormat(t *testing.T) {
	if _, _, err := renderTable("yaml", &valuetable.Table{}); err == nil {
		t.Fatal("expected unknown format to fail")
	}
}

func TestFormatCell(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{3, "3"},
		{int64(-7), "-7"},
		{1.25, "1.25"},
		{2.0, "2"},
		{"raw", "raw"},
	}
	for _, tc := range cases {
		if got := formatCell(tc.in); got != tc.want {
			t.Fatalf("formatCell(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
