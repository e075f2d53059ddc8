package timeline

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/nemroff/flix-scripts/internal/flix"
)

func unitPanels(durations ...int) []flix.Panel {
	panels := make([]flix.Panel, len(durations))
	for i, d := range durations {
		panels[i] = flix.Panel{
			PanelID:        int64(100 + i),
			RevisionNumber: 1,
			Duration:       d,
			Asset:          &flix.AssetRef{AssetID: int64(500 + i)},
		}
	}
	return panels
}

func positions(g ShotGroup) []int {
	out := make([]int, len(g.Panels))
	for i, p := range g.Panels {
		out[i] = p.Pos
	}
	return out
}

func TestMarkersFrom_SortsAndCollapsesDuplicates(t *testing.T) {
	rev := &flix.SequenceRevision{
		MetaData: flix.RevisionMetadata{
			Markers: []flix.Marker{
				{Start: 8, Name: "sh030"},
				{Start: 0, Name: "stale"},
				{Start: 0, Name: "sh010"}, // same start: last write wins
				{Start: 3, Name: "sh020"},
			},
		},
	}

	got := MarkersFrom(rev)
	want := []flix.Marker{
		{Start: 0, Name: "sh010"},
		{Start: 3, Name: "sh020"},
		{Start: 8, Name: "sh030"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("markers = %#v, want %#v", got, want)
	}

	if MarkersFrom(nil) != nil {
		t.Fatal("MarkersFrom(nil) should be nil")
	}
}

func TestAssignPanelsToMarkers_FloorAssignment(t *testing.T) {
	markers := []flix.Marker{
		{Start: 0, Name: "A"},
		{Start: 3, Name: "B"},
	}
	groups := AssignPanelsToMarkers(markers, unitPanels(1, 1, 1, 1, 1))

	if len(groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(groups))
	}
	if groups[0].Name != "A" || groups[1].Name != "B" {
		t.Fatalf("group order = %q,%q, want A,B", groups[0].Name, groups[1].Name)
	}
	if got := positions(groups[0]); !reflect.DeepEqual(got, []int{0, 1, 2}) {
		t.Fatalf("A positions = %v, want [0 1 2]", got)
	}
	if got := positions(groups[1]); !reflect.DeepEqual(got, []int{3, 4}) {
		t.Fatalf("B positions = %v, want [3 4]", got)
	}
}

func TestAssignPanelsToMarkers_PanelsBeforeFirstMarkerUnassigned(t *testing.T) {
	markers := []flix.Marker{{Start: 2, Name: "A"}}
	groups := AssignPanelsToMarkers(markers, unitPanels(1, 1, 1, 1))

	if len(groups) != 1 {
		t.Fatalf("groups = %d, want 1", len(groups))
	}
	// Panels at cumulative positions 0 and 1 precede the first marker.
	if got := positions(groups[0]); !reflect.DeepEqual(got, []int{2, 3}) {
		t.Fatalf("A positions = %v, want [2 3]", got)
	}
}

func TestAssignPanelsToMarkers_VariableDurations(t *testing.T) {
	// Panel intervals: [0,5) [5,7) [7,8). Marker B starts at 5.
	markers := []flix.Marker{
		{Start: 0, Name: "A"},
		{Start: 5, Name: "B"},
	}
	groups := AssignPanelsToMarkers(markers, unitPanels(5, 2, 1))

	if got := positions(groups[0]); !reflect.DeepEqual(got, []int{0}) {
		t.Fatalf("A positions = %v, want [0]", got)
	}
	if got := positions(groups[1]); !reflect.DeepEqual(got, []int{1, 2}) {
		t.Fatalf("B positions = %v, want [1 2]", got)
	}
}

func TestAssignPanelsToMarkers_RepeatedShotNameSharesGroup(t *testing.T) {
	// A reappears at position 4 after B; its panels append to the original
	// A group since grouping is keyed by shot name.
	markers := []flix.Marker{
		{Start: 0, Name: "A"},
		{Start: 2, Name: "B"},
		{Start: 4, Name: "A"},
	}
	groups := AssignPanelsToMarkers(markers, unitPanels(1, 1, 1, 1, 1, 1))

	if len(groups) != 2 {
		t.Fatalf("groups = %d, want 2 (A shared)", len(groups))
	}
	if got := positions(groups[0]); !reflect.DeepEqual(got, []int{0, 1, 4, 5}) {
		t.Fatalf("A positions = %v, want [0 1 4 5]", got)
	}
	if got := positions(groups[1]); !reflect.DeepEqual(got, []int{2, 3}) {
		t.Fatalf("B positions = %v, want [2 3]", got)
	}
}

func TestAssignPanelsToMarkers_NoMarkers(t *testing.T) {
	if groups := AssignPanelsToMarkers(nil, unitPanels(1, 1)); groups != nil {
		t.Fatalf("groups = %#v, want nil when no markers exist", groups)
	}
}

func TestFormatPanelForRevision_RoundTrip(t *testing.T) {
	dialogue := json.RawMessage(`{"text":"hello"}`)
	panel := flix.Panel{
		PanelID:        42,
		RevisionNumber: 7,
		Duration:       16,
		Asset:          &flix.AssetRef{AssetID: 99},
		Dialogue:       dialogue,
	}

	got := FormatPanelForRevision(panel, 13)
	if got.Pos != 13 {
		t.Fatalf("Pos = %d, want 13", got.Pos)
	}
	if got.ID != panel.PanelID || got.RevisionNumber != panel.RevisionNumber || got.Duration != panel.Duration {
		t.Fatalf("formatted = %#v, want fields passed through from %#v", got, panel)
	}
	if got.Asset != panel.Asset {
		t.Fatalf("Asset = %p, want same reference %p", got.Asset, panel.Asset)
	}
	if string(got.Dialogue) != string(dialogue) {
		t.Fatalf("Dialogue = %s, want %s", got.Dialogue, dialogue)
	}
}
