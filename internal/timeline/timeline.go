package timeline

import (
	"sort"

	"github.com/nemroff/flix-scripts/internal/flix"
)

// ShotGroup is the ordered set of panels belonging to one named shot.
// Grouping is keyed by shot name: a marker name reappearing later on the
// timeline appends to the same group.
type ShotGroup struct {
	Name   string
	Panels []flix.RevisionedPanel
}

// PanelCount returns the number of panels in the group.
func (g ShotGroup) PanelCount() int {
	return len(g.Panels)
}

// MarkersFrom extracts the markers of a sequence revision sorted by start
// position. Duplicate start values collapse to the marker seen last, matching
// last-write-wins under sorted insertion.
func MarkersFrom(rev *flix.SequenceRevision) []flix.Marker {
	if rev == nil || len(rev.MetaData.Markers) == 0 {
		return nil
	}

	byStart := make(map[int]string, len(rev.MetaData.Markers))
	for _, m := range rev.MetaData.Markers {
		byStart[m.Start] = m.Name
	}

	markers := make([]flix.Marker, 0, len(byStart))
	for start, name := range byStart {
		markers = append(markers, flix.Marker{Start: start, Name: name})
	}
	sort.Slice(markers, func(i, j int) bool { return markers[i].Start < markers[j].Start })
	return markers
}

// FormatPanelForRevision converts a panel into its revisioned form. Pos is
// the panel's index in the full sequence timeline and passes through
// unchanged; the export API requires the original timeline position, not the
// position within any shot grouping.
func FormatPanelForRevision(p flix.Panel, pos int) flix.RevisionedPanel {
	return flix.RevisionedPanel{
		Dialogue:       p.Dialogue,
		Duration:       p.Duration,
		ID:             p.PanelID,
		RevisionNumber: p.RevisionNumber,
		Asset:          p.Asset,
		Pos:            pos,
	}
}

// AssignPanelsToMarkers partitions panels into shot groups by marker
// boundaries. Each panel occupies the half-open interval
// [cumulativeDurationBefore, cumulativeDurationBefore+duration) on the
// timeline and belongs to the marker with the greatest start that is <= its
// interval start. Panels lying before the first marker are not assigned.
//
// Groups are returned in order of first appearance on the timeline, with
// each group's panels in timeline order carrying their original sequence
// positions.
func AssignPanelsToMarkers(markers []flix.Marker, panels []flix.Panel) []ShotGroup {
	if len(markers) == 0 {
		return nil
	}

	var groups []ShotGroup
	index := make(map[string]int, len(markers))

	position := 0
	for i, p := range panels {
		marker, ok := markerAt(markers, position)
		position += p.Duration
		if !ok {
			continue
		}
		gi, seen := index[marker.Name]
		if !seen {
			gi = len(groups)
			index[marker.Name] = gi
			groups = append(groups, ShotGroup{Name: marker.Name})
		}
		groups[gi].Panels = append(groups[gi].Panels, FormatPanelForRevision(p, i))
	}
	return groups
}

// markerAt returns the marker governing the given timeline position: the one
// with the greatest start <= position.
func markerAt(markers []flix.Marker, position int) (flix.Marker, bool) {
	// First marker with start > position; the governing marker sits just
	// before it.
	i := sort.Search(len(markers), func(i int) bool { return markers[i].Start > position })
	if i == 0 {
		return flix.Marker{}, false
	}
	return markers[i-1], true
}
