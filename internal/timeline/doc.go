// Package timeline partitions a sequence revision's panel timeline into
// per-shot groupings.
//
// # Overview
//
// A sequence revision carries an ordered list of panels, each with a duration
// in timeline units, and a set of markers naming the shot that starts at a
// given cumulative position. This package maps panels onto shots and resolves
// the media objects already attached to each panel's asset.
//
// # Assignment Semantics
//
// Each panel occupies the half-open interval
// [cumulativeDurationBefore, cumulativeDurationBefore+duration). A panel
// belongs to the marker with the greatest start <= its interval start (floor
// assignment). Panels before the first marker belong to no shot and are
// dropped. Groups are keyed by shot name: when the same name appears twice on
// the timeline separated by another marker, the later panels append to the
// original group. Shot names are assumed unique per shot across the timeline.
//
// Formatted panels keep their position in the full sequence timeline, not
// their index within the shot group; the export API requires the former.
//
// # Media Resolution
//
// ResolveMediaObjects is all-or-nothing: one failed asset lookup (or an asset
// missing its artwork or thumbnail rendition) aborts the whole mapping with
// ErrAssetResolution and returns nothing, since a partially resolved shot is
// unusable by the export flow downstream.
package timeline
