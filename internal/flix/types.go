package flix

import (
	"encoding/json"
)

// Show is a production tracked by the service.
type Show struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	TrackingCode string `json:"tracking_code"`
	Episodic     bool   `json:"episodic"`
}

// Episode groups sequences inside an episodic show.
type Episode struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	TrackingCode string `json:"tracking_code"`
}

// Sequence is a storyboarded scene within a show.
type Sequence struct {
	ID              int64  `json:"id"`
	Description     string `json:"description"`
	TrackingCode    string `json:"tracking_code"`
	RevisionsCount  int    `json:"revisions_count"`
	PanelRevisionID int64  `json:"panel_revision_id"`
}

// AssetRef points a panel at its visual asset.
type AssetRef struct {
	AssetID int64 `json:"asset_id"`
}

// Panel is the atomic storyboard unit: a drawing with a duration on the
// sequence timeline. Dialogue is carried opaquely; the client never inspects
// it, only round-trips it into revisioned panels.
type Panel struct {
	PanelID        int64           `json:"panel_id"`
	RevisionNumber int             `json:"revision_number"`
	Duration       int             `json:"duration"`
	Asset          *AssetRef       `json:"asset"`
	Dialogue       json.RawMessage `json:"dialogue,omitempty"`
}

// RevisionedPanel is a panel formatted for inclusion in a sequence revision
// or an export request. Pos is the panel's index in the full sequence
// timeline, not its index within any shot grouping.
type RevisionedPanel struct {
	Dialogue       json.RawMessage `json:"dialogue,omitempty"`
	Duration       int             `json:"duration"`
	ID             int64           `json:"id"`
	RevisionNumber int             `json:"revision_number"`
	Asset          *AssetRef       `json:"asset"`
	Pos            int             `json:"pos"`
}

// Marker is a named boundary on the panel timeline denoting the start of a
// shot. Start is in cumulative duration units from the head of the sequence.
type Marker struct {
	Start int    `json:"start"`
	Name  string `json:"name"`
}

// RevisionMetadata carries the auxiliary timeline data attached to a
// sequence revision.
type RevisionMetadata struct {
	Annotations  []json.RawMessage `json:"annotations"`
	AudioTimings []json.RawMessage `json:"audio_timings"`
	Highlights   []json.RawMessage `json:"highlights"`
	Markers      []Marker          `json:"markers"`
}

// SequenceRevision is one saved cut of a sequence.
type SequenceRevision struct {
	Revision int              `json:"revision"`
	Comment  string           `json:"comment"`
	Imported bool             `json:"imported"`
	MetaData RevisionMetadata `json:"meta_data"`
}

// MediaObject is a renditioned artifact (artwork, thumbnail, or rendered
// movie) attached to an asset.
type MediaObject struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Asset is a stored visual with its media object renditions keyed by kind
// ("artwork", "thumbnail", ...).
type Asset struct {
	AssetID      int64                    `json:"asset_id"`
	MediaObjects map[string][]MediaObject `json:"media_objects"`
}

// Dialogue is a line of dialogue attached to a panel.
type Dialogue struct {
	ID      int64  `json:"id"`
	PanelID int64  `json:"panel_id"`
	Text    string `json:"text"`
}

// Chain statuses as they appear on the wire.
const (
	ChainInProgress = "in progress"
	ChainCompleted  = "completed"
	ChainErrored    = "errored"
	ChainTimedOut   = "timed out"
)

// ChainResults carries the output of a completed chain.
type ChainResults struct {
	AssetID int64 `json:"assetID"`
}

// Chain is an asynchronous server-side job, polled by id until it reaches a
// terminal status. Results is meaningful only when Status is completed.
type Chain struct {
	ID      int64        `json:"id"`
	Status  string       `json:"status"`
	Results ChainResults `json:"results"`
}

// Done reports whether the chain reached a terminal status.
func (c Chain) Done() bool {
	switch c.Status {
	case ChainCompleted, ChainErrored, ChainTimedOut:
		return true
	}
	return false
}
