package flix

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const (
	defaultUserAgent      = "flix-scripts/0.1"
	defaultRequestTimeout = 15 * time.Second
	contentTypeJSON       = "application/json"
)

// Client talks to the Flix HTTP API. Every request is signed; the signing
// headers are produced in exactly one place (signedHeaders) so credential
// refresh can never be skipped or duplicated by a call site.
type Client struct {
	baseURL   *url.URL
	httpc     *http.Client
	creds     *Credentials
	userAgent string
	now       func() time.Time
}

// NewClient builds a Client for the given hostname ("host:port" or a full
// http/https URL).
func NewClient(hostname string) (*Client, error) {
	base, err := parseBaseURL(hostname)
	if err != nil {
		return nil, err
	}
	httpc := &http.Client{Timeout: defaultRequestTimeout}
	return &Client{
		baseURL:   base,
		httpc:     httpc,
		creds:     NewCredentials(httpc),
		userAgent: defaultUserAgent,
		now:       time.Now,
	}, nil
}

// Hostname returns the normalized base URL the client talks to.
func (c *Client) Hostname() string {
	return c.baseURL.String()
}

// Login authenticates against the service and primes the credential manager
// so subsequent requests can refresh transparently.
func (c *Client) Login(ctx context.Context, login, password string) (Credential, error) {
	return c.creds.Authenticate(ctx, c.baseURL.String(), login, password)
}

// Logout drops all credential state.
func (c *Client) Logout() {
	c.creds.Reset()
}

// signedHeaders is the single choke point through which every domain call
// obtains its outbound headers. The Date header and the signed timestamp
// reference the identical instant; signature validation on the server fails
// otherwise.
func (c *Client) signedHeaders(ctx context.Context, content any, path, method string) (http.Header, error) {
	ts := c.now().UTC()
	key, secret, err := c.creds.validCredential(ctx)
	if err != nil {
		return nil, err
	}
	token, err := sign(key, secret, method, path, content, contentTypeJSON, ts)
	if err != nil {
		return nil, err
	}
	headers := http.Header{}
	headers.Set("Authorization", token)
	headers.Set("Content-Type", contentTypeJSON)
	headers.Set("Date", ts.Format(http.TimeFormat))
	headers.Set("User-Agent", c.userAgent)
	return headers, nil
}

// Domain operations

// Shows retrieves the list of shows.
func (c *Client) Shows(ctx context.Context) ([]Show, error) {
	var payload struct {
		Shows []Show `json:"shows"`
	}
	if err := c.get(ctx, "/shows", &payload); err != nil {
		return nil, err
	}
	return payload.Shows, nil
}

// Episodes retrieves the episodes of a show.
func (c *Client) Episodes(ctx context.Context, showID int64) ([]Episode, error) {
	var payload struct {
		Episodes []Episode `json:"episodes"`
	}
	if err := c.get(ctx, fmt.Sprintf("/show/%d/episodes", showID), &payload); err != nil {
		return nil, err
	}
	return payload.Episodes, nil
}

// Sequences retrieves the sequences of a show, optionally scoped to an
// episode (episodeID > 0).
func (c *Client) Sequences(ctx context.Context, showID, episodeID int64) ([]Sequence, error) {
	path := fmt.Sprintf("/show/%d/sequences", showID)
	if episodeID > 0 {
		path = fmt.Sprintf("/show/%d/episode/%d/sequences", showID, episodeID)
	}
	var payload struct {
		Sequences []Sequence `json:"sequences"`
	}
	if err := c.get(ctx, path, &payload); err != nil {
		return nil, err
	}
	return payload.Sequences, nil
}

// Panels retrieves the panels of a sequence revision in timeline order.
func (c *Client) Panels(ctx context.Context, showID, sequenceID int64, revision int) ([]Panel, error) {
	path := fmt.Sprintf("/show/%d/sequence/%d/revision/%d/panels", showID, sequenceID, revision)
	var payload struct {
		Panels []Panel `json:"panels"`
	}
	if err := c.get(ctx, path, &payload); err != nil {
		return nil, err
	}
	return payload.Panels, nil
}

// Dialogues retrieves the dialogue entries of a sequence revision.
func (c *Client) Dialogues(ctx context.Context, showID, sequenceID int64, revision int) ([]Dialogue, error) {
	path := fmt.Sprintf("/show/%d/sequence/%d/revision/%d/dialogues", showID, sequenceID, revision)
	var payload struct {
		Dialogues []Dialogue `json:"dialogues"`
	}
	if err := c.get(ctx, path, &payload); err != nil {
		return nil, err
	}
	return payload.Dialogues, nil
}

// SequenceRevision retrieves a single sequence revision with its metadata.
func (c *Client) SequenceRevision(ctx context.Context, showID, sequenceID int64, revision int) (*SequenceRevision, error) {
	path := fmt.Sprintf("/show/%d/sequence/%d/revision/%d", showID, sequenceID, revision)
	var payload SequenceRevision
	if err := c.get(ctx, path, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Asset retrieves an asset with its media object renditions.
func (c *Client) Asset(ctx context.Context, assetID int64) (*Asset, error) {
	var payload Asset
	if err := c.get(ctx, fmt.Sprintf("/asset/%d", assetID), &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Chain retrieves the current state of an export chain.
func (c *Client) Chain(ctx context.Context, chainID int64) (*Chain, error) {
	var payload Chain
	if err := c.get(ctx, fmt.Sprintf("/chain/%d", chainID), &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// ExportScope identifies the sequence revision an export runs against.
// EpisodeID of zero means the show is not episodic.
type ExportScope struct {
	ShowID     int64
	EpisodeID  int64
	SequenceID int64
	Revision   int
}

func (s ExportScope) exportPath() string {
	if s.EpisodeID > 0 {
		return fmt.Sprintf("/show/%d/episode/%d/sequence/%d/revision/%d/export/quicktime",
			s.ShowID, s.EpisodeID, s.SequenceID, s.Revision)
	}
	return fmt.Sprintf("/show/%d/sequence/%d/revision/%d/export/quicktime",
		s.ShowID, s.SequenceID, s.Revision)
}

// quicktimeExportRequest is the export submission body.
type quicktimeExportRequest struct {
	IncludeDialogue bool              `json:"include_dialogue"`
	PanelRevisions  []RevisionedPanel `json:"panel_revisions"`
}

// StartQuicktimeExport submits an asynchronous quicktime render for the given
// panels and returns the id of the chain tracking it.
func (c *Client) StartQuicktimeExport(ctx context.Context, scope ExportScope, panels []RevisionedPanel, includeDialogue bool) (int64, error) {
	content := quicktimeExportRequest{
		IncludeDialogue: includeDialogue,
		PanelRevisions:  panels,
	}
	var payload struct {
		ChainID int64 `json:"chain_id"`
	}
	if err := c.post(ctx, scope.exportPath(), content, &payload); err != nil {
		return 0, err
	}
	return payload.ChainID, nil
}

// newRevisionRequest is the sequence revision creation body. Imported is
// always false for revisions authored through this client.
type newRevisionRequest struct {
	Comment          string            `json:"comment"`
	Imported         bool              `json:"imported"`
	MetaData         RevisionMetadata  `json:"meta_data"`
	RevisionedPanels []RevisionedPanel `json:"revisioned_panels"`
}

// NewSequenceRevision creates a sequence revision from the given panels and
// markers.
func (c *Client) NewSequenceRevision(ctx context.Context, showID, sequenceID int64, panels []RevisionedPanel, markers []Marker, comment string) (*SequenceRevision, error) {
	content := newRevisionRequest{
		Comment:  comment,
		Imported: false,
		MetaData: RevisionMetadata{
			Annotations:  []json.RawMessage{},
			AudioTimings: []json.RawMessage{},
			Highlights:   []json.RawMessage{},
			Markers:      markers,
		},
		RevisionedPanels: panels,
	}
	path := fmt.Sprintf("/show/%d/sequence/%d/revision", showID, sequenceID)
	var payload SequenceRevision
	if err := c.post(ctx, path, content, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// newPanelRequest is the blank panel creation body. Asset is omitted when the
// panel has no artwork yet.
type newPanelRequest struct {
	Duration int       `json:"duration"`
	Asset    *AssetRef `json:"asset,omitempty"`
}

// NewPanel creates a panel in a sequence. assetID of zero creates a blank
// panel.
func (c *Client) NewPanel(ctx context.Context, showID, sequenceID, assetID int64, duration int) (*Panel, error) {
	content := newPanelRequest{Duration: duration}
	if assetID > 0 {
		content.Asset = &AssetRef{AssetID: assetID}
	}
	path := fmt.Sprintf("/show/%d/sequence/%d/panel", showID, sequenceID)
	var payload Panel
	if err := c.post(ctx, path, content, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// DownloadMediaObject streams a media object's data into destPath.
func (c *Client) DownloadMediaObject(ctx context.Context, mediaObjectID int64, destPath string) error {
	path := fmt.Sprintf("/file/%d/data", mediaObjectID)
	resp, err := c.doRaw(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	file, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", destPath, err)
	}
	if _, err := io.Copy(file, resp.Body); err != nil {
		_ = file.Close()
		return fmt.Errorf("write %s: %w", destPath, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", destPath, err)
	}
	return nil
}

// Transport

func (c *Client) get(ctx context.Context, path string, dest any) error {
	return c.do(ctx, http.MethodGet, path, nil, dest)
}

func (c *Client) post(ctx context.Context, path string, content, dest any) error {
	return c.do(ctx, http.MethodPost, path, content, dest)
}

func (c *Client) do(ctx context.Context, method, path string, content, dest any) error {
	resp, err := c.doRaw(ctx, method, path, content)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response for %s: %w", path, err)
	}
	return nil
}

// doRaw signs and executes one request. The content value, not its encoded
// bytes, is handed to the signer: the canonical hash treats raw bytes and
// JSON-encodable values differently, and both sides must agree with the
// server.
func (c *Client) doRaw(ctx context.Context, method, path string, content any) (*http.Response, error) {
	headers, err := c.signedHeaders(ctx, content, path, method)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if content != nil {
		encoded, err := json.Marshal(content)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	reqURL := c.baseURL.ResolveReference(&url.URL{Path: path})
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header = headers

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%s %s: %w", method, path, ErrTokenRevoked)
	}
	if resp.StatusCode >= 400 {
		_ = resp.Body.Close()
		return nil, &StatusError{Method: method, Path: path, Code: resp.StatusCode}
	}
	return resp, nil
}

func parseBaseURL(hostname string) (*url.URL, error) {
	trimmed := strings.TrimSpace(hostname)
	if trimmed == "" {
		return nil, fmt.Errorf("hostname is empty")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse hostname %q: %w", hostname, err)
	}
	// Request paths are signed against the server root, so a base path
	// prefix cannot be honored.
	if u.Path != "" && u.Path != "/" {
		return nil, fmt.Errorf("hostname %q must not include a path", hostname)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return nil, fmt.Errorf("hostname %q must not include a query or fragment", hostname)
	}
	u.Path = ""
	return u, nil
}
