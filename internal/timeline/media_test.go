package timeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/nemroff/flix-scripts/internal/flix"
)

// fakeAssets serves canned assets and records lookups.
type fakeAssets struct {
	assets  map[int64]*flix.Asset
	failOn  int64
	failErr error
	lookups []int64
}

func (f *fakeAssets) Asset(_ context.Context, assetID int64) (*flix.Asset, error) {
	f.lookups = append(f.lookups, assetID)
	if assetID == f.failOn {
		if f.failErr != nil {
			return nil, f.failErr
		}
		return nil, fmt.Errorf("asset %d: boom", assetID)
	}
	asset, ok := f.assets[assetID]
	if !ok {
		return nil, fmt.Errorf("asset %d: not found", assetID)
	}
	return asset, nil
}

func renderedAsset(id int64) *flix.Asset {
	return &flix.Asset{
		AssetID: id,
		MediaObjects: map[string][]flix.MediaObject{
			"artwork":   {{ID: id*10 + 1, Name: fmt.Sprintf("art-%d.png", id)}, {ID: id*10 + 2, Name: "older.png"}},
			"thumbnail": {{ID: id*10 + 3, Name: fmt.Sprintf("thumb-%d.png", id)}},
		},
	}
}

func groupWithAssets(name string, assetIDs ...int64) ShotGroup {
	g := ShotGroup{Name: name}
	for i, id := range assetIDs {
		g.Panels = append(g.Panels, flix.RevisionedPanel{
			ID:             int64(200 + i),
			RevisionNumber: 3,
			Pos:            i,
			Asset:          &flix.AssetRef{AssetID: id},
		})
	}
	return g
}

func TestResolveMediaObjects_FirstArtworkAndThumbnail(t *testing.T) {
	fetcher := &fakeAssets{assets: map[int64]*flix.Asset{
		1: renderedAsset(1),
		2: renderedAsset(2),
	}}
	groups := []ShotGroup{groupWithAssets("sh010", 1, 2)}

	media, err := ResolveMediaObjects(context.Background(), fetcher, groups)
	if err != nil {
		t.Fatalf("ResolveMediaObjects returned error: %v", err)
	}

	shot, ok := media["sh010"]
	if !ok {
		t.Fatalf("media missing sh010: %#v", media)
	}
	if len(shot.Artwork) != 2 || len(shot.Thumbnails) != 2 {
		t.Fatalf("artwork/thumbnails = %d/%d, want 2/2", len(shot.Artwork), len(shot.Thumbnails))
	}

	first := shot.Artwork[0]
	if first.MediaObjectID != 11 || first.Name != "art-1.png" {
		t.Fatalf("artwork[0] = %#v, want the asset's first artwork rendition", first)
	}
	if first.PanelID != 200 || first.RevisionNumber != 3 || first.Pos != 0 {
		t.Fatalf("artwork[0] panel fields = %#v, want id=200 rev=3 pos=0", first)
	}
	if shot.Thumbnails[1].MediaObjectID != 23 {
		t.Fatalf("thumbnails[1].MediaObjectID = %d, want 23", shot.Thumbnails[1].MediaObjectID)
	}
}

func TestResolveMediaObjects_FailsAtomically(t *testing.T) {
	fetcher := &fakeAssets{
		assets: map[int64]*flix.Asset{1: renderedAsset(1)},
		failOn: 2,
	}
	groups := []ShotGroup{
		groupWithAssets("sh010", 1),
		groupWithAssets("sh020", 2, 1),
	}

	media, err := ResolveMediaObjects(context.Background(), fetcher, groups)
	if !errors.Is(err, ErrAssetResolution) {
		t.Fatalf("err = %v, want ErrAssetResolution", err)
	}
	if media != nil {
		t.Fatalf("media = %#v, want no partial result", media)
	}
}

func TestResolveMediaObjects_RevokedTokenIsBranchable(t *testing.T) {
	fetcher := &fakeAssets{
		failOn:  4,
		failErr: fmt.Errorf("GET /asset/4: %w", flix.ErrTokenRevoked),
	}
	groups := []ShotGroup{groupWithAssets("sh010", 4)}

	_, err := ResolveMediaObjects(context.Background(), fetcher, groups)
	if !errors.Is(err, ErrAssetResolution) {
		t.Fatalf("err = %v, want ErrAssetResolution", err)
	}
	if !errors.Is(err, flix.ErrTokenRevoked) {
		t.Fatalf("err = %v, want ErrTokenRevoked reachable for re-login prompts", err)
	}
}

func TestResolveMediaObjects_MissingRendition(t *testing.T) {
	bare := &flix.Asset{AssetID: 5, MediaObjects: map[string][]flix.MediaObject{}}
	fetcher := &fakeAssets{assets: map[int64]*flix.Asset{5: bare}}

	_, err := ResolveMediaObjects(context.Background(), fetcher, []ShotGroup{groupWithAssets("sh010", 5)})
	if !errors.Is(err, ErrAssetResolution) {
		t.Fatalf("err = %v, want ErrAssetResolution for asset without renditions", err)
	}
}

func TestResolveMediaObjects_PanelWithoutAsset(t *testing.T) {
	group := ShotGroup{Name: "sh010", Panels: []flix.RevisionedPanel{{ID: 1}}}
	fetcher := &fakeAssets{}

	_, err := ResolveMediaObjects(context.Background(), fetcher, []ShotGroup{group})
	if !errors.Is(err, ErrAssetResolution) {
		t.Fatalf("err = %v, want ErrAssetResolution for asset-less panel", err)
	}
	if len(fetcher.lookups) != 0 {
		t.Fatalf("lookups = %v, want none before failing", fetcher.lookups)
	}
}
