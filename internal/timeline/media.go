package timeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/nemroff/flix-scripts/internal/flix"
)

// ErrAssetResolution indicates a shot's media objects could not be resolved.
// Resolution is all-or-nothing: a partially exported shot is unusable
// downstream, so no partial mapping is ever returned.
var ErrAssetResolution = errors.New("asset resolution failed")

// AssetFetcher resolves assets by id. Implemented by *flix.Client; tests
// substitute fakes.
type AssetFetcher interface {
	Asset(ctx context.Context, assetID int64) (*flix.Asset, error)
}

var _ AssetFetcher = (*flix.Client)(nil)

// MediaRef ties one media object rendition back to the panel it renders.
type MediaRef struct {
	Name           string
	PanelID        int64
	RevisionNumber int
	Pos            int
	MediaObjectID  int64
}

// ShotMedia collects the artwork and thumbnail renditions of every panel in
// a shot.
type ShotMedia struct {
	Artwork    []MediaRef
	Thumbnails []MediaRef
}

// ResolveMediaObjects resolves, for every panel in every shot group, the
// panel's asset and records its first artwork and first thumbnail media
// objects. Any failed lookup aborts the whole operation with
// ErrAssetResolution.
func ResolveMediaObjects(ctx context.Context, fetcher AssetFetcher, groups []ShotGroup) (map[string]ShotMedia, error) {
	media := make(map[string]ShotMedia, len(groups))

	for _, group := range groups {
		shot := media[group.Name]
		for _, panel := range group.Panels {
			if panel.Asset == nil {
				return nil, fmt.Errorf("%w: panel %d in shot %q has no asset", ErrAssetResolution, panel.ID, group.Name)
			}
			asset, err := fetcher.Asset(ctx, panel.Asset.AssetID)
			if err != nil {
				return nil, fmt.Errorf("%w: asset %d for panel %d: %w", ErrAssetResolution, panel.Asset.AssetID, panel.ID, err)
			}

			artwork, err := firstMediaObject(asset, "artwork")
			if err != nil {
				return nil, fmt.Errorf("%w: panel %d: %v", ErrAssetResolution, panel.ID, err)
			}
			thumbnail, err := firstMediaObject(asset, "thumbnail")
			if err != nil {
				return nil, fmt.Errorf("%w: panel %d: %v", ErrAssetResolution, panel.ID, err)
			}

			shot.Artwork = append(shot.Artwork, MediaRef{
				Name:           artwork.Name,
				PanelID:        panel.ID,
				RevisionNumber: panel.RevisionNumber,
				Pos:            panel.Pos,
				MediaObjectID:  artwork.ID,
			})
			shot.Thumbnails = append(shot.Thumbnails, MediaRef{
				Name:           thumbnail.Name,
				PanelID:        panel.ID,
				RevisionNumber: panel.RevisionNumber,
				Pos:            panel.Pos,
				MediaObjectID:  thumbnail.ID,
			})
		}
		media[group.Name] = shot
	}
	return media, nil
}

func firstMediaObject(asset *flix.Asset, kind string) (flix.MediaObject, error) {
	objects := asset.MediaObjects[kind]
	if len(objects) == 0 {
		return flix.MediaObject{}, fmt.Errorf("asset %d has no %s media object", asset.AssetID, kind)
	}
	return objects[0], nil
}
