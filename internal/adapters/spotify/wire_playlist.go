package spotify

import (
	"context"
	"net/url"
	"strconv"

	"github.com/ewilliams-labs/soundmetrics/internal/core/domain"
)

const playlistTrackFields = "items(track(id,name,popularity,artists(id,name),album(name)))"

// PlaylistTracks returns up to limit tracks from a playlist. Removed or local
// tracks come back as null and are skipped.
func (c *Client) PlaylistTracks(ctx context.Context, playlistID string, limit int) ([]domain.TrackStub, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("fields", playlistTrackFields)

	var body playlistTracksResponse
	path := "/playlists/" + url.PathEscape(playlistID) + "/tracks"
	if err := c.getJSON(ctx, "playlist tracks", path, params, &body); err != nil {
		return nil, err
	}

	tracks := make([]domain.TrackStub, 0, len(body.Items))
	for _, item := range body.Items {
		if item.Track == nil || item.Track.ID == "" {
			continue
		}
		tracks = append(tracks, mapTrack(*item.Track))
	}
	return tracks, nil
}
