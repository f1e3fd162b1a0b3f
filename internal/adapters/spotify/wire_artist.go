package spotify

import (
	"context"
	"net/url"
	"strconv"

	"github.com/ewilliams-labs/soundmetrics/internal/core/domain"
)

// TopTracks returns the artist's top tracks for the configured market.
func (c *Client) TopTracks(ctx context.Context, artistID string) ([]domain.TrackStub, error) {
	params := url.Values{}
	params.Set("market", c.market)

	var body topTracksResponse
	path := "/artists/" + url.PathEscape(artistID) + "/top-tracks"
	if err := c.getJSON(ctx, "top tracks", path, params, &body); err != nil {
		return nil, err
	}

	tracks := make([]domain.TrackStub, 0, len(body.Tracks))
	for _, t := range body.Tracks {
		tracks = append(tracks, mapTrack(t))
	}
	return tracks, nil
}

// AlbumCount reports the total number of releases matching filter.
func (c *Client) AlbumCount(ctx context.Context, artistID string, filter domain.AlbumFilter) (int, error) {
	params := url.Values{}
	if filter.Type != "" {
		params.Set("include_groups", filter.Type)
	}
	if filter.Limit > 0 {
		params.Set("limit", strconv.Itoa(filter.Limit))
	}

	var body albumsResponse
	path := "/artists/" + url.PathEscape(artistID) + "/albums"
	if err := c.getJSON(ctx, "albums", path, params, &body); err != nil {
		return 0, err
	}
	return body.Total, nil
}
