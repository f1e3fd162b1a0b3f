package spotify

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/ewilliams-labs/soundmetrics/internal/core/domain"
)

const artistSearchLimit = 5

// SearchArtist resolves a free-text name to the closest catalog artist.
func (c *Client) SearchArtist(ctx context.Context, name string) (domain.ArtistStub, error) {
	term := searchTerm(name)
	if term == "" {
		return domain.ArtistStub{}, domain.InvalidInputError{Field: "artist", Reason: "must not be empty"}
	}

	params := url.Values{}
	params.Set("q", term)
	params.Set("type", "artist")
	params.Set("limit", strconv.Itoa(artistSearchLimit))

	var body artistSearchResponse
	if err := c.getJSON(ctx, "search artist", "/search", params, &body); err != nil {
		return domain.ArtistStub{}, err
	}

	match, ok := bestArtistMatch(term, body.Artists.Items)
	if !ok {
		return domain.ArtistStub{}, fmt.Errorf("spotify adapter: artist %q: %w", name, domain.ErrNotFound)
	}
	c.log().Debug("spotify adapter: artist resolved", "query", name, "id", match.ID, "name", match.Name)
	return mapArtist(match), nil
}

// SearchPlaylists finds playlists tagged with genre. Null items in the
// response are skipped.
func (c *Client) SearchPlaylists(ctx context.Context, genre string, limit int) ([]domain.PlaylistStub, error) {
	params := url.Values{}
	params.Set("q", "genre:"+genre)
	params.Set("type", "playlist")
	params.Set("limit", strconv.Itoa(limit))

	var body playlistSearchResponse
	if err := c.getJSON(ctx, "search playlists", "/search", params, &body); err != nil {
		return nil, err
	}

	playlists := make([]domain.PlaylistStub, 0, len(body.Playlists.Items))
	for _, item := range body.Playlists.Items {
		if item == nil || item.ID == "" {
			continue
		}
		playlists = append(playlists, mapPlaylist(*item))
	}
	return playlists, nil
}
