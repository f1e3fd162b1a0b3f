package spotify

import (
	"context"
	"net/url"
	"strings"

	"github.com/ewilliams-labs/soundmetrics/internal/core/domain"
)

// AudioFeatures fetches features for one batch of ids. The result is aligned
// with ids; entries the catalog cannot describe are nil.
func (c *Client) AudioFeatures(ctx context.Context, ids []string) ([]*domain.AudioFeatures, error) {
	if len(ids) == 0 {
		return []*domain.AudioFeatures{}, nil
	}

	params := url.Values{}
	params.Set("ids", strings.Join(ids, ","))

	var body audioFeaturesResponse
	if err := c.getJSON(ctx, "audio features", "/audio-features", params, &body); err != nil {
		return nil, err
	}

	byID := make(map[string]*spotifyAudioFeatures, len(body.AudioFeatures))
	for _, f := range body.AudioFeatures {
		if f != nil && f.ID != "" {
			byID[f.ID] = f
		}
	}

	out := make([]*domain.AudioFeatures, len(ids))
	for i, id := range ids {
		out[i] = mapFeatures(byID[id])
	}
	return out, nil
}
