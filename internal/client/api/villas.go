package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/iudanet/villabook/pkg/api"
)

// VillaQuery фильтры каталога вилл
type VillaQuery struct {
	Location string
	Guests   int
}

func (q VillaQuery) values() url.Values {
	v := url.Values{}
	if q.Location != "" {
		v.Set("location", q.Location)
	}
	if q.Guests > 0 {
		v.Set("guests", strconv.Itoa(q.Guests))
	}
	return v
}

// ListVillas returns the villas matching q.
func (c *Client) ListVillas(ctx context.Context, q VillaQuery) ([]api.Villa, error) {
	env, err := Get[[]api.Villa](ctx, c, "/villas", &RequestConfig{Query: q.values()})
	if err != nil {
		return nil, fmt.Errorf("list villas: %w", err)
	}
	villas, err := dataOf("GET /villas", env)
	if err != nil {
		return nil, fmt.Errorf("list villas: %w", err)
	}
	return villas, nil
}

// GetVilla returns a single villa.
func (c *Client) GetVilla(ctx context.Context, id string) (*api.Villa, error) {
	path := "/villas/" + url.PathEscape(id)
	env, err := Get[api.Villa](ctx, c, path, nil)
	if err != nil {
		return nil, fmt.Errorf("get villa %s: %w", id, err)
	}
	villa, err := dataOf("GET "+path, env)
	if err != nil {
		return nil, fmt.Errorf("get villa %s: %w", id, err)
	}
	return &villa, nil
}
