package api

import (
	"context"
	"net/http"
)

// Collection fetches the user's owned characters. Cached per credential until
// the next roll (or admin change) invalidates it.
func (c *Client) Collection(ctx context.Context) (*Collection, error) {
	var col Collection
	if err := c.do(ctx, http.MethodGet, "/characters/collection", nil, nil, &col); err != nil {
		return nil, err
	}
	return &col, nil
}

// Character fetches one character by id.
func (c *Client) Character(ctx context.Context, id string) (*Character, error) {
	var ch Character
	if err := c.do(ctx, http.MethodGet, "/characters/"+id, nil, nil, &ch); err != nil {
		return nil, err
	}
	return &ch, nil
}

// Banners fetches the active rate-up banners.
func (c *Client) Banners(ctx context.Context) ([]Banner, error) {
	var banners []Banner
	if err := c.do(ctx, http.MethodGet, "/banners", nil, nil, &banners); err != nil {
		return nil, err
	}
	return banners, nil
}

// Roll performs a gacha roll on the given banner. The roll changes the
// collection and spends essence, so both cached reads are evicted.
func (c *Client) Roll(ctx context.Context, bannerID string) (*RollResult, error) {
	var result RollResult
	body := map[string]string{"bannerId": bannerID}
	if err := c.do(ctx, http.MethodPost, "/characters/roll", nil, body, &result); err != nil {
		return nil, err
	}
	c.http.Invalidate("/characters/collection", "/users/me")
	return &result, nil
}
