package api

import (
	"context"
	"net/http"
)

// EssenceTapState fetches the clicker minigame state.
func (c *Client) EssenceTapState(ctx context.Context) (*EssenceTapState, error) {
	var state EssenceTapState
	if err := c.do(ctx, http.MethodGet, "/essence-tap/state", nil, nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// Tap submits a batch of taps. Taps mint essence, so the tap state and the
// profile are both stale afterwards.
func (c *Client) Tap(ctx context.Context, taps int) (*TapResult, error) {
	var result TapResult
	body := map[string]int{"taps": taps}
	if err := c.do(ctx, http.MethodPost, "/essence-tap/click", nil, body, &result); err != nil {
		return nil, err
	}
	c.http.Invalidate("/essence-tap", "/users/me")
	return &result, nil
}

// UpgradeTap buys the next tap-power upgrade.
func (c *Client) UpgradeTap(ctx context.Context) (*EssenceTapState, error) {
	var state EssenceTapState
	if err := c.do(ctx, http.MethodPost, "/essence-tap/upgrade", nil, nil, &state); err != nil {
		return nil, err
	}
	c.http.Invalidate("/essence-tap", "/users/me")
	return &state, nil
}

// FishingState fetches the fishing minigame state.
func (c *Client) FishingState(ctx context.Context) (*FishingState, error) {
	var state FishingState
	if err := c.do(ctx, http.MethodGet, "/fishing/state", nil, nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// FishingInventory fetches the caught-fish inventory.
func (c *Client) FishingInventory(ctx context.Context) (*FishingInventory, error) {
	var inv FishingInventory
	if err := c.do(ctx, http.MethodGet, "/fishing/inventory", nil, nil, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

// Cast casts the line. "/fishing" deliberately evicts state and inventory in
// one stroke.
func (c *Client) Cast(ctx context.Context) (*FishingCatch, error) {
	var catch FishingCatch
	if err := c.do(ctx, http.MethodPost, "/fishing/cast", nil, nil, &catch); err != nil {
		return nil, err
	}
	c.http.Invalidate("/fishing")
	return &catch, nil
}

// SellFish sells the given fish for essence.
func (c *Client) SellFish(ctx context.Context, fishIDs []string) (*SellResult, error) {
	var result SellResult
	body := map[string][]string{"fishIds": fishIDs}
	if err := c.do(ctx, http.MethodPost, "/fishing/sell", nil, body, &result); err != nil {
		return nil, err
	}
	c.http.Invalidate("/fishing", "/users/me")
	return &result, nil
}
