package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	gacha "github.com/kille250/gacha-sub011"
	"golang.org/x/sync/errgroup"
)

// importConcurrency bounds parallel character creation during a booru import.
const importConcurrency = 4

// AdminCharacters fetches a page of the character roster.
func (c *Client) AdminCharacters(ctx context.Context, page, perPage int) (*CharacterPage, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("perPage", strconv.Itoa(perPage))

	var result CharacterPage
	if err := c.do(ctx, http.MethodGet, "/admin/characters", query, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AdminCreateCharacter adds a character to the roster.
func (c *Client) AdminCreateCharacter(ctx context.Context, input CharacterInput) (*Character, error) {
	ch, err := c.createCharacter(ctx, input)
	if err != nil {
		return nil, err
	}
	c.invalidateRoster()
	return ch, nil
}

// AdminUpdateCharacter updates a roster character.
func (c *Client) AdminUpdateCharacter(ctx context.Context, id string, input CharacterInput) (*Character, error) {
	var ch Character
	if err := c.do(ctx, http.MethodPut, "/admin/characters/"+id, nil, input, &ch); err != nil {
		return nil, err
	}
	c.invalidateRoster()
	return &ch, nil
}

// AdminDeleteCharacter removes a roster character.
func (c *Client) AdminDeleteCharacter(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/admin/characters/"+id, nil, nil, nil); err != nil {
		return err
	}
	c.invalidateRoster()
	return nil
}

// createCharacter posts without invalidating, so bulk imports can evict once
// at the end instead of per character.
func (c *Client) createCharacter(ctx context.Context, input CharacterInput) (*Character, error) {
	var ch Character
	if err := c.do(ctx, http.MethodPost, "/admin/characters", nil, input, &ch); err != nil {
		return nil, err
	}
	return &ch, nil
}

func (c *Client) invalidateRoster() {
	c.http.Invalidate("/admin/characters", "/characters")
}

// BooruClient fetches posts from an external image board. It carries its own
// gacha client with a conservative rate limit so imports stay polite, and a
// longer TTL since board listings barely move.
type BooruClient struct {
	http    *gacha.Client
	baseURL string
}

// NewBooruClient creates a client for the image board at baseURL.
func NewBooruClient(baseURL string, opts ...gacha.Option) *BooruClient {
	defaults := []gacha.Option{
		gacha.WithRateLimiter(2, 500*time.Millisecond),
		gacha.WithRouteTTLs([]gacha.TTLRule{
			{Pattern: "/posts", TTL: 5 * time.Minute},
		}, time.Minute),
	}
	return &BooruClient{
		http:    gacha.New(append(defaults, opts...)...),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Posts searches the board for posts matching every tag.
func (b *BooruClient) Posts(ctx context.Context, tags []string, limit int) ([]BooruPost, error) {
	query := url.Values{}
	query.Set("tags", strings.Join(tags, " "))
	query.Set("limit", strconv.Itoa(limit))

	resp, err := b.http.Get(ctx, b.baseURL+"/posts.json?"+query.Encode())
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return nil, decodeAPIError(resp)
	}

	var posts []BooruPost
	if err := json.NewDecoder(resp.Body).Decode(&posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// ImportFromBooru pulls matching posts from the board and creates a roster
// character per post, a few at a time. The roster caches are evicted once at
// the end; a partial import still evicts because some creates succeeded.
func (c *Client) ImportFromBooru(ctx context.Context, board *BooruClient, series string, tags []string, limit int) ([]Character, error) {
	posts, err := board.Posts(ctx, tags, limit)
	if err != nil {
		return nil, err
	}

	var (
		mu      sync.Mutex
		created []Character
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(importConcurrency)

	for _, post := range posts {
		post := post
		g.Go(func() error {
			input := CharacterInput{
				Name:       characterNameFromPost(post),
				Series:     series,
				Rarity:     rarityFromScore(post.Score),
				ImageURL:   post.FileURL,
				OutfitTags: outfitTags(post.Tags),
			}
			ch, err := c.createCharacter(gctx, input)
			if err != nil {
				return err
			}
			mu.Lock()
			created = append(created, *ch)
			mu.Unlock()
			return nil
		})
	}

	importErr := g.Wait()
	if len(created) > 0 {
		c.invalidateRoster()
	}
	if importErr != nil {
		return created, importErr
	}
	return created, nil
}

// characterNameFromPost picks a display name from the post's tags, falling
// back to the post id.
func characterNameFromPost(post BooruPost) string {
	for _, tag := range post.Tags {
		if strings.HasPrefix(tag, "character:") {
			return humanizeTag(strings.TrimPrefix(tag, "character:"))
		}
	}
	for _, tag := range post.Tags {
		if !strings.Contains(tag, ":") {
			return humanizeTag(tag)
		}
	}
	return fmt.Sprintf("post-%d", post.ID)
}

// outfitTags keeps the outfit_ prefixed tags the collection UI renders as
// costume badges.
func outfitTags(tags []string) []string {
	var outfits []string
	for _, tag := range tags {
		if strings.HasPrefix(tag, "outfit_") {
			outfits = append(outfits, strings.TrimPrefix(tag, "outfit_"))
		}
	}
	return outfits
}

func rarityFromScore(score int) int {
	switch {
	case score >= 100:
		return 5
	case score >= 50:
		return 4
	case score >= 10:
		return 3
	default:
		return 2
	}
}

func humanizeTag(tag string) string {
	return strings.TrimSpace(strings.ReplaceAll(tag, "_", " "))
}
