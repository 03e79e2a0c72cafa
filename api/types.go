package api

import "time"

// Session is returned by login and registration.
type Session struct {
	Token   string  `json:"token"`
	Profile Profile `json:"profile"`
}

// Profile is the authenticated user's state.
type Profile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Essence  int64  `json:"essence"`
	Rolls    int    `json:"rolls"`
	IsAdmin  bool   `json:"isAdmin"`
}

// Character is a collectible character.
type Character struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Series     string     `json:"series"`
	Rarity     int        `json:"rarity"`
	Tier       string     `json:"tier,omitempty"`
	ImageURL   string     `json:"imageUrl"`
	OutfitTags []string   `json:"outfitTags,omitempty"`
	ObtainedAt *time.Time `json:"obtainedAt,omitempty"`
}

// CharacterInput is the payload for admin character create/update.
type CharacterInput struct {
	Name       string   `json:"name"`
	Series     string   `json:"series"`
	Rarity     int      `json:"rarity"`
	ImageURL   string   `json:"imageUrl"`
	OutfitTags []string `json:"outfitTags,omitempty"`
}

// Collection is the user's owned characters.
type Collection struct {
	Items []Character `json:"items"`
	Total int         `json:"total"`
}

// RollResult is the outcome of a gacha roll.
type RollResult struct {
	Character     Character `json:"character"`
	IsNew         bool      `json:"isNew"`
	EssenceRefund int64     `json:"essenceRefund"`
}

// Banner is a limited-time rate-up banner.
type Banner struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	CharacterIDs []string  `json:"characterIds"`
	StartsAt     time.Time `json:"startsAt"`
	EndsAt       time.Time `json:"endsAt"`
}

// EssenceTapState is the clicker minigame's server-side state.
type EssenceTapState struct {
	Essence     int64      `json:"essence"`
	TapPower    int64      `json:"tapPower"`
	Multiplier  float64    `json:"multiplier"`
	UpgradeCost int64      `json:"upgradeCost"`
	LastTapAt   *time.Time `json:"lastTapAt,omitempty"`
}

// TapResult is returned by a batch of taps.
type TapResult struct {
	Essence int64 `json:"essence"`
	Gained  int64 `json:"gained"`
}

// FishingState is the fishing minigame's state.
type FishingState struct {
	Energy     int        `json:"energy"`
	MaxEnergy  int        `json:"maxEnergy"`
	RodLevel   int        `json:"rodLevel"`
	NextCastAt *time.Time `json:"nextCastAt,omitempty"`
}

// Fish is a caught fish in the inventory.
type Fish struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Rarity int     `json:"rarity"`
	Weight float64 `json:"weight"`
	Value  int64   `json:"value"`
}

// FishingCatch is the outcome of a cast.
type FishingCatch struct {
	Fish     Fish `json:"fish"`
	IsRecord bool `json:"isRecord"`
}

// FishingInventory is the caught-fish inventory.
type FishingInventory struct {
	Fish     []Fish `json:"fish"`
	Capacity int    `json:"capacity"`
}

// SellResult is returned after selling fish.
type SellResult struct {
	Essence int64 `json:"essence"`
	Sold    int   `json:"sold"`
}

// CharacterPage is a paged admin character listing.
type CharacterPage struct {
	Items   []Character `json:"items"`
	Page    int         `json:"page"`
	PerPage int         `json:"perPage"`
	Total   int         `json:"total"`
}

// BooruPost is a post on the external image board.
type BooruPost struct {
	ID      int64    `json:"id"`
	FileURL string   `json:"file_url"`
	Tags    []string `json:"tags"`
	Rating  string   `json:"rating"`
	Score   int      `json:"score"`
}
