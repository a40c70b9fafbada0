package domain

import "time"

// CharacterConfig is the structured cosmetic configuration for a user's
// avatar. EquippedItems maps a catalog slot to an owned item ID.
type CharacterConfig struct {
	Gender         string            `json:"gender"`
	SkinTone       string            `json:"skin_tone"`
	HairStyle      string            `json:"hair_style"`
	HairColor      string            `json:"hair_color"`
	UnderwearColor string            `json:"underwear_color"`
	EquippedItems  map[string]string `json:"equipped_items"`
}

// DefaultCharacter returns the starter avatar configuration granted at login
func DefaultCharacter() CharacterConfig {
	return CharacterConfig{
		Gender:         "male",
		SkinTone:       "#FFE0BD",
		HairStyle:      "bald",
		HairColor:      "#000000",
		UnderwearColor: "black",
		EquippedItems:  map[string]string{},
	}
}

// UserProfile is the logged-in user's identity and progression state.
// Level is derived (XP / XPPerLevel), never stored.
type UserProfile struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	Photo         string          `json:"photo"`
	FriendCode    string          `json:"friend_code"`
	TotalWorkouts int             `json:"total_workouts"`
	XP            int             `json:"xp"`
	Coins         int             `json:"coins"`
	Inventory     []string        `json:"inventory"`
	Character     CharacterConfig `json:"character"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Owns reports whether the item ID is in the profile's inventory
func (p *UserProfile) Owns(itemID string) bool {
	for _, id := range p.Inventory {
		if id == itemID {
			return true
		}
	}
	return false
}

// NameChangeResult is the outcome of a display-name update. Validation
// failures are reported here, never as an error.
type NameChangeResult struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}
