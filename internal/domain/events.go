package domain

import "time"

// Progression event kinds
const (
	EventXPAward  = "xp_award"
	EventLevelUp  = "level_up"
	EventPurchase = "purchase"
)

// ProgressionEvent is a journal record of a progression mutation. Journal
// writes are best-effort and never gate the mutation itself.
type ProgressionEvent struct {
	UserID    string    `json:"user_id"`
	Kind      string    `json:"kind"`
	Amount    int       `json:"amount"`
	ItemID    string    `json:"item_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
