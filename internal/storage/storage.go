package storage

import (
	"context"
	"fmt"
)

// Documents is the durable document store contract. Each key holds one
// serialized snapshot of a whole document; writes replace the snapshot.
// A missing key is not an error: Load reports it through the ok flag.
type Documents interface {
	Load(ctx context.Context, key string) (data []byte, ok bool, err error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// ProfileKey returns the document key for a user's profile snapshot
func ProfileKey(userID string) string {
	return fmt.Sprintf("hero:%s:profile", userID)
}

// FriendsKey returns the document key for a user's friends list snapshot
func FriendsKey(userID string) string {
	return fmt.Sprintf("hero:%s:friends", userID)
}

// WorkoutsKey returns the document key for a user's workout collection snapshot
func WorkoutsKey(userID string) string {
	return fmt.Sprintf("hero:%s:workouts", userID)
}
