package service

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Session identifies the acting user for a manager call. A zero Session
// means no one is logged in; there is no ambient current-user state.
type Session struct {
	UserID string
}

// LoggedIn reports whether the session carries a user
func (s Session) LoggedIn() bool {
	return s.UserID != ""
}

// Clock yields the current time and the current calendar date in the
// YYYY-MM-DD form used as the workout log's natural key
type Clock interface {
	Now() time.Time
	Today() string
}

// IDSource yields unique identifiers for profiles, friends and records
type IDSource interface {
	NewID() string
}

// Random yields friend-code tokens and random flags. Tests inject a
// deterministic implementation.
type Random interface {
	Token(n int) string
	Flip() bool
}

// SystemClock is the wall-clock Clock implementation
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

func (SystemClock) Today() string { return time.Now().Format("2006-01-02") }

// UUIDSource generates identifiers with google/uuid
type UUIDSource struct{}

func (UUIDSource) NewID() string { return uuid.New().String() }

const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// SystemRandom is the math/rand based Random implementation
type SystemRandom struct{}

func (SystemRandom) Token(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = tokenAlphabet[rand.Intn(len(tokenAlphabet))]
	}
	return string(b)
}

func (SystemRandom) Flip() bool { return rand.Intn(2) == 1 }
