package domain

import "time"

// Friend is an entry in the user's friends list, created by a successful
// add-friend call and never removed.
type Friend struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Photo       string    `json:"photo"`
	FriendCode  string    `json:"friend_code"`
	IsOnline    bool      `json:"is_online"`
	LastWorkout time.Time `json:"last_workout"`
}

// RankEntry is a derived leaderboard row; it is recomputed on every read
// and never stored.
type RankEntry struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	TotalWorkouts int    `json:"total_workouts"`
	Photo         string `json:"photo"`
	IsMe          bool   `json:"is_me,omitempty"`
}
