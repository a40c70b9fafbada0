package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/hero-tracker/internal/config"
	"github.com/hero-tracker/internal/domain"
	"github.com/hero-tracker/internal/storage"
)

// ProfileReader exposes the current user's display fields for the
// leaderboard merge and the own-code check
type ProfileReader interface {
	Get(ctx context.Context, s Session) (*domain.UserProfile, error)
}

// Social is the social graph store. It owns the friends document and
// derives the leaderboard view from the static seed plus the live user.
type Social struct {
	store    storage.Documents
	profiles ProfileReader
	seed     []config.SeedEntry
	ids      IDSource
	rand     Random
	clock    Clock
	logger   *slog.Logger
}

// NewSocial creates the social graph store
func NewSocial(
	store storage.Documents,
	profiles ProfileReader,
	seed []config.SeedEntry,
	ids IDSource,
	rand Random,
	clock Clock,
	logger *slog.Logger,
) *Social {
	return &Social{
		store:    store,
		profiles: profiles,
		seed:     seed,
		ids:      ids,
		rand:     rand,
		clock:    clock,
		logger:   logger,
	}
}

// Friends returns the session's friends list in insertion order
func (s *Social) Friends(ctx context.Context, sess Session) ([]domain.Friend, error) {
	return s.load(ctx, sess)
}

// AddFriend synthesizes and persists a friend entry for a shared code. It
// fails without mutation when the code is the user's own or already added.
func (s *Social) AddFriend(ctx context.Context, sess Session, code string) (*domain.Friend, error) {
	profile, err := s.profiles.Get(ctx, sess)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, domain.ErrNotLoggedIn
	}
	if code == profile.FriendCode {
		return nil, domain.ErrOwnFriendCode
	}

	friends, err := s.load(ctx, sess)
	if err != nil {
		return nil, err
	}
	for _, f := range friends {
		if f.FriendCode == code {
			return nil, domain.ErrFriendExists
		}
	}

	suffix := code
	if idx := strings.Index(code, "-"); idx >= 0 {
		suffix = code[idx+1:]
	}
	friend := domain.Friend{
		ID:          s.ids.NewID(),
		Name:        "Guerreiro " + suffix,
		Photo:       "https://i.pravatar.cc/150?u=" + code,
		FriendCode:  code,
		IsOnline:    s.rand.Flip(),
		LastWorkout: s.clock.Now(),
	}

	friends = append(friends, friend)
	if err := s.save(ctx, sess, friends); err != nil {
		return nil, err
	}

	s.logger.Info("friend added", "user_id", profile.ID, "friend_code", code)
	return &friend, nil
}

// Leaderboard merges the seed entries with a synthetic row for the current
// user and sorts descending by total workouts. The sort is stable, so ties
// keep their original relative order. Without a session only the seed is
// returned.
func (s *Social) Leaderboard(ctx context.Context, sess Session) ([]domain.RankEntry, error) {
	entries := make([]domain.RankEntry, 0, len(s.seed)+1)
	for _, e := range s.seed {
		entries = append(entries, domain.RankEntry{
			ID:            e.ID,
			Name:          e.Name,
			TotalWorkouts: e.TotalWorkouts,
			Photo:         e.Photo,
		})
	}

	profile, err := s.profiles.Get(ctx, sess)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		entries = append(entries, domain.RankEntry{
			ID:            profile.ID,
			Name:          profile.Name,
			TotalWorkouts: profile.TotalWorkouts,
			Photo:         profile.Photo,
			IsMe:          true,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TotalWorkouts > entries[j].TotalWorkouts
	})
	return entries, nil
}

// load returns the session's friends document; an absent or corrupt
// document yields an empty list
func (s *Social) load(ctx context.Context, sess Session) ([]domain.Friend, error) {
	if !sess.LoggedIn() {
		return nil, nil
	}

	data, ok, err := s.store.Load(ctx, storage.FriendsKey(sess.UserID))
	if err != nil {
		return nil, fmt.Errorf("loading friends: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var friends []domain.Friend
	if err := json.Unmarshal(data, &friends); err != nil {
		s.logger.Warn("corrupt friends document, falling back to empty", "user_id", sess.UserID, "error", err)
		return nil, nil
	}
	return friends, nil
}

// save persists the whole friends snapshot
func (s *Social) save(ctx context.Context, sess Session, friends []domain.Friend) error {
	data, err := json.Marshal(friends)
	if err != nil {
		return fmt.Errorf("encoding friends: %w", err)
	}
	if err := s.store.Save(ctx, storage.FriendsKey(sess.UserID), data); err != nil {
		return fmt.Errorf("saving friends: %w", err)
	}
	return nil
}
