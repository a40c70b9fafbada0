package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hero-tracker/internal/config"
	"github.com/hero-tracker/internal/domain"
	"github.com/hero-tracker/internal/storage"
)

// Journal receives best-effort progression records. Failures are logged
// and never fail the triggering call.
type Journal interface {
	RegisterUser(ctx context.Context, profile *domain.UserProfile) error
	RecordEvent(ctx context.Context, event domain.ProgressionEvent) error
}

// Accounts is the identity and progression manager. It owns the profile
// document: identity, experience, coin balance, inventory and the equipped
// cosmetic configuration. Level is always derived from XP, never stored.
type Accounts struct {
	store   storage.Documents
	journal Journal
	rules   *config.GameConfig
	seed    []config.SeedEntry
	ids     IDSource
	rand    Random
	clock   Clock
	logger  *slog.Logger
}

// NewAccounts creates the accounts manager. journal may be nil when the
// postgres journal is disabled.
func NewAccounts(
	store storage.Documents,
	journal Journal,
	rules *config.GameConfig,
	seed []config.SeedEntry,
	ids IDSource,
	rand Random,
	clock Clock,
	logger *slog.Logger,
) *Accounts {
	return &Accounts{
		store:   store,
		journal: journal,
		rules:   rules,
		seed:    seed,
		ids:     ids,
		rand:    rand,
		clock:   clock,
		logger:  logger,
	}
}

// Level returns the level derived from an experience total
func (a *Accounts) Level(xp int) int {
	return xp / a.rules.XPPerLevel
}

// Login creates a fresh profile with the starting grant and a generated
// friend-code, persists it and returns it. It always succeeds.
func (a *Accounts) Login(ctx context.Context) (*domain.UserProfile, error) {
	profile := &domain.UserProfile{
		ID:         a.ids.NewID(),
		Name:       "Saitama Apprentice",
		Email:      "herofun@gmail.com",
		Photo:      "https://i.pravatar.cc/150?u=saitama",
		FriendCode: "SAI-" + a.rand.Token(4),
		XP:         0,
		Coins:      a.rules.StartingCoins,
		Inventory:  []string{},
		Character:  domain.DefaultCharacter(),
		CreatedAt:  a.clock.Now(),
	}

	if err := a.save(ctx, profile); err != nil {
		return nil, err
	}

	if a.journal != nil {
		if err := a.journal.RegisterUser(ctx, profile); err != nil {
			a.logger.Warn("failed to register user in journal", "user_id", profile.ID, "error", err)
		}
	}

	a.logger.Info("user logged in", "user_id", profile.ID, "friend_code", profile.FriendCode)
	return profile, nil
}

// Logout clears the durable profile. It is idempotent; logging out a
// session that holds nothing is a no-op.
func (a *Accounts) Logout(ctx context.Context, s Session) error {
	if !s.LoggedIn() {
		return nil
	}
	if err := a.store.Delete(ctx, storage.ProfileKey(s.UserID)); err != nil {
		return fmt.Errorf("clearing profile: %w", err)
	}
	a.logger.Info("user logged out", "user_id", s.UserID)
	return nil
}

// Get returns the session's profile, or nil when no one is logged in
func (a *Accounts) Get(ctx context.Context, s Session) (*domain.UserProfile, error) {
	return a.load(ctx, s)
}

// AwardExperience adds experience, grants coins for every level boundary
// crossed and bumps the total-workouts counter. Coins change through this
// path only on level-ups. Without an active session it silently does
// nothing.
func (a *Accounts) AwardExperience(ctx context.Context, s Session, amount int) (*domain.UserProfile, error) {
	profile, err := a.load(ctx, s)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, nil
	}

	oldLevel := a.Level(profile.XP)
	profile.XP += amount
	newLevel := a.Level(profile.XP)

	levelsGained := newLevel - oldLevel
	if levelsGained > 0 {
		profile.Coins += levelsGained * a.rules.CoinsPerLevel
	}
	profile.TotalWorkouts++

	if err := a.save(ctx, profile); err != nil {
		return nil, err
	}

	a.record(ctx, domain.ProgressionEvent{
		UserID:    profile.ID,
		Kind:      domain.EventXPAward,
		Amount:    amount,
		CreatedAt: a.clock.Now(),
	})
	if levelsGained > 0 {
		a.logger.Info("level up", "user_id", profile.ID, "level", newLevel, "coins_granted", levelsGained*a.rules.CoinsPerLevel)
		a.record(ctx, domain.ProgressionEvent{
			UserID:    profile.ID,
			Kind:      domain.EventLevelUp,
			Amount:    newLevel,
			CreatedAt: a.clock.Now(),
		})
	}

	return profile, nil
}

// PurchaseItem debits the item's price and appends it to the inventory in
// a single profile write, so coins and inventory can never diverge. It
// fails without mutation when there is no session, the item is unknown or
// already owned, or the balance is short.
func (a *Accounts) PurchaseItem(ctx context.Context, s Session, itemID string) (*domain.UserProfile, error) {
	profile, err := a.load(ctx, s)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, domain.ErrNotLoggedIn
	}

	item, ok := domain.CatalogItem(itemID)
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	if profile.Owns(item.ID) {
		return nil, domain.ErrItemAlreadyOwned
	}
	if profile.Coins < item.Price {
		return nil, domain.ErrInsufficientCoins
	}

	profile.Coins -= item.Price
	profile.Inventory = append(profile.Inventory, item.ID)

	if err := a.save(ctx, profile); err != nil {
		return nil, err
	}

	a.logger.Info("item purchased", "user_id", profile.ID, "item_id", item.ID, "price", item.Price)
	a.record(ctx, domain.ProgressionEvent{
		UserID:    profile.ID,
		Kind:      domain.EventPurchase,
		Amount:    item.Price,
		ItemID:    item.ID,
		CreatedAt: a.clock.Now(),
	})

	return profile, nil
}

// EquipItem marks an owned catalog item as equipped in its slot. Unowned
// or unknown items leave the configuration untouched; the call does not
// report that as an error.
func (a *Accounts) EquipItem(ctx context.Context, s Session, itemID string) error {
	profile, err := a.load(ctx, s)
	if err != nil {
		return err
	}
	if profile == nil {
		return nil
	}

	item, ok := domain.CatalogItem(itemID)
	if !ok || !profile.Owns(item.ID) {
		a.logger.Debug("equip refused", "user_id", profile.ID, "item_id", itemID)
		return nil
	}

	if profile.Character.EquippedItems == nil {
		profile.Character.EquippedItems = map[string]string{}
	}
	profile.Character.EquippedItems[item.Slot] = item.ID

	return a.save(ctx, profile)
}

// UpdateCharacter overwrites the cosmetic configuration for a logged-in
// user. Without a session it silently does nothing.
func (a *Accounts) UpdateCharacter(ctx context.Context, s Session, character domain.CharacterConfig) error {
	profile, err := a.load(ctx, s)
	if err != nil {
		return err
	}
	if profile == nil {
		return nil
	}

	profile.Character = character
	return a.save(ctx, profile)
}

// UpdateName validates and applies a display-name change. Validation
// failures come back in the result, never as an error.
func (a *Accounts) UpdateName(ctx context.Context, s Session, name string) (domain.NameChangeResult, error) {
	profile, err := a.load(ctx, s)
	if err != nil {
		return domain.NameChangeResult{}, err
	}
	if profile == nil {
		return domain.NameChangeResult{Message: "not logged in"}, nil
	}

	trimmed := []rune(strings.TrimSpace(name))
	if len(trimmed) > 20 {
		trimmed = trimmed[:20]
	}
	if len(trimmed) < 3 {
		return domain.NameChangeResult{Message: "name must be at least 3 characters"}, nil
	}

	candidate := string(trimmed)
	for _, entry := range a.seed {
		if strings.EqualFold(entry.Name, candidate) {
			return domain.NameChangeResult{Message: "that name is already taken"}, nil
		}
	}

	profile.Name = candidate
	if err := a.save(ctx, profile); err != nil {
		return domain.NameChangeResult{}, err
	}
	return domain.NameChangeResult{OK: true}, nil
}

// load returns the session's profile document, or nil when the session is
// empty, the document is absent, or the snapshot cannot be parsed. A
// corrupt snapshot is logged and treated as no prior state.
func (a *Accounts) load(ctx context.Context, s Session) (*domain.UserProfile, error) {
	if !s.LoggedIn() {
		return nil, nil
	}

	data, ok, err := a.store.Load(ctx, storage.ProfileKey(s.UserID))
	if err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var profile domain.UserProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		a.logger.Warn("corrupt profile document, falling back to empty", "user_id", s.UserID, "error", err)
		return nil, nil
	}
	return &profile, nil
}

// save persists the whole profile snapshot
func (a *Accounts) save(ctx context.Context, profile *domain.UserProfile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}
	if err := a.store.Save(ctx, storage.ProfileKey(profile.ID), data); err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	return nil
}

// record journals a progression event, logging failures instead of
// propagating them
func (a *Accounts) record(ctx context.Context, event domain.ProgressionEvent) {
	if a.journal == nil {
		return
	}
	if err := a.journal.RecordEvent(ctx, event); err != nil {
		a.logger.Warn("failed to record progression event", "user_id", event.UserID, "kind", event.Kind, "error", err)
	}
}
