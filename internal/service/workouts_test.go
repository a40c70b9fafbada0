package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hero-tracker/internal/domain"
	"github.com/hero-tracker/internal/storage"
)

func newTestWorkouts() (*Workouts, *storage.Memory) {
	store := storage.NewMemory()
	workouts := NewWorkouts(
		store,
		&fakeIDs{},
		fakeClock{now: time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)},
		testLogger(),
	)
	return workouts, store
}

func boolPtr(b bool) *bool { return &b }

func floatPtr(f float64) *float64 { return &f }

func statusPtr(s domain.WorkoutStatus) *domain.WorkoutStatus { return &s }

func TestSaveCreatesRecordWithDefaults(t *testing.T) {
	workouts, _ := newTestWorkouts()
	s := Session{UserID: "u1"}

	record, err := workouts.Save(context.Background(), s, domain.WorkoutUpdate{
		Date:    "2024-03-15",
		PushUps: boolPtr(true),
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	if record.ID == "" {
		t.Error("record has no id")
	}
	if !record.PushUps {
		t.Error("push ups not set")
	}
	if record.SitUps || record.Squats {
		t.Error("unset exercises should default to false")
	}
	if record.Status != domain.StatusUnset {
		t.Errorf("status = %q, want unset", record.Status)
	}
	if record.DistanceKM != 0 {
		t.Errorf("distance = %v, want 0", record.DistanceKM)
	}
}

func TestSaveMergesIntoExistingRecord(t *testing.T) {
	workouts, _ := newTestWorkouts()
	s := Session{UserID: "u1"}
	ctx := context.Background()

	first, err := workouts.Save(ctx, s, domain.WorkoutUpdate{
		Date:       "2024-03-15",
		DistanceKM: floatPtr(5.2),
	})
	if err != nil {
		t.Fatalf("first Save: %v", err)
	}

	second, err := workouts.Save(ctx, s, domain.WorkoutUpdate{
		Date:   "2024-03-15",
		Status: statusPtr(domain.StatusDone),
	})
	if err != nil {
		t.Fatalf("second Save: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("merge created a new record: %q != %q", second.ID, first.ID)
	}
	if second.DistanceKM != 5.2 {
		t.Errorf("distance = %v, want 5.2 preserved across merge", second.DistanceKM)
	}
	if second.Status != domain.StatusDone {
		t.Errorf("status = %q, want done", second.Status)
	}

	all, err := workouts.All(ctx, s)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("collection has %d records, want 1", len(all))
	}
}

func TestSaveKeepsOneRecordPerDate(t *testing.T) {
	workouts, _ := newTestWorkouts()
	s := Session{UserID: "u1"}
	ctx := context.Background()

	dates := []string{"2024-03-14", "2024-03-15", "2024-03-14", "2024-03-16"}
	for _, d := range dates {
		if _, err := workouts.Save(ctx, s, domain.WorkoutUpdate{Date: d, Squats: boolPtr(true)}); err != nil {
			t.Fatalf("Save %s: %v", d, err)
		}
	}

	all, _ := workouts.All(ctx, s)
	if len(all) != 3 {
		t.Fatalf("collection has %d records, want 3", len(all))
	}
	// Insertion order is preserved.
	want := []string{"2024-03-14", "2024-03-15", "2024-03-16"}
	for i, d := range want {
		if all[i].Date != d {
			t.Errorf("all[%d].Date = %q, want %q", i, all[i].Date, d)
		}
	}
}

func TestSaveValidation(t *testing.T) {
	tests := []struct {
		name    string
		update  domain.WorkoutUpdate
		wantErr error
	}{
		{"missing date", domain.WorkoutUpdate{}, domain.ErrDateRequired},
		{"malformed date", domain.WorkoutUpdate{Date: "15/03/2024"}, domain.ErrInvalidRequest},
		{"unknown status", domain.WorkoutUpdate{Date: "2024-03-15", Status: statusPtr("snoozed")}, domain.ErrInvalidRequest},
		{"negative distance", domain.WorkoutUpdate{Date: "2024-03-15", DistanceKM: floatPtr(-1)}, domain.ErrInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			workouts, store := newTestWorkouts()
			_, err := workouts.Save(context.Background(), Session{UserID: "u1"}, tt.update)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if store.Len() != 0 {
				t.Error("failed save wrote to the store")
			}
		})
	}
}

func TestSaveWithoutSession(t *testing.T) {
	workouts, _ := newTestWorkouts()

	_, err := workouts.Save(context.Background(), Session{}, domain.WorkoutUpdate{Date: "2024-03-15"})
	if !errors.Is(err, domain.ErrNotLoggedIn) {
		t.Errorf("err = %v, want ErrNotLoggedIn", err)
	}
}

func TestGetByDate(t *testing.T) {
	workouts, _ := newTestWorkouts()
	s := Session{UserID: "u1"}
	ctx := context.Background()

	if _, err := workouts.Save(ctx, s, domain.WorkoutUpdate{Date: "2024-03-15", SitUps: boolPtr(true)}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	record, err := workouts.GetByDate(ctx, s, "2024-03-15")
	if err != nil {
		t.Fatalf("GetByDate: %v", err)
	}
	if !record.SitUps {
		t.Error("sit ups not set on loaded record")
	}

	_, err = workouts.GetByDate(ctx, s, "2024-03-16")
	if !errors.Is(err, domain.ErrRecordNotFound) {
		t.Errorf("err = %v, want ErrRecordNotFound", err)
	}
}

func TestMarkMissedPreservesOtherFields(t *testing.T) {
	workouts, _ := newTestWorkouts()
	s := Session{UserID: "u1"}
	ctx := context.Background()

	if _, err := workouts.Save(ctx, s, domain.WorkoutUpdate{Date: "2024-03-15", DistanceKM: floatPtr(3.5)}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	record, err := workouts.MarkMissed(ctx, s, "2024-03-15")
	if err != nil {
		t.Fatalf("MarkMissed: %v", err)
	}
	if record.Status != domain.StatusMissed {
		t.Errorf("status = %q, want missed", record.Status)
	}
	if record.DistanceKM != 3.5 {
		t.Errorf("distance = %v, want 3.5 preserved", record.DistanceKM)
	}
}

func TestSetDoubled(t *testing.T) {
	workouts, _ := newTestWorkouts()
	s := Session{UserID: "u1"}
	ctx := context.Background()

	record, err := workouts.SetDoubled(ctx, s, "2024-03-15", true)
	if err != nil {
		t.Fatalf("SetDoubled: %v", err)
	}
	if !record.Doubled {
		t.Error("doubled flag not set")
	}

	record, err = workouts.SetDoubled(ctx, s, "2024-03-15", false)
	if err != nil {
		t.Fatalf("SetDoubled off: %v", err)
	}
	if record.Doubled {
		t.Error("doubled flag not cleared")
	}
}

func TestAddDistanceAccumulates(t *testing.T) {
	workouts, _ := newTestWorkouts()
	s := Session{UserID: "u1"}
	ctx := context.Background()

	deltas := []float64{1.5, 2.0, 0.5}
	var record *domain.WorkoutRecord
	var err error
	for _, d := range deltas {
		record, err = workouts.AddDistance(ctx, s, "2024-03-15", d)
		if err != nil {
			t.Fatalf("AddDistance(%v): %v", d, err)
		}
	}

	if record.DistanceKM != 4.0 {
		t.Errorf("distance = %v, want 4.0", record.DistanceKM)
	}
}

func TestAddDistanceClampsAtZero(t *testing.T) {
	workouts, _ := newTestWorkouts()
	s := Session{UserID: "u1"}
	ctx := context.Background()

	if _, err := workouts.AddDistance(ctx, s, "2024-03-15", 2.0); err != nil {
		t.Fatalf("AddDistance: %v", err)
	}
	record, err := workouts.AddDistance(ctx, s, "2024-03-15", -5.0)
	if err != nil {
		t.Fatalf("AddDistance negative: %v", err)
	}
	if record.DistanceKM != 0 {
		t.Errorf("distance = %v, want 0", record.DistanceKM)
	}
}

func TestCorruptWorkoutsFallsBackToEmpty(t *testing.T) {
	workouts, store := newTestWorkouts()
	s := Session{UserID: "u1"}
	ctx := context.Background()

	if _, err := workouts.Save(ctx, s, domain.WorkoutUpdate{Date: "2024-03-15"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Save(ctx, storage.WorkoutsKey(s.UserID), []byte("]broken[")); err != nil {
		t.Fatalf("corrupting store: %v", err)
	}

	all, err := workouts.All(ctx, s)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("All = %v, want empty for corrupt document", all)
	}

	// Writes start over from the empty collection.
	record, err := workouts.Save(ctx, s, domain.WorkoutUpdate{Date: "2024-03-16"})
	if err != nil {
		t.Fatalf("Save after corruption: %v", err)
	}
	if record.Date != "2024-03-16" {
		t.Errorf("date = %q", record.Date)
	}
}

func TestAllWithoutSession(t *testing.T) {
	workouts, _ := newTestWorkouts()

	all, err := workouts.All(context.Background(), Session{})
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("All = %v, want empty", all)
	}
}
