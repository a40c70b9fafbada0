package domain

// WorkoutStatus represents the completion state of a day's workout
type WorkoutStatus string

const (
	StatusUnset  WorkoutStatus = "unset"
	StatusDone   WorkoutStatus = "done"
	StatusMissed WorkoutStatus = "missed"
)

// Valid reports whether the status is one of the three known states
func (s WorkoutStatus) Valid() bool {
	switch s {
	case StatusUnset, StatusDone, StatusMissed:
		return true
	}
	return false
}

// WorkoutRecord is a single day's workout. The date (YYYY-MM-DD) is the
// natural key; at most one record exists per date.
type WorkoutRecord struct {
	ID         string        `json:"id"`
	Date       string        `json:"date"`
	PushUps    bool          `json:"push_ups"`
	SitUps     bool          `json:"sit_ups"`
	Squats     bool          `json:"squats"`
	DistanceKM float64       `json:"distance_km"`
	Status     WorkoutStatus `json:"status"`
	Doubled    bool          `json:"doubled"`
}

// WorkoutUpdate is a partial update to a day's record. Nil fields are left
// untouched on merge; Date is required and selects the record.
type WorkoutUpdate struct {
	Date       string         `json:"date"`
	PushUps    *bool          `json:"push_ups,omitempty"`
	SitUps     *bool          `json:"sit_ups,omitempty"`
	Squats     *bool          `json:"squats,omitempty"`
	DistanceKM *float64       `json:"distance_km,omitempty"`
	Status     *WorkoutStatus `json:"status,omitempty"`
	Doubled    *bool          `json:"doubled,omitempty"`
}

// TrackerEvent is a discrete event from an external activity source (GPS
// tracker, timer-driven simulator) delivered through the event stream.
type TrackerEvent struct {
	UserID     string  `json:"user_id"`
	Date       string  `json:"date"`
	DistanceKM float64 `json:"distance_km,omitempty"`
	EventType  string  `json:"event_type"`
	Timestamp  int64   `json:"timestamp,omitempty"`
}

// Tracker event types
const (
	TrackerEventDistance  = "distance"
	TrackerEventCompleted = "completed"
)
