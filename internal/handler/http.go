package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hero-tracker/internal/domain"
	"github.com/hero-tracker/internal/service"
	"github.com/hero-tracker/internal/websocket"
)

// Handler provides the HTTP edge over the three core managers. Every
// request's session comes from the X-User-ID header issued at login.
type Handler struct {
	accounts *service.Accounts
	workouts *service.Workouts
	social   *service.Social
	tracker  *service.Tracker
	hub      *websocket.Hub
	logger   *slog.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	accounts *service.Accounts,
	workouts *service.Workouts,
	social *service.Social,
	tracker *service.Tracker,
	hub *websocket.Hub,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		accounts: accounts,
		workouts: workouts,
		social:   social,
		tracker:  tracker,
		hub:      hub,
		logger:   logger,
	}
}

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Router creates and configures the HTTP router
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(corsMiddleware)

	// Health check
	r.Get("/health", h.HealthCheck)
	r.Get("/ready", h.ReadyCheck)

	// WebSocket endpoint
	r.Get("/ws", h.HandleWebSocket)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/session/login", h.Login)
		r.Post("/session/logout", h.Logout)

		r.Route("/profile", func(r chi.Router) {
			r.Get("/", h.GetProfile)
			r.Post("/xp", h.AwardXP)
			r.Post("/name", h.UpdateName)
			r.Put("/character", h.UpdateCharacter)
		})

		r.Route("/shop", func(r chi.Router) {
			r.Get("/items", h.ListItems)
			r.Post("/purchase", h.Purchase)
			r.Post("/equip", h.Equip)
		})

		r.Route("/workouts", func(r chi.Router) {
			r.Get("/", h.ListWorkouts)
			r.Put("/", h.SaveWorkout)
			r.Post("/complete", h.CompleteWorkout)
			r.Get("/{date}", h.GetWorkout)
		})

		r.Post("/friends", h.AddFriend)
		r.Get("/friends", h.ListFriends)
		r.Get("/leaderboard", h.GetLeaderboard)

		// WebSocket info endpoint
		r.Get("/ws/stats", h.GetWebSocketStats)
	})

	return r
}

// corsMiddleware adds CORS headers
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-Request-ID, X-User-ID")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// session resolves the acting user from the request
func session(r *http.Request) service.Session {
	return service.Session{UserID: r.Header.Get("X-User-ID")}
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeSuccess writes a successful JSON response
func (h *Handler) writeSuccess(w http.ResponseWriter, data interface{}) {
	h.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
	})
}

// writeError writes an error JSON response
func (h *Handler) writeError(w http.ResponseWriter, status int, err error) {
	h.writeJSON(w, status, APIResponse{
		Success: false,
		Error:   err.Error(),
	})
}

// writeServiceError maps core errors onto HTTP statuses
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case domain.IsNotFoundError(err):
		h.writeError(w, http.StatusNotFound, err)
	case domain.IsValidationError(err):
		h.writeError(w, http.StatusBadRequest, err)
	default:
		h.logger.Error("request failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
	}
}

// HandleWebSocket handles WebSocket upgrade requests
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.ServeWs(h.hub, h.logger, w, r)
}

// GetWebSocketStats returns WebSocket connection statistics
func (h *Handler) GetWebSocketStats(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, map[string]interface{}{
		"total_connections": h.hub.GetTotalConnections(),
	})
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, map[string]string{"status": "healthy"})
}

// ReadyCheck returns service readiness status
func (h *Handler) ReadyCheck(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, map[string]string{"status": "ready"})
}

// Login creates a fresh profile and returns it; the client echoes the
// returned ID in X-User-ID on later requests
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	profile, err := h.accounts.Login(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeSuccess(w, profile)
}

// Logout clears the durable profile for the session
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.Logout(r.Context(), session(r)); err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeSuccess(w, map[string]string{"status": "logged_out"})
}

// GetProfile returns the session's profile
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.accounts.Get(r.Context(), session(r))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if profile == nil {
		h.writeError(w, http.StatusUnauthorized, domain.ErrNotLoggedIn)
		return
	}
	h.writeSuccess(w, profile)
}

// AwardXP adds experience to the session's profile
func (h *Handler) AwardXP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount int `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Amount <= 0 {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	s := session(r)
	profile, err := h.accounts.AwardExperience(r.Context(), s, req.Amount)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if profile != nil {
		h.hub.BroadcastProfile(profile.ID, profile)
		h.broadcastLeaderboard(r, s)
	}
	h.writeSuccess(w, profile)
}

// UpdateName validates and applies a display-name change
func (h *Handler) UpdateName(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	result, err := h.accounts.UpdateName(r.Context(), session(r), req.Name)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeSuccess(w, result)
}

// UpdateCharacter overwrites the session's cosmetic configuration
func (h *Handler) UpdateCharacter(w http.ResponseWriter, r *http.Request) {
	var character domain.CharacterConfig
	if err := json.NewDecoder(r.Body).Decode(&character); err != nil {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	if err := h.accounts.UpdateCharacter(r.Context(), session(r), character); err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeSuccess(w, map[string]string{"status": "updated"})
}

// ListItems returns the static shop catalog
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, domain.Catalog)
}

// Purchase buys a catalog item for the session's profile
func (h *Handler) Purchase(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ItemID string `json:"item_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ItemID == "" {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	profile, err := h.accounts.PurchaseItem(r.Context(), session(r), req.ItemID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.hub.BroadcastProfile(profile.ID, profile)
	h.writeSuccess(w, profile)
}

// Equip marks an owned item as equipped in its slot
func (h *Handler) Equip(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ItemID string `json:"item_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ItemID == "" {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	if err := h.accounts.EquipItem(r.Context(), session(r), req.ItemID); err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeSuccess(w, map[string]string{"status": "equipped"})
}

// ListWorkouts returns the session's full workout log
func (h *Handler) ListWorkouts(w http.ResponseWriter, r *http.Request) {
	records, err := h.workouts.All(r.Context(), session(r))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if records == nil {
		records = []domain.WorkoutRecord{}
	}
	h.writeSuccess(w, records)
}

// GetWorkout returns the record for one date
func (h *Handler) GetWorkout(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	record, err := h.workouts.GetByDate(r.Context(), session(r), date)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeSuccess(w, record)
}

// SaveWorkout upserts a day's record from a partial update
func (h *Handler) SaveWorkout(w http.ResponseWriter, r *http.Request) {
	var update domain.WorkoutUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	s := session(r)
	record, err := h.workouts.Save(r.Context(), s, update)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.hub.BroadcastWorkout(s.UserID, record)
	h.writeSuccess(w, record)
}

// CompleteWorkout marks a day done and awards its experience. The save and
// the award are two separate commits; a failure between them leaves the
// workout saved without experience.
func (h *Handler) CompleteWorkout(w http.ResponseWriter, r *http.Request) {
	var update domain.WorkoutUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	s := session(r)
	record, profile, err := h.tracker.Complete(r.Context(), s, update)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.hub.BroadcastWorkout(s.UserID, record)
	if profile != nil {
		h.hub.BroadcastProfile(profile.ID, profile)
		h.broadcastLeaderboard(r, s)
	}
	h.writeSuccess(w, map[string]interface{}{
		"record":  record,
		"profile": profile,
	})
}

// AddFriend adds a friend entry for a shared code
func (h *Handler) AddFriend(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	friend, err := h.social.AddFriend(r.Context(), session(r), req.Code)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeSuccess(w, friend)
}

// ListFriends returns the session's friends list
func (h *Handler) ListFriends(w http.ResponseWriter, r *http.Request) {
	friends, err := h.social.Friends(r.Context(), session(r))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if friends == nil {
		friends = []domain.Friend{}
	}
	h.writeSuccess(w, friends)
}

// GetLeaderboard returns the merged, sorted leaderboard
func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.social.Leaderboard(r.Context(), session(r))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeSuccess(w, entries)
}

// broadcastLeaderboard pushes a refreshed leaderboard after a progression
// change; failures only cost the push, not the request
func (h *Handler) broadcastLeaderboard(r *http.Request, s service.Session) {
	entries, err := h.social.Leaderboard(r.Context(), s)
	if err != nil {
		h.logger.Warn("failed to refresh leaderboard for broadcast", "error", err)
		return
	}
	h.hub.BroadcastLeaderboard(entries)
}
