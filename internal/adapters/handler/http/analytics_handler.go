package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/poll/analytics/internal/core/domain"
	"github.com/poll/analytics/internal/core/ports"
)

type AnalyticsHandler struct {
	service ports.AnalyticsService
	store   ports.AnalyticsStore
	log     *zap.Logger
}

func NewAnalyticsHandler(service ports.AnalyticsService, store ports.AnalyticsStore, log *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: service,
		store:   store,
		log:     log,
	}
}

func (h *AnalyticsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(UserIDKey).(int64)
	if !ok {
		http.Error(w, "Unauthorized: missing user context", http.StatusUnauthorized)
		return
	}

	overview, err := h.service.UserOverview(r.Context(), userID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, overview)
}

func (h *AnalyticsHandler) PollAnalytics(w http.ResponseWriter, r *http.Request) {
	pollID, ok := h.authorizePoll(w, r)
	if !ok {
		return
	}

	analytics, err := h.service.PollAnalytics(r.Context(), pollID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, analytics)
}

func (h *AnalyticsHandler) PollActivity(w http.ResponseWriter, r *http.Request) {
	pollID, ok := h.authorizePoll(w, r)
	if !ok {
		return
	}

	activity, err := h.service.PollActivity(r.Context(), pollID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, activity)
}

func (h *AnalyticsHandler) VotingTrends(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(UserIDKey).(int64)
	if !ok {
		http.Error(w, "Unauthorized: missing user context", http.StatusUnauthorized)
		return
	}

	days := 7
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, domain.ErrInvalidDays.Error(), http.StatusBadRequest)
			return
		}
		days = parsed
	}

	trends, err := h.service.VotingTrends(r.Context(), userID, days)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, trends)
}

func (h *AnalyticsHandler) PopularPolls(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, domain.ErrInvalidLimit.Error(), http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	timeframe := r.URL.Query().Get("timeframe")
	if timeframe == "" {
		timeframe = "week"
	}

	popular, err := h.service.PopularPolls(r.Context(), limit, timeframe)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, popular)
}

// authorizePoll parses the poll id and enforces that the authenticated
// user owns the poll. Poll analytics are visible to their owner only.
func (h *AnalyticsHandler) authorizePoll(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := r.Context().Value(UserIDKey).(int64)
	if !ok {
		http.Error(w, "Unauthorized: missing user context", http.StatusUnauthorized)
		return 0, false
	}

	pollID, err := strconv.ParseInt(chi.URLParam(r, "pollID"), 10, 64)
	if err != nil || pollID <= 0 {
		http.Error(w, domain.ErrInvalidPollID.Error(), http.StatusBadRequest)
		return 0, false
	}

	poll, err := h.store.GetPoll(r.Context(), pollID)
	if err != nil {
		h.respondError(w, err)
		return 0, false
	}
	if poll.OwnerID != userID {
		http.Error(w, "Access denied: you don't own this poll", http.StatusForbidden)
		return 0, false
	}
	return pollID, true
}

func (h *AnalyticsHandler) respondJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

func (h *AnalyticsHandler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrPollNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidUserID),
		errors.Is(err, domain.ErrInvalidPollID),
		errors.Is(err, domain.ErrInvalidDays),
		errors.Is(err, domain.ErrInvalidLimit),
		errors.Is(err, domain.ErrInvalidTimeframe),
		errors.Is(err, domain.ErrInvalidBucketSize),
		errors.Is(err, domain.ErrInvalidPeriod):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.log.Error("analytics request failed", zap.Error(err))
		http.Error(w, domain.ErrInternal.Error(), http.StatusInternalServerError)
	}
}
