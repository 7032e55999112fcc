package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/trackpass/internal/server/models"
)

type trackInfo struct {
	ID   models.Track `json:"id"`
	Days int          `json:"days"`
}

// handleTrackCatalog serves the static catalog. The four tracks are part
// of the binary, so the route needs no authentication or storage.
func (h *Handler) handleTrackCatalog(w http.ResponseWriter, r *http.Request) {
	catalog := make([]trackInfo, 0, len(models.AllTracks()))
	for _, t := range models.AllTracks() {
		catalog = append(catalog, trackInfo{ID: t, Days: models.TrackDays})
	}
	respondWithJSON(w, http.StatusOK, catalog)
}

type entitlementsResponse struct {
	Tracks []models.Track `json:"tracks"`
}

func (h *Handler) handleListEntitlements(w http.ResponseWriter, r *http.Request) {
	caller := identityFrom(r.Context())

	tracks, err := h.entitlements.List(r.Context(), caller.ID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, entitlementsResponse{Tracks: tracks})
}

func (h *Handler) handleStartTrack(w http.ResponseWriter, r *http.Request) {
	caller := identityFrom(r.Context())
	track := models.Track(chi.URLParam(r, "track"))

	profile, err := h.progress.StartTrack(r.Context(), caller.ID, track)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, profile)
}

func (h *Handler) handleCompleteDay(w http.ResponseWriter, r *http.Request) {
	caller := identityFrom(r.Context())
	track := models.Track(chi.URLParam(r, "track"))

	day, err := strconv.Atoi(chi.URLParam(r, "day"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "day must be a number")
		return
	}

	result, err := h.progress.RecordDayCompletion(r.Context(), caller.ID, track, day)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

type journalRequest struct {
	Text string `json:"text"`
}

func (h *Handler) handleSaveJournal(w http.ResponseWriter, r *http.Request) {
	caller := identityFrom(r.Context())
	track := models.Track(chi.URLParam(r, "track"))

	day, err := strconv.Atoi(chi.URLParam(r, "day"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "day must be a number")
		return
	}

	var req journalRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.progress.SaveJournalEntry(r.Context(), caller.ID, track, day, req.Text)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, entry)
}

type journalResponse struct {
	Entries []*models.JournalEntry `json:"entries"`
}

func (h *Handler) handleListJournal(w http.ResponseWriter, r *http.Request) {
	caller := identityFrom(r.Context())
	track := models.Track(chi.URLParam(r, "track"))

	entries, err := h.progress.ListJournal(r.Context(), caller.ID, track)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, journalResponse{Entries: entries})
}
