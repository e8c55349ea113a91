package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Giovo8/gst-tennis-academy-sub005/models"
	"github.com/Giovo8/gst-tennis-academy-sub005/repositories"
	"github.com/Giovo8/gst-tennis-academy-sub005/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(ms services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: ms}
}

func (h *MatchHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.GetMatchByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) ListByTournamentHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var filter repositories.ListMatchesFilter
	query := r.URL.Query()

	if phaseStr := query.Get("phase"); phaseStr != "" {
		p := models.Phase(phaseStr)
		if !p.Valid() {
			badRequestResponse(w, r, errors.New("invalid phase query parameter"))
			return
		}
		filter.Phase = &p
	}
	if groupIDStr := query.Get("group_id"); groupIDStr != "" {
		gid, err := strconv.Atoi(groupIDStr)
		if err != nil || gid <= 0 {
			badRequestResponse(w, r, errors.New("invalid group_id query parameter"))
			return
		}
		filter.GroupID = &gid
	}
	if roundStr := query.Get("round"); roundStr != "" {
		round, err := strconv.Atoi(roundStr)
		if err != nil || round <= 0 {
			badRequestResponse(w, r, errors.New("invalid round query parameter"))
			return
		}
		filter.Round = &round
	}
	if statusStr := query.Get("status"); statusStr != "" {
		st := models.MatchStatus(statusStr)
		if !st.Valid() {
			badRequestResponse(w, r, errors.New("invalid status query parameter"))
			return
		}
		filter.Status = &st
	}

	matches, err := h.matchService.ListMatchesByTournament(r.Context(), tournamentID, filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RecordResultHandler godoc
// @Summary Record a match result
// @Tags matches
// @Accept json
// @Produce json
// @Param matchID path int true "Match ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Invalid score for the match format"
// @Failure 409 {object} map[string]string "Match not ready or already completed"
// @Security BearerAuth
// @Router /matches/{matchID}/result [post]
func (h *MatchHandler) RecordResultHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.RecordResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.WinnerID <= 0 {
		badRequestResponse(w, r, errors.New("winner_id is required"))
		return
	}

	match, err := h.matchService.RecordResult(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) CancelHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.CancelMatch(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
