package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Sport-Tournaments/sport-tournaments-backend/services"
)

type DrawHandler struct {
	drawService services.DrawService
}

func NewDrawHandler(ds services.DrawService) *DrawHandler {
	return &DrawHandler{drawService: ds}
}

// AssignPotHandler handles POST /tournaments/{tournamentID}/pots.
func (h *DrawHandler) AssignPotHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromContext(r)
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.PotAssignmentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	assignment, err := h.drawService.AssignTeamToPot(r.Context(), tournamentID, input.RegistrationID, input.PotNumber, actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"assignment": assignment}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// BulkAssignPotsHandler handles POST /tournaments/{tournamentID}/pots/bulk.
// Each entry succeeds or fails on its own; the response reports both.
func (h *DrawHandler) BulkAssignPotsHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromContext(r)
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Assignments []services.PotAssignmentInput `json:"assignments"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if len(input.Assignments) == 0 {
		badRequestResponse(w, r, errors.New("assignments must not be empty"))
		return
	}

	results, err := h.drawService.BulkAssignPots(r.Context(), tournamentID, input.Assignments, actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"results": results}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetPotsHandler handles GET /tournaments/{tournamentID}/pots.
func (h *DrawHandler) GetPotsHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	pots, err := h.drawService.GetPotAssignments(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"pots": pots}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ValidatePotsHandler handles GET /tournaments/{tournamentID}/pots/validate.
func (h *DrawHandler) ValidatePotsHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var expectedPerPot *int
	if expectedStr := r.URL.Query().Get("expected_per_pot"); expectedStr != "" {
		expected, convErr := strconv.Atoi(expectedStr)
		if convErr != nil || expected <= 0 {
			badRequestResponse(w, r, errors.New("invalid expected_per_pot query parameter"))
			return
		}
		expectedPerPot = &expected
	}

	report, err := h.drawService.ValidatePotDistribution(r.Context(), tournamentID, expectedPerPot)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"report": report}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ExecutePotDrawHandler handles POST /tournaments/{tournamentID}/draw/pots.
func (h *DrawHandler) ExecutePotDrawHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromContext(r)
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		NumberOfGroups int `json:"number_of_groups"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	groups, err := h.drawService.ExecutePotDraw(r.Context(), tournamentID, input.NumberOfGroups, actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"groups": groups}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ExecuteRandomDrawHandler handles POST /tournaments/{tournamentID}/draw/random.
func (h *DrawHandler) ExecuteRandomDrawHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromContext(r)
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		NumberOfGroups int    `json:"number_of_groups"`
		Seed           string `json:"seed,omitempty"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	groups, err := h.drawService.ExecuteRandomDraw(r.Context(), tournamentID, input.NumberOfGroups, input.Seed, actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"groups": groups}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ReassignGroupsHandler handles PUT /tournaments/{tournamentID}/groups.
func (h *DrawHandler) ReassignGroupsHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromContext(r)
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Groups []services.GroupAssignmentInput `json:"groups"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if len(input.Groups) == 0 {
		badRequestResponse(w, r, errors.New("groups must not be empty"))
		return
	}

	groups, err := h.drawService.ReassignGroups(r.Context(), tournamentID, input.Groups, actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"groups": groups}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ClearPotsHandler handles DELETE /tournaments/{tournamentID}/pots.
func (h *DrawHandler) ClearPotsHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromContext(r)
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.drawService.ClearPotAssignments(r.Context(), tournamentID, actor); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
