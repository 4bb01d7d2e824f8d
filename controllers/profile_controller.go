package controllers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"ripple_server/models"
	"ripple_server/services"
)

type ProfileController struct {
	Service *services.ProfileService
}

func NewProfileController(service *services.ProfileService) *ProfileController {
	return &ProfileController{Service: service}
}

// CreateProfile handles POST /api/profiles
func (c *ProfileController) CreateProfile(w http.ResponseWriter, r *http.Request) {
	var profile models.Profile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if profile.DID == "" || profile.Handle == "" {
		http.Error(w, "did and handle are required", http.StatusBadRequest)
		return
	}

	created, err := c.Service.CreateProfile(r.Context(), profile)
	if err != nil {
		log.Printf("❌ Error creating profile for %s: %v", profile.DID, err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// GetProfile handles GET /api/profiles/{did}
func (c *ProfileController) GetProfile(w http.ResponseWriter, r *http.Request) {
	did := mux.Vars(r)["did"]

	profile, err := c.Service.GetProfile(r.Context(), did)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// UpdateProfile handles PATCH /api/profiles/{did}
func (c *ProfileController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	did := mux.Vars(r)["did"]

	var update models.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	profile, err := c.Service.UpdateProfile(r.Context(), did, update)
	if err != nil {
		log.Printf("❌ Error updating profile for %s: %v", did, err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// SearchProfiles handles GET /api/profiles/search?q=...&limit=...&cursor=...
func (c *ProfileController) SearchProfiles(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		http.Error(w, "q is required", http.StatusBadRequest)
		return
	}
	limit := parseLimit(r.URL.Query().Get("limit"))
	cursor := r.URL.Query().Get("cursor")

	page, err := c.Service.SearchProfiles(r.Context(), query, limit, cursor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func parseLimit(raw string) int32 {
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return int32(n)
}
