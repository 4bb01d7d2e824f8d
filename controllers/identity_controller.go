package controllers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"ripple_server/models"
	"ripple_server/services"
)

type IdentityController struct {
	Service *services.IdentityService
}

func NewIdentityController(service *services.IdentityService) *IdentityController {
	return &IdentityController{Service: service}
}

// CreateLink handles POST /api/identity/{did}/links
func (c *IdentityController) CreateLink(w http.ResponseWriter, r *http.Request) {
	did := mux.Vars(r)["did"]

	var link models.IdentityLink
	if err := json.NewDecoder(r.Body).Decode(&link); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if link.LinkedID == "" || link.Kind == "" {
		http.Error(w, "linkedId and kind are required", http.StatusBadRequest)
		return
	}
	link.DID = did

	created, err := c.Service.CreateLink(r.Context(), link)
	if err != nil {
		log.Printf("❌ Error creating identity link for %s: %v", did, err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ListLinks handles GET /api/identity/{did}/links
func (c *IdentityController) ListLinks(w http.ResponseWriter, r *http.Request) {
	did := mux.Vars(r)["did"]

	links, err := c.Service.ListLinks(r.Context(), did)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, links)
}

type registerLookupRequest struct {
	LinkedID string `json:"linkedId"`
	DID      string `json:"did"`
}

// RegisterLookup handles POST /api/identity/lookups
func (c *IdentityController) RegisterLookup(w http.ResponseWriter, r *http.Request) {
	var req registerLookupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if req.LinkedID == "" || req.DID == "" {
		http.Error(w, "linkedId and did are required", http.StatusBadRequest)
		return
	}

	err := c.Service.CreateLookup(r.Context(), models.IdentityLookup{
		LinkedID: req.LinkedID,
		DID:      req.DID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Lookup registered"})
}

// ResolveLookup handles GET /api/identity/lookups/{linkedId}
func (c *IdentityController) ResolveLookup(w http.ResponseWriter, r *http.Request) {
	linkedID := mux.Vars(r)["linkedId"]

	lookup, err := c.Service.GetLookup(r.Context(), linkedID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lookup)
}

type passwordRequest struct {
	LinkedID string `json:"linkedId"`
	Password string `json:"password"`
}

// SetPassword handles PUT /api/identity/{did}/password
func (c *IdentityController) SetPassword(w http.ResponseWriter, r *http.Request) {
	did := mux.Vars(r)["did"]

	var req passwordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if req.LinkedID == "" || req.Password == "" {
		http.Error(w, "linkedId and password are required", http.StatusBadRequest)
		return
	}

	if err := c.Service.SetLinkPassword(r.Context(), did, req.LinkedID, req.Password); err != nil {
		log.Printf("❌ Error setting password for %s: %v", did, err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password updated"})
}

// VerifyPassword handles POST /api/identity/{did}/password/verify
func (c *IdentityController) VerifyPassword(w http.ResponseWriter, r *http.Request) {
	did := mux.Vars(r)["did"]

	var req passwordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	ok, err := c.Service.VerifyLinkPassword(r.Context(), did, req.LinkedID, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"valid": ok})
}
