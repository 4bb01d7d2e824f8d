package controllers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"ripple_server/models"
	"ripple_server/services"
	"ripple_server/utils"
)

type SocialController struct {
	Service *services.SocialService
}

func NewSocialController(service *services.SocialService) *SocialController {
	return &SocialController{Service: service}
}

type likeRequest struct {
	PostURI string `json:"postUri"`
	UserDID string `json:"userDid"`
}

// Like handles POST /api/likes
func (c *SocialController) Like(w http.ResponseWriter, r *http.Request) {
	var req likeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if req.PostURI == "" || req.UserDID == "" {
		http.Error(w, "postUri and userDid are required", http.StatusBadRequest)
		return
	}

	if err := c.Service.Like(r.Context(), req.PostURI, req.UserDID); err != nil {
		log.Printf("❌ Error liking %s by %s: %v", req.PostURI, req.UserDID, err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Liked"})
}

// Unlike handles DELETE /api/likes
func (c *SocialController) Unlike(w http.ResponseWriter, r *http.Request) {
	var req likeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	if err := c.Service.Unlike(r.Context(), req.PostURI, req.UserDID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Unliked"})
}

// ListLikers handles GET /api/likes/{did}/{rkey}
func (c *SocialController) ListLikers(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	limit := parseLimit(r.URL.Query().Get("limit"))
	cursor := r.URL.Query().Get("cursor")

	postURI := utils.BuildRecordURI(vars["did"], models.CollectionPost, vars["rkey"])
	page, err := c.Service.ListLikers(r.Context(), postURI, limit, cursor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

type followRequest struct {
	FollowerDID  string `json:"followerDid"`
	FollowingDID string `json:"followingDid"`
}

// Follow handles POST /api/follows
func (c *SocialController) Follow(w http.ResponseWriter, r *http.Request) {
	var req followRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if req.FollowerDID == "" || req.FollowingDID == "" {
		http.Error(w, "followerDid and followingDid are required", http.StatusBadRequest)
		return
	}

	if err := c.Service.Follow(r.Context(), req.FollowerDID, req.FollowingDID); err != nil {
		log.Printf("❌ Error following %s -> %s: %v", req.FollowerDID, req.FollowingDID, err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Followed"})
}

// Unfollow handles DELETE /api/follows
func (c *SocialController) Unfollow(w http.ResponseWriter, r *http.Request) {
	var req followRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	if err := c.Service.Unfollow(r.Context(), req.FollowerDID, req.FollowingDID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Unfollowed"})
}

// ListFollowers handles GET /api/follows/{did}/followers
func (c *SocialController) ListFollowers(w http.ResponseWriter, r *http.Request) {
	did := mux.Vars(r)["did"]
	limit := parseLimit(r.URL.Query().Get("limit"))
	cursor := r.URL.Query().Get("cursor")

	page, err := c.Service.ListFollowers(r.Context(), did, limit, cursor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// ListFollowing handles GET /api/follows/{did}/following
func (c *SocialController) ListFollowing(w http.ResponseWriter, r *http.Request) {
	did := mux.Vars(r)["did"]
	limit := parseLimit(r.URL.Query().Get("limit"))
	cursor := r.URL.Query().Get("cursor")

	page, err := c.Service.ListFollowing(r.Context(), did, limit, cursor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}
