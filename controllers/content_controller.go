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

type ContentController struct {
	Service *services.ContentService
}

func NewContentController(service *services.ContentService) *ContentController {
	return &ContentController{Service: service}
}

type createPostRequest struct {
	OwnerDID  string             `json:"ownerDid"`
	Text      string             `json:"text"`
	Embed     *models.PostEmbed  `json:"embed,omitempty"`
	Facets    []models.Facet     `json:"facets,omitempty"`
	RootURI   string             `json:"rootUri,omitempty"`
	ParentURI string             `json:"parentUri,omitempty"`
}

// CreatePost handles POST /api/posts. A request carrying a root or parent
// reference creates a comment instead of a top-level post.
func (c *ContentController) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req createPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if req.OwnerDID == "" || req.Text == "" {
		http.Error(w, "ownerDid and text are required", http.StatusBadRequest)
		return
	}

	var uri string
	var err error
	if req.RootURI != "" || req.ParentURI != "" {
		uri, err = c.Service.CreateComment(r.Context(), req.OwnerDID, req.Text, req.RootURI, req.ParentURI)
	} else {
		uri, err = c.Service.CreatePost(r.Context(), req.OwnerDID, req.Text, req.Embed, req.Facets)
	}
	if err != nil {
		log.Printf("❌ Error creating post for %s: %v", req.OwnerDID, err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"uri": uri})
}

// GetPost handles GET /api/posts/{did}/{rkey}
func (c *ContentController) GetPost(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	view, err := c.Service.GetPost(r.Context(), vars["rkey"], vars["did"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ListOwnerPosts handles GET /api/posts/{did}
func (c *ContentController) ListOwnerPosts(w http.ResponseWriter, r *http.Request) {
	did := mux.Vars(r)["did"]
	limit := parseLimit(r.URL.Query().Get("limit"))
	cursor := r.URL.Query().Get("cursor")

	page, err := c.Service.ListOwnerPosts(r.Context(), did, limit, cursor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// ListGlobalFeed handles GET /api/feed
func (c *ContentController) ListGlobalFeed(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r.URL.Query().Get("limit"))
	cursor := r.URL.Query().Get("cursor")

	page, err := c.Service.ListGlobalFeed(r.Context(), limit, cursor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// ListComments handles GET /api/posts/{did}/{rkey}/comments
func (c *ContentController) ListComments(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	limit := parseLimit(r.URL.Query().Get("limit"))
	cursor := r.URL.Query().Get("cursor")

	rootURI := utils.BuildRecordURI(vars["did"], models.CollectionPost, vars["rkey"])
	page, err := c.Service.ListComments(r.Context(), rootURI, limit, cursor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// DeletePost handles DELETE /api/posts/{did}/{rkey}
func (c *ContentController) DeletePost(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	if err := c.Service.DeletePost(r.Context(), vars["rkey"], vars["did"]); err != nil {
		log.Printf("❌ Error deleting post %s/%s: %v", vars["did"], vars["rkey"], err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Post deleted"})
}

// DeleteComment handles DELETE /api/posts/{did}/{rkey}/comment
func (c *ContentController) DeleteComment(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	if err := c.Service.DeleteComment(r.Context(), vars["rkey"], vars["did"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Comment deleted"})
}
