package routes

import (
	"ripple_server/controllers"
	"ripple_server/services"

	"github.com/gorilla/mux"
)

// RegisterContentRoutes sets up routes for post and comment operations
func RegisterContentRoutes(r *mux.Router, contentService *services.ContentService) {
	controller := controllers.NewContentController(contentService)

	r.HandleFunc("/api/feed", controller.ListGlobalFeed).Methods("GET")

	postRouter := r.PathPrefix("/api/posts").Subrouter()
	postRouter.HandleFunc("", controller.CreatePost).Methods("POST")
	postRouter.HandleFunc("/{did}", controller.ListOwnerPosts).Methods("GET")
	postRouter.HandleFunc("/{did}/{rkey}", controller.GetPost).Methods("GET")
	postRouter.HandleFunc("/{did}/{rkey}", controller.DeletePost).Methods("DELETE")
	postRouter.HandleFunc("/{did}/{rkey}/comments", controller.ListComments).Methods("GET")
	postRouter.HandleFunc("/{did}/{rkey}/comment", controller.DeleteComment).Methods("DELETE")
}
