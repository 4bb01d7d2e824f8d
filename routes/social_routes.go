package routes

import (
	"ripple_server/controllers"
	"ripple_server/services"

	"github.com/gorilla/mux"
)

// RegisterSocialRoutes sets up routes for like and follow operations
func RegisterSocialRoutes(r *mux.Router, socialService *services.SocialService) {
	controller := controllers.NewSocialController(socialService)

	likeRouter := r.PathPrefix("/api/likes").Subrouter()
	likeRouter.HandleFunc("", controller.Like).Methods("POST")
	likeRouter.HandleFunc("", controller.Unlike).Methods("DELETE")
	likeRouter.HandleFunc("/{did}/{rkey}", controller.ListLikers).Methods("GET")

	followRouter := r.PathPrefix("/api/follows").Subrouter()
	followRouter.HandleFunc("", controller.Follow).Methods("POST")
	followRouter.HandleFunc("", controller.Unfollow).Methods("DELETE")
	followRouter.HandleFunc("/{did}/followers", controller.ListFollowers).Methods("GET")
	followRouter.HandleFunc("/{did}/following", controller.ListFollowing).Methods("GET")
}
