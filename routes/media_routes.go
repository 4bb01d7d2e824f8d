package routes

import (
	"ripple_server/controllers"

	"github.com/gorilla/mux"
)

// RegisterMediaRoutes sets up routes for media upload operations
func RegisterMediaRoutes(r *mux.Router) {
	mediaRouter := r.PathPrefix("/api/media").Subrouter()
	mediaRouter.HandleFunc("/generate-presigned-url", controllers.GeneratePresignedURL).Methods("POST")
	mediaRouter.HandleFunc("/get-presigned-read-url", controllers.GetPresignedReadURL).Methods("POST")
}
