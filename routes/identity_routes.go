package routes

import (
	"ripple_server/controllers"
	"ripple_server/services"

	"github.com/gorilla/mux"
)

// RegisterIdentityRoutes sets up routes for identity link operations
func RegisterIdentityRoutes(r *mux.Router, identityService *services.IdentityService) {
	controller := controllers.NewIdentityController(identityService)

	identityRouter := r.PathPrefix("/api/identity").Subrouter()
	identityRouter.HandleFunc("/lookups", controller.RegisterLookup).Methods("POST")
	identityRouter.HandleFunc("/lookups/{linkedId}", controller.ResolveLookup).Methods("GET")
	identityRouter.HandleFunc("/{did}/links", controller.CreateLink).Methods("POST")
	identityRouter.HandleFunc("/{did}/links", controller.ListLinks).Methods("GET")
	identityRouter.HandleFunc("/{did}/password", controller.SetPassword).Methods("PUT")
	identityRouter.HandleFunc("/{did}/password/verify", controller.VerifyPassword).Methods("POST")
}
