package routes

import (
	"ripple_server/controllers"
	"ripple_server/services"

	"github.com/gorilla/mux"
)

// RegisterAccountRoutes sets up routes for account lifecycle operations
func RegisterAccountRoutes(r *mux.Router, accountService *services.AccountService) {
	controller := controllers.NewAccountController(accountService)

	accountRouter := r.PathPrefix("/api/accounts").Subrouter()
	accountRouter.HandleFunc("/{did}/suspend", controller.SuspendAccount).Methods("POST")
	accountRouter.HandleFunc("/{did}/reactivate", controller.ReactivateAccount).Methods("POST")
	accountRouter.HandleFunc("/{did}", controller.DeleteAccount).Methods("DELETE")
}
