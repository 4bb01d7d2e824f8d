package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"ripple_server/services"
)

type AccountController struct {
	Service *services.AccountService
}

func NewAccountController(service *services.AccountService) *AccountController {
	return &AccountController{Service: service}
}

// SuspendAccount handles POST /api/accounts/{did}/suspend
func (c *AccountController) SuspendAccount(w http.ResponseWriter, r *http.Request) {
	did := mux.Vars(r)["did"]

	if err := c.Service.SuspendAccount(r.Context(), did); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Account suspended"})
}

// ReactivateAccount handles POST /api/accounts/{did}/reactivate
func (c *AccountController) ReactivateAccount(w http.ResponseWriter, r *http.Request) {
	did := mux.Vars(r)["did"]

	if err := c.Service.ReactivateAccount(r.Context(), did); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Account reactivated"})
}

// DeleteAccount handles DELETE /api/accounts/{did}. The local profile
// tombstone and the provider-side deletion can succeed independently, so the
// response always reports both outcomes.
func (c *AccountController) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	did := mux.Vars(r)["did"]

	result, err := c.Service.DeleteAccount(r.Context(), did)
	if err != nil {
		var delErr *services.DeleteAccountError
		if errors.As(err, &delErr) && result.ProfileDeleted {
			log.Printf("⚠️ Account %s deleted locally but %s step failed: %v", did, delErr.Step, delErr.Err)
			writeJSON(w, http.StatusMultiStatus, map[string]interface{}{
				"profileDeleted":  result.ProfileDeleted,
				"externalDeleted": result.ExternalDeleted,
				"error":           delErr.Error(),
			})
			return
		}
		log.Printf("❌ Error deleting account %s: %v", did, err)
		writeError(w, err)
		return
	}

	log.Printf("✅ Account deleted: %s", did)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"profileDeleted":  result.ProfileDeleted,
		"externalDeleted": result.ExternalDeleted,
	})
}
