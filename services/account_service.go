package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"ripple_server/models"

	"github.com/google/uuid"
)

// ExternalAccountDeleter is the narrow collaborator contract for deleting the
// account held at an external auth provider. The orchestrator depends on
// nothing else about the provider.
type ExternalAccountDeleter interface {
	DeleteAccount(ctx context.Context, identity, recoveredSecret, accessToken string) error
}

// SecretDecrypter recovers a previously stored secret for the external
// deletion call.
type SecretDecrypter interface {
	Decrypt(ciphertext string) (string, error)
}

// DeleteAccountResult is the two-phase outcome of an account deletion, so
// callers can distinguish "user data hidden" from "fully scrubbed".
type DeleteAccountResult struct {
	ProfileDeleted  bool `json:"profileDeleted"`
	ExternalDeleted bool `json:"externalDeleted"`
}

// AccountService orchestrates the account lifecycle: active <-> suspended is
// reversible, deleted is terminal.
type AccountService struct {
	Profiles  *ProfileService
	Identity  *IdentityService
	Deleter   ExternalAccountDeleter
	Decrypter SecretDecrypter
}

// SuspendAccount moves an active profile to suspended.
func (as *AccountService) SuspendAccount(ctx context.Context, did string) error {
	return as.Profiles.SetAccountStatus(ctx, did, models.AccountStatusSuspended)
}

// ReactivateAccount moves a suspended profile back to active.
func (as *AccountService) ReactivateAccount(ctx context.Context, did string) error {
	return as.Profiles.SetAccountStatus(ctx, did, models.AccountStatusActive)
}

// DeleteAccount soft-deletes the profile, then attempts to delete the
// account at the external auth provider on a best-effort basis.
//
// The local soft-delete in step 1 is unconditional: it commits even when the
// external call later fails. A failure after step 1 therefore returns both a
// result with ProfileDeleted=true and a DeleteAccountError. The profile
// status is authoritative and the error means "cleanup incomplete", not
// "deletion did not happen". Posts, comments, likes and follows of the
// deleted account are intentionally left in place for a separate
// anonymization pass.
func (as *AccountService) DeleteAccount(ctx context.Context, did string) (DeleteAccountResult, error) {
	result := DeleteAccountResult{}

	placeholder := "deleted-" + uuid.NewString()[:8]
	if err := as.Profiles.SoftDeleteProfile(ctx, did, placeholder); err != nil {
		return result, &DeleteAccountError{DID: did, Step: DeleteStepProfile, Err: err}
	}
	result.ProfileDeleted = true
	log.Printf("✅ Profile soft-deleted: %s", did)

	// Identity links are retained for audit; find the one carrying external
	// provider credentials.
	link, err := as.findProviderLink(ctx, did)
	if err != nil {
		return result, &DeleteAccountError{DID: did, Step: DeleteStepExternal, Err: err}
	}
	if link == nil || link.ProviderAccessToken == "" {
		return result, &DeleteAccountError{
			DID: did, Step: DeleteStepExternal,
			Err: errors.New("no provider access token on file"),
		}
	}

	recoveredSecret := ""
	if link.EncryptedSecret != "" && as.Decrypter != nil {
		secret, err := as.Decrypter.Decrypt(link.EncryptedSecret)
		if err != nil {
			// Proceed without the secret; the provider may not need it.
			log.Printf("⚠️ Could not recover stored secret for %s: %v", did, err)
		} else {
			recoveredSecret = secret
		}
	}

	if as.Deleter == nil {
		return result, &DeleteAccountError{
			DID: did, Step: DeleteStepExternal,
			Err: errors.New("no external account deleter configured"),
		}
	}
	if err := as.Deleter.DeleteAccount(ctx, did, recoveredSecret, link.ProviderAccessToken); err != nil {
		return result, &DeleteAccountError{
			DID: did, Step: DeleteStepExternal,
			Err: fmt.Errorf("external account deletion failed: %w", err),
		}
	}

	result.ExternalDeleted = true
	log.Printf("✅ Account fully deleted: %s", did)
	return result, nil
}

func (as *AccountService) findProviderLink(ctx context.Context, did string) (*models.IdentityLink, error) {
	links, err := as.Identity.ListLinks(ctx, did)
	if err != nil {
		return nil, err
	}
	for i := range links {
		if links[i].Kind == models.LinkKindEmail && links[i].ProviderAccessToken != "" {
			return &links[i], nil
		}
	}
	return nil, nil
}
