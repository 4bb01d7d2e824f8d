package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ripple_server/models"
)

type fakeDeleter struct {
	calls      int
	identities []string
	secrets    []string
	tokens     []string
	err        error
}

func (f *fakeDeleter) DeleteAccount(ctx context.Context, identity, recoveredSecret, accessToken string) error {
	f.calls++
	f.identities = append(f.identities, identity)
	f.secrets = append(f.secrets, recoveredSecret)
	f.tokens = append(f.tokens, accessToken)
	return f.err
}

type fakeDecrypter struct {
	plaintext string
	err       error
}

func (f *fakeDecrypter) Decrypt(ciphertext string) (string, error) {
	return f.plaintext, f.err
}

func newAccountFixture(t *testing.T) (*AccountService, *ProfileService, *IdentityService) {
	t.Helper()
	store := NewMemoryStore()
	identity := &IdentityService{Store: store}
	profiles := &ProfileService{Store: store, Identity: identity}
	mustCreateProfile(t, profiles, "did:plc:alice", "alice.test", "Alice")
	return &AccountService{Profiles: profiles, Identity: identity}, profiles, identity
}

func addProviderLink(t *testing.T, identity *IdentityService, did string) {
	t.Helper()
	_, err := identity.CreateLink(context.Background(), models.IdentityLink{
		DID:                 did,
		LinkedID:            "email:alice@example.com",
		Kind:                models.LinkKindEmail,
		Status:              models.LinkStatusVerified,
		ProviderAccessToken: "token-abc",
		EncryptedSecret:     "ciphertext-xyz",
	})
	if err != nil {
		t.Fatalf("create link failed: %v", err)
	}
}

func TestSuspendAndReactivate(t *testing.T) {
	ctx := context.Background()
	as, profiles, _ := newAccountFixture(t)

	if err := as.SuspendAccount(ctx, "did:plc:alice"); err != nil {
		t.Fatalf("suspend failed: %v", err)
	}
	profile, err := profiles.GetProfile(ctx, "did:plc:alice")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if profile.AccountStatus != models.AccountStatusSuspended {
		t.Fatalf("expected suspended, got %q", profile.AccountStatus)
	}

	if err := as.ReactivateAccount(ctx, "did:plc:alice"); err != nil {
		t.Fatalf("reactivate failed: %v", err)
	}
	profile, err = profiles.GetProfile(ctx, "did:plc:alice")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if profile.AccountStatus != models.AccountStatusActive {
		t.Fatalf("expected active, got %q", profile.AccountStatus)
	}
}

func TestDeleteAccountFullSuccess(t *testing.T) {
	ctx := context.Background()
	as, profiles, identity := newAccountFixture(t)
	addProviderLink(t, identity, "did:plc:alice")

	deleter := &fakeDeleter{}
	as.Deleter = deleter
	as.Decrypter = &fakeDecrypter{plaintext: "recovered-secret"}

	result, err := as.DeleteAccount(ctx, "did:plc:alice")
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if !result.ProfileDeleted || !result.ExternalDeleted {
		t.Fatalf("expected both steps done, got %+v", result)
	}
	if deleter.calls != 1 {
		t.Fatalf("expected one external call, got %d", deleter.calls)
	}
	if deleter.secrets[0] != "recovered-secret" || deleter.tokens[0] != "token-abc" {
		t.Errorf("external call got wrong credentials: %q / %q", deleter.secrets[0], deleter.tokens[0])
	}

	profile, err := profiles.GetProfile(ctx, "did:plc:alice")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if profile.AccountStatus != models.AccountStatusDeleted {
		t.Errorf("expected deleted status, got %q", profile.AccountStatus)
	}
	if !strings.HasPrefix(profile.Handle, "deleted-") {
		t.Errorf("expected anonymized handle, got %q", profile.Handle)
	}
}

func TestDeleteAccountExternalFailure(t *testing.T) {
	ctx := context.Background()
	as, profiles, identity := newAccountFixture(t)
	addProviderLink(t, identity, "did:plc:alice")

	as.Deleter = &fakeDeleter{err: errors.New("provider down")}
	as.Decrypter = &fakeDecrypter{plaintext: "recovered-secret"}

	result, err := as.DeleteAccount(ctx, "did:plc:alice")
	if err == nil {
		t.Fatal("expected an error from the failed external step")
	}
	var delErr *DeleteAccountError
	if !errors.As(err, &delErr) {
		t.Fatalf("expected DeleteAccountError, got %T", err)
	}
	if delErr.Step != DeleteStepExternal {
		t.Errorf("expected external step, got %q", delErr.Step)
	}

	// The local soft-delete still committed.
	if !result.ProfileDeleted {
		t.Error("expected ProfileDeleted=true despite the external failure")
	}
	if result.ExternalDeleted {
		t.Error("expected ExternalDeleted=false")
	}
	profile, err := profiles.GetProfile(ctx, "did:plc:alice")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if profile.AccountStatus != models.AccountStatusDeleted {
		t.Errorf("expected deleted status, got %q", profile.AccountStatus)
	}
}

func TestDeleteAccountWithoutProviderToken(t *testing.T) {
	ctx := context.Background()
	as, _, identity := newAccountFixture(t)

	// A link without provider credentials cannot drive the external step.
	if _, err := identity.CreateLink(ctx, models.IdentityLink{
		DID:      "did:plc:alice",
		LinkedID: "email:alice@example.com",
		Kind:     models.LinkKindEmail,
	}); err != nil {
		t.Fatalf("create link failed: %v", err)
	}
	as.Deleter = &fakeDeleter{}

	result, err := as.DeleteAccount(ctx, "did:plc:alice")
	var delErr *DeleteAccountError
	if !errors.As(err, &delErr) || delErr.Step != DeleteStepExternal {
		t.Fatalf("expected external-step error, got %v", err)
	}
	if !result.ProfileDeleted {
		t.Error("expected local deletion to commit")
	}
}

func TestDeleteAccountDecrypterFailureProceeds(t *testing.T) {
	ctx := context.Background()
	as, _, identity := newAccountFixture(t)
	addProviderLink(t, identity, "did:plc:alice")

	deleter := &fakeDeleter{}
	as.Deleter = deleter
	as.Decrypter = &fakeDecrypter{err: errors.New("bad ciphertext")}

	result, err := as.DeleteAccount(ctx, "did:plc:alice")
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if !result.ExternalDeleted {
		t.Fatal("expected the external step to run without the secret")
	}
	if deleter.secrets[0] != "" {
		t.Errorf("expected empty secret passed through, got %q", deleter.secrets[0])
	}
}

func TestDeleteAccountMissingProfile(t *testing.T) {
	ctx := context.Background()
	as, _, _ := newAccountFixture(t)

	result, err := as.DeleteAccount(ctx, "did:plc:ghost")
	var delErr *DeleteAccountError
	if !errors.As(err, &delErr) {
		t.Fatalf("expected DeleteAccountError, got %v", err)
	}
	if delErr.Step != DeleteStepProfile {
		t.Errorf("expected profile step, got %q", delErr.Step)
	}
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound in the chain, got %v", err)
	}
	if result.ProfileDeleted {
		t.Error("expected ProfileDeleted=false")
	}
}
