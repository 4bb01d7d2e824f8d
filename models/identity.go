package models

// IdentityLink is a (primaryDid, linkedId) pair binding an external identifier
// (email:*, eip155:*, flow:*, did:*) to a profile.
//
// PK = USER#<did>, SK = LINK#<linkedId>. Link identity is the pair itself,
// there is no surrogate key. Email-kind links additionally carry auth secrets
// and provider tokens. Links are retained on account deletion for audit.
type IdentityLink struct {
	PK       string `dynamodbav:"PK"`
	SK       string `dynamodbav:"SK"`
	DID      string `dynamodbav:"did"`
	LinkedID string `dynamodbav:"linkedId"`
	Kind     string `dynamodbav:"kind"`
	Role     string `dynamodbav:"role,omitempty"`
	Status   string `dynamodbav:"status"`

	// Verification proof metadata
	Proof      string `dynamodbav:"proof,omitempty"`
	VerifiedAt string `dynamodbav:"verifiedAt,omitempty"`

	// Auth secrets, email-kind links only
	PasswordHash    string `dynamodbav:"passwordHash,omitempty"`
	KDFParams       string `dynamodbav:"kdfParams,omitempty"`
	FailedLogins    int    `dynamodbav:"failedLogins,omitempty"`
	LockedUntil     string `dynamodbav:"lockedUntil,omitempty"`
	TokenHash       string `dynamodbav:"tokenHash,omitempty"`
	EncryptedSecret string `dynamodbav:"encryptedSecret,omitempty"`

	// External provider tokens, email-kind links only
	ProviderAccessToken  string `dynamodbav:"providerAccessToken,omitempty"`
	ProviderRefreshToken string `dynamodbav:"providerRefreshToken,omitempty"`

	CreatedAt string `dynamodbav:"createdAt,omitempty"`
	UpdatedAt string `dynamodbav:"updatedAt,omitempty"`
}

// IdentityLookup is the reverse index from a linkedId to its owning DID.
//
// PK = SK = LINK#<linkedId>. A linkedId maps to at most one DID at a time;
// the store enforces this with a conditional create.
type IdentityLookup struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	LinkedID  string `dynamodbav:"linkedId"`
	DID       string `dynamodbav:"did"`
	Status    string `dynamodbav:"status"`
	CreatedAt string `dynamodbav:"createdAt,omitempty"`
	UpdatedAt string `dynamodbav:"updatedAt,omitempty"`
}
