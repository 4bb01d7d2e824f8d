package models

// Profile is the primary identity entity, one item per DID.
//
// PK = USER#<did>, SK = USER#<did>. The search* attributes are lowercased
// projections refreshed on every write so profile search can match
// case-insensitively without touching the display fields.
type Profile struct {
	PK                string `dynamodbav:"PK"`
	SK                string `dynamodbav:"SK"`
	DID               string `dynamodbav:"did"`
	Handle            string `dynamodbav:"handle,omitempty"`
	Username          string `dynamodbav:"username,omitempty"`
	DisplayName       string `dynamodbav:"displayName,omitempty"`
	Bio               string `dynamodbav:"bio,omitempty"`
	AvatarURL         string `dynamodbav:"avatarUrl,omitempty"`
	BannerURL         string `dynamodbav:"bannerUrl,omitempty"`
	Email             string `dynamodbav:"email,omitempty"`
	NormalizedEmail   string `dynamodbav:"normalizedEmail,omitempty"`
	AuthProvider      string `dynamodbav:"authProvider,omitempty"`
	AccountStatus     string `dynamodbav:"accountStatus"`
	FollowerCount     int    `dynamodbav:"followerCount"`
	FollowingCount    int    `dynamodbav:"followingCount"`
	PostCount         int    `dynamodbav:"postCount"`
	SearchUsername    string `dynamodbav:"searchUsername,omitempty"`
	SearchDisplayName string `dynamodbav:"searchDisplayName,omitempty"`
	SearchEmail       string `dynamodbav:"searchEmail,omitempty"`
	CreatedAt         string `dynamodbav:"createdAt,omitempty"`
	UpdatedAt         string `dynamodbav:"updatedAt,omitempty"`
}

// ProfileUpdate carries the fields of a partial profile update. Nil pointers
// are left untouched.
type ProfileUpdate struct {
	Handle      *string `json:"handle,omitempty"`
	DisplayName *string `json:"displayName,omitempty"`
	Bio         *string `json:"bio,omitempty"`
	AvatarURL   *string `json:"avatarUrl,omitempty"`
	BannerURL   *string `json:"bannerUrl,omitempty"`
	Email       *string `json:"email,omitempty"`
}
