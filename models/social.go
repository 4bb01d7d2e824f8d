package models

// Like is an idempotent edge from a user to a post.
//
// PK = LIKE#<postURI>, SK = USER#<userDid>. At most one item per (post, user),
// enforced by a conditional create.
type Like struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	PostURI   string `dynamodbav:"postUri"`
	UserDID   string `dynamodbav:"userDid"`
	CreatedAt string `dynamodbav:"createdAt"`
}

// Follow is an idempotent edge from a follower to a followed user.
//
// PK = USER#<followerDid>, SK = FOLLOW#<followingDid>. The reverse lookup
// (who follows X) goes through GSI1: gsi1pk = FOLLOW#<followingDid>.
type Follow struct {
	PK           string `dynamodbav:"PK"`
	SK           string `dynamodbav:"SK"`
	GSI1PK       string `dynamodbav:"gsi1pk"`
	GSI1SK       string `dynamodbav:"gsi1sk"`
	FollowerDID  string `dynamodbav:"followerDid"`
	FollowingDID string `dynamodbav:"followingDid"`
	CreatedAt    string `dynamodbav:"createdAt"`
}
