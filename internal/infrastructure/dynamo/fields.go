package dynamo

// DynamoDB attribute names used in key and update expressions across repos.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldEmail     = "email"
	fieldUserID    = "user_id"
	fieldActive    = "active"
	fieldCreatedAt = "created_at"
	fieldLastLogin = "last_login"
	fieldCode      = "code"
	fieldExpiresAt = "expires_at"

	// aliasPrefix marks id alias items in the users table. Alias keys carry no
	// '@', so they never collide with an email key.
	aliasPrefix = "id#"
)
