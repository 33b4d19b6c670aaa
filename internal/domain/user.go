package domain

import "time"

// User is the identity resolved from a verified email.
// PK: email. UserID is generated once and never changes.
type User struct {
	UserID    string    `json:"id" dynamodbav:"user_id"`
	Email     string    `json:"email" dynamodbav:"email"`
	Active    bool      `json:"active" dynamodbav:"active"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
	LastLogin time.Time `json:"last_login" dynamodbav:"last_login"`
}
