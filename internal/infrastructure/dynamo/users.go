package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-otp-auth/internal/domain"
	"github.com/go-otp-auth/internal/pkg/id"
)

// userAlias maps a user id back to the owning email. It lives in the users
// table under the key "id#<user_id>" so lookups by id can read consistently.
type userAlias struct {
	Key        string `dynamodbav:"email"`
	OwnerEmail string `dynamodbav:"owner_email"`
}

func aliasKey(userID string) string { return aliasPrefix + userID }

// UserRepo provides typed DynamoDB operations for the users table.
// PK: email. Token subjects resolve through id aliases.
type UserRepo struct {
	client    API
	tableName string
	now       func() time.Time
}

func NewUserRepo(client API, tableName string) *UserRepo {
	return &UserRepo{client: client, tableName: tableName, now: time.Now}
}

// UpsertByEmail creates the user on first login and refreshes last_login on
// every later one, in a single UpdateItem. The user_id minted here is kept
// only when the item had none.
func (r *UserRepo) UpsertByEmail(ctx context.Context, email string) (*domain.User, error) {
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("upsert user %q: %w", email, domain.ErrBadRequest)
	}
	now := r.now().UTC()
	ue, err := buildUpdateExpr(map[string]interface{}{fieldLastLogin: now})
	if err != nil {
		return nil, err
	}
	for _, f := range []struct {
		name  string
		value interface{}
	}{
		{fieldUserID, id.New()},
		{fieldCreatedAt, now},
		{fieldActive, true},
	} {
		if err := ue.setIfAbsent(f.name, f.value); err != nil {
			return nil, err
		}
	}

	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(fieldEmail, email),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	var u domain.User
	if err := attributevalue.UnmarshalMap(out.Attributes, &u); err != nil {
		return nil, fmt.Errorf("unmarshal user: %w", err)
	}
	// Rewritten on every login so a failed write heals on the next one.
	if err := r.putAlias(ctx, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID resolves a token subject. It reads the id alias written by
// UpsertByEmail and then the user item, both strongly consistent.
func (r *UserRepo) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(fieldEmail, aliasKey(userID)),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get user alias: %w", err)
	}
	var a userAlias
	if out.Item != nil {
		if err := attributevalue.UnmarshalMap(out.Item, &a); err != nil {
			return nil, fmt.Errorf("unmarshal user alias: %w", err)
		}
	}
	if a.OwnerEmail == "" {
		return nil, fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}
	u, err := r.getByEmail(ctx, a.OwnerEmail)
	if err != nil {
		return nil, err
	}
	if u.UserID != userID {
		return nil, fmt.Errorf("user %s: stale alias: %w", userID, domain.ErrNotFound)
	}
	return u, nil
}

// ExistsByID reports whether userID belongs to an active user.
func (r *UserRepo) ExistsByID(ctx context.Context, userID string) (bool, error) {
	u, err := r.GetByID(ctx, userID)
	if err == nil {
		return u.Active, nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	return false, err
}

func (r *UserRepo) getByEmail(ctx context.Context, email string) (*domain.User, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(fieldEmail, email),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if out.Item == nil {
		return nil, fmt.Errorf("user %s: %w", email, domain.ErrNotFound)
	}
	var u domain.User
	if err := attributevalue.UnmarshalMap(out.Item, &u); err != nil {
		return nil, fmt.Errorf("unmarshal user: %w", err)
	}
	return &u, nil
}

func (r *UserRepo) putAlias(ctx context.Context, u *domain.User) error {
	item, err := attributevalue.MarshalMap(userAlias{Key: aliasKey(u.UserID), OwnerEmail: u.Email})
	if err != nil {
		return fmt.Errorf("marshal user alias: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put user alias: %w", err)
	}
	return nil
}
