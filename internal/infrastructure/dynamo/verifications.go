package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-otp-auth/internal/domain"
)

// verificationItem is the stored form of a pending code.
// expires_at is epoch seconds so the table TTL can reap it.
type verificationItem struct {
	Email     string    `dynamodbav:"email"`
	Code      string    `dynamodbav:"code"`
	CreatedAt time.Time `dynamodbav:"created_at"`
	ExpiresAt int64     `dynamodbav:"expires_at"`
}

// VerificationRepo keeps one pending code per email.
// PK: email. DynamoDB TTL deletion lags, so reads check expires_at themselves.
type VerificationRepo struct {
	client    API
	tableName string
	now       func() time.Time
}

func NewVerificationRepo(client API, tableName string) *VerificationRepo {
	return &VerificationRepo{client: client, tableName: tableName, now: time.Now}
}

func (r *VerificationRepo) Put(ctx context.Context, email string, entry domain.VerificationEntry, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("put %q: ttl must be positive", email)
	}
	item, err := attributevalue.MarshalMap(verificationItem{
		Email:     email,
		Code:      entry.Code,
		CreatedAt: entry.CreatedAt.UTC(),
		ExpiresAt: r.now().Add(ttl).Unix(),
	})
	if err != nil {
		return fmt.Errorf("marshal verification: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *VerificationRepo) Get(ctx context.Context, email string) (*domain.VerificationEntry, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(fieldEmail, email),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("verification not found: %w", domain.ErrNotFound)
	}
	var v verificationItem
	if err := attributevalue.UnmarshalMap(out.Item, &v); err != nil {
		return nil, err
	}
	if v.ExpiresAt <= r.now().Unix() {
		return nil, fmt.Errorf("verification expired: %w", domain.ErrNotFound)
	}
	return &domain.VerificationEntry{Code: v.Code, CreatedAt: v.CreatedAt}, nil
}

func (r *VerificationRepo) Delete(ctx context.Context, email string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(fieldEmail, email),
	})
	return err
}

// CompareAndDelete deletes the item only while it holds code and has not expired.
func (r *VerificationRepo) CompareAndDelete(ctx context.Context, email, code string) (bool, error) {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey(fieldEmail, email),
		ConditionExpression: aws.String("#c = :c AND #e > :now"),
		ExpressionAttributeNames: map[string]string{
			"#c": fieldCode,
			"#e": fieldExpiresAt,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":c":   &types.AttributeValueMemberS{Value: code},
			":now": &types.AttributeValueMemberN{Value: strconv.FormatInt(r.now().Unix(), 10)},
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return false, nil
		}
		return false, fmt.Errorf("consume verification: %w", err)
	}
	return true, nil
}
