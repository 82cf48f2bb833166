package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/quotecraft/quoting-system/internal/core/domain"
)

const refreshTokensCollection = "refresh_tokens"

// TokenRepository implements ports.TokenRepository using MongoDB. Records
// are never deleted; revocation is a conditional update so at most one
// caller can revoke a given token.
type TokenRepository struct {
	coll *mongo.Collection
}

func NewTokenRepository(db *mongo.Database) *TokenRepository {
	return &TokenRepository{coll: db.Collection(refreshTokensCollection)}
}

type mongoRefreshToken struct {
	ID              string     `bson:"_id"`
	Token           string     `bson:"token"`
	UserID          string     `bson:"user_id"`
	Expires         time.Time  `bson:"expires"`
	Created         time.Time  `bson:"created"`
	CreatedByIP     string     `bson:"created_by_ip,omitempty"`
	IsRevoked       bool       `bson:"is_revoked"`
	RevokedAt       *time.Time `bson:"revoked_at,omitempty"`
	RevokedByIP     string     `bson:"revoked_by_ip,omitempty"`
	ReplacedByToken string     `bson:"replaced_by_token,omitempty"`
}

func (m *mongoRefreshToken) toDomain() *domain.RefreshToken {
	t := &domain.RefreshToken{
		ID:              m.ID,
		Token:           m.Token,
		UserID:          m.UserID,
		Expires:         m.Expires.UTC(),
		Created:         m.Created.UTC(),
		CreatedByIP:     m.CreatedByIP,
		IsRevoked:       m.IsRevoked,
		RevokedByIP:     m.RevokedByIP,
		ReplacedByToken: m.ReplacedByToken,
	}
	if m.RevokedAt != nil {
		at := m.RevokedAt.UTC()
		t.RevokedAt = &at
	}
	return t
}

func (r *TokenRepository) Create(ctx context.Context, t *domain.RefreshToken) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.coll.InsertOne(ctx, mongoRefreshToken{
		ID:          t.ID,
		Token:       t.Token,
		UserID:      t.UserID,
		Expires:     t.Expires,
		Created:     t.Created,
		CreatedByIP: t.CreatedByIP,
	})
	if err != nil {
		return fmt.Errorf("insert refresh token: %w", err)
	}
	return nil
}

func (r *TokenRepository) FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	return r.findOne(ctx, bson.M{"token": token})
}

func (r *TokenRepository) FindByReplacement(ctx context.Context, token string) (*domain.RefreshToken, error) {
	return r.findOne(ctx, bson.M{"replaced_by_token": token})
}

// Revoke marks token revoked only if it is not revoked yet. A token that
// exists but was already revoked yields domain.ErrRefreshTokenRevoked.
func (r *TokenRepository) Revoke(ctx context.Context, token, ip, replacedBy string, at time.Time) (*domain.RefreshToken, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{
		"is_revoked":    true,
		"revoked_at":    at,
		"revoked_by_ip": ip,
	}
	if replacedBy != "" {
		set["replaced_by_token"] = replacedBy
	}

	var doc mongoRefreshToken
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"token": token, "is_revoked": false},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err == nil {
		return doc.toDomain(), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("revoke refresh token: %w", err)
	}

	n, err := r.coll.CountDocuments(ctx, bson.M{"token": token})
	if err != nil {
		return nil, fmt.Errorf("revoke refresh token: %w", err)
	}
	if n == 0 {
		return nil, domain.ErrRefreshTokenNotFound
	}
	return nil, domain.ErrRefreshTokenRevoked
}

func (r *TokenRepository) RevokeAllForUser(ctx context.Context, userID, ip string, at time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.UpdateMany(ctx,
		bson.M{"user_id": userID, "is_revoked": false, "expires": bson.M{"$gt": at}},
		bson.M{"$set": bson.M{"is_revoked": true, "revoked_at": at, "revoked_by_ip": ip}},
	)
	if err != nil {
		return 0, fmt.Errorf("revoke user tokens: %w", err)
	}
	return res.ModifiedCount, nil
}

func (r *TokenRepository) findOne(ctx context.Context, filter bson.M) (*domain.RefreshToken, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoRefreshToken
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRefreshTokenNotFound
		}
		return nil, fmt.Errorf("find refresh token: %w", err)
	}
	return doc.toDomain(), nil
}

// EnsureIndexes creates the token lookup indexes.
func (r *TokenRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "token", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "is_revoked", Value: 1}}},
		{Keys: bson.D{{Key: "replaced_by_token", Value: 1}}, Options: options.Index().SetSparse(true)},
	})
	return err
}
