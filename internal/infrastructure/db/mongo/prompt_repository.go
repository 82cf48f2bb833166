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
	"github.com/quotecraft/quoting-system/internal/core/ports"
)

const promptsCollection = "system_prompts"

// PromptRepository implements ports.PromptRepository and
// ports.PromptLayerReader using MongoDB.
type PromptRepository struct {
	coll *mongo.Collection
}

func NewPromptRepository(db *mongo.Database) *PromptRepository {
	return &PromptRepository{coll: db.Collection(promptsCollection)}
}

type mongoPrompt struct {
	ID         string    `bson:"_id"`
	Name       string    `bson:"name"`
	Content    string    `bson:"content"`
	PromptType string    `bson:"prompt_type"`
	IndustryID string    `bson:"industry_id,omitempty"`
	CompanyID  string    `bson:"company_id,omitempty"`
	IsActive   bool      `bson:"is_active"`
	CreatedBy  string    `bson:"created_by,omitempty"`
	CreatedAt  time.Time `bson:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at"`
}

func promptToDoc(p *domain.SystemPrompt) mongoPrompt {
	return mongoPrompt{
		ID:         p.ID,
		Name:       p.Name,
		Content:    p.Content,
		PromptType: string(p.PromptType),
		IndustryID: p.IndustryID,
		CompanyID:  p.CompanyID,
		IsActive:   p.IsActive,
		CreatedBy:  p.CreatedBy,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

func (m *mongoPrompt) toDomain() *domain.SystemPrompt {
	pt := domain.PromptType(m.PromptType)
	if !pt.Valid() {
		// records created before prompt_type existed
		pt = domain.InferPromptType(m.Name)
	}
	return &domain.SystemPrompt{
		ID:         m.ID,
		Name:       m.Name,
		Content:    m.Content,
		PromptType: pt,
		IndustryID: m.IndustryID,
		CompanyID:  m.CompanyID,
		IsActive:   m.IsActive,
		CreatedBy:  m.CreatedBy,
		CreatedAt:  m.CreatedAt.UTC(),
		UpdatedAt:  m.UpdatedAt.UTC(),
	}
}

func (r *PromptRepository) Create(ctx context.Context, p *domain.SystemPrompt) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, promptToDoc(p)); err != nil {
		if mongo.IsDuplicateKeyError(err) && p.PromptType == domain.PromptCore {
			return domain.ErrCorePromptExists
		}
		return fmt.Errorf("insert prompt: %w", err)
	}
	return nil
}

func (r *PromptRepository) FindByID(ctx context.Context, id string) (*domain.SystemPrompt, error) {
	return r.findOne(ctx, bson.M{"_id": id}, nil)
}

func (r *PromptRepository) List(ctx context.Context, filter ports.PromptFilter) ([]*domain.SystemPrompt, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	q := bson.M{}
	if filter.PromptType != "" {
		q["prompt_type"] = string(filter.PromptType)
	}
	if filter.IndustryID != "" {
		q["industry_id"] = filter.IndustryID
	}
	if filter.ActiveOnly {
		q["is_active"] = true
	}

	opts := options.Find().SetSort(bson.D{{Key: "prompt_type", Value: 1}, {Key: "name", Value: 1}})
	cur, err := r.coll.Find(ctx, q, opts)
	if err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoPrompt
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode prompts: %w", err)
	}
	out := make([]*domain.SystemPrompt, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func (r *PromptRepository) Update(ctx context.Context, p *domain.SystemPrompt) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": p.ID}, bson.M{"$set": bson.M{
		"name":        p.Name,
		"content":     p.Content,
		"industry_id": p.IndustryID,
		"is_active":   p.IsActive,
		"updated_at":  p.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("update prompt: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrPromptNotFound
	}
	return nil
}

func (r *PromptRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete prompt: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrPromptNotFound
	}
	return nil
}

// SetActive flips is_active on id. With exclusiveIndustry set, sibling
// industry prompts are deactivated first so readers never see two active.
func (r *PromptRepository) SetActive(ctx context.Context, id string, active bool, exclusiveIndustry string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now().UTC()
	if active && exclusiveIndustry != "" {
		_, err := r.coll.UpdateMany(ctx, bson.M{
			"_id":         bson.M{"$ne": id},
			"prompt_type": string(domain.PromptIndustry),
			"industry_id": exclusiveIndustry,
			"is_active":   true,
		}, bson.M{"$set": bson.M{"is_active": false, "updated_at": now}})
		if err != nil {
			return fmt.Errorf("deactivate sibling prompts: %w", err)
		}
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_active": active, "updated_at": now}})
	if err != nil {
		return fmt.Errorf("set prompt active: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrPromptNotFound
	}
	return nil
}

func (r *PromptRepository) ActiveCore(ctx context.Context) (*domain.SystemPrompt, error) {
	return r.findOne(ctx, bson.M{"_id": domain.CorePromptID, "is_active": true}, nil)
}

func (r *PromptRepository) ActiveForIndustry(ctx context.Context, industryID string) (*domain.SystemPrompt, error) {
	return r.findOne(ctx, bson.M{
		"prompt_type": string(domain.PromptIndustry),
		"industry_id": industryID,
		"is_active":   true,
	}, options.FindOne().SetSort(bson.D{{Key: "updated_at", Value: -1}}))
}

func (r *PromptRepository) findOne(ctx context.Context, filter bson.M, opts *options.FindOneOptions) (*domain.SystemPrompt, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var findOpts []*options.FindOneOptions
	if opts != nil {
		findOpts = append(findOpts, opts)
	}

	var doc mongoPrompt
	if err := r.coll.FindOne(ctx, filter, findOpts...).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPromptNotFound
		}
		return nil, fmt.Errorf("find prompt: %w", err)
	}
	return doc.toDomain(), nil
}

// EnsureIndexes creates the prompt lookup indexes.
func (r *PromptRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "prompt_type", Value: 1}, {Key: "industry_id", Value: 1}, {Key: "is_active", Value: 1}}},
	})
	return err
}
