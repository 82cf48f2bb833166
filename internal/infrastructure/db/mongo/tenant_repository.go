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

const (
	industriesCollection = "industries"
	companiesCollection  = "companies"
	clientsCollection    = "clients"
)

// ---------------------------------------------------------------------------
// Industries
// ---------------------------------------------------------------------------

type IndustryRepository struct {
	coll *mongo.Collection
}

func NewIndustryRepository(db *mongo.Database) *IndustryRepository {
	return &IndustryRepository{coll: db.Collection(industriesCollection)}
}

type mongoIndustry struct {
	ID          string `bson:"_id"`
	Name        string `bson:"name"`
	Description string `bson:"description,omitempty"`
	Icon        string `bson:"icon,omitempty"`
	IsActive    bool   `bson:"is_active"`
}

func (m *mongoIndustry) toDomain() *domain.Industry {
	return &domain.Industry{ID: m.ID, Name: m.Name, Description: m.Description, Icon: m.Icon, IsActive: m.IsActive}
}

func (r *IndustryRepository) FindByID(ctx context.Context, id string) (*domain.Industry, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoIndustry
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrIndustryNotFound
		}
		return nil, fmt.Errorf("find industry: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *IndustryRepository) List(ctx context.Context) ([]*domain.Industry, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list industries: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoIndustry
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode industries: %w", err)
	}
	out := make([]*domain.Industry, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func (r *IndustryRepository) Create(ctx context.Context, ind *domain.Industry) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.coll.InsertOne(ctx, mongoIndustry{
		ID: ind.ID, Name: ind.Name, Description: ind.Description, Icon: ind.Icon, IsActive: ind.IsActive,
	})
	if err != nil {
		return fmt.Errorf("insert industry: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Companies
// ---------------------------------------------------------------------------

type CompanyRepository struct {
	coll *mongo.Collection
}

func NewCompanyRepository(db *mongo.Database) *CompanyRepository {
	return &CompanyRepository{coll: db.Collection(companiesCollection)}
}

type mongoCompany struct {
	ID         string    `bson:"_id"`
	Name       string    `bson:"name"`
	IndustryID string    `bson:"industry_id,omitempty"`
	IsActive   bool      `bson:"is_active"`
	CreatedAt  time.Time `bson:"created_at"`
}

func (r *CompanyRepository) FindByID(ctx context.Context, id string) (*domain.Company, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoCompany
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCompanyNotFound
		}
		return nil, fmt.Errorf("find company: %w", err)
	}
	return &domain.Company{
		ID:         doc.ID,
		Name:       doc.Name,
		IndustryID: doc.IndustryID,
		IsActive:   doc.IsActive,
		CreatedAt:  doc.CreatedAt.UTC(),
	}, nil
}

func (r *CompanyRepository) Create(ctx context.Context, c *domain.Company) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.coll.InsertOne(ctx, mongoCompany{
		ID: c.ID, Name: c.Name, IndustryID: c.IndustryID, IsActive: c.IsActive, CreatedAt: c.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Clients
// ---------------------------------------------------------------------------

type ClientRepository struct {
	coll *mongo.Collection
}

func NewClientRepository(db *mongo.Database) *ClientRepository {
	return &ClientRepository{coll: db.Collection(clientsCollection)}
}

type mongoClient struct {
	ID        string    `bson:"_id"`
	CompanyID string    `bson:"company_id"`
	Name      string    `bson:"name"`
	Email     string    `bson:"email,omitempty"`
	Phone     string    `bson:"phone,omitempty"`
	Address   string    `bson:"address,omitempty"`
	Notes     string    `bson:"notes,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
}

func (m *mongoClient) toDomain() *domain.Client {
	return &domain.Client{
		ID:        m.ID,
		CompanyID: m.CompanyID,
		Name:      m.Name,
		Email:     m.Email,
		Phone:     m.Phone,
		Address:   m.Address,
		Notes:     m.Notes,
		CreatedAt: m.CreatedAt.UTC(),
	}
}

// FindByID scopes the lookup to companyID; a client of another tenant is
// reported as not found.
func (r *ClientRepository) FindByID(ctx context.Context, companyID, id string) (*domain.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoClient
	if err := r.coll.FindOne(ctx, bson.M{"_id": id, "company_id": companyID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrClientNotFound
		}
		return nil, fmt.Errorf("find client: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ClientRepository) List(ctx context.Context, companyID string) ([]*domain.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.M{"company_id": companyID}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoClient
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode clients: %w", err)
	}
	out := make([]*domain.Client, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func (r *ClientRepository) Create(ctx context.Context, c *domain.Client) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.coll.InsertOne(ctx, mongoClient{
		ID:        c.ID,
		CompanyID: c.CompanyID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

// EnsureIndexes creates the tenant lookup index on clients.
func (r *ClientRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "company_id", Value: 1}}})
	return err
}
