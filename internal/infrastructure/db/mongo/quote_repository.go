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

const quotesCollection = "quotes"

// QuoteRepository implements ports.QuoteRepository using MongoDB. Every
// query is filtered by company_id.
type QuoteRepository struct {
	col *mongo.Collection
}

func NewQuoteRepository(db *mongo.Database) *QuoteRepository {
	return &QuoteRepository{col: db.Collection(quotesCollection)}
}

type mongoQuote struct {
	ID              string    `bson:"_id"`
	QuoteNumber     string    `bson:"quote_number"`
	ClientID        string    `bson:"client_id,omitempty"`
	ClientName      string    `bson:"client_name"`
	Description     string    `bson:"description"`
	Amount          float64   `bson:"amount"`
	Date            time.Time `bson:"date"`
	Status          string    `bson:"status"`
	UserID          string    `bson:"user_id"`
	CompanyID       string    `bson:"company_id"`
	XeroQuoteID     string    `bson:"xero_quote_id,omitempty"`
	XeroQuoteNumber string    `bson:"xero_quote_number,omitempty"`
	XeroQuoteURL    string    `bson:"xero_quote_url,omitempty"`
	CreatedAt       time.Time `bson:"created_at"`
	UpdatedAt       time.Time `bson:"updated_at"`
}

func (m *mongoQuote) toDomain() *domain.Quote {
	return &domain.Quote{
		ID:              m.ID,
		QuoteNumber:     m.QuoteNumber,
		ClientID:        m.ClientID,
		ClientName:      m.ClientName,
		Description:     m.Description,
		Amount:          m.Amount,
		Date:            m.Date.UTC(),
		Status:          domain.QuoteStatus(m.Status),
		UserID:          m.UserID,
		CompanyID:       m.CompanyID,
		XeroQuoteID:     m.XeroQuoteID,
		XeroQuoteNumber: m.XeroQuoteNumber,
		XeroQuoteURL:    m.XeroQuoteURL,
		CreatedAt:       m.CreatedAt.UTC(),
		UpdatedAt:       m.UpdatedAt.UTC(),
	}
}

func (r *QuoteRepository) Create(ctx context.Context, q *domain.Quote) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, mongoQuote{
		ID:              q.ID,
		QuoteNumber:     q.QuoteNumber,
		ClientID:        q.ClientID,
		ClientName:      q.ClientName,
		Description:     q.Description,
		Amount:          q.Amount,
		Date:            q.Date,
		Status:          string(q.Status),
		UserID:          q.UserID,
		CompanyID:       q.CompanyID,
		XeroQuoteID:     q.XeroQuoteID,
		XeroQuoteNumber: q.XeroQuoteNumber,
		XeroQuoteURL:    q.XeroQuoteURL,
		CreatedAt:       q.CreatedAt,
		UpdatedAt:       q.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("insert quote: %w", err)
	}
	return nil
}

func (r *QuoteRepository) FindByID(ctx context.Context, companyID, id string) (*domain.Quote, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoQuote
	if err := r.col.FindOne(ctx, bson.M{"_id": id, "company_id": companyID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrQuoteNotFound
		}
		return nil, fmt.Errorf("find quote: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *QuoteRepository) List(ctx context.Context, companyID string, status domain.QuoteStatus) ([]*domain.Quote, error) {
	filter := bson.M{"company_id": companyID}
	if status != "" {
		filter["status"] = string(status)
	}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
}

// RecentForClient returns at most limit quotes of clientID, newest first.
func (r *QuoteRepository) RecentForClient(ctx context.Context, companyID, clientID string, limit int) ([]*domain.Quote, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}}).
		SetLimit(int64(limit))
	return r.find(ctx, bson.M{"company_id": companyID, "client_id": clientID}, opts)
}

func (r *QuoteRepository) UpdateStatus(ctx context.Context, companyID, id string, status domain.QuoteStatus) (*domain.Quote, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoQuote
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "company_id": companyID},
		bson.M{"$set": bson.M{"status": string(status), "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrQuoteNotFound
		}
		return nil, fmt.Errorf("update quote status: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *QuoteRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.Quote, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoQuote
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode quotes: %w", err)
	}
	out := make([]*domain.Quote, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

// EnsureIndexes creates the quote lookup indexes.
func (r *QuoteRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "company_id", Value: 1}, {Key: "date", Value: -1}}},
		{Keys: bson.D{{Key: "company_id", Value: 1}, {Key: "client_id", Value: 1}, {Key: "date", Value: -1}}},
		{Keys: bson.D{{Key: "quote_number", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	return err
}
