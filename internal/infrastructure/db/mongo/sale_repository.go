package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gestion-ventes/ventes-api/internal/core/domain"
	"github.com/gestion-ventes/ventes-api/internal/core/ports"
)

const collectionSales = "ventes"

var _ ports.SaleRepository = (*SaleRepository)(nil)

type SaleRepository struct {
	db      *mongo.Database
	col     *mongo.Collection
	timeout time.Duration
}

// NewSaleRepository bounds every operation by timeout; zero or less uses
// defaultTimeout.
func NewSaleRepository(db *mongo.Database, timeout time.Duration) *SaleRepository {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &SaleRepository{db: db, col: db.Collection(collectionSales), timeout: timeout}
}

type mongoSale struct {
	NumProduit int64     `bson:"_id"`
	Design     string    `bson:"design"`
	Prix       float64   `bson:"prix"`
	Quantite   int       `bson:"quantite"`
	CreatedAt  time.Time `bson:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at"`
}

func (m mongoSale) toDomain() *domain.Sale {
	return &domain.Sale{
		NumProduit: m.NumProduit,
		Design:     m.Design,
		Prix:       m.Prix,
		Quantite:   m.Quantite,
		CreatedAt:  m.CreatedAt.UTC(),
		UpdatedAt:  m.UpdatedAt.UTC(),
	}
}

func (r *SaleRepository) List(ctx context.Context) ([]*domain.Sale, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoSale
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode sales: %w", err)
	}

	sales := make([]*domain.Sale, 0, len(docs))
	for _, d := range docs {
		sales = append(sales, d.toDomain())
	}
	return sales, nil
}

func (r *SaleRepository) Get(ctx context.Context, numProduit int64) (*domain.Sale, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var doc mongoSale
	if err := r.col.FindOne(ctx, bson.M{"_id": numProduit}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSaleNotFound
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *SaleRepository) Create(ctx context.Context, s *domain.Sale) (*domain.Sale, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	id, err := nextSequence(ctx, r.db, collectionSales)
	if err != nil {
		return nil, err
	}

	created := s.CreatedAt.UTC().Truncate(time.Millisecond)
	doc := mongoSale{
		NumProduit: id,
		Design:     s.Design,
		Prix:       s.Prix,
		Quantite:   s.Quantite,
		CreatedAt:  created,
		UpdatedAt:  s.UpdatedAt.UTC().Truncate(time.Millisecond),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert sale: %w", err)
	}
	return doc.toDomain(), nil
}

// Update replaces the mutable fields of an existing document without upserting.
func (r *SaleRepository) Update(ctx context.Context, s *domain.Sale) (*domain.Sale, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"design":     s.Design,
		"prix":       s.Prix,
		"quantite":   s.Quantite,
		"updated_at": s.UpdatedAt.UTC().Truncate(time.Millisecond),
	}}

	var doc mongoSale
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": s.NumProduit}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSaleNotFound
		}
		return nil, fmt.Errorf("update sale: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *SaleRepository) Delete(ctx context.Context, numProduit int64) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": numProduit})
	if err != nil {
		return fmt.Errorf("delete sale: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrSaleNotFound
	}
	return nil
}
