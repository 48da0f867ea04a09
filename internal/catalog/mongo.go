package catalog

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/fjod/storefront/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Mongo reads products from the "products" collection, keyed by product id.
type Mongo struct {
	collection *mongo.Collection
}

func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{collection: db.Collection("products")}
}

// Seed upserts products so repeated startups converge on the same catalog.
func (m *Mongo) Seed(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}
	models := make([]mongo.WriteModel, 0, len(products))
	for _, p := range products {
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": p.ID}).
			SetReplacement(p).
			SetUpsert(true))
	}
	if _, err := m.collection.BulkWrite(ctx, models); err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}
	return nil
}

// CreateIndexes adds the index used by category filtering.
func (m *Mongo) CreateIndexes(ctx context.Context) error {
	_, err := m.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "category", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create category index: %w", err)
	}
	return nil
}

func (m *Mongo) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return m.find(ctx, bson.M{})
}

func (m *Mongo) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := m.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &p, nil
}

func (m *Mongo) ListByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	if category == "" || category == domain.CategoryAll {
		return m.ListProducts(ctx)
	}
	return m.find(ctx, bson.M{"category": category})
}

func (m *Mongo) Search(ctx context.Context, query string) ([]domain.Product, error) {
	if strings.TrimSpace(query) == "" {
		return m.ListProducts(ctx)
	}
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	filter := bson.M{"$or": bson.A{
		bson.M{"name": pattern},
		bson.M{"description": pattern},
		bson.M{"category": pattern},
	}}
	return m.find(ctx, filter)
}

func (m *Mongo) find(ctx context.Context, filter bson.M) ([]domain.Product, error) {
	cursor, err := m.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer cursor.Close(ctx)

	products := []domain.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	sortByID(products)
	return products, nil
}
