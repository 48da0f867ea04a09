package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type userDocument struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	CreatedAt    time.Time `bson:"created_at"`
}

// Mongo stores accounts in the "users" collection.
type Mongo struct {
	collection *mongo.Collection
}

func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{collection: db.Collection("users")}
}

func (m *Mongo) CreateIndexes(ctx context.Context) error {
	_, err := m.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create email index: %w", err)
	}
	return nil
}

func (m *Mongo) Login(ctx context.Context, email, password string) (*domain.User, error) {
	if err := validateLogin(email, password); err != nil {
		return nil, err
	}

	var doc userDocument
	err := m.collection.FindOne(ctx, bson.M{"email": normalizeEmail(email)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if !verifyPassword(doc.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return &domain.User{ID: doc.ID, Name: doc.Name, Email: doc.Email}, nil
}

func (m *Mongo) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	if err := validateRegistration(name, email, password); err != nil {
		return nil, err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	doc := userDocument{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(name),
		Email:        normalizeEmail(email),
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := m.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return &domain.User{ID: doc.ID, Name: doc.Name, Email: doc.Email}, nil
}
