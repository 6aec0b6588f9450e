package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/opportunitycup/marketplace-api/internal/core/domain"
)

const collectionUsers = "users"

// UserRepository implements ports.UserRepository using MongoDB.
type UserRepository struct {
	col *mongo.Collection
	now func() time.Time
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(collectionUsers), now: time.Now}
}

type mongoUser struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	Role         string             `bson:"role"`
	Balance      int64              `bson:"balance"`
	Logo         string             `bson:"logo,omitempty"`
	Customer     mongoCustomer      `bson:"customer"`
	Executor     mongoExecutor      `bson:"executor"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

type mongoCustomer struct {
	Rating float64 `bson:"rating"`
}

type mongoExecutor struct {
	Description     string   `bson:"description,omitempty"`
	Classification  string   `bson:"classification,omitempty"`
	Tags            []string `bson:"tags,omitempty"`
	Specializations []string `bson:"specializations,omitempty"`
	Experience      string   `bson:"experience,omitempty"`
	CostType        string   `bson:"cost_type,omitempty"`
	Cost            int64    `bson:"cost"`
	Rating          float64  `bson:"rating"`
}

func fromExecutorProfile(p domain.ExecutorProfile) mongoExecutor {
	return mongoExecutor{
		Description:     p.Description,
		Classification:  p.Classification,
		Tags:            p.Tags,
		Specializations: p.Specializations,
		Experience:      string(p.Experience),
		CostType:        string(p.CostType),
		Cost:            p.Cost,
		Rating:          p.Rating,
	}
}

func (m *mongoUser) toDomain() *domain.User {
	return &domain.User{
		ID:           m.ID.Hex(),
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Role:         m.Role,
		Balance:      m.Balance,
		Logo:         m.Logo,
		Customer:     domain.CustomerProfile{Rating: m.Customer.Rating},
		Executor: domain.ExecutorProfile{
			Description:     m.Executor.Description,
			Classification:  m.Executor.Classification,
			Tags:            m.Executor.Tags,
			Specializations: m.Executor.Specializations,
			Experience:      domain.Experience(m.Executor.Experience),
			CostType:        domain.CostType(m.Executor.CostType),
			Cost:            m.Executor.Cost,
			Rating:          m.Executor.Rating,
		},
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

// Create inserts a new user. Emails are stored lower-cased so the unique
// index also catches case variants.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := r.now().UTC()
	doc := mongoUser{
		ID:           primitive.NewObjectID(),
		Email:        normalizeEmail(user.Email),
		PasswordHash: user.PasswordHash,
		Role:         user.Role,
		Balance:      user.Balance,
		Logo:         user.Logo,
		Customer:     mongoCustomer{Rating: user.Customer.Rating},
		Executor:     fromExecutorProfile(user.Executor),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": normalizeEmail(email)})
}

// FindByID treats an id that is not a valid ObjectID as unknown.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) UpdateRole(ctx context.Context, id, role string) (*domain.User, error) {
	return r.update(ctx, id, nil, bson.M{"$set": bson.M{"role": role, "updated_at": r.now().UTC()}})
}

func (r *UserRepository) UpdateLogo(ctx context.Context, id, logo string) (*domain.User, error) {
	return r.update(ctx, id, nil, bson.M{"$set": bson.M{"logo": logo, "updated_at": r.now().UTC()}})
}

// UpdateExecutorProfile replaces the embedded executor document. The rating
// is left as stored.
func (r *UserRepository) UpdateExecutorProfile(ctx context.Context, id string, profile domain.ExecutorProfile) (*domain.User, error) {
	doc := fromExecutorProfile(profile)
	return r.update(ctx, id, nil, bson.M{"$set": bson.M{
		"executor.description":     doc.Description,
		"executor.classification":  doc.Classification,
		"executor.tags":            doc.Tags,
		"executor.specializations": doc.Specializations,
		"executor.experience":      doc.Experience,
		"executor.cost_type":       doc.CostType,
		"executor.cost":            doc.Cost,
		"updated_at":               r.now().UTC(),
	}})
}

// AdjustBalance applies delta with $inc so concurrent operations never lose
// an update. Withdrawals carry a balance guard in the filter; when it does
// not match, a lookup tells a missing user from an insufficient balance.
func (r *UserRepository) AdjustBalance(ctx context.Context, id string, delta int64) (*domain.User, error) {
	var guard bson.M
	if delta < 0 {
		guard = bson.M{"balance": bson.M{"$gte": -delta}}
	}
	user, err := r.update(ctx, id, guard, bson.M{
		"$inc": bson.M{"balance": delta},
		"$set": bson.M{"updated_at": r.now().UTC()},
	})
	if errors.Is(err, domain.ErrUserNotFound) && guard != nil {
		if _, findErr := r.FindByID(ctx, id); findErr == nil {
			return nil, domain.ErrInsufficientBalance
		}
	}
	return user, err
}

// EnsureIndexes creates the unique email index.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_email"),
	})
	return err
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mu mongoUser
	if err := r.col.FindOne(ctx, filter).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

func (r *UserRepository) update(ctx context.Context, id string, guard, update bson.M) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	filter := bson.M{"_id": oid}
	for k, v := range guard {
		filter[k] = v
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var mu mongoUser
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return mu.toDomain(), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
