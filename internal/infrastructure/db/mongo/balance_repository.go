package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/opportunitycup/marketplace-api/internal/core/domain"
)

const collectionBalanceOperations = "balance_operations"

// BalanceRepository implements ports.BalanceRepository using MongoDB.
type BalanceRepository struct {
	col *mongo.Collection
}

func NewBalanceRepository(db *mongo.Database) *BalanceRepository {
	return &BalanceRepository{col: db.Collection(collectionBalanceOperations)}
}

type mongoBalanceOperation struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    string             `bson:"user_id"`
	Kind      string             `bson:"kind"`
	Sum       int64              `bson:"sum"`
	Reason    string             `bson:"reason"`
	CreatedAt time.Time          `bson:"created_at"`
}

// Insert appends op to the ledger and fills in its id.
func (r *BalanceRepository) Insert(ctx context.Context, op *domain.BalanceOperation) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoBalanceOperation{
		ID:        primitive.NewObjectID(),
		UserID:    op.UserID,
		Kind:      string(op.Kind),
		Sum:       op.Sum,
		Reason:    op.Reason,
		CreatedAt: op.CreatedAt.UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert balance operation: %w", err)
	}
	op.ID = doc.ID.Hex()
	return nil
}

// ListByUser returns one page of the user's operations, newest first.
func (r *BalanceRepository) ListByUser(ctx context.Context, userID string, page, limit int) ([]domain.BalanceOperation, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if page < 1 {
		page = 1
	}
	filter := bson.M{"user_id": userID}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count balance operations: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find balance operations: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoBalanceOperation
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode balance operations: %w", err)
	}

	ops := make([]domain.BalanceOperation, 0, len(docs))
	for _, d := range docs {
		ops = append(ops, domain.BalanceOperation{
			ID:        d.ID.Hex(),
			UserID:    d.UserID,
			Kind:      domain.BalanceOperationKind(d.Kind),
			Sum:       d.Sum,
			Reason:    d.Reason,
			CreatedAt: d.CreatedAt.UTC(),
		})
	}
	return ops, total, nil
}

// EnsureIndexes creates the per-user listing index.
func (r *BalanceRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	return err
}
