package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/storefront/gateway/internal/core/domain"
	"github.com/storefront/gateway/internal/core/ports"
)

const ordersCollection = "orders"

type OrderRepository struct {
	col *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{col: db.Collection(ordersCollection)}
}

// orderDoc stores prices as Decimal128 so totals survive the round trip
// without binary floating point.
type orderDoc struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty"`
	UserID     string               `bson:"user_id"`
	ProductID  string               `bson:"product_id"`
	Quantity   int                  `bson:"quantity"`
	UnitPrice  primitive.Decimal128 `bson:"unit_price"`
	TotalPrice primitive.Decimal128 `bson:"total_price"`
	Status     string               `bson:"status"`
	CreatedAt  time.Time            `bson:"created_at"`
	UpdatedAt  time.Time            `bson:"updated_at"`
}

func newOrderDoc(o *domain.Order) (orderDoc, error) {
	unit, err := toDecimal128(o.UnitPrice)
	if err != nil {
		return orderDoc{}, err
	}
	total, err := toDecimal128(o.TotalPrice)
	if err != nil {
		return orderDoc{}, err
	}
	return orderDoc{
		UserID:     o.UserID,
		ProductID:  o.ProductID,
		Quantity:   o.Quantity,
		UnitPrice:  unit,
		TotalPrice: total,
		Status:     string(o.Status),
		CreatedAt:  o.CreatedAt.UTC(),
		UpdatedAt:  o.UpdatedAt.UTC(),
	}, nil
}

func (d orderDoc) toDomain() (*domain.Order, error) {
	unit, err := fromDecimal128(d.UnitPrice)
	if err != nil {
		return nil, err
	}
	total, err := fromDecimal128(d.TotalPrice)
	if err != nil {
		return nil, err
	}
	return &domain.Order{
		ID:         d.ID.Hex(),
		UserID:     d.UserID,
		ProductID:  d.ProductID,
		Quantity:   d.Quantity,
		UnitPrice:  unit,
		TotalPrice: total,
		Status:     domain.OrderStatus(d.Status),
		CreatedAt:  d.CreatedAt.UTC(),
		UpdatedAt:  d.UpdatedAt.UTC(),
	}, nil
}

// Create inserts the order as a single document and assigns its id.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc, err := newOrderDoc(o)
	if err != nil {
		return err
	}
	doc.ID = primitive.NewObjectID()

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	o.ID = doc.ID.Hex()
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrOrderNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc orderDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("find order: %w", err)
	}
	return doc.toDomain()
}

// List returns one page of orders newest first plus the total match count.
func (r *OrderRepository) List(ctx context.Context, filter ports.OrderFilter, page domain.PageRequest) ([]*domain.Order, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := orderQuery(filter)
	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	cur, err := r.col.Find(ctx, query, findPage(page.Skip(), page.PerPage))
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	var docs []orderDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode orders: %w", err)
	}

	out := make([]*domain.Order, 0, len(docs))
	for _, d := range docs {
		o, err := d.toDomain()
		if err != nil {
			return nil, 0, err
		}
		out = append(out, o)
	}
	return out, total, nil
}

// Update writes the mutable order fields. The owner condition is part of
// the filter so a concurrent ownership change cannot slip through.
func (r *OrderRepository) Update(ctx context.Context, o *domain.Order, ownerID string) error {
	oid, ok := objectID(o.ID)
	if !ok {
		return domain.ErrOrderNotFound
	}
	doc, err := newOrderDoc(o)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"quantity":    doc.Quantity,
		"unit_price":  doc.UnitPrice,
		"total_price": doc.TotalPrice,
		"status":      doc.Status,
		"updated_at":  doc.UpdatedAt,
	}}
	res, err := r.col.UpdateOne(ctx, ownedFilter(oid, "user_id", ownerID), update)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) Delete(ctx context.Context, id, ownerID string) error {
	oid, ok := objectID(id)
	if !ok {
		return domain.ErrOrderNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, ownedFilter(oid, "user_id", ownerID))
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// EnsureIndexes supports the per-user newest-first listing.
func (r *OrderRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func orderQuery(f ports.OrderFilter) bson.M {
	q := bson.M{}
	if f.UserID != "" {
		q["user_id"] = f.UserID
	}
	return q
}
