package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/storefront/gateway/internal/core/domain"
	"github.com/storefront/gateway/internal/core/ports"
)

// ContentRepository stores one content kind in its own collection.
type ContentRepository struct {
	kind domain.ContentKind
	col  *mongo.Collection
}

func NewContentRepository(db *mongo.Database, kind domain.ContentKind) *ContentRepository {
	return &ContentRepository{kind: kind, col: db.Collection(kind.Collection())}
}

type contentDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	OwnerID   string             `bson:"owner_id"`
	Title     string             `bson:"title,omitempty"`
	Body      string             `bson:"body"`
	Slug      string             `bson:"slug,omitempty"`
	Tags      []string           `bson:"tags,omitempty"`
	ImageURL  string             `bson:"image_url,omitempty"`
	ParentID  string             `bson:"parent_id,omitempty"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func newContentDoc(c *domain.Content) contentDoc {
	return contentDoc{
		OwnerID:   c.OwnerID,
		Title:     c.Title,
		Body:      c.Body,
		Slug:      c.Slug,
		Tags:      c.Tags,
		ImageURL:  c.ImageURL,
		ParentID:  c.ParentID,
		CreatedAt: c.CreatedAt.UTC(),
		UpdatedAt: c.UpdatedAt.UTC(),
	}
}

func (d contentDoc) toDomain(kind domain.ContentKind) *domain.Content {
	return &domain.Content{
		ID:        d.ID.Hex(),
		Kind:      kind,
		OwnerID:   d.OwnerID,
		Title:     d.Title,
		Body:      d.Body,
		Slug:      d.Slug,
		Tags:      d.Tags,
		ImageURL:  d.ImageURL,
		ParentID:  d.ParentID,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

func (r *ContentRepository) Create(ctx context.Context, c *domain.Content) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := newContentDoc(c)
	doc.ID = primitive.NewObjectID()
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateContent
		}
		return fmt.Errorf("insert %s: %w", r.kind, err)
	}
	c.ID = doc.ID.Hex()
	return nil
}

func (r *ContentRepository) FindByID(ctx context.Context, id string) (*domain.Content, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrContentNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc contentDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrContentNotFound
		}
		return nil, fmt.Errorf("find %s: %w", r.kind, err)
	}
	return doc.toDomain(r.kind), nil
}

func (r *ContentRepository) List(ctx context.Context, filter ports.ContentFilter, page domain.PageRequest) ([]*domain.Content, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := contentQuery(filter)
	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", r.kind.Collection(), err)
	}
	cur, err := r.col.Find(ctx, query, findPage(page.Skip(), page.PerPage))
	if err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", r.kind.Collection(), err)
	}
	var docs []contentDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode %s: %w", r.kind.Collection(), err)
	}

	out := make([]*domain.Content, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain(r.kind))
	}
	return out, total, nil
}

// Update writes the editable fields; ownerID, when set, must still own the
// document at write time.
func (r *ContentRepository) Update(ctx context.Context, c *domain.Content, ownerID string) error {
	oid, ok := objectID(c.ID)
	if !ok {
		return domain.ErrContentNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := newContentDoc(c)
	update := bson.M{"$set": bson.M{
		"title":      doc.Title,
		"body":       doc.Body,
		"slug":       doc.Slug,
		"tags":       doc.Tags,
		"image_url":  doc.ImageURL,
		"updated_at": doc.UpdatedAt,
	}}
	res, err := r.col.UpdateOne(ctx, ownedFilter(oid, "owner_id", ownerID), update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateContent
		}
		return fmt.Errorf("update %s: %w", r.kind, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrContentNotFound
	}
	return nil
}

func (r *ContentRepository) Delete(ctx context.Context, id, ownerID string) error {
	oid, ok := objectID(id)
	if !ok {
		return domain.ErrContentNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, ownedFilter(oid, "owner_id", ownerID))
	if err != nil {
		return fmt.Errorf("delete %s: %w", r.kind, err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrContentNotFound
	}
	return nil
}

func (r *ContentRepository) DeleteByParent(ctx context.Context, parentID string) (int64, error) {
	if parentID == "" {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteMany(ctx, contentQuery(ports.ContentFilter{ParentID: parentID}))
	if err != nil {
		return 0, fmt.Errorf("delete %s by parent: %w", r.kind, err)
	}
	return res.DeletedCount, nil
}

// EnsureIndexes creates the listing indexes, plus body uniqueness for quotes.
func (r *ContentRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, contentIndexes(r.kind))
	return err
}

func contentIndexes(kind domain.ContentKind) []mongo.IndexModel {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}},
	}
	switch kind {
	case domain.KindQuote:
		indexes = append(indexes, mongo.IndexModel{
			Keys:    bson.D{{Key: "body", Value: 1}},
			Options: options.Index().SetUnique(true),
		})
	case domain.KindComment:
		indexes = append(indexes, mongo.IndexModel{
			Keys: bson.D{{Key: "parent_id", Value: 1}, {Key: "created_at", Value: -1}},
		})
	}
	return indexes
}

func contentQuery(f ports.ContentFilter) bson.M {
	q := bson.M{}
	if f.OwnerID != "" {
		q["owner_id"] = f.OwnerID
	}
	if f.ParentID != "" {
		q["parent_id"] = f.ParentID
	}
	return q
}
