package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"midtownwebserver/internal/domain"
)

const galleryCollection = "gallery"

type GalleryStore struct {
	coll *mongo.Collection
}

func NewGalleryStore(db *mongo.Database) *GalleryStore {
	return &GalleryStore{coll: db.Collection(galleryCollection)}
}

type galleryImageDoc struct {
	URL    string `bson:"url"`
	Width  int    `bson:"width,omitempty"`
	Height int    `bson:"height,omitempty"`
}

type galleryDoc struct {
	ID           bson.ObjectID   `bson:"_id,omitempty"`
	Title        string          `bson:"title"`
	Description  string          `bson:"description,omitempty"`
	Image        galleryImageDoc `bson:"image"`
	Category     string          `bson:"category"`
	ProjectID    string          `bson:"projectId,omitempty"`
	Tags         []string        `bson:"tags,omitempty"`
	IsFeatured   bool            `bson:"isFeatured"`
	DisplayOrder int             `bson:"displayOrder"`
	Views        int64           `bson:"views"`
	UploadedBy   string          `bson:"uploadedBy,omitempty"`
	CreatedAt    time.Time       `bson:"createdAt"`
	UpdatedAt    time.Time       `bson:"updatedAt"`
}

func (d galleryDoc) toDomain() domain.GalleryItem {
	return domain.GalleryItem{
		ID:           d.ID.Hex(),
		Title:        d.Title,
		Description:  d.Description,
		Image:        domain.GalleryImage(d.Image),
		Category:     domain.GalleryCategory(d.Category),
		ProjectID:    d.ProjectID,
		Tags:         d.Tags,
		IsFeatured:   d.IsFeatured,
		DisplayOrder: d.DisplayOrder,
		Views:        d.Views,
		UploadedBy:   d.UploadedBy,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func ensureGalleryIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(galleryCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "displayOrder", Value: 1}}},
		{Keys: bson.D{{Key: "projectId", Value: 1}}, Options: options.Index().SetSparse(true)},
	})
	if err != nil {
		return fmt.Errorf("gallery indexes: %w", err)
	}
	return nil
}

func (s *GalleryStore) CreateItem(ctx context.Context, item domain.GalleryItem) (domain.GalleryItem, error) {
	now := time.Now().UTC()
	doc := galleryDoc{
		Title:        item.Title,
		Description:  item.Description,
		Image:        galleryImageDoc(item.Image),
		Category:     string(item.Category),
		ProjectID:    item.ProjectID,
		Tags:         item.Tags,
		IsFeatured:   item.IsFeatured,
		DisplayOrder: item.DisplayOrder,
		UploadedBy:   item.UploadedBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	res, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		return domain.GalleryItem{}, fmt.Errorf("create gallery item: %w", err)
	}
	doc.ID = res.InsertedID.(bson.ObjectID)
	return doc.toDomain(), nil
}

func (s *GalleryStore) ListItems(ctx context.Context, filter domain.GalleryFilter, limit, offset int) ([]domain.GalleryItem, int64, error) {
	q := bson.M{}
	if filter.Category != "" {
		q["category"] = string(filter.Category)
	}
	if filter.ProjectID != "" {
		q["projectId"] = filter.ProjectID
	}
	if filter.Featured != nil {
		q["isFeatured"] = *filter.Featured
	}

	total, err := s.coll.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("count gallery items: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "displayOrder", Value: 1}, {Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cur, err := s.coll.Find(ctx, q, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list gallery items: %w", err)
	}
	defer cur.Close(ctx)

	var items []domain.GalleryItem
	for cur.Next(ctx) {
		var doc galleryDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, 0, fmt.Errorf("decode gallery item: %w", err)
		}
		items = append(items, doc.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, 0, fmt.Errorf("list gallery items: %w", err)
	}
	return items, total, nil
}

func (s *GalleryStore) GetItemByID(ctx context.Context, id string) (domain.GalleryItem, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return domain.GalleryItem{}, domain.ErrNotFound
	}
	var doc galleryDoc
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.GalleryItem{}, domain.ErrNotFound
		}
		return domain.GalleryItem{}, fmt.Errorf("get gallery item: %w", err)
	}
	return doc.toDomain(), nil
}

// Categories lists the distinct categories that currently have at least one
// image, for the public gallery filter UI.
func (s *GalleryStore) Categories(ctx context.Context) ([]domain.GalleryCategory, error) {
	var raw []string
	if err := s.coll.Distinct(ctx, "category", bson.M{}).Decode(&raw); err != nil {
		return nil, fmt.Errorf("gallery categories: %w", err)
	}
	categories := make([]domain.GalleryCategory, 0, len(raw))
	for _, c := range raw {
		categories = append(categories, domain.GalleryCategory(c))
	}
	return categories, nil
}

// IncrementViews bumps the view counter and returns the new count.
func (s *GalleryStore) IncrementViews(ctx context.Context, id string) (int64, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return 0, domain.ErrNotFound
	}

	var doc galleryDoc
	err = s.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid},
		bson.M{"$inc": bson.M{"views": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("increment gallery views: %w", err)
	}
	return doc.Views, nil
}

func (s *GalleryStore) UpdateItem(ctx context.Context, id string, item domain.GalleryItem) (domain.GalleryItem, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return domain.GalleryItem{}, domain.ErrNotFound
	}

	set := bson.M{
		"title":        item.Title,
		"description":  item.Description,
		"image":        galleryImageDoc(item.Image),
		"category":     string(item.Category),
		"projectId":    item.ProjectID,
		"tags":         item.Tags,
		"isFeatured":   item.IsFeatured,
		"displayOrder": item.DisplayOrder,
		"updatedAt":    time.Now().UTC(),
	}

	var doc galleryDoc
	err = s.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.GalleryItem{}, domain.ErrNotFound
		}
		return domain.GalleryItem{}, fmt.Errorf("update gallery item: %w", err)
	}
	return doc.toDomain(), nil
}

func (s *GalleryStore) DeleteItem(ctx context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrNotFound
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete gallery item: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
