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

const enquiriesCollection = "enquiries"

type EnquiriesStore struct {
	coll *mongo.Collection
}

func NewEnquiriesStore(db *mongo.Database) *EnquiriesStore {
	return &EnquiriesStore{coll: db.Collection(enquiriesCollection)}
}

type enquiryResponseDoc struct {
	Message     string    `bson:"message"`
	RespondedBy string    `bson:"respondedBy"`
	RespondedAt time.Time `bson:"respondedAt"`
}

type enquiryDoc struct {
	ID        bson.ObjectID       `bson:"_id,omitempty"`
	Name      string              `bson:"name"`
	Email     string              `bson:"email"`
	Phone     string              `bson:"phone,omitempty"`
	Subject   string              `bson:"subject,omitempty"`
	ProjectID string              `bson:"projectId,omitempty"`
	Message   string              `bson:"message"`
	Status    string              `bson:"status"`
	Notes     string              `bson:"notes,omitempty"`
	Response  *enquiryResponseDoc `bson:"response,omitempty"`
	CreatedAt time.Time           `bson:"createdAt"`
	UpdatedAt time.Time           `bson:"updatedAt"`
}

func (d enquiryDoc) toDomain() domain.Enquiry {
	e := domain.Enquiry{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Email:     d.Email,
		Phone:     d.Phone,
		Subject:   d.Subject,
		ProjectID: d.ProjectID,
		Message:   d.Message,
		Status:    domain.EnquiryStatus(d.Status),
		Notes:     d.Notes,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if d.Response != nil {
		e.Response = &domain.EnquiryResponse{
			Message:     d.Response.Message,
			RespondedBy: d.Response.RespondedBy,
			RespondedAt: d.Response.RespondedAt,
		}
	}
	return e
}

func ensureEnquiryIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(enquiriesCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "email", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("enquiries indexes: %w", err)
	}
	return nil
}

func (s *EnquiriesStore) CreateEnquiry(ctx context.Context, e domain.Enquiry) (domain.Enquiry, error) {
	now := time.Now().UTC()
	doc := enquiryDoc{
		Name:      e.Name,
		Email:     e.Email,
		Phone:     e.Phone,
		Subject:   e.Subject,
		ProjectID: e.ProjectID,
		Message:   e.Message,
		Status:    string(domain.EnquiryNew),
		CreatedAt: now,
		UpdatedAt: now,
	}

	res, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		return domain.Enquiry{}, fmt.Errorf("create enquiry: %w", err)
	}
	doc.ID = res.InsertedID.(bson.ObjectID)
	return doc.toDomain(), nil
}

func (s *EnquiriesStore) ListEnquiries(ctx context.Context, status domain.EnquiryStatus, limit, offset int) ([]domain.Enquiry, int64, error) {
	q := bson.M{}
	if status != "" {
		q["status"] = string(status)
	}

	total, err := s.coll.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("count enquiries: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cur, err := s.coll.Find(ctx, q, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list enquiries: %w", err)
	}
	defer cur.Close(ctx)

	var enquiries []domain.Enquiry
	for cur.Next(ctx) {
		var doc enquiryDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, 0, fmt.Errorf("decode enquiry: %w", err)
		}
		enquiries = append(enquiries, doc.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, 0, fmt.Errorf("list enquiries: %w", err)
	}
	return enquiries, total, nil
}

func (s *EnquiriesStore) GetEnquiryByID(ctx context.Context, id string) (domain.Enquiry, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return domain.Enquiry{}, domain.ErrNotFound
	}
	var doc enquiryDoc
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Enquiry{}, domain.ErrNotFound
		}
		return domain.Enquiry{}, fmt.Errorf("get enquiry: %w", err)
	}
	return doc.toDomain(), nil
}

// UpdateEnquiryStatus sets the status and, when notes is non-nil, replaces
// the notes. A pointer to the empty string clears them; nil leaves them
// untouched.
func (s *EnquiriesStore) UpdateEnquiryStatus(ctx context.Context, id string, status domain.EnquiryStatus, notes *string) (domain.Enquiry, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return domain.Enquiry{}, domain.ErrNotFound
	}

	set := bson.M{
		"status":    string(status),
		"updatedAt": time.Now().UTC(),
	}
	update := bson.M{"$set": set}
	if notes != nil {
		if *notes == "" {
			update["$unset"] = bson.M{"notes": ""}
		} else {
			set["notes"] = *notes
		}
	}

	var doc enquiryDoc
	err = s.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Enquiry{}, domain.ErrNotFound
		}
		return domain.Enquiry{}, fmt.Errorf("update enquiry status: %w", err)
	}
	return doc.toDomain(), nil
}

// AddResponse records the staff reply and resolves the enquiry in one
// update.
func (s *EnquiriesStore) AddResponse(ctx context.Context, id string, resp domain.EnquiryResponse) (domain.Enquiry, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return domain.Enquiry{}, domain.ErrNotFound
	}

	set := bson.M{
		"response": enquiryResponseDoc{
			Message:     resp.Message,
			RespondedBy: resp.RespondedBy,
			RespondedAt: resp.RespondedAt,
		},
		"status":    string(domain.EnquiryResolved),
		"updatedAt": time.Now().UTC(),
	}

	var doc enquiryDoc
	err = s.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Enquiry{}, domain.ErrNotFound
		}
		return domain.Enquiry{}, fmt.Errorf("add enquiry response: %w", err)
	}
	return doc.toDomain(), nil
}

func (s *EnquiriesStore) DeleteEnquiry(ctx context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrNotFound
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete enquiry: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *EnquiriesStore) Stats(ctx context.Context) (domain.EnquiryStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
		}}},
	}

	cur, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return domain.EnquiryStats{}, fmt.Errorf("enquiry stats: %w", err)
	}
	defer cur.Close(ctx)

	stats := domain.EnquiryStats{ByStatus: make(map[domain.EnquiryStatus]int64)}
	for cur.Next(ctx) {
		var row struct {
			Status string `bson:"_id"`
			Count  int64  `bson:"count"`
		}
		if err := cur.Decode(&row); err != nil {
			return domain.EnquiryStats{}, fmt.Errorf("decode stats row: %w", err)
		}
		stats.ByStatus[domain.EnquiryStatus(row.Status)] = row.Count
		stats.Total += row.Count
	}
	if err := cur.Err(); err != nil {
		return domain.EnquiryStats{}, fmt.Errorf("enquiry stats: %w", err)
	}
	return stats, nil
}
