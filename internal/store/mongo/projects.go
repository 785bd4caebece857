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

const projectsCollection = "projects"

type ProjectsStore struct {
	coll *mongo.Collection
}

func NewProjectsStore(db *mongo.Database) *ProjectsStore {
	return &ProjectsStore{coll: db.Collection(projectsCollection)}
}

type plotSizeDoc struct {
	Size       string  `bson:"size"`
	Available  bool    `bson:"available"`
	Price      float64 `bson:"price"`
	TotalPlots int     `bson:"totalPlots"`
	SoldPlots  int     `bson:"soldPlots"`
}

type projectImageDoc struct {
	URL       string `bson:"url"`
	AltText   string `bson:"altText,omitempty"`
	IsPrimary bool   `bson:"isPrimary"`
}

type priceRangeDoc struct {
	Min  float64 `bson:"min"`
	Max  float64 `bson:"max"`
	Unit string  `bson:"unit"`
}

type projectDoc struct {
	ID               bson.ObjectID     `bson:"_id,omitempty"`
	Title            string            `bson:"title"`
	Slug             string            `bson:"slug"`
	Location         string            `bson:"location"`
	Description      string            `bson:"description"`
	ShortDescription string            `bson:"shortDescription,omitempty"`
	Features         []string          `bson:"features,omitempty"`
	PlotSizes        []plotSizeDoc     `bson:"plotSizes,omitempty"`
	Images           []projectImageDoc `bson:"images,omitempty"`
	Status           string            `bson:"status"`
	Category         string            `bson:"category"`
	Amenities        []string          `bson:"amenities,omitempty"`
	TotalPlots       int               `bson:"totalPlots"`
	AvailablePlots   int               `bson:"availablePlots"`
	PriceRange       priceRangeDoc     `bson:"priceRange"`
	RoadWidth        string            `bson:"roadWidth,omitempty"`
	HandoverDate     *time.Time        `bson:"handoverDate,omitempty"`
	LaunchDate       time.Time         `bson:"launchDate"`
	IsFeatured       bool              `bson:"isFeatured"`
	Views            int64             `bson:"views"`
	EnquiryCount     int64             `bson:"enquiryCount"`
	CreatedBy        string            `bson:"createdBy,omitempty"`
	CreatedAt        time.Time         `bson:"createdAt"`
	UpdatedAt        time.Time         `bson:"updatedAt"`
}

func projectToDoc(p domain.Project) projectDoc {
	doc := projectDoc{
		Title:            p.Title,
		Slug:             p.Slug,
		Location:         p.Location,
		Description:      p.Description,
		ShortDescription: p.ShortDescription,
		Features:         p.Features,
		Status:           string(p.Status),
		Category:         string(p.Category),
		Amenities:        p.Amenities,
		TotalPlots:       p.TotalPlots,
		AvailablePlots:   p.AvailablePlots,
		PriceRange:       priceRangeDoc(p.PriceRange),
		RoadWidth:        p.RoadWidth,
		HandoverDate:     p.HandoverDate,
		LaunchDate:       p.LaunchDate,
		IsFeatured:       p.IsFeatured,
		Views:            p.Views,
		EnquiryCount:     p.EnquiryCount,
		CreatedBy:        p.CreatedBy,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
	for _, ps := range p.PlotSizes {
		doc.PlotSizes = append(doc.PlotSizes, plotSizeDoc(ps))
	}
	for _, img := range p.Images {
		doc.Images = append(doc.Images, projectImageDoc(img))
	}
	return doc
}

func (d projectDoc) toDomain() domain.Project {
	p := domain.Project{
		ID:               d.ID.Hex(),
		Title:            d.Title,
		Slug:             d.Slug,
		Location:         d.Location,
		Description:      d.Description,
		ShortDescription: d.ShortDescription,
		Features:         d.Features,
		Status:           domain.ProjectStatus(d.Status),
		Category:         domain.ProjectCategory(d.Category),
		Amenities:        d.Amenities,
		TotalPlots:       d.TotalPlots,
		AvailablePlots:   d.AvailablePlots,
		PriceRange:       domain.PriceRange(d.PriceRange),
		RoadWidth:        d.RoadWidth,
		HandoverDate:     d.HandoverDate,
		LaunchDate:       d.LaunchDate,
		IsFeatured:       d.IsFeatured,
		Views:            d.Views,
		EnquiryCount:     d.EnquiryCount,
		CreatedBy:        d.CreatedBy,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
	for _, ps := range d.PlotSizes {
		p.PlotSizes = append(p.PlotSizes, domain.PlotSize(ps))
	}
	for _, img := range d.Images {
		p.Images = append(p.Images, domain.ProjectImage(img))
	}
	return p
}

func ensureProjectIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(projectsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "isFeatured", Value: 1}}},
		{Keys: bson.D{{Key: "location", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("projects indexes: %w", err)
	}
	return nil
}

func (s *ProjectsStore) CreateProject(ctx context.Context, p domain.Project) (domain.Project, error) {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.LaunchDate.IsZero() {
		p.LaunchDate = now
	}

	doc := projectToDoc(p)
	res, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.Project{}, domain.ErrSlugTaken
		}
		return domain.Project{}, fmt.Errorf("create project: %w", err)
	}
	doc.ID = res.InsertedID.(bson.ObjectID)
	return doc.toDomain(), nil
}

func (s *ProjectsStore) ListProjects(ctx context.Context, filter domain.ProjectFilter, limit, offset int) ([]domain.Project, int64, error) {
	q := bson.M{}
	if filter.Status != "" {
		q["status"] = string(filter.Status)
	}
	if filter.Category != "" {
		q["category"] = string(filter.Category)
	}
	if filter.Featured != nil {
		q["isFeatured"] = *filter.Featured
	}
	if filter.Location != "" {
		q["location"] = filter.Location
	}

	total, err := s.coll.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("count projects: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "isFeatured", Value: -1}, {Key: "launchDate", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cur, err := s.coll.Find(ctx, q, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list projects: %w", err)
	}
	defer cur.Close(ctx)

	var projects []domain.Project
	for cur.Next(ctx) {
		var doc projectDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, 0, fmt.Errorf("decode project: %w", err)
		}
		projects = append(projects, doc.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, 0, fmt.Errorf("list projects: %w", err)
	}
	return projects, total, nil
}

func (s *ProjectsStore) GetProjectByID(ctx context.Context, id string) (domain.Project, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return domain.Project{}, domain.ErrNotFound
	}
	var doc projectDoc
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Project{}, domain.ErrNotFound
		}
		return domain.Project{}, fmt.Errorf("get project: %w", err)
	}
	return doc.toDomain(), nil
}

// GetProjectBySlug also bumps the view counter in the same round trip. The
// counter is best-effort analytics, not part of the returned snapshot.
func (s *ProjectsStore) GetProjectBySlug(ctx context.Context, slug string) (domain.Project, error) {
	var doc projectDoc
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"slug": slug},
		bson.M{"$inc": bson.M{"views": 1}},
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Project{}, domain.ErrNotFound
		}
		return domain.Project{}, fmt.Errorf("get project by slug: %w", err)
	}
	return doc.toDomain(), nil
}

func (s *ProjectsStore) UpdateProject(ctx context.Context, id string, p domain.Project) (domain.Project, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return domain.Project{}, domain.ErrNotFound
	}

	p.UpdatedAt = time.Now().UTC()
	doc := projectToDoc(p)
	set := bson.M{
		"title":            doc.Title,
		"slug":             doc.Slug,
		"location":         doc.Location,
		"description":      doc.Description,
		"shortDescription": doc.ShortDescription,
		"features":         doc.Features,
		"plotSizes":        doc.PlotSizes,
		"images":           doc.Images,
		"status":           doc.Status,
		"category":         doc.Category,
		"amenities":        doc.Amenities,
		"totalPlots":       doc.TotalPlots,
		"availablePlots":   doc.AvailablePlots,
		"priceRange":       doc.PriceRange,
		"roadWidth":        doc.RoadWidth,
		"handoverDate":     doc.HandoverDate,
		"isFeatured":       doc.IsFeatured,
		"updatedAt":        doc.UpdatedAt,
	}

	var updated projectDoc
	err = s.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Project{}, domain.ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return domain.Project{}, domain.ErrSlugTaken
		}
		return domain.Project{}, fmt.Errorf("update project: %w", err)
	}
	return updated.toDomain(), nil
}

func (s *ProjectsStore) DeleteProject(ctx context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrNotFound
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Stats aggregates project and plot counts per status.
func (s *ProjectsStore) Stats(ctx context.Context) (domain.ProjectStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":            "$status",
			"count":          bson.M{"$sum": 1},
			"totalPlots":     bson.M{"$sum": "$totalPlots"},
			"availablePlots": bson.M{"$sum": "$availablePlots"},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}

	cur, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return domain.ProjectStats{}, fmt.Errorf("project stats: %w", err)
	}
	defer cur.Close(ctx)

	var stats domain.ProjectStats
	for cur.Next(ctx) {
		var row struct {
			Status         string `bson:"_id"`
			Count          int64  `bson:"count"`
			TotalPlots     int64  `bson:"totalPlots"`
			AvailablePlots int64  `bson:"availablePlots"`
		}
		if err := cur.Decode(&row); err != nil {
			return domain.ProjectStats{}, fmt.Errorf("decode stats row: %w", err)
		}
		stats.ByStatus = append(stats.ByStatus, domain.ProjectStatusStats{
			Status:         domain.ProjectStatus(row.Status),
			Count:          row.Count,
			TotalPlots:     row.TotalPlots,
			AvailablePlots: row.AvailablePlots,
			SoldPlots:      row.TotalPlots - row.AvailablePlots,
		})
		stats.Total += row.Count
	}
	if err := cur.Err(); err != nil {
		return domain.ProjectStats{}, fmt.Errorf("project stats: %w", err)
	}
	return stats, nil
}

// IncrementEnquiryCount is called when a contact enquiry references a
// project.
func (s *ProjectsStore) IncrementEnquiryCount(ctx context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrNotFound
	}
	_, err = s.coll.UpdateByID(ctx, oid, bson.M{"$inc": bson.M{"enquiryCount": 1}})
	if err != nil {
		return fmt.Errorf("increment enquiry count: %w", err)
	}
	return nil
}
