package service

import (
	"context"

	"midtownwebserver/internal/domain"
)

type GalleryStore interface {
	CreateItem(ctx context.Context, item domain.GalleryItem) (domain.GalleryItem, error)
	ListItems(ctx context.Context, filter domain.GalleryFilter, limit, offset int) ([]domain.GalleryItem, int64, error)
	GetItemByID(ctx context.Context, id string) (domain.GalleryItem, error)
	Categories(ctx context.Context) ([]domain.GalleryCategory, error)
	IncrementViews(ctx context.Context, id string) (int64, error)
	UpdateItem(ctx context.Context, id string, item domain.GalleryItem) (domain.GalleryItem, error)
	DeleteItem(ctx context.Context, id string) error
}

type GalleryService struct {
	Store GalleryStore
}

func (s *GalleryService) Create(ctx context.Context, item domain.GalleryItem, uploadedBy string) (domain.GalleryItem, error) {
	item.UploadedBy = uploadedBy
	return s.Store.CreateItem(ctx, item)
}

func (s *GalleryService) List(ctx context.Context, filter domain.GalleryFilter, limit, offset int) ([]domain.GalleryItem, int64, error) {
	return s.Store.ListItems(ctx, filter, limit, offset)
}

func (s *GalleryService) Get(ctx context.Context, id string) (domain.GalleryItem, error) {
	return s.Store.GetItemByID(ctx, id)
}

func (s *GalleryService) Categories(ctx context.Context) ([]domain.GalleryCategory, error) {
	return s.Store.Categories(ctx)
}

func (s *GalleryService) IncrementViews(ctx context.Context, id string) (int64, error) {
	return s.Store.IncrementViews(ctx, id)
}

func (s *GalleryService) Update(ctx context.Context, id string, item domain.GalleryItem) (domain.GalleryItem, error) {
	return s.Store.UpdateItem(ctx, id, item)
}

func (s *GalleryService) Delete(ctx context.Context, id string) error {
	return s.Store.DeleteItem(ctx, id)
}
