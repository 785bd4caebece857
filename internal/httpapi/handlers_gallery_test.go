package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"midtownwebserver/internal/domain"
	"midtownwebserver/internal/service"
)

type stubGalleryStore struct {
	t *testing.T

	createItemFunc     func(context.Context, domain.GalleryItem) (domain.GalleryItem, error)
	listItemsFunc      func(context.Context, domain.GalleryFilter, int, int) ([]domain.GalleryItem, int64, error)
	getItemByIDFunc    func(context.Context, string) (domain.GalleryItem, error)
	categoriesFunc     func(context.Context) ([]domain.GalleryCategory, error)
	incrementViewsFunc func(context.Context, string) (int64, error)
	updateItemFunc     func(context.Context, string, domain.GalleryItem) (domain.GalleryItem, error)
	deleteItemFunc     func(context.Context, string) error
}

func (s *stubGalleryStore) CreateItem(ctx context.Context, item domain.GalleryItem) (domain.GalleryItem, error) {
	if s.createItemFunc != nil {
		return s.createItemFunc(ctx, item)
	}
	s.t.Fatalf("CreateItem called unexpectedly")
	return domain.GalleryItem{}, errors.New("unexpected call")
}

func (s *stubGalleryStore) ListItems(ctx context.Context, filter domain.GalleryFilter, limit, offset int) ([]domain.GalleryItem, int64, error) {
	if s.listItemsFunc != nil {
		return s.listItemsFunc(ctx, filter, limit, offset)
	}
	s.t.Fatalf("ListItems called unexpectedly")
	return nil, 0, errors.New("unexpected call")
}

func (s *stubGalleryStore) GetItemByID(ctx context.Context, id string) (domain.GalleryItem, error) {
	if s.getItemByIDFunc != nil {
		return s.getItemByIDFunc(ctx, id)
	}
	s.t.Fatalf("GetItemByID called unexpectedly")
	return domain.GalleryItem{}, errors.New("unexpected call")
}

func (s *stubGalleryStore) Categories(ctx context.Context) ([]domain.GalleryCategory, error) {
	if s.categoriesFunc != nil {
		return s.categoriesFunc(ctx)
	}
	s.t.Fatalf("Categories called unexpectedly")
	return nil, errors.New("unexpected call")
}

func (s *stubGalleryStore) IncrementViews(ctx context.Context, id string) (int64, error) {
	if s.incrementViewsFunc != nil {
		return s.incrementViewsFunc(ctx, id)
	}
	s.t.Fatalf("IncrementViews called unexpectedly")
	return 0, errors.New("unexpected call")
}

func (s *stubGalleryStore) UpdateItem(ctx context.Context, id string, item domain.GalleryItem) (domain.GalleryItem, error) {
	if s.updateItemFunc != nil {
		return s.updateItemFunc(ctx, id, item)
	}
	s.t.Fatalf("UpdateItem called unexpectedly")
	return domain.GalleryItem{}, errors.New("unexpected call")
}

func (s *stubGalleryStore) DeleteItem(ctx context.Context, id string) error {
	if s.deleteItemFunc != nil {
		return s.deleteItemFunc(ctx, id)
	}
	s.t.Fatalf("DeleteItem called unexpectedly")
	return errors.New("unexpected call")
}

func TestGalleryCategories(t *testing.T) {
	store := &stubGalleryStore{
		t: t,
		categoriesFunc: func(context.Context) ([]domain.GalleryCategory, error) {
			return []domain.GalleryCategory{domain.GalleryAerial, domain.GalleryProgress}, nil
		},
	}
	a := &api{gallerySvc: &service.GalleryService{Store: store}}

	req := httptest.NewRequest(http.MethodGet, "/v1/gallery/categories", nil)
	rr := httptest.NewRecorder()
	a.handleGalleryCategories(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Categories []string `json:"categories"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Categories) != 2 || resp.Categories[0] != "aerial" {
		t.Fatalf("unexpected categories: %v", resp.Categories)
	}
}

func TestGalleryIncrementViews(t *testing.T) {
	store := &stubGalleryStore{
		t: t,
		incrementViewsFunc: func(_ context.Context, id string) (int64, error) {
			if id != "img-1" {
				t.Fatalf("unexpected id: %s", id)
			}
			return 42, nil
		},
	}
	a := &api{gallerySvc: &service.GalleryService{Store: store}}

	req := httptest.NewRequest(http.MethodPut, "/v1/gallery/img-1/views", nil)
	req.SetPathValue("id", "img-1")
	rr := httptest.NewRecorder()
	a.handleGalleryIncrementViews(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Views int64 `json:"views"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Views != 42 {
		t.Fatalf("unexpected views: %d", resp.Views)
	}
}

func TestGalleryIncrementViewsUnknownImage(t *testing.T) {
	store := &stubGalleryStore{
		t: t,
		incrementViewsFunc: func(context.Context, string) (int64, error) {
			return 0, domain.ErrNotFound
		},
	}
	a := &api{gallerySvc: &service.GalleryService{Store: store}}

	req := httptest.NewRequest(http.MethodPut, "/v1/gallery/missing/views", nil)
	req.SetPathValue("id", "missing")
	rr := httptest.NewRecorder()
	a.handleGalleryIncrementViews(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
}
