package httpapi

import (
	"net/http"
	"strings"
	"time"

	"midtownwebserver/internal/domain"
)

const defaultGalleryPageSize = 24

type galleryImagePayload struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type galleryItemPayload struct {
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	Image        galleryImagePayload `json:"image"`
	Category     string              `json:"category"`
	ProjectID    string              `json:"project_id"`
	Tags         []string            `json:"tags"`
	IsFeatured   bool                `json:"is_featured"`
	DisplayOrder int                 `json:"display_order"`
}

func (p galleryItemPayload) validate() map[string]string {
	fields := map[string]string{}
	if strings.TrimSpace(p.Title) == "" {
		fields["title"] = "required"
	}
	if strings.TrimSpace(p.Image.URL) == "" {
		fields["image.url"] = "required"
	}
	if !domain.ValidGalleryCategory(domain.GalleryCategory(p.Category)) {
		fields["category"] = "unknown category"
	}
	return fields
}

func (p galleryItemPayload) toDomain() domain.GalleryItem {
	return domain.GalleryItem{
		Title:        strings.TrimSpace(p.Title),
		Description:  p.Description,
		Image:        domain.GalleryImage(p.Image),
		Category:     domain.GalleryCategory(p.Category),
		ProjectID:    p.ProjectID,
		Tags:         p.Tags,
		IsFeatured:   p.IsFeatured,
		DisplayOrder: p.DisplayOrder,
	}
}

type galleryItemResponse struct {
	ID           string              `json:"id"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	Image        galleryImagePayload `json:"image"`
	Category     string              `json:"category"`
	ProjectID    string              `json:"project_id,omitempty"`
	Tags         []string            `json:"tags"`
	IsFeatured   bool                `json:"is_featured"`
	DisplayOrder int                 `json:"display_order"`
	Views        int64               `json:"views"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

func toGalleryItemResponse(item domain.GalleryItem) galleryItemResponse {
	return galleryItemResponse{
		ID:           item.ID,
		Title:        item.Title,
		Description:  item.Description,
		Image:        galleryImagePayload(item.Image),
		Category:     string(item.Category),
		ProjectID:    item.ProjectID,
		Tags:         item.Tags,
		IsFeatured:   item.IsFeatured,
		DisplayOrder: item.DisplayOrder,
		Views:        item.Views,
		CreatedAt:    item.CreatedAt,
		UpdatedAt:    item.UpdatedAt,
	}
}

func (a *api) handleGalleryList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := domain.GalleryFilter{
		Category:  domain.GalleryCategory(q.Get("category")),
		ProjectID: q.Get("project_id"),
	}
	if raw := q.Get("featured"); raw != "" {
		featured := raw == "true" || raw == "1"
		filter.Featured = &featured
	}

	limit := queryInt(r, "limit", defaultGalleryPageSize)
	if limit < 1 || limit > 100 {
		limit = defaultGalleryPageSize
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	items, total, err := a.gallerySvc.List(r.Context(), filter, limit, offset)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	out := make([]galleryItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toGalleryItemResponse(item))
	}
	WriteJSON(w, http.StatusOK, map[string]any{"total": total, "items": out})
}

func (a *api) handleGalleryCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := a.gallerySvc.Categories(r.Context())
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	out := make([]string, 0, len(categories))
	for _, c := range categories {
		out = append(out, string(c))
	}
	WriteJSON(w, http.StatusOK, map[string]any{"categories": out})
}

func (a *api) handleGalleryIncrementViews(w http.ResponseWriter, r *http.Request) {
	views, err := a.gallerySvc.IncrementViews(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"views": views})
}

func (a *api) handleGalleryGet(w http.ResponseWriter, r *http.Request) {
	item, err := a.gallerySvc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toGalleryItemResponse(item))
}

func (a *api) handleGalleryCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	var req galleryItemPayload
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}
	if fields := req.validate(); len(fields) > 0 {
		WriteDomainError(w, domain.NewValidationError(fields))
		return
	}

	item, err := a.gallerySvc.Create(r.Context(), req.toDomain(), actor.ID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, toGalleryItemResponse(item))
}

func (a *api) handleGalleryUpdate(w http.ResponseWriter, r *http.Request) {
	var req galleryItemPayload
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}
	if fields := req.validate(); len(fields) > 0 {
		WriteDomainError(w, domain.NewValidationError(fields))
		return
	}

	item, err := a.gallerySvc.Update(r.Context(), r.PathValue("id"), req.toDomain())
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toGalleryItemResponse(item))
}

func (a *api) handleGalleryDelete(w http.ResponseWriter, r *http.Request) {
	if err := a.gallerySvc.Delete(r.Context(), r.PathValue("id")); err != nil {
		WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
