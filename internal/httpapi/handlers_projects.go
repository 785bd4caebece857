package httpapi

import (
	"net/http"
	"strings"
	"time"

	"midtownwebserver/internal/domain"
)

const defaultProjectPageSize = 20

type plotSizePayload struct {
	Size       string  `json:"size"`
	Available  bool    `json:"available"`
	Price      float64 `json:"price"`
	TotalPlots int     `json:"total_plots"`
	SoldPlots  int     `json:"sold_plots"`
}

type projectImagePayload struct {
	URL       string `json:"url"`
	AltText   string `json:"alt_text"`
	IsPrimary bool   `json:"is_primary"`
}

type priceRangePayload struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Unit string  `json:"unit"`
}

type projectPayload struct {
	Title            string                `json:"title"`
	Location         string                `json:"location"`
	Description      string                `json:"description"`
	ShortDescription string                `json:"short_description"`
	Features         []string              `json:"features"`
	PlotSizes        []plotSizePayload     `json:"plot_sizes"`
	Images           []projectImagePayload `json:"images"`
	Status           string                `json:"status"`
	Category         string                `json:"category"`
	Amenities        []string              `json:"amenities"`
	TotalPlots       int                   `json:"total_plots"`
	AvailablePlots   int                   `json:"available_plots"`
	PriceRange       priceRangePayload     `json:"price_range"`
	RoadWidth        string                `json:"road_width"`
	HandoverDate     *time.Time            `json:"handover_date"`
	LaunchDate       time.Time             `json:"launch_date"`
	IsFeatured       bool                  `json:"is_featured"`
}

func (p projectPayload) toDomain() domain.Project {
	out := domain.Project{
		Title:            strings.TrimSpace(p.Title),
		Location:         strings.TrimSpace(p.Location),
		Description:      p.Description,
		ShortDescription: p.ShortDescription,
		Features:         p.Features,
		Status:           domain.ProjectStatus(p.Status),
		Category:         domain.ProjectCategory(p.Category),
		Amenities:        p.Amenities,
		TotalPlots:       p.TotalPlots,
		AvailablePlots:   p.AvailablePlots,
		PriceRange:       domain.PriceRange(p.PriceRange),
		RoadWidth:        p.RoadWidth,
		HandoverDate:     p.HandoverDate,
		LaunchDate:       p.LaunchDate,
		IsFeatured:       p.IsFeatured,
	}
	for _, ps := range p.PlotSizes {
		out.PlotSizes = append(out.PlotSizes, domain.PlotSize(ps))
	}
	for _, img := range p.Images {
		out.Images = append(out.Images, domain.ProjectImage(img))
	}
	return out
}

func (p projectPayload) validate() map[string]string {
	fields := map[string]string{}
	if strings.TrimSpace(p.Title) == "" {
		fields["title"] = "required"
	}
	if strings.TrimSpace(p.Location) == "" {
		fields["location"] = "required"
	}
	if p.Status != "" {
		switch domain.ProjectStatus(p.Status) {
		case domain.ProjectUpcoming, domain.ProjectOngoing, domain.ProjectCompleted, domain.ProjectSoldOut:
		default:
			fields["status"] = "unknown status"
		}
	}
	if p.Category != "" {
		switch domain.ProjectCategory(p.Category) {
		case domain.CategoryResidential, domain.CategoryCommercial, domain.CategoryMixed:
		default:
			fields["category"] = "unknown category"
		}
	}
	if p.AvailablePlots > p.TotalPlots {
		fields["available_plots"] = "cannot exceed total plots"
	}
	return fields
}

type projectResponse struct {
	ID               string                `json:"id"`
	Title            string                `json:"title"`
	Slug             string                `json:"slug"`
	Location         string                `json:"location"`
	Description      string                `json:"description"`
	ShortDescription string                `json:"short_description"`
	Features         []string              `json:"features"`
	PlotSizes        []plotSizePayload     `json:"plot_sizes"`
	Images           []projectImagePayload `json:"images"`
	Status           string                `json:"status"`
	Category         string                `json:"category"`
	Amenities        []string              `json:"amenities"`
	TotalPlots       int                   `json:"total_plots"`
	AvailablePlots   int                   `json:"available_plots"`
	SoldPlots        int                   `json:"sold_plots"`
	PriceRange       priceRangePayload     `json:"price_range"`
	RoadWidth        string                `json:"road_width"`
	HandoverDate     *time.Time            `json:"handover_date,omitempty"`
	LaunchDate       time.Time             `json:"launch_date"`
	IsFeatured       bool                  `json:"is_featured"`
	Views            int64                 `json:"views"`
	EnquiryCount     int64                 `json:"enquiry_count"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
}

func toProjectResponse(p domain.Project) projectResponse {
	out := projectResponse{
		ID:               p.ID,
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
		SoldPlots:        p.SoldPlots(),
		PriceRange:       priceRangePayload(p.PriceRange),
		RoadWidth:        p.RoadWidth,
		HandoverDate:     p.HandoverDate,
		LaunchDate:       p.LaunchDate,
		IsFeatured:       p.IsFeatured,
		Views:            p.Views,
		EnquiryCount:     p.EnquiryCount,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
	for _, ps := range p.PlotSizes {
		out.PlotSizes = append(out.PlotSizes, plotSizePayload(ps))
	}
	for _, img := range p.Images {
		out.Images = append(out.Images, projectImagePayload(img))
	}
	return out
}

func (a *api) handleProjectsList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := domain.ProjectFilter{
		Status:   domain.ProjectStatus(q.Get("status")),
		Category: domain.ProjectCategory(q.Get("category")),
		Location: q.Get("location"),
	}
	if raw := q.Get("featured"); raw != "" {
		featured := raw == "true" || raw == "1"
		filter.Featured = &featured
	}

	limit := queryInt(r, "limit", defaultProjectPageSize)
	if limit < 1 || limit > 100 {
		limit = defaultProjectPageSize
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	projects, total, err := a.projectSvc.List(r.Context(), filter, limit, offset)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	out := make([]projectResponse, 0, len(projects))
	for _, p := range projects {
		out = append(out, toProjectResponse(p))
	}
	WriteJSON(w, http.StatusOK, map[string]any{"total": total, "projects": out})
}

func (a *api) handleProjectsGetBySlug(w http.ResponseWriter, r *http.Request) {
	p, err := a.projectSvc.GetBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toProjectResponse(p))
}

func (a *api) handleProjectsGet(w http.ResponseWriter, r *http.Request) {
	p, err := a.projectSvc.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toProjectResponse(p))
}

func (a *api) handleProjectsCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	var req projectPayload
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}
	if fields := req.validate(); len(fields) > 0 {
		WriteDomainError(w, domain.NewValidationError(fields))
		return
	}

	p, err := a.projectSvc.Create(r.Context(), req.toDomain(), actor.ID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, toProjectResponse(p))
}

func (a *api) handleProjectsUpdate(w http.ResponseWriter, r *http.Request) {
	var req projectPayload
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}
	if fields := req.validate(); len(fields) > 0 {
		WriteDomainError(w, domain.NewValidationError(fields))
		return
	}

	p, err := a.projectSvc.Update(r.Context(), r.PathValue("id"), req.toDomain())
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toProjectResponse(p))
}

func (a *api) handleProjectsDelete(w http.ResponseWriter, r *http.Request) {
	if err := a.projectSvc.Delete(r.Context(), r.PathValue("id")); err != nil {
		WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type projectStatusStatsResponse struct {
	Status         string `json:"status"`
	Count          int64  `json:"count"`
	TotalPlots     int64  `json:"total_plots"`
	AvailablePlots int64  `json:"available_plots"`
	SoldPlots      int64  `json:"sold_plots"`
}

func (a *api) handleProjectsStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.projectSvc.Stats(r.Context())
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	byStatus := make([]projectStatusStatsResponse, 0, len(stats.ByStatus))
	for _, row := range stats.ByStatus {
		byStatus = append(byStatus, projectStatusStatsResponse{
			Status:         string(row.Status),
			Count:          row.Count,
			TotalPlots:     row.TotalPlots,
			AvailablePlots: row.AvailablePlots,
			SoldPlots:      row.SoldPlots,
		})
	}

	out := map[string]any{"total_projects": stats.Total, "by_status": byStatus}
	if a.enquirySvc != nil {
		es, err := a.enquirySvc.Stats(r.Context())
		if err != nil {
			WriteDomainError(w, err)
			return
		}
		out["total_enquiries"] = es.Total
	}
	WriteJSON(w, http.StatusOK, out)
}
