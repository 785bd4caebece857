package service

import (
	"context"
	"strings"

	"midtownwebserver/internal/domain"
)

type ProjectsStore interface {
	CreateProject(ctx context.Context, p domain.Project) (domain.Project, error)
	ListProjects(ctx context.Context, filter domain.ProjectFilter, limit, offset int) ([]domain.Project, int64, error)
	GetProjectByID(ctx context.Context, id string) (domain.Project, error)
	GetProjectBySlug(ctx context.Context, slug string) (domain.Project, error)
	UpdateProject(ctx context.Context, id string, p domain.Project) (domain.Project, error)
	DeleteProject(ctx context.Context, id string) error
	Stats(ctx context.Context) (domain.ProjectStats, error)
}

type ProjectService struct {
	Store ProjectsStore
}

func (s *ProjectService) Create(ctx context.Context, p domain.Project, createdBy string) (domain.Project, error) {
	p.Slug = Slugify(p.Title)
	p.CreatedBy = createdBy
	if p.Status == "" {
		p.Status = domain.ProjectUpcoming
	}
	if p.Category == "" {
		p.Category = domain.CategoryResidential
	}
	return s.Store.CreateProject(ctx, p)
}

func (s *ProjectService) List(ctx context.Context, filter domain.ProjectFilter, limit, offset int) ([]domain.Project, int64, error) {
	return s.Store.ListProjects(ctx, filter, limit, offset)
}

func (s *ProjectService) Stats(ctx context.Context) (domain.ProjectStats, error) {
	return s.Store.Stats(ctx)
}

func (s *ProjectService) GetByID(ctx context.Context, id string) (domain.Project, error) {
	return s.Store.GetProjectByID(ctx, id)
}

func (s *ProjectService) GetBySlug(ctx context.Context, slug string) (domain.Project, error) {
	return s.Store.GetProjectBySlug(ctx, slug)
}

func (s *ProjectService) Update(ctx context.Context, id string, p domain.Project) (domain.Project, error) {
	p.Slug = Slugify(p.Title)
	return s.Store.UpdateProject(ctx, id, p)
}

func (s *ProjectService) Delete(ctx context.Context, id string) error {
	return s.Store.DeleteProject(ctx, id)
}

// Slugify derives a URL slug from a title: lowercase, non-alphanumerics
// collapsed to single hyphens, no leading or trailing hyphen.
func Slugify(title string) string {
	var b strings.Builder
	prevHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevHyphen = false
		default:
			if !prevHyphen {
				b.WriteByte('-')
				prevHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
