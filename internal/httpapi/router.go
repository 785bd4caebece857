package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"midtownwebserver/internal/domain"
	"midtownwebserver/internal/service"
)

type RouterOpts struct {
	Logger *slog.Logger
	IsProd bool

	DBPing func(context.Context) error

	Auth      *service.AuthService
	Admin     *service.AdminService
	Projects  *service.ProjectService
	Gallery   *service.GalleryService
	Enquiries *service.EnquiryService

	CookieSecure bool
	SessionTTL   time.Duration
}

func NewRouter(opts RouterOpts) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	a := &api{
		logger:       logger,
		isProd:       opts.IsProd,
		dbPing:       opts.DBPing,
		authSvc:      opts.Auth,
		adminSvc:     opts.Admin,
		projectSvc:   opts.Projects,
		gallerySvc:   opts.Gallery,
		enquirySvc:   opts.Enquiries,
		cookieSecure: opts.CookieSecure,
		sessionTTL:   opts.SessionTTL,
		limiter:      newRateLimiter(5*time.Minute, 10),
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", a.handleHealthz)

	if a.authSvc != nil {
		mux.HandleFunc("POST /v1/auth/register", a.handleAuthRegister)
		mux.HandleFunc("POST /v1/auth/login", a.handleAuthLogin)
		mux.HandleFunc("POST /v1/auth/logout", a.requireAuth(a.handleAuthLogout))
		mux.HandleFunc("GET /v1/auth/me", a.requireAuth(a.handleAuthMe))
		mux.HandleFunc("PUT /v1/auth/details", a.requireAuth(a.handleAuthUpdateDetails))
		mux.HandleFunc("PUT /v1/auth/password", a.requireAuth(a.handleAuthUpdatePassword))
		mux.HandleFunc("GET /v1/auth/verify-email/{token}", a.handleAuthVerifyEmail)
		mux.HandleFunc("POST /v1/auth/forgot-password", a.handleAuthForgotPassword)
		mux.HandleFunc("PUT /v1/auth/reset-password/{token}", a.handleAuthResetPassword)
	}

	if a.adminSvc != nil {
		mux.HandleFunc("GET /v1/admin/users", a.requireRole(a.handleAdminUsersList, domain.RoleAdmin))
		mux.HandleFunc("GET /v1/admin/users/stats", a.requireRole(a.handleAdminUsersStats, domain.RoleAdmin))
		mux.HandleFunc("GET /v1/admin/users/{id}", a.requireRole(a.handleAdminUsersGet, domain.RoleAdmin))
		mux.HandleFunc("PUT /v1/admin/users/{id}", a.requireRole(a.handleAdminUsersUpdate, domain.RoleAdmin))
		mux.HandleFunc("PUT /v1/admin/users/{id}/toggle-active", a.requireRole(a.handleAdminUsersToggleActive, domain.RoleAdmin))
		mux.HandleFunc("DELETE /v1/admin/users/{id}", a.requireRole(a.handleAdminUsersDelete, domain.RoleAdmin))
	}

	staff := []domain.Role{domain.RoleAdmin, domain.RoleModerator}

	if a.projectSvc != nil {
		mux.HandleFunc("GET /v1/projects", a.handleProjectsList)
		mux.HandleFunc("GET /v1/projects/slug/{slug}", a.handleProjectsGetBySlug)
		mux.HandleFunc("GET /v1/projects/stats", a.requireRole(a.handleProjectsStats, staff...))
		mux.HandleFunc("GET /v1/projects/{id}", a.handleProjectsGet)
		mux.HandleFunc("POST /v1/projects", a.requireRole(a.handleProjectsCreate, staff...))
		mux.HandleFunc("PUT /v1/projects/{id}", a.requireRole(a.handleProjectsUpdate, staff...))
		mux.HandleFunc("DELETE /v1/projects/{id}", a.requireRole(a.handleProjectsDelete, staff...))
	}

	if a.gallerySvc != nil {
		mux.HandleFunc("GET /v1/gallery", a.handleGalleryList)
		mux.HandleFunc("GET /v1/gallery/categories", a.handleGalleryCategories)
		mux.HandleFunc("GET /v1/gallery/{id}", a.handleGalleryGet)
		mux.HandleFunc("PUT /v1/gallery/{id}/views", a.handleGalleryIncrementViews)
		mux.HandleFunc("POST /v1/gallery", a.requireRole(a.handleGalleryCreate, staff...))
		mux.HandleFunc("PUT /v1/gallery/{id}", a.requireRole(a.handleGalleryUpdate, staff...))
		mux.HandleFunc("DELETE /v1/gallery/{id}", a.requireRole(a.handleGalleryDelete, staff...))
	}

	if a.enquirySvc != nil {
		mux.HandleFunc("POST /v1/enquiries", a.handleEnquiriesSubmit)
		mux.HandleFunc("GET /v1/enquiries", a.requireRole(a.handleEnquiriesList, staff...))
		mux.HandleFunc("GET /v1/enquiries/stats", a.requireRole(a.handleEnquiriesStats, staff...))
		mux.HandleFunc("GET /v1/enquiries/{id}", a.requireRole(a.handleEnquiriesGet, staff...))
		mux.HandleFunc("PUT /v1/enquiries/{id}/status", a.requireRole(a.handleEnquiriesUpdateStatus, staff...))
		mux.HandleFunc("POST /v1/enquiries/{id}/response", a.requireRole(a.handleEnquiriesAddResponse, staff...))
		mux.HandleFunc("DELETE /v1/enquiries/{id}", a.requireRole(a.handleEnquiriesDelete, staff...))
	}

	root := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/v1/") || r.URL.Path == "/v1" {
			h, pattern := mux.Handler(r)
			if pattern == "" {
				WriteError(w, http.StatusNotFound, "not_found", "not found")
				return
			}
			h.ServeHTTP(w, r)
			return
		}
		mux.ServeHTTP(w, r)
	})

	var h http.Handler = root
	h = RequestLogger(logger)(h)
	h = RequestID()(h)
	h = Recoverer(logger, opts.IsProd)(h)
	return h
}

type api struct {
	logger *slog.Logger
	isProd bool

	dbPing func(context.Context) error

	authSvc    *service.AuthService
	adminSvc   *service.AdminService
	projectSvc *service.ProjectService
	gallerySvc *service.GalleryService
	enquirySvc *service.EnquiryService

	cookieSecure bool
	sessionTTL   time.Duration

	limiter *rateLimiter
}

func (a *api) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if a.dbPing != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
		defer cancel()
		if err := a.dbPing(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("db down"))
			return
		}
	}

	_, _ = w.Write([]byte("ok"))
}
