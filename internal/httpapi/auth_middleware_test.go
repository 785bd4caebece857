package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"midtownwebserver/internal/auth"
	"midtownwebserver/internal/domain"
)

func TestRequireAuthBearerHeader(t *testing.T) {
	users := &stubUsersStore{
		t: t,
		getUserByIDFunc: func(_ context.Context, id string) (domain.User, error) {
			return domain.User{ID: id, IsActive: true, Role: domain.RoleUser}, nil
		},
	}
	a := newTestAPI(users)

	token, err := a.authSvc.Sessions.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	handler := a.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		u, ok := CurrentUser(r.Context())
		if !ok || u.ID != "user-1" {
			t.Fatalf("expected user-1 in context, got %+v", u)
		}
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
}

func TestRequireAuthCookieFallback(t *testing.T) {
	users := &stubUsersStore{
		t: t,
		getUserByIDFunc: func(_ context.Context, id string) (domain.User, error) {
			return domain.User{ID: id, IsActive: true}, nil
		},
	}
	a := newTestAPI(users)

	token, err := a.authSvc.Sessions.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	handler := a.requireAuth(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})
	rr := httptest.NewRecorder()
	handler(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
}

func TestRequireAuthMissingToken(t *testing.T) {
	a := newTestAPI(&stubUsersStore{t: t})

	handler := a.requireAuth(func(http.ResponseWriter, *http.Request) {
		t.Fatalf("handler called without a token")
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil)
	rr := httptest.NewRecorder()
	handler(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
}

func TestRequireAuthGarbageToken(t *testing.T) {
	a := newTestAPI(&stubUsersStore{t: t})

	handler := a.requireAuth(func(http.ResponseWriter, *http.Request) {
		t.Fatalf("handler called with a garbage token")
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rr := httptest.NewRecorder()
	handler(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
}

func TestRequireAuthDeactivatedUser(t *testing.T) {
	users := &stubUsersStore{
		t: t,
		getUserByIDFunc: func(_ context.Context, id string) (domain.User, error) {
			return domain.User{ID: id, IsActive: false}, nil
		},
	}
	a := newTestAPI(users)

	token, err := a.authSvc.Sessions.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	handler := a.requireAuth(func(http.ResponseWriter, *http.Request) {
		t.Fatalf("handler called for a deactivated user")
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
}

func TestRequireRole(t *testing.T) {
	cases := []struct {
		name   string
		role   domain.Role
		status int
	}{
		{"admin allowed", domain.RoleAdmin, http.StatusNoContent},
		{"moderator allowed", domain.RoleModerator, http.StatusNoContent},
		{"user forbidden", domain.RoleUser, http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			users := &stubUsersStore{
				t: t,
				getUserByIDFunc: func(_ context.Context, id string) (domain.User, error) {
					return domain.User{ID: id, IsActive: true, Role: tc.role}, nil
				},
			}
			a := newTestAPI(users)

			token, err := a.authSvc.Sessions.Issue("user-1")
			if err != nil {
				t.Fatalf("Issue: %v", err)
			}

			handler := a.requireRole(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			}, domain.RoleAdmin, domain.RoleModerator)

			req := httptest.NewRequest(http.MethodGet, "/v1/enquiries", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rr := httptest.NewRecorder()
			handler(rr, req)

			if rr.Code != tc.status {
				t.Fatalf("unexpected status: %d", rr.Code)
			}
		})
	}
}
