package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"midtownwebserver/internal/domain"
	"midtownwebserver/internal/service"
)

type stubEnquiriesStore struct {
	t *testing.T

	createEnquiryFunc       func(context.Context, domain.Enquiry) (domain.Enquiry, error)
	listEnquiriesFunc       func(context.Context, domain.EnquiryStatus, int, int) ([]domain.Enquiry, int64, error)
	getEnquiryByIDFunc      func(context.Context, string) (domain.Enquiry, error)
	updateEnquiryStatusFunc func(context.Context, string, domain.EnquiryStatus, *string) (domain.Enquiry, error)
	addResponseFunc         func(context.Context, string, domain.EnquiryResponse) (domain.Enquiry, error)
	deleteEnquiryFunc       func(context.Context, string) error
	statsFunc               func(context.Context) (domain.EnquiryStats, error)
}

func (s *stubEnquiriesStore) CreateEnquiry(ctx context.Context, e domain.Enquiry) (domain.Enquiry, error) {
	if s.createEnquiryFunc != nil {
		return s.createEnquiryFunc(ctx, e)
	}
	s.t.Fatalf("CreateEnquiry called unexpectedly")
	return domain.Enquiry{}, errors.New("unexpected call")
}

func (s *stubEnquiriesStore) ListEnquiries(ctx context.Context, status domain.EnquiryStatus, limit, offset int) ([]domain.Enquiry, int64, error) {
	if s.listEnquiriesFunc != nil {
		return s.listEnquiriesFunc(ctx, status, limit, offset)
	}
	s.t.Fatalf("ListEnquiries called unexpectedly")
	return nil, 0, errors.New("unexpected call")
}

func (s *stubEnquiriesStore) GetEnquiryByID(ctx context.Context, id string) (domain.Enquiry, error) {
	if s.getEnquiryByIDFunc != nil {
		return s.getEnquiryByIDFunc(ctx, id)
	}
	s.t.Fatalf("GetEnquiryByID called unexpectedly")
	return domain.Enquiry{}, errors.New("unexpected call")
}

func (s *stubEnquiriesStore) UpdateEnquiryStatus(ctx context.Context, id string, status domain.EnquiryStatus, notes *string) (domain.Enquiry, error) {
	if s.updateEnquiryStatusFunc != nil {
		return s.updateEnquiryStatusFunc(ctx, id, status, notes)
	}
	s.t.Fatalf("UpdateEnquiryStatus called unexpectedly")
	return domain.Enquiry{}, errors.New("unexpected call")
}

func (s *stubEnquiriesStore) AddResponse(ctx context.Context, id string, resp domain.EnquiryResponse) (domain.Enquiry, error) {
	if s.addResponseFunc != nil {
		return s.addResponseFunc(ctx, id, resp)
	}
	s.t.Fatalf("AddResponse called unexpectedly")
	return domain.Enquiry{}, errors.New("unexpected call")
}

func (s *stubEnquiriesStore) DeleteEnquiry(ctx context.Context, id string) error {
	if s.deleteEnquiryFunc != nil {
		return s.deleteEnquiryFunc(ctx, id)
	}
	s.t.Fatalf("DeleteEnquiry called unexpectedly")
	return errors.New("unexpected call")
}

func (s *stubEnquiriesStore) Stats(ctx context.Context) (domain.EnquiryStats, error) {
	if s.statsFunc != nil {
		return s.statsFunc(ctx)
	}
	s.t.Fatalf("Stats called unexpectedly")
	return domain.EnquiryStats{}, errors.New("unexpected call")
}

func TestEnquiriesSubmit(t *testing.T) {
	store := &stubEnquiriesStore{
		t: t,
		createEnquiryFunc: func(_ context.Context, e domain.Enquiry) (domain.Enquiry, error) {
			if e.Email != "buyer@example.com" {
				t.Fatalf("expected normalized email, got %q", e.Email)
			}
			e.ID = "enq-1"
			e.Status = domain.EnquiryNew
			return e, nil
		},
	}
	a := &api{
		enquirySvc: &service.EnquiryService{Store: store},
		limiter:    newRateLimiter(5*time.Minute, 10),
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/enquiries",
		strings.NewReader(`{"name":"Buyer","email":"Buyer@Example.com","subject":"Plot availability","message":"Any plots left in phase 2?"}`))
	req.RemoteAddr = "10.0.0.1:55555"
	rr := httptest.NewRecorder()
	a.handleEnquiriesSubmit(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("unexpected status: %d body=%s", rr.Code, rr.Body.String())
	}

	var resp enquiryResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID != "enq-1" || resp.Status != "new" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestEnquiriesSubmitValidation(t *testing.T) {
	a := &api{
		enquirySvc: &service.EnquiryService{Store: &stubEnquiriesStore{t: t}},
		limiter:    newRateLimiter(5*time.Minute, 10),
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/enquiries",
		strings.NewReader(`{"name":"","email":"nope","message":""}`))
	rr := httptest.NewRecorder()
	a.handleEnquiriesSubmit(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
}

func TestEnquiriesUpdateStatus(t *testing.T) {
	store := &stubEnquiriesStore{
		t: t,
		updateEnquiryStatusFunc: func(_ context.Context, id string, status domain.EnquiryStatus, notes *string) (domain.Enquiry, error) {
			if id != "enq-1" || status != domain.EnquiryResolved {
				t.Fatalf("unexpected update: %s %s", id, status)
			}
			if notes == nil || *notes != "called back" {
				t.Fatalf("unexpected notes: %v", notes)
			}
			return domain.Enquiry{ID: id, Status: status, Notes: *notes}, nil
		},
	}
	a := &api{enquirySvc: &service.EnquiryService{Store: store}}

	req := httptest.NewRequest(http.MethodPut, "/v1/enquiries/enq-1/status",
		strings.NewReader(`{"status":"resolved","notes":"called back"}`))
	req.SetPathValue("id", "enq-1")
	rr := httptest.NewRecorder()
	a.handleEnquiriesUpdateStatus(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestEnquiriesUpdateStatusNotesSemantics(t *testing.T) {
	cases := []struct {
		name string
		body string
		want func(*string) bool
	}{
		{"absent leaves notes untouched", `{"status":"closed"}`, func(n *string) bool { return n == nil }},
		{"empty string clears notes", `{"status":"closed","notes":""}`, func(n *string) bool { return n != nil && *n == "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &stubEnquiriesStore{
				t: t,
				updateEnquiryStatusFunc: func(_ context.Context, id string, status domain.EnquiryStatus, notes *string) (domain.Enquiry, error) {
					if !tc.want(notes) {
						t.Fatalf("unexpected notes pointer: %v", notes)
					}
					return domain.Enquiry{ID: id, Status: status}, nil
				},
			}
			a := &api{enquirySvc: &service.EnquiryService{Store: store}}

			req := httptest.NewRequest(http.MethodPut, "/v1/enquiries/enq-1/status", strings.NewReader(tc.body))
			req.SetPathValue("id", "enq-1")
			rr := httptest.NewRecorder()
			a.handleEnquiriesUpdateStatus(rr, req)

			if rr.Code != http.StatusOK {
				t.Fatalf("unexpected status: %d body=%s", rr.Code, rr.Body.String())
			}
		})
	}
}

func TestEnquiriesAddResponse(t *testing.T) {
	store := &stubEnquiriesStore{
		t: t,
		addResponseFunc: func(_ context.Context, id string, resp domain.EnquiryResponse) (domain.Enquiry, error) {
			if id != "enq-1" || resp.Message != "Plots are available in phase 2." || resp.RespondedBy != "admin-1" {
				t.Fatalf("unexpected response: %s %+v", id, resp)
			}
			return domain.Enquiry{
				ID:       id,
				Email:    "buyer@example.com",
				Name:     "Buyer",
				Status:   domain.EnquiryResolved,
				Response: &resp,
			}, nil
		},
	}
	a := &api{enquirySvc: &service.EnquiryService{Store: store}}

	req := httptest.NewRequest(http.MethodPost, "/v1/enquiries/enq-1/response",
		strings.NewReader(`{"message":"Plots are available in phase 2."}`))
	req.SetPathValue("id", "enq-1")
	req = req.WithContext(context.WithValue(req.Context(), authUserKey, domain.User{ID: "admin-1", Role: domain.RoleAdmin}))
	rr := httptest.NewRecorder()
	a.handleEnquiriesAddResponse(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", rr.Code, rr.Body.String())
	}

	var resp enquiryResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "resolved" || resp.Response == nil || resp.Response.RespondedBy != "admin-1" {
		t.Fatalf("unexpected response body: %+v", resp)
	}
}

func TestEnquiriesAddResponseRequiresMessage(t *testing.T) {
	a := &api{enquirySvc: &service.EnquiryService{Store: &stubEnquiriesStore{t: t}}}

	req := httptest.NewRequest(http.MethodPost, "/v1/enquiries/enq-1/response",
		strings.NewReader(`{"message":"   "}`))
	req.SetPathValue("id", "enq-1")
	req = req.WithContext(context.WithValue(req.Context(), authUserKey, domain.User{ID: "admin-1", Role: domain.RoleAdmin}))
	rr := httptest.NewRecorder()
	a.handleEnquiriesAddResponse(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
}

func TestEnquiriesUpdateStatusRejectsUnknown(t *testing.T) {
	a := &api{enquirySvc: &service.EnquiryService{Store: &stubEnquiriesStore{t: t}}}

	req := httptest.NewRequest(http.MethodPut, "/v1/enquiries/enq-1/status",
		strings.NewReader(`{"status":"archived"}`))
	req.SetPathValue("id", "enq-1")
	rr := httptest.NewRecorder()
	a.handleEnquiriesUpdateStatus(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
}
