package httpapi

import (
	"net/http"
	"strings"
	"time"

	"midtownwebserver/internal/domain"
	"midtownwebserver/internal/service"
)

const defaultEnquiryPageSize = 50

type submitEnquiryRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Subject   string `json:"subject"`
	ProjectID string `json:"project_id"`
	Message   string `json:"message"`
}

type enquiryReplyDetail struct {
	Message     string    `json:"message"`
	RespondedBy string    `json:"responded_by"`
	RespondedAt time.Time `json:"responded_at"`
}

type enquiryResponse struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Email     string              `json:"email"`
	Phone     string              `json:"phone,omitempty"`
	Subject   string              `json:"subject"`
	ProjectID string              `json:"project_id,omitempty"`
	Message   string              `json:"message"`
	Status    string              `json:"status"`
	Notes     string              `json:"notes,omitempty"`
	Response  *enquiryReplyDetail `json:"response,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

func toEnquiryResponse(e domain.Enquiry) enquiryResponse {
	resp := enquiryResponse{
		ID:        e.ID,
		Name:      e.Name,
		Email:     e.Email,
		Phone:     e.Phone,
		Subject:   e.Subject,
		ProjectID: e.ProjectID,
		Message:   e.Message,
		Status:    string(e.Status),
		Notes:     e.Notes,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
	if e.Response != nil {
		resp.Response = &enquiryReplyDetail{
			Message:     e.Response.Message,
			RespondedBy: e.Response.RespondedBy,
			RespondedAt: e.Response.RespondedAt,
		}
	}
	return resp
}

func (a *api) handleEnquiriesSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitEnquiryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	fields := map[string]string{}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = service.NormalizeEmail(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Subject = strings.TrimSpace(req.Subject)
	req.Message = strings.TrimSpace(req.Message)
	if req.Name == "" {
		fields["name"] = "required"
	}
	if !validEmail(req.Email) {
		fields["email"] = "must be a valid email"
	}
	if !validPhone(req.Phone) {
		fields["phone"] = "must be a valid phone number"
	}
	if req.Message == "" {
		fields["message"] = "required"
	}
	if len(fields) > 0 {
		WriteDomainError(w, domain.NewValidationError(fields))
		return
	}

	now := time.Now()
	ip := clientIP(r)
	if !a.limiter.Allow("enquiry:ip:"+ip, now) {
		WriteError(w, http.StatusTooManyRequests, "rate_limited", "too many attempts")
		return
	}

	e, err := a.enquirySvc.Submit(r.Context(), domain.Enquiry{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Subject:   req.Subject,
		ProjectID: req.ProjectID,
		Message:   req.Message,
	})
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, toEnquiryResponse(e))
}

func (a *api) handleEnquiriesList(w http.ResponseWriter, r *http.Request) {
	status := domain.EnquiryStatus(r.URL.Query().Get("status"))
	if status != "" && !domain.ValidEnquiryStatus(status) {
		WriteDomainError(w, domain.NewValidationError(map[string]string{"status": "unknown status"}))
		return
	}

	limit := queryInt(r, "limit", defaultEnquiryPageSize)
	if limit < 1 || limit > 200 {
		limit = defaultEnquiryPageSize
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	enquiries, total, err := a.enquirySvc.List(r.Context(), status, limit, offset)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	out := make([]enquiryResponse, 0, len(enquiries))
	for _, e := range enquiries {
		out = append(out, toEnquiryResponse(e))
	}
	WriteJSON(w, http.StatusOK, map[string]any{"total": total, "enquiries": out})
}

func (a *api) handleEnquiriesGet(w http.ResponseWriter, r *http.Request) {
	e, err := a.enquirySvc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toEnquiryResponse(e))
}

// Notes is a pointer so a request can clear the notes with an explicit
// empty string while leaving them untouched when the field is absent.
type updateEnquiryStatusRequest struct {
	Status string  `json:"status"`
	Notes  *string `json:"notes"`
}

func (a *api) handleEnquiriesUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateEnquiryStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	status := domain.EnquiryStatus(req.Status)
	if !domain.ValidEnquiryStatus(status) {
		WriteDomainError(w, domain.NewValidationError(map[string]string{"status": "unknown status"}))
		return
	}

	e, err := a.enquirySvc.UpdateStatus(r.Context(), r.PathValue("id"), status, req.Notes)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toEnquiryResponse(e))
}

type enquiryReplyRequest struct {
	Message string `json:"message"`
}

func (a *api) handleEnquiriesAddResponse(w http.ResponseWriter, r *http.Request) {
	actor, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	var req enquiryReplyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		WriteDomainError(w, domain.NewValidationError(map[string]string{"message": "required"}))
		return
	}

	e, err := a.enquirySvc.AddResponse(r.Context(), r.PathValue("id"), req.Message, actor.ID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toEnquiryResponse(e))
}

func (a *api) handleEnquiriesDelete(w http.ResponseWriter, r *http.Request) {
	if err := a.enquirySvc.Delete(r.Context(), r.PathValue("id")); err != nil {
		WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) handleEnquiriesStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.enquirySvc.Stats(r.Context())
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	byStatus := make(map[string]int64, len(stats.ByStatus))
	for status, count := range stats.ByStatus {
		byStatus[string(status)] = count
	}
	WriteJSON(w, http.StatusOK, map[string]any{"total": stats.Total, "by_status": byStatus})
}
