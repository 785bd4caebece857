package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"midtownwebserver/internal/domain"
	"midtownwebserver/internal/email"
)

type EnquiriesStore interface {
	CreateEnquiry(ctx context.Context, e domain.Enquiry) (domain.Enquiry, error)
	ListEnquiries(ctx context.Context, status domain.EnquiryStatus, limit, offset int) ([]domain.Enquiry, int64, error)
	GetEnquiryByID(ctx context.Context, id string) (domain.Enquiry, error)
	UpdateEnquiryStatus(ctx context.Context, id string, status domain.EnquiryStatus, notes *string) (domain.Enquiry, error)
	AddResponse(ctx context.Context, id string, resp domain.EnquiryResponse) (domain.Enquiry, error)
	DeleteEnquiry(ctx context.Context, id string) error
	Stats(ctx context.Context) (domain.EnquiryStats, error)
}

type EnquiryProjectsStore interface {
	IncrementEnquiryCount(ctx context.Context, id string) error
}

type EnquiryService struct {
	Store    EnquiriesStore
	Projects EnquiryProjectsStore
	Email    email.Sender
	Inbox    string
	Logger   *slog.Logger

	Now func() time.Time
}

func (s *EnquiryService) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *EnquiryService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Submit records a public enquiry. The inbox notification and the project
// counter bump are side effects; neither failure loses the enquiry.
func (s *EnquiryService) Submit(ctx context.Context, e domain.Enquiry) (domain.Enquiry, error) {
	created, err := s.Store.CreateEnquiry(ctx, e)
	if err != nil {
		return domain.Enquiry{}, err
	}

	if created.ProjectID != "" && s.Projects != nil {
		if err := s.Projects.IncrementEnquiryCount(ctx, created.ProjectID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			s.logger().Error("bump project enquiry count failed", "project_id", created.ProjectID, "err", err)
		}
	}

	if s.Email != nil && s.Inbox != "" {
		msg := email.EnquiryNotificationMessage(s.Inbox, created.Name, created.Email, created.Subject, created.Message)
		if err := s.Email.Send(ctx, msg); err != nil {
			s.logger().Error("send enquiry notification failed", "enquiry_id", created.ID, "err", err)
		}
	}

	return created, nil
}

func (s *EnquiryService) List(ctx context.Context, status domain.EnquiryStatus, limit, offset int) ([]domain.Enquiry, int64, error) {
	return s.Store.ListEnquiries(ctx, status, limit, offset)
}

func (s *EnquiryService) Get(ctx context.Context, id string) (domain.Enquiry, error) {
	return s.Store.GetEnquiryByID(ctx, id)
}

func (s *EnquiryService) UpdateStatus(ctx context.Context, id string, status domain.EnquiryStatus, notes *string) (domain.Enquiry, error) {
	return s.Store.UpdateEnquiryStatus(ctx, id, status, notes)
}

// AddResponse stores the staff reply, marks the enquiry resolved and mails
// the reply to the enquirer. The reply is kept even when delivery fails;
// the caller learns about the failure and can resend.
func (s *EnquiryService) AddResponse(ctx context.Context, id, message, responderID string) (domain.Enquiry, error) {
	e, err := s.Store.AddResponse(ctx, id, domain.EnquiryResponse{
		Message:     message,
		RespondedBy: responderID,
		RespondedAt: s.now(),
	})
	if err != nil {
		return domain.Enquiry{}, err
	}

	if s.Email != nil {
		msg := email.EnquiryReplyMessage(e.Email, e.Name, message)
		if err := s.Email.Send(ctx, msg); err != nil {
			s.logger().Error("send enquiry reply failed", "enquiry_id", e.ID, "err", err)
			return domain.Enquiry{}, fmt.Errorf("send enquiry reply: %w", domain.ErrEmailDelivery)
		}
	}

	return e, nil
}

func (s *EnquiryService) Delete(ctx context.Context, id string) error {
	return s.Store.DeleteEnquiry(ctx, id)
}

func (s *EnquiryService) Stats(ctx context.Context) (domain.EnquiryStats, error) {
	return s.Store.Stats(ctx)
}
