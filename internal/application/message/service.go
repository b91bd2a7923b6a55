// Package message orchestrates outbound WhatsApp sends and the portal
// webhook that announces new licenses.
package message

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/licsync/backend/internal/domain/affiliate"
	"github.com/licsync/backend/internal/domain/license"
	"github.com/licsync/backend/internal/domain/messaging"
	"github.com/licsync/backend/internal/domain/shared"
	"github.com/licsync/backend/internal/infrastructure/telemetry"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// SendInput carries one outbound message request
type SendInput struct {
	Phone        string
	Content      string
	MessageType  string
	TemplateName string
	Params       []string
}

// BroadcastInput targets every customer whose cached license type matches
type BroadcastInput struct {
	LicenseType  string
	Content      string
	TemplateName string
	Params       []string
}

// BroadcastResult summarizes a broadcast run
type BroadcastResult struct {
	Targeted int `json:"targeted"`
	Sent     int `json:"sent"`
	Failed   int `json:"failed"`
}

// LicenseCreatedEvent is the webhook payload announcing a license issued on
// the portal side.
type LicenseCreatedEvent struct {
	PortalID      string `json:"portal_id"`
	LicenseType   string `json:"license_type"`
	CustomerPhone string `json:"customer_phone"`
	CustomerEmail string `json:"customer_email"`
}

// Service coordinates message persistence and delivery. Every send attempt
// is recorded in the message log first, then marked sent or failed; the log
// never loses an attempt to a transport error.
type Service struct {
	messages  messaging.Repository
	sender    messaging.Sender
	customers affiliate.Repository
	licenses  license.Repository
	logger    *zap.Logger
}

// NewService creates a message service
func NewService(messages messaging.Repository, sender messaging.Sender, customers affiliate.Repository, licenses license.Repository, logger *zap.Logger) *Service {
	return &Service{
		messages:  messages,
		sender:    sender,
		customers: customers,
		licenses:  licenses,
		logger:    logger,
	}
}

// Send delivers one message and records the attempt. Template sends log the
// template name as content; text sends log the body itself.
func (s *Service) Send(ctx context.Context, input SendInput) (*messaging.Message, error) {
	messageType := messaging.MessageType(input.MessageType)
	content := input.Content
	if messageType == messaging.MessageTypeHSM || messageType == "" {
		if input.TemplateName == "" {
			return nil, shared.NewDomainError("INVALID_CONTENT", "Template name is required for template messages")
		}
		content = input.TemplateName
	}

	m, err := messaging.New(input.Phone, content, messageType)
	if err != nil {
		return nil, err
	}

	if err := s.messages.Insert(ctx, m); err != nil {
		return nil, err
	}

	s.deliver(ctx, m, input.TemplateName, input.Params)
	return m, nil
}

// Broadcast sends the same message to every customer whose cached license
// type matches. Per-recipient failures are counted, not propagated; one bad
// phone number must not stop the rest of the segment.
func (s *Service) Broadcast(ctx context.Context, input BroadcastInput) (*BroadcastResult, error) {
	if strings.TrimSpace(input.LicenseType) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Broadcast requires a license type segment")
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "message", "broadcast")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrLicenseType, input.LicenseType)

	filter := shared.DefaultFilter()
	filter.PageSize = 0 // unpaginated: broadcasts address the whole segment
	filter.Filters = map[string]interface{}{"license_type": input.LicenseType}

	targets, err := s.customers.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	result := &BroadcastResult{Targeted: len(targets)}
	for i := range targets {
		customer := &targets[i]
		if customer.Phone == "" {
			result.Failed++
			continue
		}

		m, err := s.buildFor(customer, input)
		if err != nil {
			result.Failed++
			s.logger.Warn("broadcast recipient skipped",
				zap.String("customer_id", customer.ID.Hex()),
				zap.Error(err),
			)
			continue
		}
		if err := s.messages.Insert(ctx, m); err != nil {
			result.Failed++
			continue
		}

		s.deliver(ctx, m, input.TemplateName, input.Params)
		if m.Status == messaging.StatusSent {
			result.Sent++
		} else {
			result.Failed++
		}
	}

	s.logger.Info("broadcast finished",
		zap.String("license_type", input.LicenseType),
		zap.Int("targeted", result.Targeted),
		zap.Int("sent", result.Sent),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

// HandleLicenseCreated reconciles a portal license-created event: the license
// is upserted by portal id, the customer matched by phone then email, and a
// welcome template sent. A repeated event for the same portal id is a no-op
// beyond refreshing the license fields.
func (s *Service) HandleLicenseCreated(ctx context.Context, event LicenseCreatedEvent) error {
	if event.PortalID == "" {
		return shared.NewDomainError("INVALID_INPUT", "License event is missing the portal id")
	}

	customer, err := s.matchCustomer(ctx, event)
	if err != nil {
		return err
	}

	existing, err := s.licenses.FindByPortalID(ctx, event.PortalID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return err
	}

	if existing != nil {
		existing.LicenseType = event.LicenseType
		existing.CustomerID = customer.ID
		if err := s.licenses.Update(ctx, existing); err != nil {
			return err
		}
		// Already greeted when the license was first seen.
		return nil
	}

	l, err := license.New(customer.ID, event.LicenseType, license.StatusActive, event.PortalID)
	if err != nil {
		return err
	}
	if err := s.licenses.Insert(ctx, l); err != nil {
		return err
	}

	if customer.Phone == "" {
		s.logger.Warn("license created for customer without phone, welcome skipped",
			zap.String("customer_id", customer.ID.Hex()),
			zap.String("portal_id", event.PortalID),
		)
		return nil
	}

	m, err := messaging.New(customer.Phone, welcomeTemplate, messaging.MessageTypeHSM)
	if err != nil {
		return err
	}
	m.CustomerID = customer.ID
	m.LicenseType = event.LicenseType
	if err := s.messages.Insert(ctx, m); err != nil {
		return err
	}

	s.deliver(ctx, m, welcomeTemplate, []string{customer.Name, event.LicenseType})
	return nil
}

// Get retrieves a logged message by its hex id
func (s *Service) Get(ctx context.Context, id string) (*messaging.Message, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, shared.ErrInvalidIdentifier
	}
	return s.messages.FindByID(ctx, oid)
}

// List retrieves logged messages matching the filter
func (s *Service) List(ctx context.Context, filter shared.Filter) ([]messaging.Message, int64, error) {
	items, err := s.messages.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.messages.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

const welcomeTemplate = "license_welcome"

func (s *Service) buildFor(customer *affiliate.Affiliate, input BroadcastInput) (*messaging.Message, error) {
	messageType := messaging.MessageTypeText
	content := input.Content
	if input.TemplateName != "" {
		messageType = messaging.MessageTypeHSM
		content = input.TemplateName
	}
	m, err := messaging.New(customer.Phone, content, messageType)
	if err != nil {
		return nil, err
	}
	m.CustomerID = customer.ID
	m.LicenseType = customer.LicenseType
	return m, nil
}

// deliver attempts the send and updates the logged message in place. Update
// failures after a successful send are logged; the provider id is already in
// the struct the caller holds.
func (s *Service) deliver(ctx context.Context, m *messaging.Message, templateName string, params []string) {
	var providerID string
	var err error
	if m.MessageType == messaging.MessageTypeHSM {
		providerID, err = s.sender.SendTemplate(ctx, m.Phone, templateName, params)
	} else {
		providerID, err = s.sender.SendText(ctx, m.Phone, m.Content)
	}

	if err != nil {
		m.MarkFailed(err.Error())
	} else {
		m.MarkSent(providerID)
	}

	if updateErr := s.messages.Update(ctx, m); updateErr != nil {
		s.logger.Error("failed to update message log",
			zap.String("message_id", m.ID.Hex()),
			zap.Error(updateErr),
		)
	}
}

func (s *Service) matchCustomer(ctx context.Context, event LicenseCreatedEvent) (*affiliate.Affiliate, error) {
	if event.CustomerPhone != "" {
		customer, err := s.customers.FindByPhone(ctx, event.CustomerPhone)
		if err == nil {
			return customer, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
	}
	if event.CustomerEmail != "" {
		customer, err := s.customers.FindByEmail(ctx, event.CustomerEmail)
		if err == nil {
			return customer, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
	}
	return nil, shared.NewDomainError("NOT_FOUND",
		fmt.Sprintf("No customer matches the license event for portal id %s", event.PortalID))
}
