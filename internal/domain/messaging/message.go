// Package messaging holds the WhatsApp message log and the sending contract.
package messaging

import (
	"context"
	"time"

	"github.com/licsync/backend/internal/domain/shared"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MessageType distinguishes template (HSM) sends from free-form text
type MessageType string

const (
	MessageTypeHSM  MessageType = "hsm"
	MessageTypeText MessageType = "text"
)

// Status tracks a message through its send lifecycle
type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

// Message is one outbound WhatsApp message
type Message struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CustomerID        primitive.ObjectID `bson:"customer_id,omitempty" json:"customer_id,omitempty"`
	Phone             string             `bson:"phone" json:"phone"`
	LicenseType       string             `bson:"license_type,omitempty" json:"license_type,omitempty"`
	Content           string             `bson:"content" json:"content"`
	MessageType       MessageType        `bson:"message_type" json:"message_type"`
	Status            Status             `bson:"status" json:"status"`
	WhatsAppMessageID string             `bson:"whatsapp_message_id,omitempty" json:"whatsapp_message_id,omitempty"`
	Error             string             `bson:"error,omitempty" json:"error,omitempty"`
	CreatedAt         time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time          `bson:"updated_at" json:"updated_at"`
}

// New creates a pending message
func New(phone, content string, messageType MessageType) (*Message, error) {
	if len(phone) < 10 {
		return nil, shared.NewDomainError("INVALID_PHONE", "Recipient phone must have at least 10 digits")
	}
	if content == "" {
		return nil, shared.NewDomainError("INVALID_CONTENT", "Message content cannot be empty")
	}
	if messageType == "" {
		messageType = MessageTypeHSM
	}
	switch messageType {
	case MessageTypeHSM, MessageTypeText:
	default:
		return nil, shared.NewDomainError("INVALID_MESSAGE_TYPE", "Message type must be 'hsm' or 'text'")
	}

	now := time.Now().UTC()
	return &Message{
		Phone:       phone,
		Content:     content,
		MessageType: messageType,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// MarkSent records the id returned by the WhatsApp API
func (m *Message) MarkSent(whatsappMessageID string) {
	m.Status = StatusSent
	m.WhatsAppMessageID = whatsappMessageID
	m.Error = ""
	m.UpdatedAt = time.Now().UTC()
}

// MarkFailed records the send failure
func (m *Message) MarkFailed(reason string) {
	m.Status = StatusFailed
	m.Error = reason
	m.UpdatedAt = time.Now().UTC()
}

// Repository persists the message log
type Repository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*Message, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Message, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Insert(ctx context.Context, m *Message) error
	Update(ctx context.Context, m *Message) error
}

// Sender is the outbound WhatsApp transport
type Sender interface {
	// SendText delivers a free-form text message and returns the provider
	// message id.
	SendText(ctx context.Context, phone, content string) (string, error)

	// SendTemplate delivers a pre-approved HSM template with body parameters
	// and returns the provider message id.
	SendTemplate(ctx context.Context, phone, templateName string, params []string) (string, error)
}
