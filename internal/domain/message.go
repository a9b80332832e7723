package domain

import (
	"time"
)

// Contact message status constants.
const (
	MessageStatusNew      = "new"
	MessageStatusRead     = "read"
	MessageStatusReplied  = "replied"
	MessageStatusArchived = "archived"
)

// ContactMessage is a message submitted through the contact form.
// New messages start in status new.
type ContactMessage struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone,omitempty"`
	Subject      string     `json:"subject"`
	Body         string     `json:"body"`
	Newsletter   bool       `json:"newsletter"`
	Status       string     `json:"status"`
	ReplySubject string     `json:"reply_subject,omitempty"`
	ReplyBody    string     `json:"reply_body,omitempty"`
	RepliedAt    *time.Time `json:"replied_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ValidMessageStatuses returns the set of valid message statuses.
func ValidMessageStatuses() []string {
	return []string{MessageStatusNew, MessageStatusRead, MessageStatusReplied, MessageStatusArchived}
}

// IsValidMessageStatus checks whether the given status is valid.
func IsValidMessageStatus(status string) bool {
	for _, s := range ValidMessageStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

// Subscriber is a newsletter subscription.
type Subscriber struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
