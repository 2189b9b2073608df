// Package inbox holds the mail-simulation service's per-address mailboxes.
package inbox

import (
	"context"
	"sync"
	"time"
)

// maxPerAddress bounds each mailbox; older messages are dropped first.
const maxPerAddress = 50

// Message is one delivered OTP mail.
type Message struct {
	Email        string    `json:"email"`
	HospitalName string    `json:"hospital_name"`
	OTP          string    `json:"otp"`
	ReceivedAt   time.Time `json:"received_at"`
}

// Store keeps delivered messages grouped by recipient address.
type Store interface {
	// Add appends msg to the mailbox for msg.Email, stamping ReceivedAt.
	Add(ctx context.Context, msg Message) Message
	// List returns the messages for email, oldest first. Unknown addresses return an empty slice.
	List(ctx context.Context, email string) []Message
}

// MemoryStore is an in-memory Store implementation.
type MemoryStore struct {
	mu    sync.RWMutex
	boxes map[string][]Message
	nowF  func() time.Time
}

// NewMemoryStore returns an empty in-memory inbox store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		boxes: make(map[string][]Message),
		nowF:  func() time.Time { return time.Now().UTC() },
	}
}

// Add appends msg to its recipient's mailbox.
func (s *MemoryStore) Add(ctx context.Context, msg Message) Message {
	msg.ReceivedAt = s.nowF()
	s.mu.Lock()
	defer s.mu.Unlock()
	box := append(s.boxes[msg.Email], msg)
	if len(box) > maxPerAddress {
		box = box[len(box)-maxPerAddress:]
	}
	s.boxes[msg.Email] = box
	return msg
}

// List returns a copy of the mailbox for email.
func (s *MemoryStore) List(ctx context.Context, email string) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Message, len(s.boxes[email]))
	copy(out, s.boxes[email])
	return out
}
