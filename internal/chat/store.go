// Package chat holds the conversation state: the ordered message store and
// the controller that drives submissions through it.
package chat

import (
	"fmt"
	"sync"

	"github.com/diogo/gemchat/internal/models"
)

// Store is the ordered conversation record. Insertion order is conversation
// order and is never changed; records are never removed. At most one model
// record is streaming at a time; all others are terminal.
type Store struct {
	mu       sync.Mutex
	messages []*models.Message
	pending  string // id of the streaming placeholder, empty when none
}

// NewStore creates an empty conversation store
func NewStore() *Store {
	return &Store{}
}

// AppendUser appends a user record. User records are immutable once appended.
func (s *Store) AppendUser(text string) models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := models.NewUserMessage(text)
	s.messages = append(s.messages, msg)
	return *msg
}

// AppendModel appends a terminal model record, such as the greeting.
func (s *Store) AppendModel(text string) models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := models.NewModelMessage(text)
	s.messages = append(s.messages, msg)
	return *msg
}

// AppendPlaceholder appends an empty model record that will receive streamed
// fragments. Fails if another placeholder is still streaming.
func (s *Store) AppendPlaceholder() (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != "" {
		return models.Message{}, fmt.Errorf("a reply is already streaming")
	}

	msg := models.NewPlaceholder()
	s.messages = append(s.messages, msg)
	s.pending = msg.ID
	return *msg, nil
}

// ApplyFragment appends one fragment to the streaming record with the given
// id. Fragments must be applied in arrival order; every application yields a
// complete new text snapshot observable through Messages.
func (s *Store) ApplyFragment(id, fragment string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := s.findLocked(id)
	if msg == nil {
		return fmt.Errorf("no message with id %s", id)
	}
	if !msg.Streaming {
		return fmt.Errorf("message %s is not streaming", id)
	}

	msg.Text += fragment
	return nil
}

// Finalize freezes the streaming record with its accumulated text.
func (s *Store) Finalize(id string) error {
	return s.settle(id, nil)
}

// Fail replaces the streaming record's text with failText, discarding
// whatever had accumulated, and freezes it.
func (s *Store) Fail(id, failText string) error {
	return s.settle(id, &failText)
}

func (s *Store) settle(id string, replaceText *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := s.findLocked(id)
	if msg == nil {
		return fmt.Errorf("no message with id %s", id)
	}
	if !msg.Streaming {
		return fmt.Errorf("message %s is not streaming", id)
	}

	if replaceText != nil {
		msg.Text = *replaceText
	}
	msg.Streaming = false
	if s.pending == id {
		s.pending = ""
	}
	return nil
}

// findLocked returns the record with the given id. Caller must hold s.mu.
func (s *Store) findLocked(id string) *models.Message {
	for _, msg := range s.messages {
		if msg.ID == id {
			return msg
		}
	}
	return nil
}

// Messages returns a snapshot of the conversation in insertion order. The
// returned values are copies; mutating them does not affect the store.
func (s *Store) Messages() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make([]models.Message, len(s.messages))
	for i, msg := range s.messages {
		snapshot[i] = *msg
	}
	return snapshot
}

// Len returns the number of records in the store
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}
