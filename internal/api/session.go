package api

import (
	"context"
	"sync"

	"github.com/diogo/gemchat/internal/models"
)

// ChatSession maintains conversation context across messages. It is the
// opaque session handle: obtained once from Client.StartChat and reused for
// every send in the conversation.
type ChatSession struct {
	client     *Client
	mu         sync.RWMutex // Protects metadata, lastOutput, model
	model      models.Model
	metadata   []string // [cid, rid, rcid]
	lastOutput *models.ModelOutput
}

// copyMetadata creates a copy of the metadata slice to avoid races
func copyMetadata(m []string) []string {
	if m == nil {
		return nil
	}
	result := make([]string, len(m))
	copy(result, m)
	return result
}

// SendMessageStream sends a message in the chat session and streams the
// reply. Text increments are delivered to onFragment in arrival order; the
// final output updates the session's conversation metadata. On error the
// metadata is left untouched, so the session stays usable for further sends.
func (s *ChatSession) SendMessageStream(ctx context.Context, prompt string, onFragment FragmentFunc) (*models.ModelOutput, error) {
	s.mu.RLock()
	opts := &GenerateOptions{
		Model:    s.model,
		Metadata: copyMetadata(s.metadata),
	}
	s.mu.RUnlock()

	output, err := s.client.GenerateContentStream(ctx, prompt, opts, onFragment)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.lastOutput = output
	s.updateMetadataLocked(output)
	s.mu.Unlock()

	return output, nil
}

// updateMetadataLocked updates the session metadata from a reply.
// Caller must hold s.mu.
func (s *ChatSession) updateMetadataLocked(output *models.ModelOutput) {
	if len(output.Metadata) > 0 {
		s.metadata = make([]string, len(output.Metadata))
		copy(s.metadata, output.Metadata)
	}

	// Track the chosen candidate's RCID as the third element
	if len(s.metadata) >= 3 {
		s.metadata[2] = output.RCID()
	} else if len(s.metadata) == 2 {
		s.metadata = append(s.metadata, output.RCID())
	}
}

// SetMetadata sets the conversation metadata directly
func (s *ChatSession) SetMetadata(cid, rid, rcid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metadata = []string{cid, rid, rcid}
}

// GetMetadata returns a copy of the current conversation metadata
func (s *ChatSession) GetMetadata() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyMetadata(s.metadata)
}

// CID returns the conversation ID
func (s *ChatSession) CID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.metadata) > 0 {
		return s.metadata[0]
	}
	return ""
}

// RID returns the reply ID
func (s *ChatSession) RID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.metadata) > 1 {
		return s.metadata[1]
	}
	return ""
}

// RCID returns the reply candidate ID
func (s *ChatSession) RCID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.metadata) > 2 {
		return s.metadata[2]
	}
	return ""
}

// GetModel returns the session's model
func (s *ChatSession) GetModel() models.Model {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model
}

// LastOutput returns the last reply received in the session
func (s *ChatSession) LastOutput() *models.ModelOutput {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastOutput
}
