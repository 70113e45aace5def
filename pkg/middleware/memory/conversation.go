package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ragbase-ai/go-ragbase/pkg/ragbase"
)

// Message represents a single conversation message.
//
// Example:
//
//	msg := memory.Message{Role: "user", Content: "Hello"}
//	fmt.Println(msg.String()) // "user: Hello"
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// String implements the Stringer interface
func (m Message) String() string {
	return fmt.Sprintf("%s: %s", m.Role, m.Content)
}

// DefaultMessageLimit bounds how much history a turn carries into the
// prompt by default.
const DefaultMessageLimit = 6

// ConversationMemory provides structured conversation history using a
// pluggable store.
//
// Supports multiple concurrent conversations identified by session keys.
//
// Example:
//
//	mem := memory.NewConversation()
//	history, _ := mem.Messages(ctx, "session1", memory.DefaultMessageLimit)
type ConversationMemory struct {
	store Store
}

// NewConversation creates a conversation memory with the default
// in-memory store.
func NewConversation() *ConversationMemory {
	return &ConversationMemory{
		store: NewInMemoryStore(),
	}
}

// NewConversationWithStore creates a conversation memory with a custom
// store, for persistent backends.
//
// Example:
//
//	store, _ := badger.New("/var/lib/app/history")
//	mem := memory.NewConversationWithStore(store)
func NewConversationWithStore(store Store) *ConversationMemory {
	return &ConversationMemory{
		store: store,
	}
}

// conversationData holds the stored conversation history
type conversationData struct {
	Messages []Message `json:"messages"`
}

// Messages returns the most recent messages for a key.
//
// Input: conversation key and a message limit (0 or negative = all)
// Output: up to limit messages, oldest first
// Behavior: missing conversations yield an empty slice, not an error
func (cm *ConversationMemory) Messages(ctx context.Context, key string, limit int) ([]Message, error) {
	messages, err := cm.getConversation(ctx, key)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}
	return messages, nil
}

// Append adds messages to the end of a conversation.
func (cm *ConversationMemory) Append(ctx context.Context, key string, messages ...Message) error {
	existing, err := cm.getConversation(ctx, key)
	if err != nil {
		return err
	}
	return cm.saveConversation(ctx, key, append(existing, messages...))
}

// Clear removes the conversation for a key.
func (cm *ConversationMemory) Clear(key string) error {
	return cm.store.Delete(key)
}

// Info returns the message count and existence flag for a key.
func (cm *ConversationMemory) Info(ctx context.Context, key string) (messageCount int, exists bool, err error) {
	if !cm.store.Exists(key) {
		return 0, false, nil
	}
	messages, err := cm.getConversation(ctx, key)
	if err != nil {
		return 0, true, err
	}
	return len(messages), true, nil
}

// ListKeys returns all conversation keys in the store.
func (cm *ConversationMemory) ListKeys() []string {
	return cm.store.List()
}

// Transcript renders messages as a role-prefixed block for prompt
// assembly, oldest first, one message per line.
func Transcript(messages []Message) string {
	if len(messages) == 0 {
		return ""
	}
	var b strings.Builder
	for i, msg := range messages {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(msg.String())
	}
	return b.String()
}

// getConversation retrieves conversation history from the store
func (cm *ConversationMemory) getConversation(ctx context.Context, key string) ([]Message, error) {
	data, err := cm.store.Get(key)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return []Message{}, nil
	}

	var conv conversationData
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, ragbase.WrapErr(ctx, err, "failed to unmarshal conversation")
	}
	return conv.Messages, nil
}

// saveConversation stores conversation history to the store
func (cm *ConversationMemory) saveConversation(ctx context.Context, key string, messages []Message) error {
	data, err := json.Marshal(conversationData{Messages: messages})
	if err != nil {
		return ragbase.WrapErr(ctx, err, "failed to marshal conversation")
	}
	return cm.store.Set(key, data)
}
