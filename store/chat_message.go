package store

// MessageRole is the author role of a chat message.
type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
	MessageRoleSystem    MessageRole = "system"
)

// IsValid reports whether the role is one of the persistable roles.
func (r MessageRole) IsValid() bool {
	switch r {
	case MessageRoleUser, MessageRoleAssistant, MessageRoleSystem:
		return true
	}
	return false
}

// ChatMessage belongs to exactly one chat; deleting the chat deletes its
// messages. Ordering within a chat is strictly (created_ts, id) ascending.
type ChatMessage struct {
	ID        int64
	ChatID    int32
	Role      MessageRole
	Content   string
	Summary   *string
	Tokens    int32
	CreatedTs int64
}

type CreateChatMessage struct {
	ChatID    int32
	Role      MessageRole
	Content   string
	Tokens    int32
	CreatedTs int64
}

type FindChatMessage struct {
	ID     *int64
	ChatID *int32
	Role   *MessageRole
	// BeforeID restricts to messages inserted before the given message.
	BeforeID *int64
	Limit    *int
	// OrderDesc returns newest-first; default is creation order ascending.
	OrderDesc bool
}

// ChatMessageStats is the per-chat aggregate used by chat statistics.
type ChatMessageStats struct {
	UserMessages      int32
	AssistantMessages int32
	SystemMessages    int32
	TotalTokens       int64
}
