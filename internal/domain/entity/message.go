package entity

type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Origin tags carried in Message.Name.
const (
	OriginDOM  = "DOM"
	OriginTool = "tool"
)

type Message struct {
	Role      MessageRole
	Content   string
	ToolCalls []ToolCall
	Name      string
}

type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}

// ConversationHistory is append-only for the lifetime of one run.
type ConversationHistory struct {
	messages []Message
}

func NewConversationHistory(systemPrompt, goal string) *ConversationHistory {
	return &ConversationHistory{
		messages: []Message{
			{Role: RoleSystem, Content: systemPrompt},
			{Role: RoleUser, Content: goal},
		},
	}
}

func (h *ConversationHistory) Append(msg Message) {
	h.messages = append(h.messages, msg)
}

func (h *ConversationHistory) AppendSnapshot(s Snapshot) {
	h.Append(Message{Role: RoleUser, Name: OriginDOM, Content: s.String()})
}

// Messages returns a copy; callers cannot rewrite past entries.
func (h *ConversationHistory) Messages() []Message {
	out := make([]Message, len(h.messages))
	copy(out, h.messages)
	return out
}

func (h *ConversationHistory) Len() int {
	return len(h.messages)
}
