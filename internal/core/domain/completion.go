package domain

// MessageRole tags a composed message for the completion provider.
type MessageRole string

const (
	MessageRoleSystem MessageRole = "system"
	MessageRoleUser   MessageRole = "user"
)

// PromptLayer identifies which hierarchy level produced a message.
type PromptLayer string

const (
	LayerCore     PromptLayer = "core"
	LayerIndustry PromptLayer = "industry"
	LayerClient   PromptLayer = "client"
	LayerUser     PromptLayer = "user"
)

// Message is one role-tagged block handed to a text-completion call.
type Message struct {
	Role    MessageRole `json:"role"`
	Layer   PromptLayer `json:"layer"`
	Content string      `json:"content"`
}
