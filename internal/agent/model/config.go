package model

// ================ Config ================

// ChatModelConfig selects the hosted model used to drive tool calling.
type ChatModelConfig struct {
	Model       string  `envconfig:"CHAT_MODEL" default:"gemini-2.5-flash"`
	Temperature float32 `envconfig:"CHAT_TEMPERATURE" default:"0.2"`
}

// ConversationConfig bounds the per-session history and the tool loop.
type ConversationConfig struct {
	TTL          string `envconfig:"CONVERSATION_TTL" default:"30m"`
	HistoryLimit int    `envconfig:"CONVERSATION_HISTORY_LIMIT" default:"20"`
	MaxTurns     int    `envconfig:"CONVERSATION_MAX_TURNS" default:"8"`
}

// BackendConfig points at the meeting REST API.
type BackendConfig struct {
	URL     string `envconfig:"JAVA_BACKEND_URL" default:"http://localhost:8080"`
	Timeout int    `envconfig:"BACKEND_TIMEOUT" default:"30"`
}

// PolicyConfig locates the pre-embedded policy collection.
type PolicyConfig struct {
	StoreDir   string `envconfig:"POLICY_STORE_DIR" default:"./policy_store"`
	Collection string `envconfig:"POLICY_COLLECTION" default:"meeting_policies"`
	EmbedModel string `envconfig:"POLICY_EMBED_MODEL" default:"text-embedding-004"`
	TopK       int    `envconfig:"POLICY_TOP_K" default:"2"`
	SourceFile string `envconfig:"POLICY_SOURCE_FILE" default:"data/policy.txt"`
}

// ServerConfig configures the inbound HTTP listener.
type ServerConfig struct {
	Port int `envconfig:"SERVER_PORT" default:"8000"`
}
