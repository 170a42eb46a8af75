package model

// Conversation roles as stored in the session cache. They match the roles
// the Gemini chat protocol expects when a history is replayed.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Turn is one stored conversation entry. Turns are immutable once created;
// only plain text is ever persisted, so stale tool-call state can never leak
// back into a fresh model context.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}
