package models

// SessionAction captures a player's command against a running session.
type SessionAction struct {
	ActionType string                 `json:"action_type"`
	Payload    map[string]interface{} `json:"payload"`
}
