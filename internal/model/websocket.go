package model

// WebSocket message types
const (
	WSMessageTypeStatus   = "status"
	WSMessageTypeComplete = "complete"
	WSMessageTypeError    = "error"
	WSMessageTypePing     = "ping"
	WSMessageTypePong     = "pong"
)

// WSMessage represents a generic WebSocket message
type WSMessage struct {
	Type string `json:"type"`
}

// WSStatusMessage announces a queue item transition
type WSStatusMessage struct {
	Type        string      `json:"type"`
	QueueItemID string      `json:"queueItemId"`
	Status      QueueStatus `json:"status"`
	Stage       string      `json:"stage,omitempty"`
}

// WSCompleteMessage carries the finished content pack
type WSCompleteMessage struct {
	Type        string       `json:"type"`
	QueueItemID string       `json:"queueItemId"`
	ContentPack *ContentPack `json:"contentPack"`
}

// WSErrorMessage reports a failed queue item
type WSErrorMessage struct {
	Type        string  `json:"type"`
	QueueItemID string  `json:"queueItemId"`
	Error       WSError `json:"error"`
}

type WSError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
