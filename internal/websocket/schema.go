package websocket

import "github.com/stemsi/exstem-paper/internal/render"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing    Action = "ping"
	ActionRefresh Action = "refresh"
)

// RequestEnvelope is every message a preview client sends.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError   Event = "error"
	EventOutline Event = "outline"
	EventPong    Event = "pong"
)

// OutlineResponse is pushed on connect, on every draft save and on refresh.
type OutlineResponse struct {
	Event   Event          `json:"event"`
	PaperID string         `json:"paper_id"`
	Outline render.Outline `json:"outline"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
