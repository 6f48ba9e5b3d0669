package domain

import (
	"bytes"
	"encoding/json"
	"time"
)

type APIRequest struct {
	Endpoint string
	Payload  any
	Token    string
	Timeout  time.Duration
}

type APIResponse struct {
	StatusCode int
	// Code is nil when the body carried no "code" field.
	Code    *int
	Message string
	Data    json.RawMessage
	Success bool
}

// HasData reports whether the body carried a non-null "data" payload.
func (r APIResponse) HasData() bool {
	trimmed := bytes.TrimSpace(r.Data)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// Succeeded reports a validated success: code 0 with a data payload.
func (r APIResponse) Succeeded() bool {
	return r.Code != nil && *r.Code == 0 && r.HasData()
}

type SessionPayload struct {
	UID     string         `json:"uid"`
	Name    string         `json:"name"`
	IPScore float64        `json:"ip_score"`
	Balance BalancePayload `json:"balance"`
}

type BalancePayload struct {
	CurrentAmount  float64 `json:"current_amount"`
	TotalCollected float64 `json:"total_collected"`
}

type PingRequest struct {
	ID        string `json:"id"`
	BrowserID string `json:"browser_id"`
	Timestamp int64  `json:"timestamp"`
	Version   string `json:"version"`
}

type PingPayload struct {
	IPScore float64 `json:"ip_score"`
}

type MissionRequest struct {
	MissionID string `json:"mission_id"`
}
