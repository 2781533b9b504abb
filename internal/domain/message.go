package domain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// RawMessage is one unprocessed record from the inbound topic. Commit
// acknowledges the offset once the message has been handled; it is nil for
// sources without offsets.
type RawMessage struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// InboundMessage is one SMS received from the gateway, as published on the
// inbound topic.
type InboundMessage struct {
	MessageID  string    `json:"message_id"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	Text       string    `json:"text"`
	ReceivedAt time.Time `json:"received_at"`
}

// CostBasis is what the billing collaborator needs to charge for a reply
// without re-parsing the rendered text.
type CostBasis struct {
	Currency string  `json:"currency"`
	Amount   float64 `json:"amount"`
}

// OutboundMessage is one compiled reply, ready for the gateway. Segments are
// in send order; CharacterCount and SegmentCount are authoritative for
// billing.
type OutboundMessage struct {
	ReplyID        string    `json:"reply_id"`
	To             string    `json:"to"`
	InReplyTo      string    `json:"in_reply_to"`
	Segments       []string  `json:"segments"`
	CharacterCount int       `json:"character_count"`
	SegmentCount   int       `json:"segment_count"`
	CostBasis      CostBasis `json:"cost_basis"`
	CompiledAt     time.Time `json:"compiled_at"`
}

// NewReplyID produces a deterministic ID from the sender and the inbound
// message ID. Deterministic IDs make redelivered inbound messages produce
// the same reply ID, so the gateway can de-duplicate on its side.
func NewReplyID(from, messageID string) string {
	input := fmt.Sprintf("%s|%s", from, messageID)
	hash := sha256.Sum256([]byte(input))
	return "reply-" + hex.EncodeToString(hash[:8])
}
