package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/thenoetrevino/tablero/internal/types"
)

// ProtocolVersion is the version of the socket message format
const ProtocolVersion = 1

// Envelope is an event in transit. Payload holds the variant as JSON; Type
// says which variant it is.
type Envelope struct {
	ID         uuid.UUID       `json:"id"`
	Type       Type            `json:"type"`
	BoardID    types.BoardID   `json:"board_id"`
	Timestamp  time.Time       `json:"timestamp"`
	SequenceID int64           `json:"sequence_id,omitempty"`
	Payload    json.RawMessage `json:"payload"`
}

// Wrap puts e into a new envelope stamped with the current time
func Wrap(e Event) (Envelope, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to encode %s: %w", e.Type(), err)
	}
	return Envelope{
		ID:        uuid.New(),
		Type:      e.Type(),
		BoardID:   e.Board(),
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}, nil
}

// Encode wraps e and marshals the envelope
func Encode(e Event) ([]byte, error) {
	env, err := Wrap(e)
	if err != nil {
		return nil, err
	}
	return json.Marshal(env)
}

// Decode unmarshals an envelope from data. It fails for unknown types.
func Decode(data []byte) (Envelope, Event, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, nil, fmt.Errorf("failed to decode envelope: %w", err)
	}
	e, err := env.Event()
	if err != nil {
		return Envelope{}, nil, err
	}
	return env, e, nil
}

// Event decodes the payload into its variant
func (env Envelope) Event() (Event, error) {
	decode, ok := decoders[env.Type]
	if !ok {
		return nil, fmt.Errorf("unknown event type %q", env.Type)
	}
	return decode(env.Payload)
}

var decoders = map[Type]func(json.RawMessage) (Event, error){
	TypeBoardCreated:     decodeAs[BoardCreated],
	TypeBoardDeleted:     decodeAs[BoardDeleted],
	TypeColumnCreated:    decodeAs[ColumnCreated],
	TypeColumnRenamed:    decodeAs[ColumnRenamed],
	TypeColumnDeleted:    decodeAs[ColumnDeleted],
	TypeColumnsReordered: decodeAs[ColumnsReordered],
	TypeCardCreated:      decodeAs[CardCreated],
	TypeCardUpdated:      decodeAs[CardUpdated],
	TypeCardDeleted:      decodeAs[CardDeleted],
	TypeCardsReordered:   decodeAs[CardsReordered],
	TypeCardsMoved:       decodeAs[CardsMoved],
	TypeLabelsChanged:    decodeAs[LabelsChanged],
}

func decodeAs[T Event](raw json.RawMessage) (Event, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("failed to decode %s payload: %w", v.Type(), err)
	}
	return v, nil
}

// Socket message types
const (
	MessageEvent     = "event"
	MessageSubscribe = "subscribe"
	MessagePing      = "ping"
	MessagePong      = "pong"
)

// SubscribeMessage is sent by clients to choose which board they follow
type SubscribeMessage struct {
	BoardID types.BoardID `json:"board_id"` // 0 = all boards
}

// Message wraps envelopes and control messages for the socket protocol
type Message struct {
	Version   int               `json:"version"`
	Type      string            `json:"type"`
	Envelope  *Envelope         `json:"envelope,omitempty"`
	Subscribe *SubscribeMessage `json:"subscribe,omitempty"`
}
