package stream

import (
	"encoding/json"
	"fmt"
)

const (
	MsgState      = "state"
	MsgSetGravity = "setGravity"
	MsgReset      = "reset"
	MsgError      = "error"
)

// Envelope is the wire frame for every message in both directions.
type Envelope struct {
	T string          `json:"t"`
	P json.RawMessage `json:"p"`
}

type State struct {
	Tick    int            `json:"tick"`
	Gravity [2]float64     `json:"gravity"`
	Bodies  []BodySnapshot `json:"bodies"`
}

type BodySnapshot struct {
	Shape string  `json:"shape"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	VX    float64 `json:"vx"`
	VY    float64 `json:"vy"`
	Size  float64 `json:"size,omitempty"`
}

type SetGravity struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Reset struct{}

type Error struct {
	Message string `json:"message"`
}

func Encode(t string, payload any) ([]byte, error) {
	if t == "" {
		return nil, fmt.Errorf("encode: empty envelope type")
	}
	if payload == nil {
		return nil, fmt.Errorf("encode %q: nil payload", t)
	}
	pb, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{T: t, P: pb})
}

func DecodeEnvelope(b []byte) (Envelope, error) {
	if len(b) == 0 {
		return Envelope{}, fmt.Errorf("decode: empty message")
	}
	var e Envelope
	if err := json.Unmarshal(b, &e); err != nil {
		return Envelope{}, err
	}
	return e, nil
}

// DecodePayload unmarshals the payload of env into T.
func DecodePayload[T any](env Envelope) (T, error) {
	var out T
	if len(env.P) == 0 {
		return out, fmt.Errorf("empty payload for type %q", env.T)
	}
	err := json.Unmarshal(env.P, &out)
	return out, err
}
