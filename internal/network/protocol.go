package network

import (
	"encoding/json"
	"fmt"
)

// Inbound message types.
const (
	MsgJoinGame             = "joinGame"
	MsgInteractTile         = "interactTile"
	MsgCollectSun           = "collectSun"
	MsgActivateGlobalShield = "activateGlobalShield"
	MsgStartGameWithBots    = "startGameWithBots"
	MsgStartGameSolo        = "startGameSolo"
)

// Envelope is the frame every message travels in, in both directions.
type Envelope struct {
	T string          `json:"t"`
	P json.RawMessage `json:"p,omitempty"`
}

type JoinGame struct {
	Name   string `json:"name"`
	RoomID string `json:"roomId,omitempty"`
}

type InteractTile struct {
	TileID int    `json:"tileId"`
	Action string `json:"action"`
}

type CollectSun struct {
	SunID string `json:"sunId"`
}

// Encode frames payload under type t. A nil payload is sent without "p".
func Encode(t string, payload any) ([]byte, error) {
	if t == "" {
		return nil, fmt.Errorf("cannot encode envelope without a type")
	}
	env := Envelope{T: t}
	if payload != nil {
		pb, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s payload: %w", t, err)
		}
		env.P = pb
	}
	return json.Marshal(env)
}

func DecodeEnvelope(b []byte) (Envelope, error) {
	if len(b) == 0 {
		return Envelope{}, fmt.Errorf("cannot decode an empty envelope")
	}
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return Envelope{}, err
	}
	if env.T == "" {
		return Envelope{}, fmt.Errorf("envelope has no type")
	}
	return env, nil
}

// DecodePayload unmarshals the envelope body into T.
func DecodePayload[T any](env Envelope) (T, error) {
	var out T
	if len(env.P) == 0 {
		return out, fmt.Errorf("empty payload for type %q", env.T)
	}
	err := json.Unmarshal(env.P, &out)
	return out, err
}
