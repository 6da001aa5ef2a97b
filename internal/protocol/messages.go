package protocol

import (
	"substrates.ai/internal/sim/catalogs"
	"substrates.ai/internal/sim/substrate"
)

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ClientName      string `json:"client_name"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type               string           `json:"type"`
	ProtocolVersion    string           `json:"protocol_version"`
	SessionID          string           `json:"session_id"`
	LevelName          string           `json:"level_name"`
	ValidRoles         []string         `json:"valid_roles"`
	DefaultPlayerRoles []string         `json:"default_player_roles"`
	MaxPlayers         int              `json:"max_players"`
	Digests            catalogs.Digests `json:"digests"`
}

// BUILD (client -> server): one document for len(Roles) players.
type BuildMsg struct {
	Type            string   `json:"type"`
	ProtocolVersion string   `json:"protocol_version"`
	RequestID       string   `json:"request_id,omitempty"`
	Roles           []string `json:"roles"`
}

// SUBSTRATE (server -> client)
type SubstrateMsg struct {
	Type            string             `json:"type"`
	ProtocolVersion string             `json:"protocol_version"`
	RequestID       string             `json:"request_id,omitempty"`
	BuildID         string             `json:"build_id"`
	Digests         catalogs.Digests   `json:"digests"`
	Document        substrate.Document `json:"document"`
}

// ERROR (server -> client)
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	RequestID       string `json:"request_id,omitempty"`
	Code            string `json:"code"`
	Message         string `json:"message"`
}

func NewError(requestID, code, message string) ErrorMsg {
	return ErrorMsg{
		Type:            TypeError,
		ProtocolVersion: Version,
		RequestID:       requestID,
		Code:            code,
		Message:         message,
	}
}
