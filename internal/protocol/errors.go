package protocol

import (
	"errors"

	"substrates.ai/internal/sim/palette"
	"substrates.ai/internal/sim/substrate"
)

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"
	ErrProtoVersion    = "E_PROTO_VERSION"

	// Build layer.
	ErrBadRequest      = "E_BAD_REQUEST"
	ErrNoPlayers       = "E_NO_PLAYERS"
	ErrTooManyPlayers  = "E_TOO_MANY_PLAYERS"
	ErrUnknownRole     = "E_UNKNOWN_ROLE"
	ErrInvalidDocument = "E_INVALID_DOCUMENT"
	ErrInternal        = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest: {},
	ErrProtoVersion:    {},
	ErrBadRequest:      {},
	ErrNoPlayers:       {},
	ErrTooManyPlayers:  {},
	ErrUnknownRole:     {},
	ErrInvalidDocument: {},
	ErrInternal:        {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}

// CodeFor maps a build error to its wire code.
func CodeFor(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, substrate.ErrNoPlayers):
		return ErrNoPlayers
	case errors.Is(err, palette.ErrPoolExhausted), errors.Is(err, substrate.ErrTooManyPlayers):
		return ErrTooManyPlayers
	case errors.Is(err, substrate.ErrUnknownRole):
		return ErrUnknownRole
	case errors.Is(err, ErrSchema):
		return ErrInvalidDocument
	default:
		return ErrInternal
	}
}
