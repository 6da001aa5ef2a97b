package protocol

import (
	"errors"
	"fmt"
	"testing"

	"substrates.ai/internal/sim/palette"
	"substrates.ai/internal/sim/substrate"
)

func TestIsKnownCode(t *testing.T) {
	cases := []string{
		"",
		ErrProtoBadRequest,
		ErrProtoVersion,
		ErrBadRequest,
		ErrNoPlayers,
		ErrTooManyPlayers,
		ErrUnknownRole,
		ErrInvalidDocument,
		ErrInternal,
	}
	for _, c := range cases {
		if !IsKnownCode(c) {
			t.Fatalf("expected known code: %q", c)
		}
	}
	if IsKnownCode("E_NOT_DEFINED") {
		t.Fatalf("expected unknown code rejected")
	}
}

func TestCodeFor(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{substrate.ErrNoPlayers, ErrNoPlayers},
		{fmt.Errorf("wrap: %w", palette.ErrPoolExhausted), ErrTooManyPlayers},
		{fmt.Errorf("wrap: %w", substrate.ErrTooManyPlayers), ErrTooManyPlayers},
		{substrate.GetConfig().CheckRoles([]string{"nope"}), ErrUnknownRole},
		{fmt.Errorf("validate: %w", ErrSchema), ErrInvalidDocument},
		{ValidateDocumentJSON([]byte(`{"levelName":"x"}`)), ErrInvalidDocument},
		{errors.New("boom"), ErrInternal},
	}
	for _, c := range cases {
		if got := CodeFor(c.err); got != c.want {
			t.Fatalf("CodeFor(%v)=%q want %q", c.err, got, c.want)
		}
	}
}
