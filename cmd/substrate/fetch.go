package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gorilla/websocket"

	"substrates.ai/internal/protocol"
)

// fetchCmd runs HELLO then one BUILD against a server and prints the
// returned document.
func fetchCmd(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	url := fs.String("url", "ws://localhost:8080/v1/ws", "ws url")
	name := fs.String("name", "substrate-cli", "client name")
	players := fs.Int("players", 2, "number of players (default roles)")
	roles := fs.String("roles", "", "comma separated roles (overrides -players)")
	out := fs.String("out", "", "write document JSON here instead of stdout")
	_ = fs.Parse(args)

	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: protocol.Version, ClientName: *name}); err != nil {
		return fmt.Errorf("send HELLO: %w", err)
	}
	var welcome protocol.WelcomeMsg
	if err := readTyped(conn, protocol.TypeWelcome, &welcome); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "WELCOME session=%s level=%s max_players=%d\n", welcome.SessionID, welcome.LevelName, welcome.MaxPlayers)

	req := protocol.BuildMsg{
		Type:            protocol.TypeBuild,
		ProtocolVersion: protocol.Version,
		RequestID:       "fetch-1",
		Roles:           parseRoles(*roles, *players),
	}
	if err := conn.WriteJSON(req); err != nil {
		return fmt.Errorf("send BUILD: %w", err)
	}
	var sub protocol.SubstrateMsg
	if err := readTyped(conn, protocol.TypeSubstrate, &sub); err != nil {
		return err
	}
	b, err := encodeDocument(sub.Document, true)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "SUBSTRATE build=%s digest=%.12s\n", sub.BuildID, sub.Digests.Document)
	if *out == "" {
		_, err = stdout.Write(b)
		return err
	}
	return os.WriteFile(*out, b, 0o644)
}

// readTyped reads one message and decodes it into v if it has type want.
// An ERROR reply is returned as an error.
func readTyped(conn *websocket.Conn, want string, v any) error {
	_ = conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("read %s: %w", want, err)
	}
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		return err
	}
	switch base.Type {
	case want:
		return json.Unmarshal(msg, v)
	case protocol.TypeError:
		var e protocol.ErrorMsg
		if err := json.Unmarshal(msg, &e); err != nil {
			return err
		}
		return fmt.Errorf("%s: %s", e.Code, e.Message)
	default:
		return fmt.Errorf("expected %s, got %s", want, base.Type)
	}
}
