package snapshot

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"substrates.ai/internal/sim/substrate"
)

const Version = 1

// Header is written as the first line so tools can identify a file without
// decoding the whole document.
type Header struct {
	Version    int    `json:"version"`
	BuildID    string `json:"build_id"`
	LevelName  string `json:"level_name"`
	NumPlayers int    `json:"num_players"`
	Digest     string `json:"digest"`
	CreatedAt  string `json:"created_at"`
}

// WriteDocument writes a zstd-compressed header line followed by the
// document JSON.
func WriteDocument(path string, h Header, doc substrate.Document) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}

	bw := bufio.NewWriterSize(enc, 256*1024)
	if h.Version == 0 {
		h.Version = Version
	}
	hb, err := json.Marshal(h)
	if err != nil {
		_ = enc.Close()
		return err
	}
	if _, err := bw.Write(hb); err != nil {
		_ = enc.Close()
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		_ = enc.Close()
		return err
	}
	if err := json.NewEncoder(bw).Encode(doc); err != nil {
		_ = enc.Close()
		return fmt.Errorf("json encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

// ReadHeader decodes only the header line.
func ReadHeader(path string) (Header, error) {
	var h Header
	f, err := os.Open(path)
	if err != nil {
		return h, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return h, err
	}
	defer dec.Close()

	line, err := bufio.NewReader(dec).ReadBytes('\n')
	if err != nil {
		return h, fmt.Errorf("read header: %w", err)
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return h, fmt.Errorf("decode header: %w", err)
	}
	return h, nil
}

// ReadDocument decodes a file written by WriteDocument.
func ReadDocument(path string) (Header, substrate.Document, error) {
	var (
		h   Header
		doc substrate.Document
	)
	f, err := os.Open(path)
	if err != nil {
		return h, doc, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return h, doc, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)
	line, err := br.ReadBytes('\n')
	if err != nil {
		return h, doc, fmt.Errorf("read header: %w", err)
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return h, doc, fmt.Errorf("decode header: %w", err)
	}
	if h.Version != Version {
		return h, doc, fmt.Errorf("unsupported snapshot version %d", h.Version)
	}
	if err := json.NewDecoder(br).Decode(&doc); err != nil {
		return h, doc, fmt.Errorf("json decode: %w", err)
	}
	return h, doc, nil
}
