package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"substrates.ai/internal/persistence/snapshot"
	"substrates.ai/internal/sim/catalogs"
	"substrates.ai/internal/sim/substrate"
)

const fileSuffix = ".substrate.json.zst"

// BuildMeta sits next to each archived document.
type BuildMeta struct {
	BuildID    string           `json:"build_id"`
	LevelName  string           `json:"level_name"`
	NumPlayers int              `json:"num_players"`
	Document   string           `json:"document"`
	Bytes      int64            `json:"bytes"`
	CreatedAt  string           `json:"created_at"`
	Digests    catalogs.Digests `json:"digests"`
}

// ArchiveBuild writes doc to `dir/<level>/<build_id>.substrate.json.zst`
// with a `<build_id>.meta.json` beside it, and returns the document path.
func ArchiveBuild(dir, buildID string, doc substrate.Document, digests catalogs.Digests) (string, BuildMeta, error) {
	if strings.TrimSpace(buildID) == "" {
		return "", BuildMeta{}, fmt.Errorf("archive: empty build id")
	}
	levelDir := filepath.Join(dir, doc.LevelName)
	if err := os.MkdirAll(levelDir, 0o755); err != nil {
		return "", BuildMeta{}, err
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	dst := filepath.Join(levelDir, buildID+fileSuffix)
	h := snapshot.Header{
		BuildID:    buildID,
		LevelName:  doc.LevelName,
		NumPlayers: doc.NumPlayers,
		Digest:     digests.Document,
		CreatedAt:  now,
	}
	if err := snapshot.WriteDocument(dst, h, doc); err != nil {
		return "", BuildMeta{}, fmt.Errorf("archive %s: %w", buildID, err)
	}

	meta := BuildMeta{
		BuildID:    buildID,
		LevelName:  doc.LevelName,
		NumPlayers: doc.NumPlayers,
		Document:   filepath.Base(dst),
		CreatedAt:  now,
		Digests:    digests,
	}
	if st, err := os.Stat(dst); err == nil {
		meta.Bytes = st.Size()
	}
	if b, err := json.MarshalIndent(meta, "", "  "); err == nil {
		_ = os.WriteFile(MetaPath(dst), b, 0o644)
	}
	return dst, meta, nil
}

// MetaPath returns the meta file that sits beside an archived document.
func MetaPath(docPath string) string {
	return strings.TrimSuffix(docPath, fileSuffix) + ".meta.json"
}

// List returns the archived document paths under dir/level, oldest name
// first.
func List(dir, level string) ([]string, error) {
	ents, err := os.ReadDir(filepath.Join(dir, level))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []string
	for _, e := range ents {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileSuffix) {
			continue
		}
		out = append(out, filepath.Join(dir, level, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}
