package catalogs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"substrates.ai/internal/sim/substrate"
)

// Digests identifies the content of a built document, section by section.
type Digests struct {
	Map      string `json:"map"`
	Prefabs  string `json:"prefabs"`
	Legend   string `json:"legend"`
	Scene    string `json:"scene"`
	Avatars  string `json:"avatars"`
	Document string `json:"document"`

	PrefabNames []string `json:"prefab_names"`
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Digest hashes the canonical JSON of each section. encoding/json sorts map
// keys, so equal documents always hash equal.
func Digest(doc substrate.Document) (Digests, error) {
	var d Digests
	sections := []struct {
		name string
		v    any
		out  *string
	}{
		{"prefabs", doc.Simulation.Prefabs, &d.Prefabs},
		{"legend", doc.Simulation.CharPrefabMap, &d.Legend},
		{"scene", doc.Simulation.Scene, &d.Scene},
		{"avatars", doc.Simulation.GameObjects, &d.Avatars},
		{"document", doc, &d.Document},
	}
	for _, s := range sections {
		b, err := json.Marshal(s.v)
		if err != nil {
			return Digests{}, fmt.Errorf("digest %s: %w", s.name, err)
		}
		*s.out = sha256Hex(b)
	}
	d.Map = sha256Hex([]byte(doc.Simulation.Map))

	d.PrefabNames = make([]string, 0, len(doc.Simulation.Prefabs))
	for name := range doc.Simulation.Prefabs {
		d.PrefabNames = append(d.PrefabNames, name)
	}
	sort.Strings(d.PrefabNames)
	return d, nil
}

// Static returns the digests of the sections that do not depend on the
// player count: map, prefabs and legend.
func Static() (Digests, error) {
	d := Digests{
		Map: sha256Hex([]byte(substrate.AsciiMap)),
	}
	pb, err := json.Marshal(substrate.CreatePrefabs())
	if err != nil {
		return Digests{}, fmt.Errorf("digest prefabs: %w", err)
	}
	d.Prefabs = sha256Hex(pb)
	lb, err := json.Marshal(substrate.CharPrefabMap())
	if err != nil {
		return Digests{}, fmt.Errorf("digest legend: %w", err)
	}
	d.Legend = sha256Hex(lb)
	d.PrefabNames = substrate.PrefabNames()
	return d, nil
}
