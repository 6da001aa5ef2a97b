package asciimap

import (
	"encoding/json"
	"fmt"
	"sort"
	"unicode/utf8"
)

// Entry is what a map character resolves to: a Single prefab or a Stack of
// prefabs placed in the same cell.
type Entry interface {
	// Prefabs lists the prefab names bottom layer first.
	Prefabs() []string
	isEntry()
}

// Single places one prefab. Serializes as a plain string.
type Single string

func (s Single) Prefabs() []string { return []string{string(s)} }
func (Single) isEntry()            {}

// Stack places every listed prefab in order, bottom layer first. Serializes
// as {"type":"all","list":[...]}. A one-element Stack stays a Stack.
type Stack []string

func (s Stack) Prefabs() []string { return append([]string(nil), s...) }
func (Stack) isEntry()            {}

func (s Stack) MarshalJSON() ([]byte, error) {
	list := []string(s)
	if list == nil {
		list = []string{}
	}
	return json.Marshal(stackJSON{Type: "all", List: list})
}

type stackJSON struct {
	Type string   `json:"type"`
	List []string `json:"list"`
}

// Legend maps a map character to the prefab(s) it places.
type Legend map[rune]Entry

// Clone returns an independent copy.
func (l Legend) Clone() Legend {
	out := make(Legend, len(l))
	for k, v := range l {
		if st, ok := v.(Stack); ok {
			v = append(Stack(nil), st...)
		}
		out[k] = v
	}
	return out
}

// Names returns every prefab name the legend references, sorted and unique.
func (l Legend) Names() []string {
	seen := map[string]bool{}
	for _, e := range l {
		for _, n := range e.Prefabs() {
			seen[n] = true
		}
	}
	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func (l Legend) MarshalJSON() ([]byte, error) {
	m := make(map[string]Entry, len(l))
	for k, v := range l {
		if v == nil {
			return nil, fmt.Errorf("legend: nil entry for %q", k)
		}
		m[string(k)] = v
	}
	return json.Marshal(m)
}

func (l *Legend) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make(Legend, len(raw))
	for k, v := range raw {
		if utf8.RuneCountInString(k) != 1 {
			return fmt.Errorf("legend: key %q must be a single character", k)
		}
		r, _ := utf8.DecodeRuneInString(k)
		e, err := decodeEntry(v)
		if err != nil {
			return fmt.Errorf("legend: %q: %w", k, err)
		}
		out[r] = e
	}
	*l = out
	return nil
}

func decodeEntry(b json.RawMessage) (Entry, error) {
	var name string
	if err := json.Unmarshal(b, &name); err == nil {
		if name == "" {
			return nil, fmt.Errorf("empty prefab name")
		}
		return Single(name), nil
	}
	var st stackJSON
	if err := json.Unmarshal(b, &st); err != nil {
		return nil, err
	}
	if st.Type != "all" {
		return nil, fmt.Errorf("unsupported entry type %q", st.Type)
	}
	if len(st.List) == 0 {
		return nil, fmt.Errorf("empty stack")
	}
	return Stack(st.List), nil
}
