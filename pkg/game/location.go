package game

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Location is a named area. Entity membership is kept as id lists that refer
// to the document registries. Child locations are navigated by the renderer and
// are never entered through ChangeLocation on their own.
type Location struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	BackgroundImage string     `json:"backgroundImage,omitempty"`
	BackgroundMusic string     `json:"backgroundMusic,omitempty"`
	Items           []string   `json:"items"`
	NPCs            []string   `json:"npcs"`
	Portals         []string   `json:"portals"`
	Locations       []Location `json:"locations,omitempty"`

	// Embedded holds entity definitions written inline in the location instead
	// of as ids. The persistence layer hoists them into the registries.
	Embedded EmbeddedEntities `json:"-"`
}

// EmbeddedEntities are inline entity definitions found while decoding a location.
type EmbeddedEntities struct {
	Items   []Item
	NPCs    []NPC
	Portals []Portal
}

// IsEmpty reports whether no inline definitions were found.
func (e EmbeddedEntities) IsEmpty() bool {
	return len(e.Items) == 0 && len(e.NPCs) == 0 && len(e.Portals) == 0
}

// UnmarshalJSON allows entity lists to hold either id strings or full entity objects.
func (l *Location) UnmarshalJSON(data []byte) error {
	type Alias Location
	aux := &struct {
		Items   []json.RawMessage `json:"items"`
		NPCs    []json.RawMessage `json:"npcs"`
		Portals []json.RawMessage `json:"portals"`
		*Alias
	}{Alias: (*Alias)(l)}
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}

	var err error
	if l.Items, l.Embedded.Items, err = decodeRefs(aux.Items, func(i *Item) string { return i.ID }); err != nil {
		return fmt.Errorf("location %s items: %w", l.ID, err)
	}
	if l.NPCs, l.Embedded.NPCs, err = decodeRefs(aux.NPCs, func(n *NPC) string { return n.ID }); err != nil {
		return fmt.Errorf("location %s npcs: %w", l.ID, err)
	}
	if l.Portals, l.Embedded.Portals, err = decodeRefs(aux.Portals, func(p *Portal) string { return p.ID }); err != nil {
		return fmt.Errorf("location %s portals: %w", l.ID, err)
	}
	return nil
}

func decodeRefs[T any](raws []json.RawMessage, idOf func(*T) string) ([]string, []T, error) {
	ids := make([]string, 0, len(raws))
	var inline []T
	for _, raw := range raws {
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) > 0 && trimmed[0] == '"' {
			var id string
			if err := json.Unmarshal(trimmed, &id); err != nil {
				return nil, nil, err
			}
			ids = append(ids, id)
			continue
		}
		var v T
		if err := json.Unmarshal(trimmed, &v); err != nil {
			return nil, nil, err
		}
		ids = append(ids, idOf(&v))
		inline = append(inline, v)
	}
	return ids, inline, nil
}

// EntityIDs returns the ids of every item, NPC and portal placed directly in
// this location (children excluded), in that order.
func (l *Location) EntityIDs() []string {
	ids := make([]string, 0, len(l.Items)+len(l.NPCs)+len(l.Portals))
	ids = append(ids, l.Items...)
	ids = append(ids, l.NPCs...)
	ids = append(ids, l.Portals...)
	return ids
}

// Contains reports whether the entity id is placed directly in this location.
func (l *Location) Contains(id string) bool {
	for _, list := range [][]string{l.Items, l.NPCs, l.Portals} {
		for _, v := range list {
			if v == id {
				return true
			}
		}
	}
	return false
}
