package domain

import (
	"fmt"
	"sort"
)

type Component struct {
	ID         string     `json:"id"`
	Type       string     `json:"type"`
	Properties Properties `json:"properties"`
}

type Relationship struct {
	ID         string     `json:"id"`
	SourceID   string     `json:"source_id"`
	TargetID   string     `json:"target_id"`
	Type       string     `json:"type"`
	Properties Properties `json:"properties"`
}

// Structure is a graph of components connected by relationships.
type Structure struct {
	Components    []Component    `json:"components"`
	Relationships []Relationship `json:"relationships"`
}

// Names returns the property names sorted, so extraction order does
// not depend on map iteration.
func (p Properties) Names() []string {
	out := make([]string, 0, len(p))
	for k := range p {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (s Structure) Component(id string) (Component, bool) {
	for _, c := range s.Components {
		if c.ID == id {
			return c, true
		}
	}
	return Component{}, false
}

func (s Structure) Relationship(id string) (Relationship, bool) {
	for _, r := range s.Relationships {
		if r.ID == id {
			return r, true
		}
	}
	return Relationship{}, false
}

// RelationshipsFor returns every relationship touching the component.
func (s Structure) RelationshipsFor(componentID string) []Relationship {
	var out []Relationship
	for _, r := range s.Relationships {
		if r.SourceID == componentID || r.TargetID == componentID {
			out = append(out, r)
		}
	}
	return out
}

// ValidationErrors lists dangling relationship endpoints and duplicate ids.
func (s Structure) ValidationErrors() []string {
	var errs []string

	ids := make(map[string]bool, len(s.Components))
	for _, c := range s.Components {
		if ids[c.ID] {
			errs = append(errs, fmt.Sprintf("Duplicate component ID: %s", c.ID))
		}
		ids[c.ID] = true
	}

	relIDs := make(map[string]bool, len(s.Relationships))
	for _, r := range s.Relationships {
		if relIDs[r.ID] {
			errs = append(errs, fmt.Sprintf("Duplicate relationship ID: %s", r.ID))
		}
		relIDs[r.ID] = true

		if !ids[r.SourceID] {
			errs = append(errs, fmt.Sprintf("Relationship %s references non-existent source component %s", r.ID, r.SourceID))
		}
		if !ids[r.TargetID] {
			errs = append(errs, fmt.Sprintf("Relationship %s references non-existent target component %s", r.ID, r.TargetID))
		}
	}
	return errs
}

func (s Structure) IsValid() bool {
	return len(s.ValidationErrors()) == 0
}

// Clone returns a deep copy sharing no maps or slices with s.
func (s Structure) Clone() Structure {
	out := Structure{
		Components:    make([]Component, len(s.Components)),
		Relationships: make([]Relationship, len(s.Relationships)),
	}
	for i, c := range s.Components {
		c.Properties = c.Properties.clone()
		out.Components[i] = c
	}
	for i, r := range s.Relationships {
		r.Properties = r.Properties.clone()
		out.Relationships[i] = r
	}
	return out
}

// ComponentTypes returns the type of every component, in order.
func (s Structure) ComponentTypes() []string {
	out := make([]string, len(s.Components))
	for i, c := range s.Components {
		out[i] = c.Type
	}
	return out
}
