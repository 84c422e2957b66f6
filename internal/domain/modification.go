package domain

import "fmt"

// Modification is a structural edit. Apply never mutates its input; it
// returns an edited deep copy.
type Modification interface {
	Apply(s Structure) (Structure, error)
	Description() string
}

type AddComponent struct{ Component Component }

func (m AddComponent) Apply(s Structure) (Structure, error) {
	if _, exists := s.Component(m.Component.ID); exists {
		return Structure{}, modError("add_component", "component %s already exists", m.Component.ID)
	}
	out := s.Clone()
	c := m.Component
	c.Properties = c.Properties.clone()
	out.Components = append(out.Components, c)
	return out, nil
}

func (m AddComponent) Description() string {
	return fmt.Sprintf("Add component %s of type %s", m.Component.ID, m.Component.Type)
}

// RemoveComponent drops the component and every relationship touching it.
type RemoveComponent struct{ ComponentID string }

func (m RemoveComponent) Apply(s Structure) (Structure, error) {
	if _, exists := s.Component(m.ComponentID); !exists {
		return Structure{}, modError("remove_component", "component %s not found", m.ComponentID)
	}
	src := s.Clone()
	out := Structure{}
	for _, c := range src.Components {
		if c.ID != m.ComponentID {
			out.Components = append(out.Components, c)
		}
	}
	for _, r := range src.Relationships {
		if r.SourceID != m.ComponentID && r.TargetID != m.ComponentID {
			out.Relationships = append(out.Relationships, r)
		}
	}
	return out, nil
}

func (m RemoveComponent) Description() string {
	return fmt.Sprintf("Remove component %s", m.ComponentID)
}

type AddRelationship struct{ Relationship Relationship }

func (m AddRelationship) Apply(s Structure) (Structure, error) {
	r := m.Relationship
	if _, exists := s.Relationship(r.ID); exists {
		return Structure{}, modError("add_relationship", "relationship %s already exists", r.ID)
	}
	if _, ok := s.Component(r.SourceID); !ok {
		return Structure{}, modError("add_relationship", "source component %s not found", r.SourceID)
	}
	if _, ok := s.Component(r.TargetID); !ok {
		return Structure{}, modError("add_relationship", "target component %s not found", r.TargetID)
	}
	out := s.Clone()
	r.Properties = r.Properties.clone()
	out.Relationships = append(out.Relationships, r)
	return out, nil
}

func (m AddRelationship) Description() string {
	r := m.Relationship
	return fmt.Sprintf("Add relationship %s from %s to %s", r.ID, r.SourceID, r.TargetID)
}

type RemoveRelationship struct{ RelationshipID string }

func (m RemoveRelationship) Apply(s Structure) (Structure, error) {
	if _, exists := s.Relationship(m.RelationshipID); !exists {
		return Structure{}, modError("remove_relationship", "relationship %s not found", m.RelationshipID)
	}
	out := s.Clone()
	kept := out.Relationships[:0]
	for _, r := range out.Relationships {
		if r.ID != m.RelationshipID {
			kept = append(kept, r)
		}
	}
	out.Relationships = kept
	return out, nil
}

func (m RemoveRelationship) Description() string {
	return fmt.Sprintf("Remove relationship %s", m.RelationshipID)
}

// SetComponentProperties replaces the property map of one component.
type SetComponentProperties struct {
	ComponentID string
	Properties  Properties
}

func (m SetComponentProperties) Apply(s Structure) (Structure, error) {
	out := s.Clone()
	for i := range out.Components {
		if out.Components[i].ID == m.ComponentID {
			out.Components[i].Properties = m.Properties.clone()
			return out, nil
		}
	}
	return Structure{}, modError("set_component_properties", "component %s not found", m.ComponentID)
}

func (m SetComponentProperties) Description() string {
	return fmt.Sprintf("Modify properties of component %s", m.ComponentID)
}

// SetRelationshipProperties replaces the property map of one relationship.
type SetRelationshipProperties struct {
	RelationshipID string
	Properties     Properties
}

func (m SetRelationshipProperties) Apply(s Structure) (Structure, error) {
	out := s.Clone()
	for i := range out.Relationships {
		if out.Relationships[i].ID == m.RelationshipID {
			out.Relationships[i].Properties = m.Properties.clone()
			return out, nil
		}
	}
	return Structure{}, modError("set_relationship_properties", "relationship %s not found", m.RelationshipID)
}

func (m SetRelationshipProperties) Description() string {
	return fmt.Sprintf("Modify properties of relationship %s", m.RelationshipID)
}

type ChangeComponentType struct {
	ComponentID string
	NewType     string
}

func (m ChangeComponentType) Apply(s Structure) (Structure, error) {
	out := s.Clone()
	for i := range out.Components {
		if out.Components[i].ID == m.ComponentID {
			out.Components[i].Type = m.NewType
			return out, nil
		}
	}
	return Structure{}, modError("change_component_type", "component %s not found", m.ComponentID)
}

func (m ChangeComponentType) Description() string {
	return fmt.Sprintf("Change type of component %s to %s", m.ComponentID, m.NewType)
}

func modError(op, format string, args ...any) error {
	return newOpError("structure."+op, KindInvalidValue, "", fmt.Sprintf(format, args...))
}
