package generator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/forestbook1/sep-solver-sub001/internal/domain"
)

// Modify applies mods in order. s is left untouched; the first failing edit
// aborts with its error.
func (g *Generator) Modify(s domain.Structure, mods ...domain.Modification) (domain.Structure, error) {
	out := s.Clone()
	for _, m := range mods {
		next, err := m.Apply(out)
		if err != nil {
			return domain.Structure{}, err
		}
		out = next
	}
	if errs := out.ValidationErrors(); len(errs) > 0 {
		return domain.Structure{}, domain.NewError("generator.modify", domain.KindInvalidValue, "",
			"modified structure is invalid: %s", strings.Join(errs, "; "))
	}
	return out, nil
}

// Variants derives up to n structures from s, each one random edit away.
// Edits that would produce an invalid structure are skipped.
func (g *Generator) Variants(s domain.Structure, n int) []domain.Structure {
	out := make([]domain.Structure, 0, n)
	for attempts := 0; len(out) < n && attempts < n*5; attempts++ {
		g.mu.Lock()
		m := g.randomModification(s)
		g.mu.Unlock()
		v, err := g.Modify(s, m)
		if err != nil {
			g.log.Debug("generator.variant.skipped", "modification", m.Description(), "error", err)
			continue
		}
		out = append(out, v)
	}
	return out
}

// randomModification picks an edit that applies to s. Adding a component
// always applies. Callers hold g.mu.
func (g *Generator) randomModification(s domain.Structure) domain.Modification {
	var choices []func() domain.Modification

	choices = append(choices, func() domain.Modification {
		c := domain.Component{
			ID:         nextID(s.Components, "comp_"),
			Type:       g.spec.ComponentTypes[g.rng.IntN(len(g.spec.ComponentTypes))],
			Properties: g.componentLiterals(),
		}
		b := builder{}
		b.attach(c.Properties, g.spec.Variables, domain.OwnerComponent, c.Type)
		return domain.AddComponent{Component: c}
	})

	if n := len(s.Components); n > 1 {
		choices = append(choices,
			func() domain.Modification {
				return domain.RemoveComponent{ComponentID: s.Components[g.rng.IntN(n)].ID}
			},
			func() domain.Modification {
				src, dst := g.rng.IntN(n), g.rng.IntN(n-1)
				if dst >= src {
					dst++
				}
				r := domain.Relationship{
					ID:         nextRelationshipID(s.Relationships),
					SourceID:   s.Components[src].ID,
					TargetID:   s.Components[dst].ID,
					Type:       g.spec.RelationshipTypes[g.rng.IntN(len(g.spec.RelationshipTypes))],
					Properties: g.relationshipLiterals(),
				}
				return domain.AddRelationship{Relationship: r}
			},
		)
	}
	if len(s.Components) > 0 {
		choices = append(choices, func() domain.Modification {
			c := s.Components[g.rng.IntN(len(s.Components))]
			types := g.spec.ComponentTypes
			i := g.rng.IntN(len(types))
			if types[i] == c.Type {
				i = (i + 1) % len(types)
			}
			return domain.ChangeComponentType{ComponentID: c.ID, NewType: types[i]}
		})
	}
	if len(s.Relationships) > 0 {
		choices = append(choices, func() domain.Modification {
			return domain.RemoveRelationship{RelationshipID: s.Relationships[g.rng.IntN(len(s.Relationships))].ID}
		})
	}

	return choices[g.rng.IntN(len(choices))]()
}

func nextID(cs []domain.Component, prefix string) string {
	ids := make([]string, len(cs))
	for i, c := range cs {
		ids[i] = c.ID
	}
	return prefix + strconv.Itoa(nextSuffix(ids, prefix))
}

func nextRelationshipID(rs []domain.Relationship) string {
	ids := make([]string, len(rs))
	for i, r := range rs {
		ids[i] = r.ID
	}
	return fmt.Sprintf("rel_%d", nextSuffix(ids, "rel_"))
}

func nextSuffix(ids []string, prefix string) int {
	next := 0
	for _, id := range ids {
		if n, err := strconv.Atoi(strings.TrimPrefix(id, prefix)); err == nil && strings.HasPrefix(id, prefix) {
			next = max(next, n+1)
		}
	}
	return next
}
