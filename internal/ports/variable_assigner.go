package ports

import "github.com/forestbook1/sep-solver-sub001/internal/domain"

// VariableAssigner binds every variable declared by a structure.
type VariableAssigner interface {
	Assign(s domain.Structure, strategy domain.AssignmentStrategy) (*domain.VariableAssignment, error)
}
