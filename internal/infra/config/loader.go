package config

import (
	"os"

	"github.com/forestbook1/sep-solver-sub001/internal/domain"
	"gopkg.in/yaml.v3"
)

func LoadProblem(path string) (domain.Problem, error) {
	var dto YAMLProblem
	if err := readYAML("config.load_problem", path, &dto); err != nil {
		return domain.Problem{}, err
	}
	return MapProblem(path, dto)
}

func LoadProfile(path string) (domain.SolverConfig, error) {
	var dto YAMLProfile
	if err := readYAML("config.load_profile", path, &dto); err != nil {
		return domain.SolverConfig{}, err
	}
	return MapProfile(path, dto)
}

func readYAML(op, path string, out any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return &domain.OpError{
			Op:   op,
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}
	if err := yaml.Unmarshal(b, out); err != nil {
		return &domain.OpError{
			Op:   op,
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}
	return nil
}
