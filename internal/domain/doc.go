// Package domain contains the core model of sepsolve: variable domains and
// assignments, structures and design objects, constraints, solver
// configuration and exploration state.
//
// The domain does not depend on YAML parsing, storage or the filesystem.
// Infra adapters map into and out of these types.
package domain
