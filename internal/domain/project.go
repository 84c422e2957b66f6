package domain

// ProjectConfig is the project-level configuration loaded from sepsolve.yaml.
type ProjectConfig struct {
	Masking  MaskingConfig
	Defaults DefaultsConfig
	Paths    PathsConfig
	Storage  StorageConfig
}

// MaskingConfig controls redaction of sensitive metadata keys in stored runs.
type MaskingConfig struct {
	Enabled bool
	Keys    []string
}

type DefaultsConfig struct {
	Profile string
}

type PathsConfig struct {
	ProblemsDir string `validate:"required"`
	ProfilesDir string `validate:"required"`
	RunsDir     string `validate:"required"`
}

type StorageBackend string

const (
	StorageJSON   StorageBackend = "json"
	StorageBadger StorageBackend = "badger"
)

type StorageConfig struct {
	Backend   StorageBackend `validate:"required,oneof=json badger"`
	// BadgerDir is relative to the project root.
	BadgerDir string
}

// DefaultProjectConfig fills whatever sepsolve.yaml leaves out.
func DefaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Masking: MaskingConfig{Enabled: true},
		Defaults: DefaultsConfig{
			Profile: "balanced",
		},
		Paths: PathsConfig{
			ProblemsDir: "problems",
			ProfilesDir: "profiles",
			RunsDir:     "runs",
		},
		Storage: StorageConfig{
			Backend:   StorageJSON,
			BadgerDir: ".sepsolve/db",
		},
	}
}

func (c ProjectConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return &OpError{Op: "project.validate", Kind: KindInvalidConfig, Err: err}
	}
	return nil
}

// ProjectSpec describes where a new project is scaffolded. Name defaults to
// the base name of Root.
type ProjectSpec struct {
	Root string
	Name string
}

// ProfileRef is a lightweight reference to a profile file on disk.
type ProfileRef struct {
	Name string
	Path string
}
