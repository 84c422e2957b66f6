package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/forestbook1/sep-solver-sub001/internal/domain"
	"github.com/forestbook1/sep-solver-sub001/internal/infra/fsproject"
)

// --- looksLikePath ---

func TestLooksLikePath(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"demo", false},
		{"demo.yaml", false},
		{"./demo.yaml", true},
		{"problems/demo.yaml", true},
		{"/abs/path/demo.yaml", true},
	}
	for _, c := range cases {
		if got := looksLikePath(c.input); got != c.want {
			t.Errorf("looksLikePath(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

// --- hasYAMLExt ---

func TestHasYAMLExt(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"demo.yaml", true},
		{"demo.yml", true},
		{"DEMO.YAML", true},
		{"demo.json", false},
		{"demo", false},
		{"", false},
	}
	for _, c := range cases {
		if got := hasYAMLExt(c.input); got != c.want {
			t.Errorf("hasYAMLExt(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

// --- fileExists ---

func TestFileExists(t *testing.T) {
	tmp := t.TempDir()
	p := filepath.Join(tmp, "exists.txt")
	if err := os.WriteFile(p, []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !fileExists(p) {
		t.Errorf("expected fileExists=true for %s", p)
	}
	if fileExists(filepath.Join(tmp, "not_there.txt")) {
		t.Error("expected fileExists=false for non-existent file")
	}
}

// --- parseOverrides ---

func TestParseOverrides_TypedValues(t *testing.T) {
	got, err := parseOverrides([]string{
		"max_iterations=50",
		"exploration_strategy=best_first",
		"enable_schema_validation=false",
		"timeout_seconds=2.5",
		"random_seed=",
	})
	if err != nil {
		t.Fatalf("parseOverrides: %v", err)
	}

	if v, ok := got["max_iterations"].(int); !ok || v != 50 {
		t.Errorf("max_iterations = %#v, want int 50", got["max_iterations"])
	}
	if got["exploration_strategy"] != "best_first" {
		t.Errorf("exploration_strategy = %#v", got["exploration_strategy"])
	}
	if got["enable_schema_validation"] != false {
		t.Errorf("enable_schema_validation = %#v, want false", got["enable_schema_validation"])
	}
	if got["timeout_seconds"] != 2.5 {
		t.Errorf("timeout_seconds = %#v, want 2.5", got["timeout_seconds"])
	}
	if v, ok := got["random_seed"]; !ok || v != nil {
		t.Errorf("random_seed = %#v, want explicit nil", v)
	}

	cfg, err := domain.DefaultSolverConfig().WithChanges(got)
	if err != nil {
		t.Fatalf("overrides should apply cleanly: %v", err)
	}
	if cfg.MaxIterations != 50 || cfg.ExplorationStrategy != domain.ExploreBestFirst {
		t.Errorf("unexpected config after overrides: %+v", cfg)
	}
}

func TestParseOverrides_Invalid(t *testing.T) {
	for _, in := range []string{"max_iterations", "=5", "  =x"} {
		if _, err := parseOverrides([]string{in}); err == nil {
			t.Errorf("parseOverrides(%q): expected error", in)
		}
	}
}

// --- project resolution ---

func newProject(t *testing.T) *projectCtx {
	t.Helper()
	root := t.TempDir()
	if err := fsproject.NewInitializer().Init(domain.ProjectSpec{Root: root, Name: "cli"}, false); err != nil {
		t.Fatalf("init: %v", err)
	}
	p, err := loadProject(root)
	if err != nil {
		t.Fatalf("loadProject: %v", err)
	}
	return p
}

func TestResolveProblemPath(t *testing.T) {
	p := newProject(t)
	want := filepath.Join(p.root, "problems", "demo.yaml")

	for _, in := range []string{"demo", "demo.yaml", "problems/demo.yaml", "cli demo"} {
		got, err := resolveProblemPath(p, in)
		if err != nil {
			t.Errorf("resolveProblemPath(%q): %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("resolveProblemPath(%q) = %q, want %q", in, got, want)
		}
	}

	if _, err := resolveProblemPath(p, ""); err == nil {
		t.Error("expected error for empty problem")
	}
	_, err := resolveProblemPath(p, "nope")
	if !domain.IsKind(err, domain.KindNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestResolveProfileArg(t *testing.T) {
	p := newProject(t)

	if got := resolveProfileArg(p, ""); got != "quick" {
		t.Errorf("empty profile = %q, want project default quick", got)
	}
	if got := resolveProfileArg(p, "thorough"); got != "thorough" {
		t.Errorf("named profile = %q", got)
	}
	want := filepath.Join(p.root, "profiles", "quick.yaml")
	if got := resolveProfileArg(p, "profiles/quick.yaml"); got != want {
		t.Errorf("relative path = %q, want %q", got, want)
	}
}

// --- output ---

func sampleRun() domain.RunArtifact {
	va := domain.NewVariableAssignment()
	va.AddDomain(domain.NewDomain("cpu.frequency", domain.TypeInt, map[string]any{"min": 1, "max": 10}))
	_ = va.Set("cpu.frequency", 7)

	obj := domain.DesignObject{
		ID: "candidate_3",
		Structure: domain.Structure{
			Components: []domain.Component{
				{ID: "cpu", Type: "processor", Properties: domain.Properties{"power": domain.Literal(20)}},
			},
		},
		Variables: va,
	}

	started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return domain.RunArtifact{
		ProblemName: "demo",
		ProfileName: "quick",
		StartedAt:   started,
		FinishedAt:  started.Add(2 * time.Second),
		Summary: domain.ProgressSummary{
			Status:          domain.StatusCompleted,
			StopReason:      domain.StopMaxSolutions,
			Strategy:        domain.ExploreBreadthFirst,
			IterationCount:  12,
			SolutionsFound:  1,
			DurationSeconds: 2,
			MostViolated:    []domain.ViolationCount{{ConstraintID: "size", Count: 4}},
		},
		Solutions: []domain.SolutionRecord{domain.NewSolutionRecord(obj, 0.75)},
	}
}

func TestPrintRun_Pretty(t *testing.T) {
	var buf bytes.Buffer
	if err := printRun(&buf, sampleRun(), "run-1", "pretty"); err != nil {
		t.Fatalf("printRun: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Problem:    demo",
		"Profile:    quick",
		"Run ID:     run-1",
		"size (4)",
		"Solutions: 1",
		"candidate_3 score=0.750 components=1",
		"cpu.frequency = 7",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output, got:\n%s", want, out)
		}
	}
}

func TestPrintRun_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := printRun(&buf, sampleRun(), "run-1", "json"); err != nil {
		t.Fatalf("printRun: %v", err)
	}

	var payload struct {
		RunID string             `json:"run_id"`
		Run   domain.RunArtifact `json:"run"`
	}
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, buf.String())
	}
	if payload.RunID != "run-1" {
		t.Errorf("run_id = %q", payload.RunID)
	}
	if len(payload.Run.Solutions) != 1 || payload.Run.Solutions[0].ID != "candidate_3" {
		t.Errorf("unexpected solutions: %+v", payload.Run.Solutions)
	}
}

func TestPrintRun_UnknownFormat(t *testing.T) {
	if err := printRun(&bytes.Buffer{}, sampleRun(), "", "xml"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestPrintFields(t *testing.T) {
	rules := domain.FieldRules{
		"type":    "$.structure.components[0].type",
		"missing": "$.nope",
	}

	var buf bytes.Buffer
	if err := printFields(&buf, sampleRun(), rules, "pretty"); err != nil {
		t.Fatalf("printFields: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "- candidate_3") || !strings.Contains(out, "type = processor") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if !strings.Contains(out, `field "missing"`) {
		t.Errorf("expected failing field to be reported, got:\n%s", out)
	}
}

// --- command structure ---

func TestRootCmd_RegistersSubcommands(t *testing.T) {
	cmd := newRootCmd()
	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[strings.Fields(sub.Use)[0]] = true
	}
	for _, expected := range []string{"init", "solve", "validate", "problems", "profiles", "presets", "runs", "browse", "version"} {
		if !names[expected] {
			t.Errorf("expected subcommand %q to be registered", expected)
		}
	}
	if cmd.PersistentFlags().Lookup("project") == nil {
		t.Error("expected persistent --project flag")
	}
}

func TestSolveCmd_Flags(t *testing.T) {
	cmd := solveCmd(&globalFlags{})
	for _, flag := range []string{"problem", "profile", "seed", "set", "watch", "metrics-file", "export", "no-save", "format"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("expected --%s flag on solve command", flag)
		}
	}
}

func TestRootCmd_InitThenValidate(t *testing.T) {
	dir := t.TempDir()

	cmd := newRootCmd()
	cmd.SetArgs([]string{"init", dir, "--name", "bench", "--project", dir})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("init: %v", err)
	}
	if !fileExists(filepath.Join(dir, "sepsolve.yaml")) {
		t.Fatal("expected sepsolve.yaml after init")
	}

	cmd = newRootCmd()
	cmd.SetArgs([]string{"validate", "demo", "--project", dir})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	cmd = newRootCmd()
	cmd.SetArgs([]string{"validate", "missing", "--project", dir})
	if err := cmd.Execute(); err == nil {
		t.Error("expected validate of unknown problem to fail")
	}
}
