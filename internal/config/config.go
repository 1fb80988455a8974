package config

// Default tunables. The classifier markers are the one substantive
// coupling to nargo's output format and are kept here in a single table.
const (
	DefaultTimeoutSeconds = 300
	DefaultTailBytes      = 64 * 1024
	DefaultOutDirName     = "mutants.out"
	DefaultDebounceMs     = 300
)

// Config carries every tunable of the mutation driver. All values are
// passed explicitly; nothing reads the environment after startup.
type Config struct {
	// TestCommand is the argv run for the baseline and for each mutant.
	TestCommand []string

	// VersionCommand is the argv of the tool version probe.
	VersionCommand []string

	// TimeoutSeconds bounds each mutant's test run. 0 means no limit.
	// The baseline run is never bounded.
	TimeoutSeconds int

	// TailBytes caps the captured stdout/stderr tails.
	TailBytes int

	// CompileMarkers are substrings of captured output that mark a
	// compile failure, classifying the mutant as unviable.
	CompileMarkers []string

	// TestLineMarkers are substrings expected in any output that actually
	// executed tests; when none is present the run never reached the test
	// phase and the mutant is unviable.
	TestLineMarkers []string

	// OutDirName is the artifact directory name under the project root,
	// used when no --out-dir flag is given.
	OutDirName string

	// WatchDebounceMs is the quiet period before the watch loop rescans.
	WatchDebounceMs int
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		TestCommand:    []string{"nargo", "test"},
		VersionCommand: []string{"nargo", "--version"},
		TimeoutSeconds: DefaultTimeoutSeconds,
		TailBytes:      DefaultTailBytes,
		CompileMarkers: []string{
			"error: ",
			"aborting due to",
			"cannot find",
		},
		TestLineMarkers: []string{
			"Running",
			"Testing",
		},
		OutDirName:      DefaultOutDirName,
		WatchDebounceMs: DefaultDebounceMs,
	}
}

// Load returns the effective configuration for a project root: built-in
// defaults overlaid with an optional .nargo-mutants.kdl file in the root.
// A missing config file is not an error.
func Load(projectRoot string) (*Config, error) {
	cfg := Default()
	if err := loadKDL(projectRoot, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
