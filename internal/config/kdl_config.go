package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// ConfigFileName is the optional per-project configuration file.
const ConfigFileName = ".nargo-mutants.kdl"

// loadKDL overlays settings from <projectRoot>/.nargo-mutants.kdl onto cfg.
// A missing file leaves cfg untouched.
func loadKDL(projectRoot string, cfg *Config) error {
	kdlPath := filepath.Join(projectRoot, ConfigFileName)

	content, err := os.ReadFile(kdlPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", ConfigFileName, err)
	}

	return parseKDL(string(content), cfg)
}

// parseKDL applies a KDL document to cfg. Example:
//
//	command {
//	    test "nargo" "test"
//	    version "nargo" "--version"
//	}
//	limits {
//	    timeout_seconds 120
//	    tail_bytes 32768
//	}
//	classify {
//	    compile_marker "error: "
//	    test_line_marker "Running"
//	}
//	output {
//	    dir "mutants.out"
//	}
func parseKDL(content string, cfg *Config) error {
	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", ConfigFileName, err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "command":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "test":
					if argv := collectStringArgs(cn); len(argv) > 0 {
						cfg.TestCommand = argv
					}
				case "version":
					if argv := collectStringArgs(cn); len(argv) > 0 {
						cfg.VersionCommand = argv
					}
				}
			}
		case "limits":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "timeout_seconds":
					if v, ok := firstIntArg(cn); ok && v >= 0 {
						cfg.TimeoutSeconds = v
					}
				case "tail_bytes":
					if v, ok := firstIntArg(cn); ok && v > 0 {
						cfg.TailBytes = v
					}
				case "watch_debounce_ms":
					if v, ok := firstIntArg(cn); ok && v > 0 {
						cfg.WatchDebounceMs = v
					}
				}
			}
		case "classify":
			// Marker nodes replace the defaults when present so a project
			// can pin the classifier to its compiler's exact output.
			var compile, testLine []string
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "compile_marker":
					compile = append(compile, collectStringArgs(cn)...)
				case "test_line_marker":
					testLine = append(testLine, collectStringArgs(cn)...)
				}
			}
			if len(compile) > 0 {
				cfg.CompileMarkers = compile
			}
			if len(testLine) > 0 {
				cfg.TestLineMarkers = testLine
			}
		case "output":
			for _, cn := range n.Children {
				if nodeName(cn) == "dir" {
					if s, ok := firstStringArg(cn); ok && s != "" {
						cfg.OutDirName = s
					}
				}
			}
		}
	}

	return nil
}

// Helper functions leveraging the kdl-go document model
func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
