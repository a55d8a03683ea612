package script

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/agentstation/pinflow"
)

// TypePrefix prefixes the type id of every script node.
const TypePrefix = "pinflow.script."

// Manager discovers Lua scripts in a directory and registers each one as a
// pure node type with an "input" pin and a "result" pin.
type Manager struct {
	scriptsDir string
	scripts    map[string]*Script
	logger     *slog.Logger
}

// Script represents a discovered Lua script.
type Script struct {
	Name        string
	Path        string
	Category    string
	Description string
	Version     string
	Content     string
}

// TypeID returns the node type id of the script.
func (s *Script) TypeID() string {
	return TypePrefix + s.Name
}

// NewManager creates a manager for scriptsDir.
func NewManager(scriptsDir string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		scriptsDir: scriptsDir,
		scripts:    make(map[string]*Script),
		logger:     logger,
	}
}

// Discover finds all Lua scripts in the scripts directory. Scripts that fail
// to load or compile are logged and skipped.
func (m *Manager) Discover() error {
	err := filepath.WalkDir(m.scriptsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".lua") {
			return nil
		}

		script, err := m.LoadScript(path)
		if err != nil {
			m.logger.Warn("skipping script", "path", path, "error", err)
			return nil
		}

		m.scripts[script.Name] = script
		m.logger.Debug("discovered script", "name", script.Name, "path", script.Path)
		return nil
	})
	if err != nil {
		return fmt.Errorf("discover scripts in %s: %w", m.scriptsDir, err)
	}
	return nil
}

// LoadScript loads a Lua script and parses its metadata comments.
func (m *Manager) LoadScript(path string) (*Script, error) {
	content, err := os.ReadFile(path) //nolint:gosec // Path comes from the scripts directory walk
	if err != nil {
		return nil, err
	}
	if err := Check(string(content)); err != nil {
		return nil, err
	}

	script := &Script{
		Path:    path,
		Content: string(content),
	}

	// Metadata comments sit at the top of the file
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "--") {
			break
		}

		switch {
		case strings.HasPrefix(line, "-- @name:"):
			script.Name = strings.TrimSpace(strings.TrimPrefix(line, "-- @name:"))
		case strings.HasPrefix(line, "-- @category:"):
			script.Category = strings.TrimSpace(strings.TrimPrefix(line, "-- @category:"))
		case strings.HasPrefix(line, "-- @description:"):
			script.Description = strings.TrimSpace(strings.TrimPrefix(line, "-- @description:"))
		case strings.HasPrefix(line, "-- @version:"):
			script.Version = strings.TrimSpace(strings.TrimPrefix(line, "-- @version:"))
		}
	}

	if script.Name == "" {
		base := filepath.Base(path)
		script.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if script.Category == "" {
		script.Category = "Scripting"
	}
	return script, nil
}

// Get returns a discovered script by name.
func (m *Manager) Get(name string) (*Script, bool) {
	script, ok := m.scripts[name]
	return script, ok
}

// List returns the discovered scripts sorted by name.
func (m *Manager) List() []*Script {
	scripts := make([]*Script, 0, len(m.scripts))
	for _, script := range m.scripts {
		scripts = append(scripts, script)
	}
	sort.Slice(scripts, func(i, j int) bool { return scripts[i].Name < scripts[j].Name })
	return scripts
}

// Register adds every discovered script to reg.
func (m *Manager) Register(reg *pinflow.Registry) error {
	for _, script := range m.List() {
		if err := reg.Register(script.TypeID(), NewFactory(script)); err != nil {
			return err
		}
	}
	return nil
}

// NewFactory returns a factory for nodes running script.
func NewFactory(script *Script) pinflow.Factory {
	return func() (pinflow.Node, error) {
		n, err := pinflow.NewFunctionNode(script.TypeID(), script.Name,
			func(ctx context.Context, n *pinflow.FunctionNode) error {
				input, err := n.Arg(ctx, "input")
				if err != nil {
					return err
				}
				result, err := Exec(ctx, script.Content, input)
				if err != nil {
					return err
				}
				return n.SetResult("result", result)
			},
			pinflow.Pure(),
			pinflow.WithDescription(script.Description),
			pinflow.WithCategory(script.Category),
			pinflow.WithInputs(pinflow.NewInputArgumentPin("input", "Input", pinflow.TypeAny)),
			pinflow.WithOutputs(pinflow.NewOutputArgumentPin("result", "Result", pinflow.TypeAny)),
		)
		if err != nil {
			return nil, err
		}
		return n, nil
	}
}
