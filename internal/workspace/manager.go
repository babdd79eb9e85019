// internal/workspace/manager.go

// Package workspace manages the per-workspace directories that group
// session logs and summaries.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/user/termtrace/internal/types"
)

// Manifest is the per-workspace settings file, workspace.yaml.
type Manifest struct {
	Name      types.WorkspaceName `yaml:"name"`
	CreatedAt time.Time           `yaml:"created_at"`
	Summarize SummarizeSettings   `yaml:"summarize"`
}

// SummarizeSettings are workspace-level overrides for live summarization.
// Zero values defer to the global configuration.
type SummarizeSettings struct {
	Mode      string `yaml:"mode,omitempty"`
	BatchSize int    `yaml:"batch_size,omitempty"`
	Schedule  string `yaml:"schedule,omitempty"`
}

// Manager creates and enumerates workspaces under a root directory.
type Manager struct {
	root string
}

// NewManager creates a manager rooted at the given directory, typically
// <data_dir>/workspaces.
func NewManager(root string) *Manager {
	return &Manager{root: root}
}

// Dir returns the directory for a workspace.
func (m *Manager) Dir(name types.WorkspaceName) string {
	return filepath.Join(m.root, string(name))
}

func (m *Manager) manifestPath(name types.WorkspaceName) string {
	return filepath.Join(m.Dir(name), "workspace.yaml")
}

// SummaryPath returns the workspace-level summary file.
func (m *Manager) SummaryPath(name types.WorkspaceName) string {
	return filepath.Join(m.Dir(name), fmt.Sprintf("%s_summary.md", name))
}

// Ensure creates the workspace directory and manifest on demand and
// returns the manifest.
func (m *Manager) Ensure(name types.WorkspaceName) (*Manifest, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(m.Dir(name), 0o755); err != nil {
		return nil, fmt.Errorf("create workspace dir: %w", err)
	}

	data, err := os.ReadFile(m.manifestPath(name))
	if err == nil {
		var manifest Manifest
		if err := yaml.Unmarshal(data, &manifest); err != nil {
			return nil, fmt.Errorf("unmarshal workspace manifest: %w", err)
		}
		return &manifest, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read workspace manifest: %w", err)
	}

	manifest := &Manifest{Name: name, CreatedAt: time.Now()}
	if err := m.SaveManifest(manifest); err != nil {
		return nil, err
	}
	return manifest, nil
}

// SaveManifest writes the manifest atomically via a temp file rename.
func (m *Manager) SaveManifest(manifest *Manifest) error {
	data, err := yaml.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("marshal workspace manifest: %w", err)
	}

	path := m.manifestPath(manifest.Name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp manifest: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp manifest: %w", err)
	}
	return nil
}

// List returns the manifests of all workspaces, sorted by name.
// Directories without a manifest are skipped.
func (m *Manager) List() ([]*Manifest, error) {
	entries, err := os.ReadDir(m.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read workspaces dir: %w", err)
	}

	var manifests []*Manifest
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(m.manifestPath(types.WorkspaceName(entry.Name())))
		if err != nil {
			continue
		}
		var manifest Manifest
		if err := yaml.Unmarshal(data, &manifest); err != nil {
			continue
		}
		manifests = append(manifests, &manifest)
	}
	sort.Slice(manifests, func(i, j int) bool {
		return manifests[i].Name < manifests[j].Name
	})
	return manifests, nil
}

// Remove deletes a workspace and everything in it.
func (m *Manager) Remove(name types.WorkspaceName) error {
	if err := validName(name); err != nil {
		return err
	}
	if _, err := os.Stat(m.Dir(name)); os.IsNotExist(err) {
		return fmt.Errorf("workspace not found: %s", name)
	}
	if err := os.RemoveAll(m.Dir(name)); err != nil {
		return fmt.Errorf("remove workspace: %w", err)
	}
	return nil
}

// validName rejects names that would escape the workspaces root.
func validName(name types.WorkspaceName) error {
	if name == "" {
		return fmt.Errorf("workspace name is required")
	}
	if filepath.Base(string(name)) != string(name) {
		return fmt.Errorf("invalid workspace name: %s", name)
	}
	return nil
}
