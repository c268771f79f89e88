package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Context is a named, partial set of Settings saved in the config file.
type Context struct {
	Location    string `yaml:"location,omitempty"`
	Project     string `yaml:"project,omitempty"`
	CustomerID  string `yaml:"customer_id,omitempty"`
	FeedID      string `yaml:"feed_id,omitempty"`
	ForwarderID string `yaml:"forwarder_id,omitempty"`
	LogType     string `yaml:"log_type,omitempty"`
}

// Settings converts the context.
func (c *Context) Settings() Settings {
	return Settings{
		Location:    c.Location,
		Project:     c.Project,
		CustomerID:  c.CustomerID,
		FeedID:      c.FeedID,
		ForwarderID: c.ForwarderID,
		LogType:     c.LogType,
	}
}

// ContextFromSettings is the inverse of Context.Settings.
func ContextFromSettings(s Settings) *Context {
	return &Context{
		Location:    s.Location,
		Project:     s.Project,
		CustomerID:  s.CustomerID,
		FeedID:      s.FeedID,
		ForwarderID: s.ForwarderID,
		LogType:     s.LogType,
	}
}

// File represents the main configuration file (~/.secops.yaml)
type File struct {
	CurrentContext string              `yaml:"current_context,omitempty"`
	Contexts       map[string]*Context `yaml:"contexts,omitempty"`
}

// DefaultPath returns the config file path (~/.secops.yaml)
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".secops.yaml"
	}
	return filepath.Join(home, ".secops.yaml")
}

// Store reads and writes the config file at a fixed path.
type Store struct {
	path string
}

// NewStore returns a Store for path, or DefaultPath when path is empty.
func NewStore(path string) *Store {
	if path == "" {
		path = DefaultPath()
	}
	return &Store{path: path}
}

// Path returns the file the store operates on.
func (s *Store) Path() string {
	return s.path
}

// Load reads the config file. A missing file yields an empty config.
func (s *Store) Load() (*File, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &File{Contexts: make(map[string]*Context)}, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg File
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", s.path, err)
	}

	// Initialize maps if nil
	if cfg.Contexts == nil {
		cfg.Contexts = make(map[string]*Context)
	}

	return &cfg, nil
}

// Save writes cfg, creating the parent directory if needed.
func (s *Store) Save(cfg *File) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Current returns the current active context, or nil when none is set.
func (s *Store) Current() (*Context, string, error) {
	cfg, err := s.Load()
	if err != nil {
		return nil, "", err
	}

	if cfg.CurrentContext == "" {
		return nil, "", nil
	}

	ctx, ok := cfg.Contexts[cfg.CurrentContext]
	if !ok {
		return nil, "", fmt.Errorf("context %q not found", cfg.CurrentContext)
	}

	return ctx, cfg.CurrentContext, nil
}

// Get returns a named context.
func (s *Store) Get(name string) (*Context, error) {
	cfg, err := s.Load()
	if err != nil {
		return nil, err
	}
	ctx, ok := cfg.Contexts[name]
	if !ok {
		return nil, fmt.Errorf("context %q not found", name)
	}
	return ctx, nil
}

// SetCurrent sets the current active context
func (s *Store) SetCurrent(name string) error {
	cfg, err := s.Load()
	if err != nil {
		return err
	}

	// Validate context exists
	if _, ok := cfg.Contexts[name]; !ok {
		return fmt.Errorf("context %q not found", name)
	}

	cfg.CurrentContext = name
	return s.Save(cfg)
}

// Add adds or updates a context
func (s *Store) Add(name string, ctx *Context) error {
	cfg, err := s.Load()
	if err != nil {
		return err
	}

	cfg.Contexts[name] = ctx
	return s.Save(cfg)
}

// Delete removes a context
func (s *Store) Delete(name string) error {
	cfg, err := s.Load()
	if err != nil {
		return err
	}

	if _, ok := cfg.Contexts[name]; !ok {
		return fmt.Errorf("context %q not found", name)
	}
	delete(cfg.Contexts, name)

	// Clear current context if it was the deleted one
	if cfg.CurrentContext == name {
		cfg.CurrentContext = ""
	}

	return s.Save(cfg)
}

// List returns all configured contexts and the name of the current one.
func (s *Store) List() (map[string]*Context, string, error) {
	cfg, err := s.Load()
	if err != nil {
		return nil, "", err
	}

	return cfg.Contexts, cfg.CurrentContext, nil
}

// SortedNames returns the context names in lexical order.
func SortedNames(contexts map[string]*Context) []string {
	names := make([]string, 0, len(contexts))
	for name := range contexts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
