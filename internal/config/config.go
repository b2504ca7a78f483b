package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultSourceDir   = "notebooks"
	DefaultScriptDir   = "build/scripts"
	DefaultMarkdownDir = "build/markdown"
	DefaultPublishDir  = "docs/examples"
	DefaultTool        = "jupyter"
	DefaultKernel      = "python3"
	DefaultExtension   = ".ipynb"
)

// Policies for a failed document conversion.
const (
	OnErrorHalt     = "halt"
	OnErrorContinue = "continue"
)

type Config struct {
	SourceDir   string `yaml:"source_dir"`
	ScriptDir   string `yaml:"script_dir"`
	MarkdownDir string `yaml:"markdown_dir"`
	PublishDir  string `yaml:"publish_dir"`
	Tool        string `yaml:"tool"`
	Kernel      string `yaml:"kernel"`
	Template    string `yaml:"template"`
	Extension   string `yaml:"extension"`
	OnError     string `yaml:"on_error"`
	TimeoutSec  int    `yaml:"timeout_sec"`
}

func DefaultConfig() *Config {
	return &Config{
		SourceDir:   DefaultSourceDir,
		ScriptDir:   DefaultScriptDir,
		MarkdownDir: DefaultMarkdownDir,
		PublishDir:  DefaultPublishDir,
		Tool:        DefaultTool,
		Kernel:      DefaultKernel,
		Extension:   DefaultExtension,
		OnError:     OnErrorHalt,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.SourceDir == "" {
		return fmt.Errorf("source_dir is required")
	}
	if c.ScriptDir == "" {
		return fmt.Errorf("script_dir is required")
	}
	if c.MarkdownDir == "" {
		return fmt.Errorf("markdown_dir is required")
	}
	if c.PublishDir == "" {
		return fmt.Errorf("publish_dir is required")
	}
	if c.Tool == "" {
		return fmt.Errorf("tool is required")
	}
	if c.Extension == "" || c.Extension[0] != '.' {
		return fmt.Errorf("extension must start with a dot, got %q", c.Extension)
	}
	if c.OnError != OnErrorHalt && c.OnError != OnErrorContinue {
		return fmt.Errorf("on_error must be %q or %q, got %q", OnErrorHalt, OnErrorContinue, c.OnError)
	}
	if c.TimeoutSec < 0 {
		return fmt.Errorf("timeout_sec must not be negative")
	}
	return nil
}
