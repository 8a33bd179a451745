package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const DefaultConfigFilename = ".actionrunner.yaml"

type File struct {
	Workdir      string            `yaml:"workdir,omitempty"`
	Shell        []string          `yaml:"shell,omitempty"`
	Env          map[string]string `yaml:"env,omitempty"`
	Build        Build             `yaml:"build,omitempty"`
	Start        Start             `yaml:"start,omitempty"`
	HistoryDir   string            `yaml:"history_dir,omitempty"`
	DeploySource string            `yaml:"deploy_source,omitempty"` // "netlify" | "vercel" | "github"
}

type Build struct {
	Command    []string `yaml:"command,omitempty"`
	OutputDirs []string `yaml:"output_dirs,omitempty"`
}

type Start struct {
	SettleDelay time.Duration `yaml:"settle_delay,omitempty"`
}

// Defaults returns the configuration used when no file is present.
func Defaults() *File {
	return &File{
		Shell:        []string{"bash", "-c"},
		Build:        Build{Command: []string{"npm", "run", "build"}, OutputDirs: []string{"dist", "build", "out", "output", ".next", "public"}},
		Start:        Start{SettleDelay: 2 * time.Second},
		HistoryDir:   ".history",
		DeploySource: "netlify",
	}
}

func DefaultPath(root string) string {
	return filepath.Join(root, DefaultConfigFilename)
}

// LoadFromFile reads path over Defaults; keys missing from the file keep their default.
func LoadFromFile(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	cfg := Defaults()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, errors.Wrap(err, "parse config yaml")
	}
	return cfg, nil
}

func LoadOptional(path string) (*File, error) {
	_, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Defaults(), nil
		}
		return nil, errors.Wrap(err, "stat config")
	}
	return LoadFromFile(path)
}
