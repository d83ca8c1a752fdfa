package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Logging    Logging    `yaml:"logging"`
	Storage    Storage    `yaml:"storage"`
	Collection Collection `yaml:"collection"`
	Report     Report     `yaml:"report"`
}

type Logging struct {
	Level string `yaml:"level"`
}

func (l Logging) LevelOrDefault() string {
	level := strings.TrimSpace(l.Level)
	if level == "" {
		level = "INFO"
	}

	return strings.ToLower(level)
}

const (
	REPLACE = "REPLACE"
	CREATE  = "CREATE"
)

// Storage is the directory that contains the collection exports. The diff file is written
// into the same directory.
type Storage struct {
	Location string `yaml:"location"`
	Mode     string `yaml:"mode"`
}

func (s Storage) LocationOrDefault() string {
	location := strings.TrimSpace(s.Location)
	if location == "" {
		return "."
	}

	return location
}

func (s Storage) ModeOrDefault() string {
	mode := strings.ToUpper(strings.TrimSpace(s.Mode))
	if mode == "" {
		return REPLACE
	}

	return mode
}

const (
	DefaultFilePrefix = "ManaBox_Collection_"
	DefaultLockFile   = ".collection-diff.lock"
)

type Collection struct {
	// FilePrefix is used when exports are renamed to their modification timestamp.
	FilePrefix string `yaml:"filePrefix"`
	// IgnoreFoil drops the foil flag from the card identity, foil and non-foil printings
	// of the same card are then treated as one entry.
	IgnoreFoil bool   `yaml:"ignoreFoil"`
	LockFile   string `yaml:"lockFile"`
}

func (c Collection) FilePrefixOrDefault() string {
	if strings.TrimSpace(c.FilePrefix) == "" {
		return DefaultFilePrefix
	}

	return c.FilePrefix
}

func (c Collection) LockFileOrDefault() string {
	if strings.TrimSpace(c.LockFile) == "" {
		return DefaultLockFile
	}

	return c.LockFile
}

const (
	FormatPlain = "plain"
	FormatTable = "table"
)

type Report struct {
	Format string `yaml:"format"`
}

func (r Report) FormatOrDefault() string {
	format := strings.ToLower(strings.TrimSpace(r.Format))
	if format == "" {
		return FormatPlain
	}

	return format
}

// Default returns the configuration used when no config file is present.
func Default() *Config {
	return &Config{
		Logging: Logging{Level: "info"},
		Storage: Storage{Location: ".", Mode: REPLACE},
		Collection: Collection{
			FilePrefix: DefaultFilePrefix,
			LockFile:   DefaultLockFile,
		},
		Report: Report{Format: FormatPlain},
	}
}

func Load(path string) (*Config, error) {
	s, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if s.IsDir() {
		return nil, fmt.Errorf("'%s' is a directory, not a regular file", path)
	}

	return buildConfig(path)
}

// LoadOrDefault behaves like Load but falls back to the default configuration if
// the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}

		return nil, err
	}

	return cfg, nil
}

func buildConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("can't read config file: %w", err)
	}

	config := Default()

	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, fmt.Errorf("config unmarshal failed with: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	switch c.Storage.ModeOrDefault() {
	case REPLACE, CREATE:
	default:
		return fmt.Errorf("unsupported storage mode '%s', expected one of %s, %s", c.Storage.Mode, REPLACE, CREATE)
	}

	switch c.Report.FormatOrDefault() {
	case FormatPlain, FormatTable:
	default:
		return fmt.Errorf("unsupported report format '%s', expected one of %s, %s",
			c.Report.Format, FormatPlain, FormatTable)
	}

	return nil
}
