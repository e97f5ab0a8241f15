// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"
	"github.com/spf13/viper"
	"gitlab.com/accumulatenetwork/commitverify/internal/logging"
	"gitlab.com/accumulatenetwork/commitverify/pkg/database/keyvalue"
	"gitlab.com/accumulatenetwork/commitverify/pkg/database/keyvalue/badger"
	"gitlab.com/accumulatenetwork/commitverify/pkg/database/keyvalue/bolt"
	"gitlab.com/accumulatenetwork/commitverify/pkg/database/keyvalue/leveldb"
	"gitlab.com/accumulatenetwork/commitverify/pkg/database/keyvalue/memory"
	"gitlab.com/accumulatenetwork/commitverify/pkg/errors"
	"gitlab.com/accumulatenetwork/commitverify/pkg/mpc"
	"gitlab.com/accumulatenetwork/commitverify/pkg/types/hash"
)

// EnvPrefix prefixes environment variables that override the file, for
// example COMMITVERIFY_MPC_MAX_DEPTH.
const EnvPrefix = "COMMITVERIFY"

type StorageType string

const (
	MemoryStorage  StorageType = "memory"
	BoltStorage    StorageType = "bolt"
	LevelDBStorage StorageType = "leveldb"
	BadgerStorage  StorageType = "badger"
)

// LogLevel defines the default and per-module log level.
type LogLevel struct {
	Default string
	Modules [][2]string
}

// Parse parses a string such as "error;mpc=debug" into a LogLevel.
func (l LogLevel) Parse(s string) LogLevel {
	for _, s := range strings.Split(s, ";") {
		s := strings.SplitN(s, "=", 2)
		if len(s) == 1 {
			l.Default = s[0]
		} else {
			l.Modules = append(l.Modules, *(*[2]string)(s))
		}
	}
	return l
}

// SetDefault sets the default log level.
func (l LogLevel) SetDefault(level string) LogLevel {
	l.Default = level
	return l
}

// SetModule sets the log level for a module.
func (l LogLevel) SetModule(module, level string) LogLevel {
	l.Modules = append(l.Modules, [2]string{module, level})
	return l
}

// String converts the log level into a string, for example
// "error;mpc=debug".
func (l LogLevel) String() string {
	s := new(strings.Builder)
	s.WriteString(l.Default)
	for _, m := range l.Modules {
		fmt.Fprintf(s, ";%s=%s", m[0], m[1])
	}
	return s.String()
}

var DefaultLogLevels = LogLevel{}.
	SetDefault("error").
	// SetModule("mpc", "debug").
	SetModule("witness", "info").
	String()

type Config struct {
	MPC     MPC     `toml:"mpc" mapstructure:"mpc"`
	Logging Logging `toml:"logging" mapstructure:"logging"`
	Storage Storage `toml:"storage" mapstructure:"storage"`
	Hash    Hash    `toml:"hash" mapstructure:"hash"`
}

type MPC struct {
	// MinDepth is the depth trees start at.
	MinDepth uint8 `toml:"min-depth" mapstructure:"min-depth"`

	// MaxDepth is the depth trees may grow to while placing messages.
	MaxDepth uint8 `toml:"max-depth" mapstructure:"max-depth"`
}

type Logging struct {
	Format string `toml:"format" mapstructure:"format"`
	Level  string `toml:"level" mapstructure:"level"`
	Color  bool   `toml:"color" mapstructure:"color"`
}

type Storage struct {
	Type StorageType `toml:"type" mapstructure:"type"`
	Path string      `toml:"path" mapstructure:"path"`
}

type Hash struct {
	Engine string `toml:"engine" mapstructure:"engine"`
}

func Default() *Config {
	c := new(Config)
	c.MPC.MinDepth = 3
	c.MPC.MaxDepth = mpc.MaxDepth
	c.Logging.Format = "plain"
	c.Logging.Level = DefaultLogLevels
	c.Logging.Color = true
	c.Storage.Type = MemoryStorage
	c.Hash.Engine = hash.SHA256.String()
	return c
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch {
	case c.MPC.MaxDepth > mpc.MaxDepth:
		return errors.BadRequest.WithFormat("mpc.max-depth %d exceeds the limit of %d", c.MPC.MaxDepth, mpc.MaxDepth)
	case c.MPC.MinDepth > c.MPC.MaxDepth:
		return errors.BadRequest.WithFormat("mpc.min-depth %d exceeds mpc.max-depth %d", c.MPC.MinDepth, c.MPC.MaxDepth)
	}

	_, err := c.Hash.Parse()
	if err != nil {
		return err
	}

	switch c.Storage.Type {
	case MemoryStorage:
	case BoltStorage, LevelDBStorage, BadgerStorage:
		if c.Storage.Path == "" {
			return errors.BadRequest.WithFormat("%s storage requires a path", c.Storage.Type)
		}
	default:
		return errors.BadRequest.WithFormat("storage type %q is not supported", c.Storage.Type)
	}

	err = logging.CheckFormat(c.Logging.Format)
	if err != nil {
		return err
	}

	_, err = logging.ParseLevels(c.Logging.Level)
	return err
}

// Load loads the configuration file, if any, over the defaults and applies
// environment overrides.
func Load(file string) (*Config, error) {
	c := Default()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// Register every key so the environment can override it
	v.SetDefault("mpc.min-depth", c.MPC.MinDepth)
	v.SetDefault("mpc.max-depth", c.MPC.MaxDepth)
	v.SetDefault("logging.format", c.Logging.Format)
	v.SetDefault("logging.level", c.Logging.Level)
	v.SetDefault("logging.color", c.Logging.Color)
	v.SetDefault("storage.type", c.Storage.Type)
	v.SetDefault("storage.path", c.Storage.Path)
	v.SetDefault("hash.engine", c.Hash.Engine)

	if file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("toml")
		err := v.ReadInConfig()
		if err != nil {
			return nil, errors.BadRequest.WithFormat("read %s: %w", file, err)
		}
	}

	err := v.Unmarshal(c)
	if err != nil {
		return nil, errors.BadRequest.WithFormat("unmarshal: %w", err)
	}

	if file != "" && c.Storage.Path != "" {
		c.Storage.Path = MakeAbsolute(filepath.Dir(file), c.Storage.Path)
	}

	err = c.Validate()
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Store writes the configuration as TOML.
func Store(file string, c *Config) error {
	f, err := os.Create(file)
	if err != nil {
		return errors.IOError.Wrap(err)
	}
	defer f.Close()

	err = toml.NewEncoder(f).Encode(c)
	if err != nil {
		return errors.EncodingError.Wrap(err)
	}
	return nil
}

func MakeAbsolute(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

// MPCOptions returns the tree construction options.
func (c *Config) MPCOptions(logger *slog.Logger) []mpc.Option {
	opts := []mpc.Option{mpc.WithMaxDepth(c.MPC.MaxDepth)}
	if logger != nil {
		opts = append(opts, mpc.WithLogger(logger))
	}
	return opts
}

// Parse returns the configured hash engine.
func (h Hash) Parse() (hash.Engine, error) {
	return hash.ParseEngine(h.Engine)
}

// NewLogger returns a logger writing to w.
func (l Logging) NewLogger(w io.Writer) (*slog.Logger, error) {
	return logging.New(w, l.Format, l.Level, l.Color)
}

// Open opens the configured key-value store. The returned closer must be
// called when the store is no longer needed.
func (s Storage) Open() (keyvalue.Beginner, io.Closer, error) {
	switch s.Type {
	case MemoryStorage, "":
		return memory.New(), io.NopCloser(nil), nil
	case BoltStorage:
		db, err := bolt.Open(s.Path)
		if err != nil {
			return nil, nil, err
		}
		return db, db, nil
	case LevelDBStorage:
		db, err := leveldb.OpenFile(s.Path)
		if err != nil {
			return nil, nil, err
		}
		return db, db, nil
	case BadgerStorage:
		db, err := badger.New(s.Path)
		if err != nil {
			return nil, nil, err
		}
		return db, db, nil
	}
	return nil, nil, errors.BadRequest.WithFormat("storage type %q is not supported", s.Type)
}
