// Copyright 2025 ByteDance Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads run settings from gencoder.yaml, GENCODER_*
// environment variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cloudwego/gencoder/internal/pipeline"
	"github.com/cloudwego/gencoder/llm"
)

// FileName is the config file looked up in the project directory.
const FileName = "gencoder"

const envPrefix = "GENCODER"

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

type Config struct {
	Steps            string          `mapstructure:"steps"`
	Model            llm.ModelConfig `mapstructure:"model"`
	Session          string          `mapstructure:"session"`
	DeleteExisting   bool            `mapstructure:"delete_existing"`
	CollectLearnings bool            `mapstructure:"collect_learnings"`
	Storage          StorageConfig   `mapstructure:"storage"`
	Clarify          ClarifyConfig   `mapstructure:"clarify"`
	Log              LogConfig       `mapstructure:"log"`
}

// StorageConfig picks where memory and logs live. Input and workspace are
// always plain files under the project.
type StorageConfig struct {
	Backend string `mapstructure:"backend"`
	DSN     string `mapstructure:"dsn"` // sqlite only; relative paths are under memory/
}

// ClarifyConfig decides when the clarify step stops asking. A non-empty
// Expression replaces the sentinel and prefix checks.
type ClarifyConfig struct {
	Sentinel       string `mapstructure:"sentinel"`
	NegativePrefix string `mapstructure:"negative_prefix"`
	Expression     string `mapstructure:"expression"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// New returns a viper instance with every default set.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("steps", string(pipeline.ConfigDefault))
	v.SetDefault("model.type", string(llm.ModelTypeOpenAI))
	v.SetDefault("model.name", "gpt-4")
	v.SetDefault("model.base_url", "")
	v.SetDefault("model.api_key", "")
	v.SetDefault("model.temperature", 0.1)
	v.SetDefault("model.max_tokens", 16*1024)
	v.SetDefault("model.timeout", 600*time.Second)
	v.SetDefault("session", "")
	v.SetDefault("delete_existing", false)
	v.SetDefault("collect_learnings", true)
	v.SetDefault("storage.backend", BackendFile)
	v.SetDefault("storage.dsn", "gencoder.db")
	v.SetDefault("clarify.sentinel", "Nothing more to clarify.")
	v.SetDefault("clarify.negative_prefix", "no")
	v.SetDefault("clarify.expression", "")
	v.SetDefault("log.level", "info")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads file, or gencoder.yaml in project when file is empty, into v
// and decodes the result. A missing default file is not an error.
func Load(v *viper.Viper, project, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(project)
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	c.Model.APIType = llm.NewModelType(string(c.Model.APIType))
	if c.Model.APIKey == "" {
		c.Model.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if _, err := pipeline.ParseConfig(c.Steps); err != nil {
		return err
	}
	if c.Model.APIType == llm.ModelTypeUnknown {
		return errors.New("unknown model type")
	}
	switch c.Storage.Backend {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	return nil
}

// StepsConfig returns the parsed steps config. Call Validate first.
func (c *Config) StepsConfig() pipeline.Config {
	s, _ := pipeline.ParseConfig(c.Steps)
	return s
}
