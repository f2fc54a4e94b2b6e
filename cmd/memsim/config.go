package main

import (
	"fmt"
	"io/ioutil"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/kelseyhightower/envconfig"
	"github.com/memsim/memsim/pkg/memory"
	"github.com/memsim/memsim/pkg/types"
	pz "github.com/weberc2/httpeasy"
	"gopkg.in/yaml.v2"
)

const (
	envVarPrefix = "MEMSIM"
	appName      = "memsim"
)

type Config struct {
	Addr string `envconfig:"MEMSIM_ADDR" default:"127.0.0.1:8080" yaml:"addr"`

	// TotalSize optionally initializes the arena at startup. Zero means
	// start uninitialized and wait for a POST /api/init.
	TotalSize int `envconfig:"MEMSIM_TOTAL_SIZE" yaml:"totalSize"`
}

func LoadConfig() (*Config, error) {
	configFile := os.Getenv(envVarPrefix + "_CONFIG_FILE")
	if configFile == "" {
		configFile = filepath.Join(
			os.Getenv("HOME"),
			".config",
			appName+".yaml",
		)
	}

	var c Config
	data, err := ioutil.ReadFile(configFile)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err == nil {
		if err := yaml.UnmarshalStrict(data, &c); err != nil {
			return nil, fmt.Errorf("unmarshaling config file: %w", err)
		}
	}

	if err := envconfig.Process(envVarPrefix, &c); err != nil {
		return nil, fmt.Errorf("parsing environment variables: %w", err)
	}

	return &c, nil
}

func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf(
			"missing required configuration: addr / %s_ADDR",
			envVarPrefix,
		)
	}
	if c.TotalSize < 0 {
		return fmt.Errorf(
			"totalSize must be non-negative; found %d",
			c.TotalSize,
		)
	}
	return nil
}

func (c *Config) Run() error {
	if err := c.Validate(); err != nil {
		return err
	}

	manager := memory.Manager{
		IDFunc: func() types.ArenaID {
			return types.ArenaID(uuid.NewString())
		},
	}
	if c.TotalSize > 0 {
		if err := manager.Init(c.TotalSize); err != nil {
			return fmt.Errorf("initializing memory: %w", err)
		}
	}

	memoryService := memory.MemoryService{Memory: &manager}
	webServer := memory.WebServer{Memory: &manager}

	log.Printf(`{"message": "listening on %s"}`, c.Addr)
	if err := http.ListenAndServe(
		c.Addr,
		pz.Register(
			pz.JSONLog(os.Stderr),
			append(memoryService.Routes(), webServer.IndexRoute())...,
		),
	); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
