package main

import (
	"context"
	"strings"
	"sync"

	"github.com/nemroff/flix-scripts/internal/config"
	"github.com/nemroff/flix-scripts/internal/flix"
)

type commandContext struct {
	configFlag *string
	prefsFlag  *string

	configOnce sync.Once
	config     config.Config
	configErr  error
}

func newCommandContext(configFlag, prefsFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		prefsFlag:  prefsFlag,
	}
}

func (c *commandContext) ensureConfig() (config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) prefsPath() string {
	if c.prefsFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.prefsFlag)
}

// withClient logs in, runs fn, and always logs back out.
func (c *commandContext) withClient(ctx context.Context, fn func(*flix.Client) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	if err := cfg.RequireCredentials(); err != nil {
		return err
	}

	client, err := flix.NewClient(cfg.Hostname)
	if err != nil {
		return err
	}
	if _, err := client.Login(ctx, cfg.Username, cfg.Password); err != nil {
		return err
	}
	defer client.Logout()
	return fn(client)
}
