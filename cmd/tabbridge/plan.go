package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/entrhq/tabbridge/pkg/bridge"
	"github.com/entrhq/tabbridge/pkg/console"
)

// Plan is what to do on start. It comes from a YAML run file, with
// command-line flags taking precedence.
type Plan struct {
	URL          string   `yaml:"url"`
	Origin       string   `yaml:"origin"`
	Color        string   `yaml:"color"`
	UserAgent    string   `yaml:"user_agent"`
	CustomHeader string   `yaml:"custom_header"`
	Headless     bool     `yaml:"headless"`
	DeepLinks    []string `yaml:"deep_links"`

	// Channel overrides the stored retry settings when set.
	Channel struct {
		MaxAttempts int           `yaml:"max_attempts"`
		RetryDelay  time.Duration `yaml:"retry_delay"`
	} `yaml:"channel"`
}

// loadPlan reads the run file, if any, and applies flag overrides.
func loadPlan(cli *CLIConfig) (*Plan, error) {
	plan := &Plan{}
	if cli.RunFile != "" {
		data, err := os.ReadFile(cli.RunFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read run file: %w", err)
		}
		if err := yaml.Unmarshal(data, plan); err != nil {
			return nil, fmt.Errorf("failed to parse run file: %w", err)
		}
	}

	if cli.URL != "" {
		plan.URL = cli.URL
	}
	if cli.Origin != "" {
		plan.Origin = cli.Origin
	}
	if cli.Color != "" {
		plan.Color = cli.Color
	}
	if cli.UserAgent != "" {
		plan.UserAgent = cli.UserAgent
	}
	if cli.CustomHeader != "" {
		plan.CustomHeader = cli.CustomHeader
	}
	if cli.Headless {
		plan.Headless = true
	}

	if plan.Origin != "" && plan.URL == "" {
		return nil, fmt.Errorf("origin %s given without a url to open", plan.Origin)
	}
	return plan, nil
}

// apply layers the plan over stored settings.
func (p *Plan) apply(cfg bridge.Config) bridge.Config {
	if p.UserAgent != "" {
		cfg.UserAgent = p.UserAgent
	}
	if p.CustomHeader != "" {
		cfg.CustomHeader = p.CustomHeader
	}
	if p.Channel.MaxAttempts > 0 {
		cfg.MaxAttempts = p.Channel.MaxAttempts
	}
	if p.Channel.RetryDelay > 0 {
		cfg.RetryDelay = p.Channel.RetryDelay
	}
	return cfg
}

// start runs the opening commands. Failures are reported on the queue
// rather than aborting, so the console still comes up.
func (p *Plan) start(ctx context.Context, c *console.Commander, queue *console.Queue) error {
	var lines []string
	if p.URL != "" {
		line := "open " + p.URL
		if p.Color != "" {
			line += " " + p.Color
		}
		lines = append(lines, line)
	}
	if p.Origin != "" {
		lines = append(lines, "channel "+p.Origin)
	}
	for _, uri := range p.DeepLinks {
		lines = append(lines, "deeplink "+uri)
	}

	for _, line := range lines {
		if err := ctx.Err(); err != nil {
			return err
		}
		out, err := c.Execute(ctx, line)
		if err != nil {
			queue.Push("error: " + err.Error())
			continue
		}
		if out != "" {
			queue.Push(out)
		}
	}
	return nil
}
