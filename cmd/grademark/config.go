package main

import (
	"fmt"
	"os"

	"github.com/example/grademark/internal/config"
)

type configCmd struct {
	cmdBase
}

func parseConfigCmd(args []string, r *root) (*configCmd, error) {
	c := &configCmd{cmdBase: newBase(r, "config")}
	c.fs.Usage = usageFunc(c)
	if err := c.fs.Parse(args); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *configCmd) Run() error {
	args := c.fs.Args()
	if len(args) < 1 {
		return &UsageError{of: c}
	}

	switch args[0] {
	case "print":
		fmt.Fprint(c.out(), c.config.String())
		return nil
	case "path":
		loader := config.NewLoader(version, configPathOverride)
		if p := loader.GetConfigPath(); p != "" {
			fmt.Fprintln(c.out(), p)
			return nil
		}
		fmt.Fprintf(c.out(), "%s (not created yet)\n", loader.SavePath())
		return nil
	case "save":
		path, err := config.NewLoader(version, configPathOverride).Save(c.config)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Configuration saved to %s\n", path)
		return nil
	default:
		return fmt.Errorf("unknown config command: %s", args[0])
	}
}
