package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func (a *app) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Read and write persisted settings",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Show every persisted setting",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.printer.Result(map[string]interface{}{
				"headless":   a.settings.Headless,
				"timeout":    a.settings.Timeout,
				"format":     a.settings.Format,
				"proxy":      a.settings.Proxy,
				"user_agent": a.settings.UserAgent,
				"path":       a.store.Path(),
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Print one setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := a.settingValue(args[0])
			if err != nil {
				return err
			}
			return a.printer.Result(map[string]interface{}{args[0]: value})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Persist one setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.applySetting(args[0], args[1]); err != nil {
				return err
			}
			if err := a.store.Save(a.settings); err != nil {
				return err
			}
			return a.printer.Result(map[string]interface{}{args[0]: args[1]})
		},
	})

	return cmd
}

func (a *app) settingValue(key string) (interface{}, error) {
	switch key {
	case "headless":
		return a.settings.Headless, nil
	case "timeout":
		return a.settings.Timeout, nil
	case "format":
		return a.settings.Format, nil
	case "proxy":
		return a.settings.Proxy, nil
	case "user_agent":
		return a.settings.UserAgent, nil
	default:
		return nil, fmt.Errorf("unknown setting %q", key)
	}
}

func (a *app) applySetting(key, value string) error {
	switch key {
	case "headless":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("headless must be true or false: %w", err)
		}
		a.settings.Headless = b
	case "timeout":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("timeout must be a positive number of milliseconds")
		}
		a.settings.Timeout = f
	case "format":
		if value != "json" && value != "plain" {
			return fmt.Errorf("format must be json or plain")
		}
		a.settings.Format = value
	case "proxy":
		a.settings.Proxy = value
	case "user_agent":
		a.settings.UserAgent = value
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}
