package main

import (
	"github.com/spf13/cobra"

	"github.com/nitaiaharoni1/webscraper-cli/pkg/browser"
)

func (a *app) clickCommand() *cobra.Command {
	var url, button string
	var clickCount int
	cmd := &cobra.Command{
		Use:   "click <selector>",
		Short: "Click the first element matching a selector",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.acquire(cmd.Context(), url)
			if err != nil {
				return err
			}
			if err := session.Click(args[0], browser.ClickOptions{
				Button:     button,
				ClickCount: clickCount,
				Timeout:    a.settings.Timeout,
			}); err != nil {
				return err
			}
			return a.printer.Result(map[string]interface{}{
				"clicked": args[0],
				"url":     session.URL(),
			})
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "navigate here before clicking")
	cmd.Flags().StringVar(&button, "button", "", "mouse button: left, right or middle")
	cmd.Flags().IntVar(&clickCount, "click-count", 0, "number of clicks (2 for double click)")
	return cmd
}

func (a *app) fillCommand() *cobra.Command {
	var url string
	cmd := &cobra.Command{
		Use:   "fill <selector> <value>",
		Short: "Fill an input element with a value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.acquire(cmd.Context(), url)
			if err != nil {
				return err
			}
			if err := session.Fill(args[0], args[1], a.settings.Timeout); err != nil {
				return err
			}
			return a.printer.Result(map[string]interface{}{"filled": args[0]})
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "navigate here before filling")
	return cmd
}

func (a *app) waitCommand() *cobra.Command {
	var url, state string
	cmd := &cobra.Command{
		Use:   "wait <selector>",
		Short: "Wait for an element to reach a state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.acquire(cmd.Context(), url)
			if err != nil {
				return err
			}
			if err := session.WaitFor(args[0], browser.WaitForOptions{
				State:   state,
				Timeout: a.settings.Timeout,
			}); err != nil {
				return err
			}
			return a.printer.Result(map[string]interface{}{
				"selector": args[0],
				"state":    state,
			})
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "navigate here before waiting")
	cmd.Flags().StringVar(&state, "state", "visible", "state to wait for: attached, detached, visible or hidden")
	return cmd
}
