package main

import (
	"github.com/spf13/cobra"

	"github.com/nitaiaharoni1/webscraper-cli/pkg/browser"
)

func (a *app) sessionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect and close browser sessions",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List sessions registered in this process",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.printer.Result(map[string]interface{}{
				"sessions": a.manager.List(),
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "close [id]",
		Short: "Close a session (its browser, unless shared)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := a.sessionID
			if len(args) > 0 {
				id = args[0]
			}
			if id == "" {
				id = browser.DefaultSessionID
			}
			if err := a.manager.Close(id); err != nil {
				return err
			}
			return a.printer.Result(map[string]interface{}{"closed": id})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "close-all",
		Short: "Close every registered session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.manager.CloseAll(); err != nil {
				return err
			}
			return a.printer.Result(map[string]interface{}{"closed": "all"})
		},
	})

	return cmd
}
