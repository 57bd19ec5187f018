package main

import (
	"github.com/spf13/cobra"
)

func (a *app) navigateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "navigate <url>",
		Short: "Navigate the session's page to a URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.acquire(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printer.Result(map[string]interface{}{
				"url":     session.URL(),
				"title":   session.Title(),
				"session": session.ID,
			})
		},
	}
}

func (a *app) evalCommand() *cobra.Command {
	var url string
	cmd := &cobra.Command{
		Use:   "eval <javascript>",
		Short: "Evaluate a JavaScript expression in the page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.acquire(cmd.Context(), url)
			if err != nil {
				return err
			}
			result, err := session.Evaluate(args[0])
			if err != nil {
				return err
			}
			return a.printer.Result(map[string]interface{}{"result": result})
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "navigate here before evaluating")
	return cmd
}
