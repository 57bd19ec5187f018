package main

import (
	"github.com/spf13/cobra"

	"github.com/nitaiaharoni1/webscraper-cli/pkg/browser"
)

func (a *app) daemonCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Manage the shared detached browser process",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "start",
		Short: "Launch the shared browser if none is running",
		RunE: func(cmd *cobra.Command, args []string) error {
			if status := browser.Status(a.ports); status.Running {
				return a.printer.Result(map[string]interface{}{
					"running": true,
					"port":    status.Port,
					"pid":     status.PID,
					"reused":  true,
				})
			}

			launcher := browser.NewLauncher()
			handle, err := launcher.Launch(browser.LaunchOptions{Headless: a.settings.Headless})
			if err != nil {
				return err
			}
			if !launcher.WaitUntilReady(handle.Port, browser.ReadyAttempts, browser.ReadyInterval) {
				return &browser.LaunchTimeoutError{Port: handle.Port, Attempts: browser.ReadyAttempts}
			}
			if err := a.ports.Save(handle.Port, handle.PID); err != nil {
				return err
			}
			return a.printer.Result(map[string]interface{}{
				"running": true,
				"port":    handle.Port,
				"pid":     handle.PID,
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "stop",
		Short: "Terminate the shared browser and clear the port file",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := browser.StopDaemon(a.ports)
			if err != nil {
				return err
			}
			if status.Port == 0 {
				return a.printer.Result(map[string]interface{}{"stopped": false, "reason": "no daemon recorded"})
			}
			return a.printer.Result(map[string]interface{}{
				"stopped": true,
				"port":    status.Port,
				"pid":     status.PID,
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Report whether a shared browser is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.printer.Result(browser.Status(a.ports))
		},
	})

	return cmd
}
