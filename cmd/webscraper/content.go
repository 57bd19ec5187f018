package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/nitaiaharoni1/webscraper-cli/pkg/browser"
)

func (a *app) contentCommand() *cobra.Command {
	var url string
	var maxLength int
	var textOnly bool
	cmd := &cobra.Command{
		Use:   "content",
		Short: "Extract the page's readable content",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.acquire(cmd.Context(), url)
			if err != nil {
				return err
			}
			html, err := session.Content()
			if err != nil {
				return err
			}
			content, err := browser.ExtractContent(html, maxLength)
			if err != nil {
				return err
			}
			if textOnly {
				return a.printer.Result(content.Text)
			}
			return a.printer.Result(content)
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "navigate here before extracting")
	cmd.Flags().IntVar(&maxLength, "max-length", 0, "truncate extracted text beyond this many characters")
	cmd.Flags().BoolVar(&textOnly, "text", false, "print only the visible text")
	return cmd
}

func (a *app) screenshotCommand() *cobra.Command {
	var url, outputPath string
	var fullPage bool
	cmd := &cobra.Command{
		Use:   "screenshot",
		Short: "Capture the page as a PNG",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.acquire(cmd.Context(), url)
			if err != nil {
				return err
			}
			data, err := session.Screenshot(fullPage)
			if err != nil {
				return err
			}
			if err := os.WriteFile(outputPath, data, 0644); err != nil {
				return err
			}
			return a.printer.Result(map[string]interface{}{
				"path":  outputPath,
				"bytes": len(data),
			})
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "navigate here before capturing")
	cmd.Flags().StringVar(&outputPath, "output", "screenshot.png", "output file path")
	cmd.Flags().BoolVar(&fullPage, "full-page", false, "capture the full scrollable page")
	return cmd
}
