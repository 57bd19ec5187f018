package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nitaiaharoni1/webscraper-cli/pkg/batch"
	"github.com/nitaiaharoni1/webscraper-cli/pkg/browser"
)

func (a *app) batchCommand() *cobra.Command {
	var concurrency int
	var excludes []string
	cmd := &cobra.Command{
		Use:   "batch <url-file>",
		Short: "Visit a list of URLs with bounded concurrency",
		Long: `Reads one URL per line (blank lines and #-comments skipped) and visits
each with an isolated page, collecting title and final URL per entry. The
concurrency limit is backpressure over one shared driver, not parallelism.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			urls, err := readURLFile(args[0])
			if err != nil {
				return err
			}

			globs, err := batch.CompileExcludes(excludes)
			if err != nil {
				return err
			}

			// Batch work always runs headless and fresh: there is no
			// visible window worth preserving across a bulk crawl.
			if err := a.manager.Initialize(); err != nil {
				return err
			}
			opts := a.connectOptions()
			opts.Mode = browser.ModeFresh
			opts.Headless = true
			session, err := a.manager.Acquire(cmd.Context(), "batch", opts)
			if err != nil {
				return err
			}

			runner := &batch.Runner{
				Concurrency: concurrency,
				Timeout:     time.Duration(a.settings.Timeout) * time.Millisecond,
				Exclude:     globs,
			}
			results := runner.Run(cmd.Context(), urls, func(ctx context.Context, url string) (interface{}, error) {
				page, err := session.Context.NewPage()
				if err != nil {
					return nil, err
				}
				defer page.Close()

				if _, err := page.Goto(url); err != nil {
					return nil, &browser.NavigationError{URL: url, Err: err}
				}
				title, _ := page.Title()
				return map[string]interface{}{
					"title": title,
					"url":   page.URL(),
				}, nil
			})

			return a.printer.Result(map[string]interface{}{
				"total":   len(results),
				"results": results,
			})
		},
	}
	cmd.Flags().IntVar(&concurrency, "concurrency", batch.DefaultConcurrency, "maximum URLs in flight at once")
	cmd.Flags().StringArrayVar(&excludes, "exclude", nil, "glob pattern of URLs to skip (repeatable)")
	return cmd
}

func readURLFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open URL file: %w", err)
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read URL file: %w", err)
	}
	return urls, nil
}
