/*
Package cli provides command-line interface utilities for Verdict.

The cli package includes output formatters, progress reporters, and common
CLI helpers used by the verdict command.

Output Formatting:

The cli package supports text and JSON output formats for displaying
command results:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, result); err != nil {
		return err
	}

Progress Reporting:

For long-running operations such as bulk updates, use the progress
reporter:

	progress := cli.NewProgress(os.Stderr, len(items))
	for range items {
		// Do work
		progress.Increment()
	}
	progress.Finish()

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx := cli.SetupSignalHandler()
	// Use ctx for operations that should be cancelled on shutdown
*/
package cli
