// Package report renders cycle summaries and the leak dashboard.
//
// This package contains writers for different output formats:
//   - SimpleWriter: Human-readable text output for terminal display
//   - MarkdownWriter: Markdown output for documentation and sharing
//   - JSONWriter: Structured JSON output for tool integration
//
// Design decision: Writers render data assembled elsewhere (the cycle
// summary from the orchestrator, dashboard rows from the store) and
// never query anything themselves. That keeps formats interchangeable
// and composable through MultiWriter.
package report
