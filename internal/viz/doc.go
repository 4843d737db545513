// Package viz renders distance tables for the terminal.
//
// Plots are drawn with asciigraph and summaries are styled with lipgloss:
//
//   - [Plot]: a quantity sampled uniformly in redshift
//   - [Summary]: a bordered key/value panel describing a table
//   - [SparklineChart]: a one-line chart of a series
package viz
