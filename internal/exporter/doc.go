// Package exporter writes the QA pipeline's tables to Excel workbooks and
// CSV files. It is a formatting layer only: every number it writes was
// derived upstream.
package exporter
