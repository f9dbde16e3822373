// Package report renders scan reports as plain text, JSON, or Markdown.
package report
