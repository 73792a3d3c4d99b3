// Package report renders extracted device attributes.
//
// Three writers share the Writer interface:
//   - SimpleWriter: a text table for the terminal
//   - MarkdownWriter: a Markdown document with a device table
//   - JSONWriter: a JSON array for other tools
//
// Every writer emits the columns in model.DeviceColumns order.
package report
