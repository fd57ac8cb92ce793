// Package file provides filesystem-backed adapters: a YAML content source
// (with change notification and Markdown info pages for directories) and a
// JSON session store.
package file
