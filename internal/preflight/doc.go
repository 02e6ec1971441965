// Package preflight provides readiness checks for the filesystem paths and
// external binaries livearchive depends on.
//
// The daemon runs RunAll at startup and logs any failing check; the CLI
// "livearchive check" command renders the same results as a table.
package preflight
