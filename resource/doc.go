// Package resource governs object-store reads: how many run at once and
// how many bytes per second they may pull.
package resource
