//go:build debug

package util

// DebugMode enables Verify and restrict checks.
const DebugMode = true
