//go:build !debug

package util

const DebugMode = false
