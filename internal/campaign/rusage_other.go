//go:build !darwin && !ios

package campaign

// Linux and the BSDs report ru_maxrss in kilobytes.
const maxrssUnit = 1024
