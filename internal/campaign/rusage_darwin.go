//go:build darwin || ios

package campaign

// Darwin reports ru_maxrss in bytes.
const maxrssUnit = 1
