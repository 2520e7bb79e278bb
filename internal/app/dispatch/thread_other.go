//go:build !linux

package dispatch

// Without a thread id every thread shares one attachment slot.
func threadID() int { return 0 }
