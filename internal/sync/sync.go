//go:build !jsonwalk_deadlock

package sync

import "sync"

type (
	Mutex   = sync.Mutex
	RWMutex = sync.RWMutex
	Once    = sync.Once
	Map     = sync.Map
	Pool    = sync.Pool
)
