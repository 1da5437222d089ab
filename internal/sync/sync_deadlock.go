//go:build jsonwalk_deadlock

package sync

import (
	"sync"

	"github.com/sasha-s/go-deadlock"
)

type (
	Mutex   = deadlock.Mutex
	RWMutex = deadlock.RWMutex
	Once    = sync.Once
	Map     = sync.Map
	Pool    = sync.Pool
)
