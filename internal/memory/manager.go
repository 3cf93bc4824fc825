// Package memory hands out the transient vector buffers used while building a
// summed-area table and keeps track of what is still outstanding.
package memory

import (
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"rect-segmenter/internal/colorvec"
	"rect-segmenter/internal/logger"
)

// DefaultLimit caps the bytes that may be outstanding at once.
const DefaultLimit int64 = 2 * 1024 * 1024 * 1024

// AllocationError reports a request the manager refused to serve.
type AllocationError struct {
	Tag       string
	Requested int64
	InUse     int64
	Limit     int64
}

func (e *AllocationError) Error() string {
	if e.Requested <= 0 {
		return fmt.Sprintf("invalid allocation size for %q: %d bytes", e.Tag, e.Requested)
	}
	return fmt.Sprintf("memory limit exceeded for %q: would use %d bytes, limit is %d",
		e.Tag, e.InUse+e.Requested, e.Limit)
}

type Manager struct {
	mu           sync.RWMutex
	logger       logger.Logger
	maxMemory    int64
	usedMemory   int64
	allocCount   int64
	deallocCount int64
	active       map[*colorvec.Vec3]*BufferInfo
}

type BufferInfo struct {
	Tag       string
	Size      int64
	Timestamp time.Time
}

// NewManager returns a manager with the given byte limit; limit <= 0 selects
// DefaultLimit.
func NewManager(log logger.Logger, limit int64) *Manager {
	if log == nil {
		log = logger.Nop{}
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	return &Manager{
		logger:    log,
		maxMemory: limit,
		active:    make(map[*colorvec.Vec3]*BufferInfo),
	}
}

// Alloc returns a zeroed buffer of count vectors.
func (m *Manager) Alloc(count int, tag string) ([]colorvec.Vec3, error) {
	size := int64(count) * colorvec.Bytes
	if count <= 0 {
		return nil, &AllocationError{Tag: tag, Requested: size, Limit: m.maxMemory}
	}

	m.mu.Lock()
	if m.usedMemory+size > m.maxMemory {
		used := m.usedMemory
		m.mu.Unlock()
		runtime.GC()
		return nil, &AllocationError{Tag: tag, Requested: size, InUse: used, Limit: m.maxMemory}
	}
	m.usedMemory += size
	m.allocCount++
	m.mu.Unlock()

	buf := make([]colorvec.Vec3, count)

	m.mu.Lock()
	m.active[&buf[0]] = &BufferInfo{
		Tag:       tag,
		Size:      size,
		Timestamp: time.Now(),
	}
	m.mu.Unlock()

	m.logger.Debug("MemoryManager", "buffer allocated", map[string]interface{}{
		"tag":   tag,
		"bytes": size,
	})

	return buf, nil
}

// Free returns a buffer obtained from Alloc. Unknown or empty buffers are
// ignored.
func (m *Manager) Free(buf []colorvec.Vec3, tag string) {
	if len(buf) == 0 {
		return
	}

	m.mu.Lock()
	info, exists := m.active[&buf[0]]
	if exists {
		delete(m.active, &buf[0])
		m.usedMemory -= info.Size
		m.deallocCount++
	}
	m.mu.Unlock()

	if !exists {
		m.logger.Warning("MemoryManager", "free of untracked buffer", map[string]interface{}{
			"tag": tag,
		})
		return
	}

	m.logger.Debug("MemoryManager", "buffer released", map[string]interface{}{
		"tag":      tag,
		"bytes":    info.Size,
		"lifetime": time.Since(info.Timestamp).String(),
	})
}

func (m *Manager) GetUsedMemory() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.usedMemory
}

func (m *Manager) GetStats() (allocCount, deallocCount int64, usedMemory int64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.allocCount, m.deallocCount, m.usedMemory
}

func (m *Manager) GetActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.active)
}

func (m *Manager) Limit() int64 {
	return m.maxMemory
}

// LogStats writes the counters at debug level and warns about buffers that
// were never freed, oldest first.
func (m *Manager) LogStats() {
	alloc, dealloc, used := m.GetStats()

	m.logger.Debug("MemoryManager", "memory statistics", map[string]interface{}{
		"allocations":   alloc,
		"deallocations": dealloc,
		"used_bytes":    used,
		"active":        m.GetActiveCount(),
	})

	m.logOldest(5)
}

func (m *Manager) logOldest(count int) {
	m.mu.RLock()
	infos := make([]*BufferInfo, 0, len(m.active))
	for _, info := range m.active {
		infos = append(infos, info)
	}
	m.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Timestamp.Before(infos[j].Timestamp)
	})

	now := time.Now()
	for _, info := range infos[:min(count, len(infos))] {
		m.logger.Warning("MemoryManager", "long-lived buffer detected", map[string]interface{}{
			"tag":  info.Tag,
			"size": info.Size,
			"age":  now.Sub(info.Timestamp).String(),
		})
	}
}

// Cleanup forgets every outstanding buffer.
func (m *Manager) Cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := len(m.active)
	for key, info := range m.active {
		m.logger.Warning("MemoryManager", "cleaning up unreleased buffer", map[string]interface{}{
			"tag":  info.Tag,
			"size": info.Size,
		})
		delete(m.active, key)
	}

	m.logger.Info("MemoryManager", "cleanup completed", map[string]interface{}{
		"buffers_cleaned": count,
	})

	m.usedMemory = 0
}
