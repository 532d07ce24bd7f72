// Package registry keeps the set of splice blocks discovered by the scanner
// and notifies watchers when blocks are added, updated or removed.
package registry

import (
	"sort"
	"sync"
	"time"

	"github.com/conneroisu/splicer/internal/types"
)

// BlockRegistry manages all discovered blocks
type BlockRegistry struct {
	blocks   map[string]*types.BlockInfo
	mutex    sync.RWMutex
	watchers []chan types.BlockEvent
}

// NewBlockRegistry creates a new block registry
func NewBlockRegistry() *BlockRegistry {
	return &BlockRegistry{
		blocks:   make(map[string]*types.BlockInfo),
		watchers: make([]chan types.BlockEvent, 0),
	}
}

// Register adds or updates a block in the registry
func (r *BlockRegistry) Register(block *types.BlockInfo) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	eventType := types.EventTypeAdded
	if _, exists := r.blocks[block.ID()]; exists {
		eventType = types.EventTypeUpdated
	}

	r.blocks[block.ID()] = block
	r.notify(eventType, block)
}

// ReplaceFile swaps every block of path for blocks. Blocks that no longer
// exist produce removed events.
func (r *BlockRegistry) ReplaceFile(path string, blocks []*types.BlockInfo) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	keep := make(map[string]bool, len(blocks))
	for _, b := range blocks {
		keep[b.ID()] = true
	}

	for id, existing := range r.blocks {
		if existing.FilePath == path && !keep[id] {
			delete(r.blocks, id)
			r.notify(types.EventTypeRemoved, existing)
		}
	}

	for _, b := range blocks {
		eventType := types.EventTypeAdded
		if _, exists := r.blocks[b.ID()]; exists {
			eventType = types.EventTypeUpdated
		}
		r.blocks[b.ID()] = b
		r.notify(eventType, b)
	}
}

// Get retrieves a block by its ID (file:line).
func (r *BlockRegistry) Get(id string) (*types.BlockInfo, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	block, exists := r.blocks[id]
	return block, exists
}

// FindOutput returns every block defining the constant name.
func (r *BlockRegistry) FindOutput(name string) []*types.BlockInfo {
	var found []*types.BlockInfo
	for _, b := range r.GetAll() {
		if b.Output == name {
			found = append(found, b)
		}
	}
	return found
}

// GetAll returns all registered blocks ordered by file and line.
func (r *BlockRegistry) GetAll() []*types.BlockInfo {
	r.mutex.RLock()
	result := make([]*types.BlockInfo, 0, len(r.blocks))
	for _, block := range r.blocks {
		result = append(result, block)
	}
	r.mutex.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].FilePath != result[j].FilePath {
			return result[i].FilePath < result[j].FilePath
		}
		return result[i].Line < result[j].Line
	})
	return result
}

// Files returns the distinct source files that contain blocks.
func (r *BlockRegistry) Files() []string {
	seen := make(map[string]bool)
	var files []string
	for _, b := range r.GetAll() {
		if !seen[b.FilePath] {
			seen[b.FilePath] = true
			files = append(files, b.FilePath)
		}
	}
	return files
}

// Remove removes a block from the registry
func (r *BlockRegistry) Remove(id string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	block, exists := r.blocks[id]
	if !exists {
		return
	}

	delete(r.blocks, id)
	r.notify(types.EventTypeRemoved, block)
}

// RemoveFile drops every block read from path.
func (r *BlockRegistry) RemoveFile(path string) int {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	removed := 0
	for id, block := range r.blocks {
		if block.FilePath == path {
			delete(r.blocks, id)
			r.notify(types.EventTypeRemoved, block)
			removed++
		}
	}
	return removed
}

// Duplicates groups valid blocks that define the same constant in the same
// package directory. Only groups with more than one block are returned.
func (r *BlockRegistry) Duplicates() map[string][]*types.BlockInfo {
	groups := make(map[string][]*types.BlockInfo)
	for _, b := range r.GetAll() {
		if !b.Valid() {
			continue
		}
		groups[b.OutputKey()] = append(groups[b.OutputKey()], b)
	}

	for key, group := range groups {
		if len(group) < 2 {
			delete(groups, key)
		}
	}
	return groups
}

// Watch returns a channel that receives block events
func (r *BlockRegistry) Watch() <-chan types.BlockEvent {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	ch := make(chan types.BlockEvent, 100)
	r.watchers = append(r.watchers, ch)
	return ch
}

// UnWatch removes a watcher channel and closes it
func (r *BlockRegistry) UnWatch(ch <-chan types.BlockEvent) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for i, watcher := range r.watchers {
		if watcher == ch {
			close(watcher)
			r.watchers = append(r.watchers[:i], r.watchers[i+1:]...)
			break
		}
	}
}

// Count returns the number of registered blocks
func (r *BlockRegistry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return len(r.blocks)
}

// notify must be called with the mutex held.
func (r *BlockRegistry) notify(eventType types.EventType, block *types.BlockInfo) {
	event := types.BlockEvent{
		Type:      eventType,
		Block:     block,
		Timestamp: time.Now(),
	}

	for _, watcher := range r.watchers {
		select {
		case watcher <- event:
		default:
			// Skip if channel is full
		}
	}
}
