// Package memory simulates a single contiguous memory arena partitioned into
// allocated and free blocks, serviced by the classic first-fit, best-fit, and
// worst-fit placement strategies with free-block coalescing on deallocation.
package memory

import (
	"sync"

	"github.com/memsim/memsim/pkg/types"
)

// Manager owns the arena: an address-ordered, contiguous, non-overlapping
// partition of [0, totalSize) into blocks. All operations are serialized
// behind a single mutex; no operation ever observes a partially-updated
// block list.
type Manager struct {
	// IDFunc mints an arena generation id on every Init so clients can
	// tell re-initializations apart. Must be set before use.
	IDFunc func() types.ArenaID

	mu        sync.Mutex
	arena     types.ArenaID
	totalSize int
	nextID    types.BlockID
	blocks    []types.Block
}

// Init resets the arena to a single free block spanning [0, totalSize),
// clearing all previously issued block ids.
func (m *Manager) Init(totalSize int) error {
	if totalSize <= 0 {
		return &types.InvalidSizeErr{Size: totalSize}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.arena = m.IDFunc()
	m.totalSize = totalSize
	m.nextID = 1
	m.blocks = []types.Block{{Start: 0, Size: totalSize, Free: true}}
	return nil
}

// Allocate finds a free block of at least `size` units according to the
// placement strategy, splits it, and returns the allocated block. The
// requested portion is taken from the front of the chosen block; any
// remainder stays free immediately after it. On failure the arena is
// unchanged.
func (m *Manager) Allocate(
	size int,
	strategy types.Strategy,
) (*types.Block, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.totalSize == 0 {
		return nil, types.ErrArenaUninitialized
	}
	if size <= 0 {
		return nil, &types.InvalidSizeErr{Size: size}
	}

	i := m.candidate(size, strategy)
	if i < 0 {
		return nil, &types.OutOfMemoryErr{
			Requested:   size,
			LargestFree: m.largestFree(),
		}
	}

	remainder := m.blocks[i].Size - size
	m.blocks[i].ID = m.nextID
	m.blocks[i].Size = size
	m.blocks[i].Free = false
	m.nextID++

	if remainder > 0 {
		rest := types.Block{
			Start: m.blocks[i].Start + size,
			Size:  remainder,
			Free:  true,
		}
		m.blocks = append(m.blocks, types.Block{})
		copy(m.blocks[i+2:], m.blocks[i+1:])
		m.blocks[i+1] = rest
	}

	block := m.blocks[i]
	return &block, nil
}

// candidate returns the index of the free block chosen by `strategy` for a
// request of `size` units, or -1 if no free block is large enough. The block
// list is address-ordered, so strict comparisons break size ties in favor of
// the smallest start address.
func (m *Manager) candidate(size int, strategy types.Strategy) int {
	best := -1
	for i, b := range m.blocks {
		if !b.Free || b.Size < size {
			continue
		}
		switch strategy {
		case types.FirstFit:
			return i
		case types.BestFit:
			if best < 0 || b.Size < m.blocks[best].Size {
				best = i
			}
		case types.WorstFit:
			if best < 0 || b.Size > m.blocks[best].Size {
				best = i
			}
		}
	}
	return best
}

func (m *Manager) largestFree() int {
	largest := 0
	for _, b := range m.blocks {
		if b.Free && b.Size > largest {
			largest = b.Size
		}
	}
	return largest
}

// Deallocate frees the block with the given id and coalesces it with any
// free neighbor; when both neighbors are free all three merge into one free
// block in the same pass.
func (m *Manager) Deallocate(id types.BlockID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.totalSize == 0 {
		return types.ErrArenaUninitialized
	}
	return m.deallocate(id)
}

// DeallocateMany frees each id in turn. Ids that don't name a
// currently-allocated block are reported in the result's Failed list without
// aborting the rest of the batch.
func (m *Manager) DeallocateMany(
	ids []types.BlockID,
) (*types.BatchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.totalSize == 0 {
		return nil, types.ErrArenaUninitialized
	}
	result := types.BatchResult{
		Freed:  []types.BlockID{},
		Failed: []types.BlockID{},
	}
	for _, id := range ids {
		if err := m.deallocate(id); err != nil {
			result.Failed = append(result.Failed, id)
			continue
		}
		result.Freed = append(result.Freed, id)
	}
	return &result, nil
}

// deallocate requires the lock to be held.
func (m *Manager) deallocate(id types.BlockID) error {
	i := -1
	for j, b := range m.blocks {
		if !b.Free && b.ID == id {
			i = j
			break
		}
	}
	if i < 0 {
		return &types.BlockNotFoundErr{Block: id}
	}

	m.blocks[i].ID = 0
	m.blocks[i].Free = true

	// fuse with the successor, then the predecessor
	if i+1 < len(m.blocks) && m.blocks[i+1].Free {
		m.blocks[i].Size += m.blocks[i+1].Size
		m.blocks = append(m.blocks[:i+1], m.blocks[i+2:]...)
	}
	if i > 0 && m.blocks[i-1].Free {
		m.blocks[i-1].Size += m.blocks[i].Size
		m.blocks = append(m.blocks[:i], m.blocks[i+1:]...)
	}
	return nil
}

// Snapshot returns a copy of the current arena view, blocks ordered by start
// address.
func (m *Manager) Snapshot() (*types.Arena, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.totalSize == 0 {
		return nil, types.ErrArenaUninitialized
	}
	blocks := make([]types.Block, len(m.blocks))
	copy(blocks, m.blocks)
	return &types.Arena{
		ID:        m.arena,
		TotalSize: m.totalSize,
		Blocks:    blocks,
	}, nil
}

// Stats summarizes arena usage, including external fragmentation (free space
// outside the largest free block).
func (m *Manager) Stats() (*types.ArenaStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.totalSize == 0 {
		return nil, types.ErrArenaUninitialized
	}
	stats := types.ArenaStats{
		TotalSize: m.totalSize,
		Blocks:    len(m.blocks),
	}
	for _, b := range m.blocks {
		if b.Free {
			stats.Free += b.Size
			stats.FreeBlocks++
			if b.Size > stats.LargestFree {
				stats.LargestFree = b.Size
			}
		} else {
			stats.Allocated += b.Size
		}
	}
	stats.Fragmentation = stats.Free - stats.LargestFree
	return &stats, nil
}
