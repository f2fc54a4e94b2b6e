package types

import (
	"encoding/json"
	"fmt"
)

// BlockID identifies a currently-allocated block. Free blocks carry no id;
// the zero value is the "no id" sentinel.
type BlockID int

// ArenaID identifies an arena generation. A fresh id is minted every time
// the arena is (re-)initialized so clients can detect resets.
type ArenaID string

// Block is one contiguous sub-range of the arena, either allocated (ID != 0)
// or free.
type Block struct {
	ID    BlockID `json:"id,omitempty"`
	Start int     `json:"start_address"`
	Size  int     `json:"size"`
	Free  bool    `json:"free"`
}

func (wanted *Block) Compare(found *Block) error {
	if wanted == found {
		return nil
	}

	if wanted == nil && found != nil {
		return fmt.Errorf("Block: wanted `nil`; found not-nil")
	}

	if wanted != nil && found == nil {
		return fmt.Errorf("Block: wanted not-nil; found `nil`")
	}

	if wanted.ID != found.ID {
		return fmt.Errorf(
			"Block.ID: wanted `%d`; found `%d`",
			wanted.ID,
			found.ID,
		)
	}

	if wanted.Start != found.Start {
		return fmt.Errorf(
			"Block.Start: wanted `%d`; found `%d`",
			wanted.Start,
			found.Start,
		)
	}

	if wanted.Size != found.Size {
		return fmt.Errorf(
			"Block.Size: wanted `%d`; found `%d`",
			wanted.Size,
			found.Size,
		)
	}

	if wanted.Free != found.Free {
		return fmt.Errorf(
			"Block.Free: wanted `%t`; found `%t`",
			wanted.Free,
			found.Free,
		)
	}

	return nil
}

func (wanted *Block) CompareData(data []byte) error {
	var other Block
	if err := json.Unmarshal(data, &other); err != nil {
		return fmt.Errorf("unmarshaling `Block`: %w", err)
	}
	return wanted.Compare(&other)
}

func CompareBlocks(wanted, found []Block) error {
	if len(wanted) != len(found) {
		return fmt.Errorf(
			"blocks: wanted len `%d`; found len `%d`",
			len(wanted),
			len(found),
		)
	}

	for i := range wanted {
		if err := wanted[i].Compare(&found[i]); err != nil {
			return fmt.Errorf("blocks[%d]: %w", i, err)
		}
	}

	return nil
}

// Arena is the view model for the whole address space: the ordered,
// contiguous, non-overlapping partition of [0, TotalSize) into blocks.
type Arena struct {
	ID        ArenaID `json:"arena"`
	TotalSize int     `json:"total_size"`
	Blocks    []Block `json:"blocks"`
}

func (wanted *Arena) Compare(found *Arena) error {
	if wanted == found {
		return nil
	}

	if wanted == nil && found != nil {
		return fmt.Errorf("Arena: wanted `nil`; found not-nil")
	}

	if wanted != nil && found == nil {
		return fmt.Errorf("Arena: wanted not-nil; found `nil`")
	}

	if wanted.ID != found.ID {
		return fmt.Errorf(
			"Arena.ID: wanted `%s`; found `%s`",
			wanted.ID,
			found.ID,
		)
	}

	if wanted.TotalSize != found.TotalSize {
		return fmt.Errorf(
			"Arena.TotalSize: wanted `%d`; found `%d`",
			wanted.TotalSize,
			found.TotalSize,
		)
	}

	if err := CompareBlocks(wanted.Blocks, found.Blocks); err != nil {
		return fmt.Errorf("Arena.Blocks: %w", err)
	}

	return nil
}

func (wanted *Arena) CompareData(data []byte) error {
	var other Arena
	if err := json.Unmarshal(data, &other); err != nil {
		return fmt.Errorf("unmarshaling `Arena`: %w", err)
	}
	return wanted.Compare(&other)
}

// ArenaStats summarizes arena usage. Fragmentation is external
// fragmentation: free space that isn't part of the largest free block.
type ArenaStats struct {
	TotalSize     int `json:"total_size"`
	Allocated     int `json:"allocated"`
	Free          int `json:"free"`
	LargestFree   int `json:"largest_free"`
	Fragmentation int `json:"fragmentation"`
	Blocks        int `json:"blocks"`
	FreeBlocks    int `json:"free_blocks"`
}

func (wanted *ArenaStats) Compare(found *ArenaStats) error {
	if wanted == found {
		return nil
	}

	if wanted == nil && found != nil {
		return fmt.Errorf("ArenaStats: wanted `nil`; found not-nil")
	}

	if wanted != nil && found == nil {
		return fmt.Errorf("ArenaStats: wanted not-nil; found `nil`")
	}

	if *wanted != *found {
		return fmt.Errorf(
			"ArenaStats: wanted `%+v`; found `%+v`",
			*wanted,
			*found,
		)
	}

	return nil
}

func (wanted *ArenaStats) CompareData(data []byte) error {
	var other ArenaStats
	if err := json.Unmarshal(data, &other); err != nil {
		return fmt.Errorf("unmarshaling `ArenaStats`: %w", err)
	}
	return wanted.Compare(&other)
}

// BatchResult reports per-id outcomes of a batch deallocation.
type BatchResult struct {
	Freed  []BlockID `json:"freed"`
	Failed []BlockID `json:"failed"`
}

func (wanted *BatchResult) Compare(found *BatchResult) error {
	if wanted == found {
		return nil
	}

	if wanted == nil && found != nil {
		return fmt.Errorf("BatchResult: wanted `nil`; found not-nil")
	}

	if wanted != nil && found == nil {
		return fmt.Errorf("BatchResult: wanted not-nil; found `nil`")
	}

	if err := compareIDs("Freed", wanted.Freed, found.Freed); err != nil {
		return err
	}

	return compareIDs("Failed", wanted.Failed, found.Failed)
}

func compareIDs(field string, wanted, found []BlockID) error {
	if len(wanted) != len(found) {
		return fmt.Errorf(
			"BatchResult.%s: wanted len `%d`; found len `%d`",
			field,
			len(wanted),
			len(found),
		)
	}
	for i := range wanted {
		if wanted[i] != found[i] {
			return fmt.Errorf(
				"BatchResult.%s[%d]: wanted `%d`; found `%d`",
				field,
				i,
				wanted[i],
				found[i],
			)
		}
	}
	return nil
}
