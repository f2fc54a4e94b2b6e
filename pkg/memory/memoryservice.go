package memory

import (
	"encoding/json"
	"fmt"

	"github.com/memsim/memsim/pkg/types"
	pz "github.com/weberc2/httpeasy"
)

// MemoryService exposes the arena over HTTP. It is stateless per request;
// all state lives in the one process-wide Manager.
type MemoryService struct {
	Memory *Manager
}

type logging struct {
	Message  string         `json:"message"`
	Arena    types.ArenaID  `json:"arena,omitempty"`
	Block    types.BlockID  `json:"block,omitempty"`
	Size     int            `json:"size,omitempty"`
	Strategy types.Strategy `json:"strategy,omitempty"`
	Freed    int            `json:"freed,omitempty"`
	Failed   int            `json:"failed,omitempty"`
	Error    string         `json:"error,omitempty"`
}

func (ms *MemoryService) InitRoute() pz.Route {
	return pz.Route{
		Path:   "/api/init",
		Method: "POST",
		Handler: func(r pz.Request) pz.Response {
			var payload struct {
				TotalSize int `json:"total_size"`
			}
			if err := r.JSON(&payload); err != nil {
				return pz.BadRequest(nil, &logging{
					Message: "failed to parse init JSON",
					Error:   err.Error(),
				})
			}
			if err := ms.Memory.Init(payload.TotalSize); err != nil {
				return pz.HandleError("initializing memory", err)
			}
			return ms.arenaResponse(&logging{
				Message: "initialized memory",
				Size:    payload.TotalSize,
			})
		},
	}
}

func (ms *MemoryService) AllocateRoute() pz.Route {
	return pz.Route{
		Path:   "/api/allocate",
		Method: "POST",
		Handler: func(r pz.Request) pz.Response {
			var payload struct {
				Size     int    `json:"size"`
				Strategy string `json:"strategy"`
			}
			if err := r.JSON(&payload); err != nil {
				return pz.BadRequest(nil, &logging{
					Message: "failed to parse allocate JSON",
					Error:   err.Error(),
				})
			}
			strategy, err := types.ParseStrategy(payload.Strategy)
			if err != nil {
				return pz.HandleError("parsing strategy", err)
			}
			block, err := ms.Memory.Allocate(payload.Size, strategy)
			if err != nil {
				return pz.HandleError("allocating block", err)
			}
			return ms.arenaResponse(&logging{
				Message:  "allocated block",
				Block:    block.ID,
				Size:     block.Size,
				Strategy: strategy,
			})
		},
	}
}

func (ms *MemoryService) DeallocateRoute() pz.Route {
	return pz.Route{
		Path:   "/api/deallocate",
		Method: "POST",
		Handler: func(r pz.Request) pz.Response {
			var payload struct {
				BlockID types.BlockID `json:"block_id"`
			}
			if err := r.JSON(&payload); err != nil {
				return pz.BadRequest(nil, &logging{
					Message: "failed to parse deallocate JSON",
					Error:   err.Error(),
				})
			}
			if err := ms.Memory.Deallocate(payload.BlockID); err != nil {
				return pz.HandleError("deallocating block", err)
			}
			return ms.arenaResponse(&logging{
				Message: "deallocated block",
				Block:   payload.BlockID,
			})
		},
	}
}

type DeallocateMultipleResponse struct {
	Freed  []types.BlockID `json:"freed"`
	Failed []types.BlockID `json:"failed"`
	Arena  *types.Arena    `json:"arena"`
}

func (wanted *DeallocateMultipleResponse) Compare(
	found *DeallocateMultipleResponse,
) error {
	if wanted == found {
		return nil
	}
	if wanted == nil && found != nil {
		return fmt.Errorf("DeallocateMultipleResponse: wanted `nil`")
	}
	if wanted != nil && found == nil {
		return fmt.Errorf("DeallocateMultipleResponse: found `nil`")
	}

	wantedResult := types.BatchResult{
		Freed:  wanted.Freed,
		Failed: wanted.Failed,
	}
	if err := wantedResult.Compare(&types.BatchResult{
		Freed:  found.Freed,
		Failed: found.Failed,
	}); err != nil {
		return fmt.Errorf("DeallocateMultipleResponse: %w", err)
	}

	if err := wanted.Arena.Compare(found.Arena); err != nil {
		return fmt.Errorf("DeallocateMultipleResponse.Arena: %w", err)
	}

	return nil
}

func (wanted *DeallocateMultipleResponse) CompareData(data []byte) error {
	var other DeallocateMultipleResponse
	if err := json.Unmarshal(data, &other); err != nil {
		return fmt.Errorf(
			"unmarshaling `DeallocateMultipleResponse`: %w",
			err,
		)
	}
	return wanted.Compare(&other)
}

func (ms *MemoryService) DeallocateMultipleRoute() pz.Route {
	return pz.Route{
		Path:   "/api/deallocate_multiple",
		Method: "POST",
		Handler: func(r pz.Request) pz.Response {
			var payload struct {
				BlockIDs []types.BlockID `json:"block_ids"`
			}
			if err := r.JSON(&payload); err != nil {
				return pz.BadRequest(nil, &logging{
					Message: "failed to parse deallocate_multiple JSON",
					Error:   err.Error(),
				})
			}
			result, err := ms.Memory.DeallocateMany(payload.BlockIDs)
			if err != nil {
				return pz.HandleError("deallocating blocks", err)
			}
			arena, err := ms.Memory.Snapshot()
			if err != nil {
				return pz.HandleError("snapshotting memory", err)
			}
			return pz.Ok(
				pz.JSON(&DeallocateMultipleResponse{
					Freed:  result.Freed,
					Failed: result.Failed,
					Arena:  arena,
				}),
				&logging{
					Message: "deallocated blocks",
					Arena:   arena.ID,
					Freed:   len(result.Freed),
					Failed:  len(result.Failed),
				},
			)
		},
	}
}

func (ms *MemoryService) SnapshotRoute() pz.Route {
	return pz.Route{
		Path:   "/api/snapshot",
		Method: "GET",
		Handler: func(r pz.Request) pz.Response {
			return ms.arenaResponse(&logging{Message: "snapshotted memory"})
		},
	}
}

func (ms *MemoryService) StatsRoute() pz.Route {
	return pz.Route{
		Path:   "/api/stats",
		Method: "GET",
		Handler: func(r pz.Request) pz.Response {
			stats, err := ms.Memory.Stats()
			if err != nil {
				return pz.HandleError("computing memory stats", err)
			}
			return pz.Ok(pz.JSON(stats), &logging{
				Message: "computed memory stats",
			})
		},
	}
}

func (ms *MemoryService) Routes() []pz.Route {
	return []pz.Route{
		ms.InitRoute(),
		ms.AllocateRoute(),
		ms.DeallocateRoute(),
		ms.DeallocateMultipleRoute(),
		ms.SnapshotRoute(),
		ms.StatsRoute(),
	}
}

func (ms *MemoryService) arenaResponse(l *logging) pz.Response {
	arena, err := ms.Memory.Snapshot()
	if err != nil {
		return pz.HandleError("snapshotting memory", err)
	}
	l.Arena = arena.ID
	return pz.Ok(pz.JSON(arena), l)
}
