package types

import (
	"errors"
	"fmt"
	"net/http"

	pz "github.com/weberc2/httpeasy"
)

// ErrArenaUninitialized is returned by every operation that runs before the
// arena has been initialized.
var ErrArenaUninitialized = &pz.HTTPError{
	Status:  http.StatusConflict,
	Message: "memory not initialized",
}

type InvalidSizeErr struct {
	Size int
}

func (err *InvalidSizeErr) HTTPError() *pz.HTTPError {
	return &pz.HTTPError{
		Status:  http.StatusBadRequest,
		Message: "invalid size",
	}
}

func (err *InvalidSizeErr) Error() string {
	return fmt.Sprintf("invalid size: %d; must be positive", err.Size)
}

func (wanted *InvalidSizeErr) CompareErr(err error) error {
	var other *InvalidSizeErr
	if errors.As(err, &other) {
		return wanted.Compare(other)
	}
	return fmt.Errorf(
		"Wanted `*types.InvalidSizeErr`; found `%T`: %v",
		err,
		err,
	)
}

func (wanted *InvalidSizeErr) Compare(other *InvalidSizeErr) error {
	if wanted == other {
		return nil
	}

	if wanted == nil && other != nil {
		return fmt.Errorf("wanted `nil`; found not-nil")
	}

	if wanted != nil && other == nil {
		return fmt.Errorf("wanted not-nil; found `nil`")
	}

	if wanted.Size != other.Size {
		return fmt.Errorf(
			"InvalidSizeErr.Size: wanted `%d`; found `%d`",
			wanted.Size,
			other.Size,
		)
	}

	return nil
}

type OutOfMemoryErr struct {
	Requested   int
	LargestFree int
}

func (err *OutOfMemoryErr) HTTPError() *pz.HTTPError {
	return &pz.HTTPError{
		Status:  http.StatusConflict,
		Message: "out of memory",
	}
}

func (err *OutOfMemoryErr) Error() string {
	return fmt.Sprintf(
		"out of memory: requested=%d largest-free=%d",
		err.Requested,
		err.LargestFree,
	)
}

func (wanted *OutOfMemoryErr) CompareErr(err error) error {
	var other *OutOfMemoryErr
	if errors.As(err, &other) {
		return wanted.Compare(other)
	}
	return fmt.Errorf(
		"Wanted `*types.OutOfMemoryErr`; found `%T`: %v",
		err,
		err,
	)
}

func (wanted *OutOfMemoryErr) Compare(other *OutOfMemoryErr) error {
	if wanted == other {
		return nil
	}

	if wanted == nil && other != nil {
		return fmt.Errorf("wanted `nil`; found not-nil")
	}

	if wanted != nil && other == nil {
		return fmt.Errorf("wanted not-nil; found `nil`")
	}

	if wanted.Requested != other.Requested {
		return fmt.Errorf(
			"OutOfMemoryErr.Requested: wanted `%d`; found `%d`",
			wanted.Requested,
			other.Requested,
		)
	}

	if wanted.LargestFree != other.LargestFree {
		return fmt.Errorf(
			"OutOfMemoryErr.LargestFree: wanted `%d`; found `%d`",
			wanted.LargestFree,
			other.LargestFree,
		)
	}

	return nil
}

type BlockNotFoundErr struct {
	Block BlockID
}

func (err *BlockNotFoundErr) HTTPError() *pz.HTTPError {
	return &pz.HTTPError{
		Status:  http.StatusNotFound,
		Message: "block not found",
	}
}

func (err *BlockNotFoundErr) Error() string {
	return fmt.Sprintf("block not found: %d", err.Block)
}

func (wanted *BlockNotFoundErr) CompareErr(err error) error {
	var other *BlockNotFoundErr
	if errors.As(err, &other) {
		return wanted.Compare(other)
	}
	return fmt.Errorf(
		"Wanted `*types.BlockNotFoundErr`; found `%T`: %v",
		err,
		err,
	)
}

func (wanted *BlockNotFoundErr) Compare(other *BlockNotFoundErr) error {
	if wanted == other {
		return nil
	}

	if wanted == nil && other != nil {
		return fmt.Errorf("wanted `nil`; found not-nil")
	}

	if wanted != nil && other == nil {
		return fmt.Errorf("wanted not-nil; found `nil`")
	}

	if wanted.Block != other.Block {
		return fmt.Errorf(
			"BlockNotFoundErr.Block: wanted `%d`; found `%d`",
			wanted.Block,
			other.Block,
		)
	}

	return nil
}

type InvalidStrategyErr struct {
	Strategy string
}

func (err *InvalidStrategyErr) HTTPError() *pz.HTTPError {
	return &pz.HTTPError{
		Status:  http.StatusBadRequest,
		Message: "invalid strategy",
	}
}

func (err *InvalidStrategyErr) Error() string {
	return fmt.Sprintf(
		"invalid strategy: `%s`; must be one of `first`, `best`, `worst`",
		err.Strategy,
	)
}

func (wanted *InvalidStrategyErr) CompareErr(err error) error {
	var other *InvalidStrategyErr
	if errors.As(err, &other) {
		return wanted.Compare(other)
	}
	return fmt.Errorf(
		"Wanted `*types.InvalidStrategyErr`; found `%T`: %v",
		err,
		err,
	)
}

func (wanted *InvalidStrategyErr) Compare(other *InvalidStrategyErr) error {
	if wanted == other {
		return nil
	}

	if wanted == nil && other != nil {
		return fmt.Errorf("wanted `nil`; found not-nil")
	}

	if wanted != nil && other == nil {
		return fmt.Errorf("wanted not-nil; found `nil`")
	}

	if wanted.Strategy != other.Strategy {
		return fmt.Errorf(
			"InvalidStrategyErr.Strategy: wanted `%s`; found `%s`",
			wanted.Strategy,
			other.Strategy,
		)
	}

	return nil
}

// fail compilation if the error types don't satisfy the `pz.Error` and
// `WantedError` interfaces.
var _ pz.Error = &InvalidSizeErr{}
var _ WantedError = &InvalidSizeErr{}
var _ pz.Error = &OutOfMemoryErr{}
var _ WantedError = &OutOfMemoryErr{}
var _ pz.Error = &BlockNotFoundErr{}
var _ WantedError = &BlockNotFoundErr{}
var _ pz.Error = &InvalidStrategyErr{}
var _ WantedError = &InvalidStrategyErr{}
