package inventory

import (
	"context"
	"errors"
	"fmt"

	dominv "github.com/Zhima-Mochi/kitchen-inventory/internal/domain/inventory"
)

var passthrough = []error{
	dominv.ErrNotFound,
	dominv.ErrInvalidIngredient,
	dominv.ErrInvalidQuantity,
	dominv.ErrInvalidMode,
	dominv.ErrConflict,
	dominv.ErrPersistence,
	context.Canceled,
	context.DeadlineExceeded,
}

// storeErr keeps domain sentinels visible and folds everything else into
// ErrPersistence.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, known := range passthrough {
		if errors.Is(err, known) {
			return fmt.Errorf("inventory: %s: %w", op, err)
		}
	}
	return fmt.Errorf("%w: %s: %w", dominv.ErrPersistence, op, err)
}

// failureReason maps a consumption error onto the reason label used by the
// failure metric and event.
func failureReason(err error) string {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return dominv.FailureReasonCanceled
	case errors.Is(err, errRecipeLookup):
		return dominv.FailureReasonRecipe
	case errors.Is(err, dominv.ErrNotFound):
		return dominv.FailureReasonNotFound
	default:
		return dominv.FailureReasonPersistence
	}
}

// retryable reports whether running the draw again is worth it. A failed
// draw never leaves stock behind: the store writes levels and their log
// entries together or not at all.
func retryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, dominv.ErrInvalidQuantity):
		return false
	case errors.Is(err, context.Canceled):
		return false
	default:
		return true
	}
}
