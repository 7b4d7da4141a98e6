package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/BilyiPJATK/librarystore/catalog"
	"github.com/BilyiPJATK/librarystore/service"
)

func Test_RetryWithBackoff_When_FirstAttemptSucceeds(t *testing.T) {
	// arrange
	attempts := 0

	// act
	err := service.RetryWithBackoff(context.Background(), func(_ context.Context) error {
		attempts++
		return nil
	})

	// assert
	assert.NoError(t, err)
	assert.Equal(t, 1, attempts)
}

func Test_RetryWithBackoff_When_TransientConflictResolvesOnRetry(t *testing.T) {
	// arrange
	attempts := 0

	// act
	err := service.RetryWithBackoff(context.Background(), func(_ context.Context) error {
		attempts++
		if attempts < 3 {
			return catalog.ErrTransientConflict
		}

		return nil
	}, service.WithBaseDelay(time.Millisecond))

	// assert
	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func Test_RetryWithBackoff_When_AllAttemptsFail(t *testing.T) {
	// arrange
	attempts := 0

	// act
	err := service.RetryWithBackoff(context.Background(), func(_ context.Context) error {
		attempts++
		return catalog.ErrTransientConflict
	}, service.WithMaxAttempts(3), service.WithBaseDelay(time.Millisecond))

	// assert
	assert.ErrorIs(t, err, catalog.ErrTransientConflict)
	assert.Equal(t, 3, attempts)
}

func Test_RetryWithBackoff_When_ErrorIsNotRetryable(t *testing.T) {
	// arrange
	attempts := 0

	// act
	err := service.RetryWithBackoff(context.Background(), func(_ context.Context) error {
		attempts++
		return catalog.ErrCopyNotAvailable
	}, service.WithBaseDelay(time.Millisecond))

	// assert
	assert.ErrorIs(t, err, catalog.ErrCopyNotAvailable)
	assert.Equal(t, 1, attempts, "business-rule rejections must fail fast")
}

func Test_RetryWithBackoff_When_ContextIsCanceledDuringBackoff(t *testing.T) {
	// arrange
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0

	// act
	err := service.RetryWithBackoff(ctx, func(_ context.Context) error {
		attempts++
		cancel()

		return catalog.ErrTransientConflict
	}, service.WithBaseDelay(time.Minute))

	// assert
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func Test_RetryWithBackoff_When_OptionsAreInvalid(t *testing.T) {
	noop := func(_ context.Context) error { return nil }

	// act + assert
	err := service.RetryWithBackoff(context.Background(), noop, service.WithMaxAttempts(0))
	assert.ErrorIs(t, err, service.ErrInvalidMaxAttempts)

	err = service.RetryWithBackoff(context.Background(), noop, service.WithBaseDelay(-time.Second))
	assert.ErrorIs(t, err, service.ErrNegativeBaseDelay)

	err = service.RetryWithBackoff(context.Background(), noop, service.WithJitterFactor(1.5))
	assert.ErrorIs(t, err, service.ErrInvalidJitterFactor)
}

func Test_RetryWithBackoff_When_WrappedTransientConflictIsReturned(t *testing.T) {
	// arrange
	attempts := 0
	wrapped := errors.Join(catalog.ErrTransientConflict, errors.New("deadlock detected"))

	// act
	err := service.RetryWithBackoff(context.Background(), func(_ context.Context) error {
		attempts++
		if attempts < 2 {
			return wrapped
		}

		return nil
	}, service.WithBaseDelay(time.Millisecond))

	// assert
	assert.NoError(t, err)
	assert.Equal(t, 2, attempts)
}
