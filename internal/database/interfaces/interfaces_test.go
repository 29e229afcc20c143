package interfaces

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRepositoryErrorIs(t *testing.T) {
	cause := errors.New("E11000 duplicate key")
	wrapped := fmt.Errorf("insert vote: %w", ErrDuplicateKey.Wrap(cause))

	assert.True(t, errors.Is(wrapped, ErrDuplicateKey))
	assert.True(t, errors.Is(wrapped, cause))
	assert.False(t, errors.Is(wrapped, ErrNoDocuments))
	assert.Contains(t, wrapped.Error(), "duplicate key error: E11000")
}

func TestNoTransaction(t *testing.T) {
	called := false
	err := NoTransaction.WithTransaction(context.Background(), func(ctx context.Context) error {
		called = true
		return ErrTransactionConflict
	})
	assert.True(t, called)
	assert.ErrorIs(t, err, ErrTransactionConflict)
}

func TestSerialized(t *testing.T) {
	runner := Serialized()
	var inside, maxInside int
	done := make(chan struct{})
	for i := 0; i < 4; i++ {
		go func() {
			_ = runner.WithTransaction(context.Background(), func(context.Context) error {
				inside++
				if inside > maxInside {
					maxInside = inside
				}
				inside--
				return nil
			})
			done <- struct{}{}
		}()
	}
	for i := 0; i < 4; i++ {
		<-done
	}
	assert.Equal(t, 1, maxInside)
}
