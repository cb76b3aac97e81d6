package inventory

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/moviego/internal/repository"
)

func TestRandomTokens(t *testing.T) {
	now := time.UnixMilli(1717232400123)
	var src RandomTokens

	ref, err := src.BookingReference(now)
	require.NoError(t, err)
	assert.Regexp(t, ReferencePattern, ref)
	assert.Len(t, ref, len("BK")+13+3)
	assert.Equal(t, "BK1717232400123", ref[:15])

	txn, err := src.TransactionID(now)
	require.NoError(t, err)
	assert.Regexp(t, TransactionPattern, txn)
	assert.Len(t, txn, len("TXN")+13+4)
}

func TestKeyedMutex(t *testing.T) {
	k := newKeyedMutex()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  = map[int64]int{}
		overlap bool
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(key int64) {
			defer wg.Done()
			unlock := k.Lock(key)
			mu.Lock()
			inside[key]++
			if inside[key] > 1 {
				overlap = true
			}
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			inside[key]--
			mu.Unlock()
			unlock()
		}(int64(i % 3))
	}
	wg.Wait()
	assert.False(t, overlap)
	assert.Zero(t, k.size())
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNone, KindOf(nil))
	assert.Equal(t, KindStorage, KindOf(errors.New("io")))
	assert.Equal(t, KindConflict, KindOf(stepErr(StepInsertBooking, repository.ErrDuplicateReference)))
	assert.Equal(t, "not_found", KindNotFound.String())
	assert.Equal(t, "storage", KindStorage.String())
	assert.Nil(t, stepErr(StepClaimSeats, nil))
	assert.Nil(t, UnavailableSeats(ErrSoldOut))
	assert.True(t, IsRetryable(repository.ErrDuplicateTransaction))
	assert.False(t, IsRetryable(ErrSeatUnavailable))
}
