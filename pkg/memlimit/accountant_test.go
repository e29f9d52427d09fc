package memlimit_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/rqueue/pkg/memlimit"
)

func TestAccountant_TryAdmit(t *testing.T) {
	t.Parallel()

	t.Run("admits up to the ceiling", func(t *testing.T) {
		t.Parallel()
		acct := memlimit.New(100)

		t1, err := acct.TryAdmit(60)
		require.NoError(t, err)
		assert.Equal(t, int64(60), t1.Size())

		_, err = acct.TryAdmit(40)
		require.NoError(t, err)
		assert.Equal(t, int64(100), acct.Current())
		assert.Equal(t, int64(0), acct.Available())
	})

	t.Run("rejects over the ceiling without side effects", func(t *testing.T) {
		t.Parallel()
		acct := memlimit.New(100)

		_, err := acct.TryAdmit(70)
		require.NoError(t, err)

		ticket, err := acct.TryAdmit(31)
		require.Error(t, err)
		assert.Nil(t, ticket)
		assert.True(t, errors.Is(err, memlimit.ErrQueueFull))

		var rej *memlimit.RejectedError
		require.ErrorAs(t, err, &rej)
		assert.Equal(t, int64(31), rej.Attempted)
		assert.Equal(t, int64(70), rej.Current)
		assert.Equal(t, int64(100), rej.Ceiling)
		assert.Equal(t, int64(70), acct.Current())
	})

	t.Run("released bytes can be admitted again", func(t *testing.T) {
		t.Parallel()
		acct := memlimit.New(10)

		ticket, err := acct.TryAdmit(10)
		require.NoError(t, err)
		_, err = acct.TryAdmit(1)
		require.ErrorIs(t, err, memlimit.ErrQueueFull)

		ticket.Release()
		ticket.Release()
		assert.Equal(t, int64(0), acct.Current())

		_, err = acct.TryAdmit(10)
		require.NoError(t, err)
	})

	t.Run("non-positive ceiling uses default", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, memlimit.DefaultCeiling, memlimit.New(0).Ceiling())
		assert.Equal(t, memlimit.DefaultCeiling, memlimit.New(-5).Ceiling())
	})
}

func TestAccountant_Release(t *testing.T) {
	t.Parallel()

	acct := memlimit.New(100)
	_, err := acct.TryAdmit(10)
	require.NoError(t, err)

	acct.Release(10)
	assert.Equal(t, int64(0), acct.Current())

	assert.Panics(t, func() { acct.Release(1) })
	assert.Panics(t, func() { acct.Release(-1) })
}

func TestAccountant_SystemClamp(t *testing.T) {
	t.Parallel()

	t.Run("clamps to half of total memory", func(t *testing.T) {
		t.Parallel()
		acct := memlimit.New(1000,
			memlimit.WithSystemClamp(),
			memlimit.WithTotalMemory(func() uint64 { return 800 }),
		)
		assert.Equal(t, int64(400), acct.Ceiling())
	})

	t.Run("keeps smaller ceiling", func(t *testing.T) {
		t.Parallel()
		acct := memlimit.New(100,
			memlimit.WithSystemClamp(),
			memlimit.WithTotalMemory(func() uint64 { return 800 }),
		)
		assert.Equal(t, int64(100), acct.Ceiling())
	})

	t.Run("unknown total memory leaves ceiling", func(t *testing.T) {
		t.Parallel()
		acct := memlimit.New(1000,
			memlimit.WithSystemClamp(),
			memlimit.WithTotalMemory(func() uint64 { return 0 }),
		)
		assert.Equal(t, int64(1000), acct.Ceiling())
	})
}

func TestAccountant_ConcurrentAdmission(t *testing.T) {
	t.Parallel()

	const (
		ceiling  = 1000
		workers  = 16
		attempts = 200
		size     = 7
	)

	acct := memlimit.New(ceiling)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		admitted int64
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range attempts {
				if _, err := acct.TryAdmit(size); err == nil {
					mu.Lock()
					admitted += size
					mu.Unlock()
				}
				assert.LessOrEqual(t, acct.Current(), int64(ceiling))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, admitted, acct.Current())
	assert.Equal(t, int64(ceiling/size*size), acct.Current())
}
