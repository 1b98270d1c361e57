package rembed

import (
	"context"
	"sync"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorker_RunsOnOneThread(t *testing.T) {
	w := newWorker()
	defer w.close()

	var (
		mu   sync.Mutex
		tids = make(map[int]struct{})
		wg   sync.WaitGroup
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, w.do(context.Background(), func() {
				mu.Lock()
				tids[syscall.Gettid()] = struct{}{}
				mu.Unlock()
			}))
		}()
	}
	wg.Wait()

	require.Len(t, tids, 1)
}
