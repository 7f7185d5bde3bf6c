package delivery

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanup_FirstTriggerWins(t *testing.T) {
	reasons := []string{"printed", "error", "timeout"}

	for range 200 {
		var removes atomic.Int32

		c := newCleanup(func() error {
			removes.Add(1)
			return nil
		})

		var (
			wg    sync.WaitGroup
			start = make(chan struct{})
			wins  atomic.Int32
		)

		for _, reason := range reasons {
			wg.Add(1)

			go func() {
				defer wg.Done()
				<-start

				if c.trigger(reason) {
					wins.Add(1)
				}
			}()
		}

		close(start)
		wg.Wait()

		assert.Equal(t, int32(1), removes.Load())
		assert.Equal(t, int32(1), wins.Load())
		assert.Contains(t, reasons, c.reason)
	}
}
