package simulation

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lixenwraith/tickfork/core"
)

// SimTask is an in-flight episode; its presence in the presentation resources is the busy flag
type SimTask struct {
	ID uuid.UUID
	// Ticks is the signed number of ticks the episode runs
	Ticks   int64
	Started time.Time

	app     *SimApp
	done    chan struct{}
	failure any
}

// startTask hands app to a background goroutine that runs |delta| ticks
func startTask(app *SimApp, delta int64) *SimTask {
	t := &SimTask{
		ID:      uuid.New(),
		Ticks:   delta,
		Started: time.Now(),
		app:     app,
		done:    make(chan struct{}),
	}

	sign, n := int64(1), delta
	if delta < 0 {
		sign, n = -1, -delta
	}

	core.Go(func() {
		defer func() {
			if r := recover(); r != nil {
				t.failure = r
				close(t.done)
				panic(r)
			}
			close(t.done)
		}()
		for i := int64(0); i < n; i++ {
			app.RunTick(sign)
		}
	})
	return t
}

// Poll returns the simulation domain if the episode finished, never blocks
// A failed episode is re-raised on the caller's goroutine
func (t *SimTask) Poll() (*SimApp, bool) {
	select {
	case <-t.done:
		return t.result(), true
	default:
		return nil, false
	}
}

// Wait blocks until the episode finishes
func (t *SimTask) Wait() *SimApp {
	<-t.done
	return t.result()
}

func (t *SimTask) result() *SimApp {
	if t.failure != nil {
		panic(fmt.Sprintf("simulation episode %s failed: %v", t.ID, t.failure))
	}
	return t.app
}
