package trace

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogRecorder_Record_ReferenceLineLayout(t *testing.T) {
	// GIVEN a log recorder writing to a buffer
	var buf bytes.Buffer
	r := NewLogRecorder(&buf)

	// WHEN a delivery event is recorded
	r.Record(42, ActorDelivery, 0, EventDelivery, Payload{"pigs": 3, "cows": 7})

	// THEN the line carries tick, actor, event and sorted payload
	assert.Equal(t, "42 delivery=0 animal_delivery : cows=7 pigs=3\n", buf.String())
}

func TestLogRecorder_Record_NoPayload_NoSeparator(t *testing.T) {
	var buf bytes.Buffer
	r := NewLogRecorder(&buf)

	r.Record(7, ActorFarmer, 2, EventReturned, nil)

	assert.Equal(t, "7 farmer=2 returned_to_enclosure\n", buf.String())
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func TestLogRecorder_ConcurrentRecord_LinesNeverInterleave(t *testing.T) {
	// GIVEN many goroutines sharing one recorder
	out := &lockedBuffer{}
	r := NewLogRecorder(out)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				r.Record(uint64(j), ActorBuyer, id, EventBought, Payload{KeyField: "sheep", KeyWaitedTicks: uint64(1)})
			}
		}(i)
	}
	wg.Wait()

	// THEN every line is complete
	lines := strings.Split(strings.TrimSuffix(out.buf.String(), "\n"), "\n")
	assert.Len(t, lines, 500)
	for _, line := range lines {
		assert.True(t, strings.HasSuffix(line, "bought : field=sheep waited_ticks=1"), "malformed line %q", line)
	}
}
