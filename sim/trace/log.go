package trace

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/sirupsen/logrus"
)

// Reserved logrus field names. Payload keys must not reuse them.
const (
	fieldTick    = "tick"
	fieldActor   = "actor"
	fieldActorID = "actor_id"
)

// LogRecorder writes one line per event through a dedicated logrus logger.
// The logger's mutex serializes writes so lines never interleave.
type LogRecorder struct {
	logger *logrus.Logger
}

// NewLogRecorder creates a recorder writing event lines to w.
func NewLogRecorder(w io.Writer) *LogRecorder {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&EventFormatter{})
	logger.SetLevel(logrus.InfoLevel)
	return &LogRecorder{logger: logger}
}

// Record logs the event at info level.
func (r *LogRecorder) Record(tick uint64, actorKind string, actorID int, kind EventKind, payload Payload) {
	fields := make(logrus.Fields, len(payload)+3)
	for k, v := range payload {
		fields[k] = v
	}
	fields[fieldTick] = tick
	fields[fieldActor] = actorKind
	fields[fieldActorID] = actorID
	r.logger.WithFields(fields).Info(string(kind))
}

// EventFormatter renders entries as "<tick> <actor>=<id> <event> : k=v ...",
// with payload keys sorted.
type EventFormatter struct{}

// Format implements logrus.Formatter.
func (f *EventFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer
	fmt.Fprintf(&b, "%v %v=%v %s", entry.Data[fieldTick], entry.Data[fieldActor], entry.Data[fieldActorID], entry.Message)

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		switch k {
		case fieldTick, fieldActor, fieldActorID:
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > 0 {
		b.WriteString(" :")
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, entry.Data[k])
		}
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}
