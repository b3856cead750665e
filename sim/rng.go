package sim

import (
	"encoding/binary"
	"hash/fnv"
	"math/rand"

	"github.com/inference-sim/farm-sim/sim/trace"
)

// Streams hands each simulation actor its own deterministic *rand.Rand.
//
// The delivery producer draws from the run seed itself, so a run's
// deliveries depend only on Config.Seed. Every other actor's stream is
// seeded with seed XOR fnv1a64(kind, id); adding a farmer never shifts
// another farmer's breaks or a buyer's delays. Goroutine interleaving still
// varies between runs with the same seed.
//
// Not safe for concurrent use. Streams are handed out while wiring and each
// one then belongs to a single goroutine.
type Streams struct {
	seed   int64
	issued map[actorKey]*rand.Rand
}

type actorKey struct {
	kind string
	id   int
}

// NewStreams creates the stream set for one run.
func NewStreams(seed int64) *Streams {
	return &Streams{seed: seed, issued: make(map[actorKey]*rand.Rand)}
}

// Seed returns the run seed.
func (s *Streams) Seed() int64 { return s.seed }

// ForAgent returns the stream of the actor identified by a trace actor kind
// and id. Repeated calls for the same actor return the same generator.
func (s *Streams) ForAgent(kind string, id int) *rand.Rand {
	key := actorKey{kind: kind, id: id}
	if rng, ok := s.issued[key]; ok {
		return rng
	}
	rng := rand.New(rand.NewSource(s.derive(key)))
	s.issued[key] = rng
	return rng
}

func (s *Streams) derive(key actorKey) int64 {
	if key.kind == trace.ActorDelivery {
		return s.seed
	}
	return s.seed ^ actorHash(key)
}

// actorHash is FNV-1a over the kind followed by the id as 8 little-endian bytes.
func actorHash(key actorKey) int64 {
	h := fnv.New64a()
	h.Write([]byte(key.kind))
	var id [8]byte
	binary.LittleEndian.PutUint64(id[:], uint64(int64(key.id)))
	h.Write(id[:])
	return int64(h.Sum64())
}
