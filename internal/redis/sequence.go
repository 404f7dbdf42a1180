package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const sequencePrefix = "seq:"

// Sequence formats the numbers drawn from one counter.
type Sequence struct {
	Prefix  string
	Padding int
}

// TripSequence is the sequence code used for trip references.
const TripSequence = "fleetflow.trip"

// DefaultSequences numbers trips TRP00001, TRP00002, ...
var DefaultSequences = map[string]Sequence{
	TripSequence: {Prefix: "TRP", Padding: 5},
}

// SequenceStore allocates human-readable references from Redis counters.
type SequenceStore struct {
	client    *redis.Client
	sequences map[string]Sequence
}

// NewSequenceStore creates a new SequenceStore with DefaultSequences.
func NewSequenceStore(client *redis.Client) *SequenceStore {
	return &SequenceStore{client: client, sequences: DefaultSequences}
}

// NextReference increments the counter for code and returns the formatted reference.
func (s *SequenceStore) NextReference(ctx context.Context, code string) (string, error) {
	seq, ok := s.sequences[code]
	if !ok {
		return "", fmt.Errorf("unknown sequence %q", code)
	}

	n, err := s.client.Incr(ctx, sequencePrefix+code).Result()
	if err != nil {
		return "", err
	}

	return seq.Format(n), nil
}

// Format renders n with the sequence prefix and zero padding.
func (seq Sequence) Format(n int64) string {
	return fmt.Sprintf("%s%0*d", seq.Prefix, seq.Padding, n)
}
