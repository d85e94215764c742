package eventlog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPartition_StableAndInRange(t *testing.T) {
	for range 100 {
		key := uuid.NewString()
		p := Partition(key, 12)
		assert.GreaterOrEqual(t, p, int32(0))
		assert.Less(t, p, int32(12))
		assert.Equal(t, p, Partition(key, 12))
	}
}

func TestPartition_SinglePartition(t *testing.T) {
	assert.Equal(t, int32(0), Partition("anything", 1))
	assert.Equal(t, int32(0), Partition("anything", 0))
}

func TestPartition_SpreadsKeys(t *testing.T) {
	seen := map[int32]bool{}
	for range 200 {
		seen[Partition(uuid.NewString(), 4)] = true
	}
	assert.Len(t, seen, 4)
}

func TestPartitionStream(t *testing.T) {
	assert.Equal(t, "order-commands:7", PartitionStream("order-commands", 7))
}
