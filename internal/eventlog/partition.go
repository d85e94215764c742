package eventlog

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Partition maps key onto one of n partitions. Equal keys always land on the same partition.
func Partition(key string, n int) int32 {
	if n <= 1 {
		return 0
	}

	return int32(xxhash.Sum64String(key) % uint64(n))
}

// PartitionStream names the backend stream holding one partition of stream.
func PartitionStream(stream string, partition int32) string {
	return stream + ":" + strconv.Itoa(int(partition))
}
