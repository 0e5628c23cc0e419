package opb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitTracksRoutesByChannel(t *testing.T) {
	cmds := []internalCommand{
		{orderIndex: 0, addr: 0x020, data: 0x01}, // channel 0
		{orderIndex: 1, addr: 0x0B2, data: 0x21}, // channel 2
		{orderIndex: 2, addr: 0xBD, data: 0x20},  // global rhythm register: other
	}
	buckets := splitTracks(cmds)

	assert.Len(t, buckets[0], 1)
	assert.Equal(t, cmds[0], buckets[0][0])

	assert.Len(t, buckets[2], 1)
	assert.Equal(t, cmds[1], buckets[2][0])

	assert.Len(t, buckets[otherBucket], 1)
	assert.Equal(t, cmds[2], buckets[otherBucket][0])

	for ch, b := range buckets {
		if ch == 0 || ch == 2 || ch == otherBucket {
			continue
		}
		assert.Len(t, b, 0)
	}
}

func TestSplitTracksPreservesOrderWithinBucket(t *testing.T) {
	cmds := []internalCommand{
		{orderIndex: 0, addr: 0x020, data: 0x01},
		{orderIndex: 1, addr: 0x040, data: 0x02}, // same channel 0, different register
		{orderIndex: 2, addr: 0x023, data: 0x03}, // channel 0, carrier
	}
	buckets := splitTracks(cmds)
	assert.Len(t, buckets[0], 3)
	assert.Equal(t, []int{0, 1, 2}, []int{buckets[0][0].orderIndex, buckets[0][1].orderIndex, buckets[0][2].orderIndex})
}
