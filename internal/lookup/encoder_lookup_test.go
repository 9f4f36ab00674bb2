package lookup

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncoderLookup_SequentialSetIDs(t *testing.T) {
	l := NewEncoderLookup(4)

	for i, key := range []string{"a", "b", "c"} {
		e := l.AddOrTouch(key)
		require.True(t, e.New)
		assert.Equal(t, uint32(i+1), e.GetID)
		assert.Equal(t, uint32(0), e.SetID, "sequential slots are compressed to 0")
		assert.Equal(t, uint32(1), e.Serial)
	}
	assert.Equal(t, uint32(3), l.Len())
}

func TestEncoderLookup_HitIsNotNew(t *testing.T) {
	l := NewEncoderLookup(4)
	first := l.AddOrTouch("a")
	again := l.AddOrTouch("a")

	assert.False(t, again.New)
	assert.Equal(t, first.GetID, again.GetID)
	assert.Equal(t, first.Serial, again.Serial)
}

func TestEncoderLookup_EvictsLeastRecentlyUsed(t *testing.T) {
	l := NewEncoderLookup(3)
	l.AddOrTouch("a")
	l.AddOrTouch("b")
	l.AddOrTouch("c")

	// a becomes most recent, so b is now the LRU slot
	l.AddOrTouch("a")
	assert.Equal(t, uint32(2), l.LeastRecent())

	e := l.AddOrTouch("d")
	require.True(t, e.New)
	assert.Equal(t, uint32(2), e.GetID)
	assert.Equal(t, uint32(2), e.SetID, "slot 2 does not follow slot 3")
	assert.Equal(t, uint32(2), e.Serial, "eviction bumps the serial")

	_, ok := l.ID("b")
	assert.False(t, ok, "b was evicted")
	key, ok := l.Key(2)
	require.True(t, ok)
	assert.Equal(t, "d", key)
}

func TestEncoderLookup_ReinsertEvictedKeyIsNew(t *testing.T) {
	l := NewEncoderLookup(2)
	l.AddOrTouch("a")
	l.AddOrTouch("b")
	l.AddOrTouch("c") // evicts a

	e := l.AddOrTouch("a") // evicts b
	assert.True(t, e.New)
	assert.Equal(t, uint32(2), e.GetID)
	assert.Equal(t, uint32(2), e.Serial)
}

func TestEncoderLookup_SetIDAfterWrapAround(t *testing.T) {
	l := NewEncoderLookup(3)
	for _, k := range []string{"a", "b", "c"} {
		l.AddOrTouch(k)
	}
	// slot 1 is LRU; last set was 3, so 1 is not a successor
	e := l.AddOrTouch("d")
	assert.Equal(t, uint32(1), e.GetID)
	assert.Equal(t, uint32(1), e.SetID)

	// slot 2 is next and follows slot 1
	e = l.AddOrTouch("e")
	assert.Equal(t, uint32(2), e.GetID)
	assert.Equal(t, uint32(0), e.SetID)
}

func TestEncoderLookup_NPlusOneEvictsExactlyOne(t *testing.T) {
	const n = 16
	l := NewEncoderLookup(n)
	for i := 0; i < n; i++ {
		l.AddOrTouch(fmt.Sprintf("k%d", i))
	}
	l.AddOrTouch(fmt.Sprintf("k%d", n))

	_, ok := l.ID("k0")
	assert.False(t, ok)
	for i := 1; i <= n; i++ {
		_, ok := l.ID(fmt.Sprintf("k%d", i))
		assert.True(t, ok, "k%d should still be present", i)
	}
}

func TestEncoderLookup_AddOrReplaceUsesVictim(t *testing.T) {
	l := NewEncoderLookup(3)
	l.AddOrTouch("a")
	l.AddOrTouch("b")
	l.AddOrTouch("c")

	e := l.AddOrReplace("d", 3)
	assert.Equal(t, uint32(3), e.GetID)
	_, ok := l.ID("c")
	assert.False(t, ok)
	_, ok = l.ID("a")
	assert.True(t, ok, "LRU slot is kept when a victim is given")
}

func TestEncoderLookup_AddOrReplaceIgnoresVictimWhenNotFull(t *testing.T) {
	l := NewEncoderLookup(3)
	l.AddOrTouch("a")

	e := l.AddOrReplace("b", 1)
	assert.Equal(t, uint32(2), e.GetID)
	_, ok := l.ID("a")
	assert.True(t, ok)
}

func TestEncoderLookup_PinnedSlotIsNotEvicted(t *testing.T) {
	l := NewEncoderLookup(3)
	l.AddOrTouch("a")
	l.AddOrTouch("b")
	l.AddOrTouch("c")

	l.Pin(1)
	assert.True(t, l.Pinned(1))
	assert.False(t, l.Pinned(2))

	e := l.AddOrTouch("d")
	require.True(t, e.New)
	assert.Equal(t, uint32(2), e.GetID, "next unpinned slot in LRU order")
	_, ok := l.ID("a")
	assert.True(t, ok)

	e = l.AddOrReplace("e", 1)
	assert.Equal(t, uint32(3), e.GetID, "a pinned victim is not honored")
	key, _ := l.Key(1)
	assert.Equal(t, "a", key)
}

func TestEncoderLookup_AllPinned(t *testing.T) {
	l := NewEncoderLookup(2)
	l.Pin(l.AddOrTouch("a").GetID)
	l.Pin(l.AddOrTouch("b").GetID)

	e := l.AddOrTouch("c")
	assert.Equal(t, Entry{}, e)
	_, ok := l.ID("c")
	assert.False(t, ok)
	assert.Equal(t, uint32(1), l.LeastRecent(), "recency is unchanged")

	// a present key is still found while everything is pinned
	assert.Equal(t, uint32(2), l.AddOrTouch("b").GetID)

	l.ReleasePins()
	assert.False(t, l.Pinned(1))
	e = l.AddOrTouch("c")
	assert.True(t, e.New)
	assert.Equal(t, uint32(1), e.GetID)
}

func TestEncoderLookup_ReleasePinsEpochWrap(t *testing.T) {
	l := NewEncoderLookup(1)
	l.AddOrTouch("a")
	l.epoch = ^uint32(0)
	l.Pin(1)
	assert.True(t, l.Pinned(1))

	l.ReleasePins()
	assert.Equal(t, uint32(1), l.epoch)
	assert.False(t, l.Pinned(1), "stale pins are cleared on wrap")
}

func BenchmarkEncoderLookup_AddOrTouch(b *testing.B) {
	keys := make([]string, 1024)
	for i := range keys {
		keys[i] = fmt.Sprintf("http://example.org/%d", i)
	}
	l := NewEncoderLookup(256)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		l.AddOrTouch(keys[i%len(keys)])
	}
}
