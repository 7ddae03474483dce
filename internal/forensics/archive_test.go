package forensics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawan/claimlens/internal/phash"
)

func TestArchive_NearestEmptyArchive(t *testing.T) {
	a := newArchive()

	_, _, ok := a.nearest(phash.Fingerprint(0xABCD))

	assert.False(t, ok)
	assert.Equal(t, 0, a.size())
}

func TestArchive_ScanBeforeInsert(t *testing.T) {
	a := newArchive()
	fp := phash.Fingerprint(0xFF00FF00FF00FF00)

	// The document being analyzed is not yet in the archive, so it cannot
	// be its own nearest neighbor.
	_, _, ok := a.nearest(fp)
	assert.False(t, ok)

	a.insert("first.png", fp)

	best, d, ok := a.nearest(fp)
	require.True(t, ok)
	assert.Equal(t, 0, d)
	assert.Equal(t, "first.png", best.name)
}

func TestArchive_NearestPicksMinimum(t *testing.T) {
	a := newArchive()
	a.insert("far.png", phash.Fingerprint(0))
	a.insert("near.png", phash.Fingerprint(0b0111))

	best, d, ok := a.nearest(phash.Fingerprint(0b0011))

	require.True(t, ok)
	assert.Equal(t, "near.png", best.name)
	assert.Equal(t, 1, d)
}

func TestArchive_TieBreakEarliestInserted(t *testing.T) {
	a := newArchive()
	// Both entries are exactly one bit away from the probe.
	a.insert("older.png", phash.Fingerprint(0b01))
	a.insert("newer.png", phash.Fingerprint(0b10))

	best, d, ok := a.nearest(phash.Fingerprint(0b00))

	require.True(t, ok)
	assert.Equal(t, 1, d)
	assert.Equal(t, "older.png", best.name, "earliest-inserted entry wins ties")
}

func TestArchive_InsertGeneratesDistinctIDs(t *testing.T) {
	a := newArchive()
	id1 := a.insert("claim.png", phash.Fingerprint(1))
	id2 := a.insert("claim.png", phash.Fingerprint(1))

	assert.NotEqual(t, id1, id2, "same basename must not collide in the archive")
	assert.Equal(t, 2, a.size())
}

func TestArchive_DigestLastWriterWins(t *testing.T) {
	a := newArchive()

	_, hit := a.lookupDigest("d1")
	assert.False(t, hit)

	a.upsertDigest("d1", "first.pdf")
	a.upsertDigest("d1", "second.pdf")

	name, hit := a.lookupDigest("d1")
	require.True(t, hit)
	assert.Equal(t, "second.pdf", name, "only the latest submitter is retained")
}
