package forensics

import (
	"github.com/google/uuid"

	"github.com/pawan/claimlens/internal/phash"
)

// archiveEntry is one fingerprinted prior submission. Entries are keyed by a
// fresh UUID so two documents sharing a filename never collide.
type archiveEntry struct {
	id   uuid.UUID
	name string
	fp   phash.Fingerprint
}

// archive is the in-memory reference set of prior submissions: a digest map
// with last-writer-wins semantics and an append-only, insertion-ordered
// fingerprint list. It is owned by the Engine and must only be touched while
// holding the engine mutex.
type archive struct {
	digests map[string]string // sha256 hex -> most recent submitter
	entries []archiveEntry
}

func newArchive() *archive {
	return &archive{digests: make(map[string]string)}
}

// lookupDigest returns the display name recorded for a digest, if any.
func (a *archive) lookupDigest(digest string) (string, bool) {
	name, ok := a.digests[digest]
	return name, ok
}

// upsertDigest records the current submitter as the latest owner of the
// digest, replacing any previous one.
func (a *archive) upsertDigest(digest, name string) {
	a.digests[digest] = name
}

// nearest scans all entries and returns the one with the minimum Hamming
// distance to fp. Earlier-inserted entries win ties, which keeps the chosen
// match deterministic. ok is false when the archive is empty.
func (a *archive) nearest(fp phash.Fingerprint) (best archiveEntry, distance int, ok bool) {
	distance = phash.Bits + 1
	for _, entry := range a.entries {
		if d := fp.Distance(entry.fp); d < distance {
			best = entry
			distance = d
			ok = true
		}
	}
	if !ok {
		distance = 0
	}
	return best, distance, ok
}

// insert appends a new fingerprint under a freshly generated internal id.
// Callers must run nearest before insert so a document never matches itself.
func (a *archive) insert(name string, fp phash.Fingerprint) uuid.UUID {
	id := uuid.New()
	a.entries = append(a.entries, archiveEntry{id: id, name: name, fp: fp})
	return id
}

// size is the fingerprint-archive count.
func (a *archive) size() int {
	return len(a.entries)
}
