package snapshot

import "sort"

import "github.com/fxamacker/cbor/v2"

import "github.com/sirgallo/chamt/ctxvar"


//============================================= debug snapshot (§3 domain stack)


// Entry is one (variable name, value) pair captured out of a Context.
type Entry struct {
	Name  string `cbor:"name"`
	Value any    `cbor:"value"`
}

// Snapshot is a deterministic, ordered capture of a Context's bindings,
// suitable for golden-file tests or debug dumps. It is not a wire format for
// the trie itself — persisting a HAMT's internal node shape is out of scope,
// same as in spec.md's serialization non-goal.
type Snapshot struct {
	Entries []Entry `cbor:"entries"`
}

// Capture walks ctx and returns a Snapshot with entries sorted by variable
// name, so two snapshots of contexts holding the same bindings encode to
// identical bytes regardless of trie shape or insertion order.
func Capture(ctx *ctxvar.Context) (*Snapshot, error) {
	snap := &Snapshot{Entries: make([]Entry, 0, int(ctx.Len()))}

	items := ctx.Items()
	defer items.Release()

	for {
		entry, ok := items.Next()
		if !ok {
			break
		}

		v, ok := entry.Key.(*ctxvar.Variable)
		if !ok {
			continue
		}

		snap.Entries = append(snap.Entries, Entry{Name: v.Name(), Value: entry.Val})
	}

	sort.Slice(snap.Entries, func(i, j int) bool {
		return snap.Entries[i].Name < snap.Entries[j].Name
	})

	return snap, nil
}

// Marshal encodes snap as deterministic CBOR (map keys sorted, per RFC 8949
// §4.2.1 canonical ordering via cbor.CanonicalEncOptions).
func Marshal(snap *Snapshot) ([]byte, error) {
	opts := cbor.CanonicalEncOptions()
	mode, err := opts.EncMode()
	if err != nil {
		return nil, err
	}

	return mode.Marshal(snap)
}

// Unmarshal decodes a Snapshot previously produced by Marshal.
func Unmarshal(data []byte) (*Snapshot, error) {
	snap := &Snapshot{}
	if err := cbor.Unmarshal(data, snap); err != nil {
		return nil, err
	}

	return snap, nil
}
