package trust

// Dictionary assigns dense, monotonically increasing uint64 indices to
// opaque string identifiers as they are first seen. It never reuses or
// reassigns an index once given.
type Dictionary struct {
	toIndex map[string]uint64
	toID    []string
}

// NewDictionary returns an empty dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{toIndex: make(map[string]uint64)}
}

// IndexFor returns id's dense index, assigning the next free index if id
// has not been seen before.
func (d *Dictionary) IndexFor(id string) uint64 {
	if idx, ok := d.toIndex[id]; ok {
		return idx
	}
	idx := uint64(len(d.toID))
	d.toIndex[id] = idx
	d.toID = append(d.toID, id)
	return idx
}

// Lookup returns the index already assigned to id, if any.
func (d *Dictionary) Lookup(id string) (uint64, bool) {
	idx, ok := d.toIndex[id]
	return idx, ok
}

// IDFor returns the string identifier for a previously assigned index.
func (d *Dictionary) IDFor(index uint64) (string, bool) {
	if index >= uint64(len(d.toID)) {
		return "", false
	}
	return d.toID[index], true
}

// Count returns the number of distinct identifiers assigned so far.
func (d *Dictionary) Count() int {
	return len(d.toID)
}
