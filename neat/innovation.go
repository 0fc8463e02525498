package neat

// InnovationRegistry allocates historical markings. The same (source, target)
// pair always maps to the same innovation number for the lifetime of the
// registry, which lets unrelated genomes be aligned gene by gene.
//
// One registry serves one run. It is not safe for concurrent use.
type InnovationRegistry struct {
	max         int
	innovations map[ConnectionKey]int
}

// NewInnovationRegistry creates an empty registry; the first number handed out is 1.
func NewInnovationRegistry() *InnovationRegistry {
	return &InnovationRegistry{innovations: make(map[ConnectionKey]int)}
}

// Get returns the innovation number for the pair, allocating max+1 if the pair
// has never been seen.
func (r *InnovationRegistry) Get(source, target int) int {
	key := ConnectionKey{InNodeID: source, OutNodeID: target}
	if n, ok := r.innovations[key]; ok {
		return n
	}
	r.max++
	r.innovations[key] = r.max
	return r.max
}

// Max returns the highest innovation number allocated so far.
func (r *InnovationRegistry) Max() int {
	return r.max
}

// Len returns the number of distinct pairs recorded.
func (r *InnovationRegistry) Len() int {
	return len(r.innovations)
}

// InnovationRecord is the exported form of a single registry entry.
type InnovationRecord struct {
	Key        ConnectionKey
	Innovation int
}

// Snapshot exports the registry state for checkpointing.
func (r *InnovationRegistry) Snapshot() []InnovationRecord {
	records := make([]InnovationRecord, 0, len(r.innovations))
	for k, n := range r.innovations {
		records = append(records, InnovationRecord{Key: k, Innovation: n})
	}
	return records
}

// RestoreInnovationRegistry rebuilds a registry from a snapshot.
func RestoreInnovationRegistry(records []InnovationRecord) *InnovationRegistry {
	r := NewInnovationRegistry()
	for _, rec := range records {
		r.innovations[rec.Key] = rec.Innovation
		if rec.Innovation > r.max {
			r.max = rec.Innovation
		}
	}
	return r
}
