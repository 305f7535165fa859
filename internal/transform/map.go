package transform

// Mappable maps positions through document changes.
type Mappable interface {
	// Map maps pos. assoc decides which side a position at an insertion
	// point sticks to: negative keeps it before the inserted content.
	Map(pos, assoc int) int
	// MapResult maps pos and reports whether the content around it was
	// deleted.
	MapResult(pos, assoc int) MapResult
}

// MapResult is the outcome of mapping a position.
type MapResult struct {
	Pos     int
	Deleted bool
}

// StepMap records the ranges a single step replaced. Ranges are stored as
// (start, oldSize, newSize) triples in document order.
type StepMap struct {
	ranges   []int
	inverted bool
}

// EmptyMap maps every position to itself.
var EmptyMap = &StepMap{}

// NewStepMap creates a step map from (start, oldSize, newSize) triples.
func NewStepMap(ranges ...int) *StepMap {
	if len(ranges) == 0 {
		return EmptyMap
	}
	return &StepMap{ranges: ranges}
}

// Map implements Mappable.
func (m *StepMap) Map(pos, assoc int) int {
	return m.MapResult(pos, assoc).Pos
}

// MapResult implements Mappable.
func (m *StepMap) MapResult(pos, assoc int) MapResult {
	diff := 0
	oldIndex, newIndex := 1, 2
	if m.inverted {
		oldIndex, newIndex = 2, 1
	}
	for i := 0; i+2 < len(m.ranges); i += 3 {
		start := m.ranges[i]
		if m.inverted {
			start -= diff
		}
		if start > pos {
			break
		}
		oldSize, newSize := m.ranges[i+oldIndex], m.ranges[i+newIndex]
		end := start + oldSize
		if pos <= end {
			side := assoc
			if oldSize > 0 {
				switch pos {
				case start:
					side = -1
				case end:
					side = 1
				}
			}
			result := start + diff
			if side >= 0 {
				result += newSize
			}
			deleted := pos != end
			if assoc < 0 {
				deleted = pos != start
			}
			return MapResult{Pos: result, Deleted: deleted}
		}
		diff += newSize - oldSize
	}
	return MapResult{Pos: pos + diff}
}

// Invert returns the map of the inverse change.
func (m *StepMap) Invert() *StepMap {
	return &StepMap{ranges: m.ranges, inverted: !m.inverted}
}

// ForEach calls fn for every changed range with its old and new extent.
func (m *StepMap) ForEach(fn func(oldStart, oldEnd, newStart, newEnd int)) {
	oldIndex, newIndex := 1, 2
	if m.inverted {
		oldIndex, newIndex = 2, 1
	}
	diff := 0
	for i := 0; i+2 < len(m.ranges); i += 3 {
		start := m.ranges[i]
		oldStart := start
		if m.inverted {
			oldStart -= diff
		}
		newStart := start
		if !m.inverted {
			newStart += diff
		}
		oldSize, newSize := m.ranges[i+oldIndex], m.ranges[i+newIndex]
		fn(oldStart, oldStart+oldSize, newStart, newStart+newSize)
		diff += newSize - oldSize
	}
}

// Mapping is a sequence of step maps applied in order.
type Mapping struct {
	maps []*StepMap
}

// NewMapping creates a mapping from step maps.
func NewMapping(maps ...*StepMap) *Mapping {
	return &Mapping{maps: maps}
}

// Maps returns the step maps in order.
func (m *Mapping) Maps() []*StepMap { return m.maps }

// AppendMap adds a step map to the end of the mapping.
func (m *Mapping) AppendMap(sm *StepMap) {
	m.maps = append(m.maps, sm)
}

// Slice returns a mapping of the maps from index from onwards.
func (m *Mapping) Slice(from int) *Mapping {
	return &Mapping{maps: m.maps[from:]}
}

// Map implements Mappable.
func (m *Mapping) Map(pos, assoc int) int {
	for _, sm := range m.maps {
		pos = sm.Map(pos, assoc)
	}
	return pos
}

// MapResult implements Mappable.
func (m *Mapping) MapResult(pos, assoc int) MapResult {
	deleted := false
	for _, sm := range m.maps {
		r := sm.MapResult(pos, assoc)
		pos = r.Pos
		deleted = deleted || r.Deleted
	}
	return MapResult{Pos: pos, Deleted: deleted}
}
