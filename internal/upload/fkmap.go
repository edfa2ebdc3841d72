package upload

// IDMap tracks the generated ids of a parent table during a multi-table
// upload so child rows can resolve their foreign keys. Keys are the staging
// helper values (product_index, rate_index) or stringified row positions.
type IDMap struct {
	ids      map[string]int64
	first    int64
	hasFirst bool
}

// NewIDMap returns an empty IDMap.
func NewIDMap() *IDMap {
	return &IDMap{ids: map[string]int64{}}
}

// Put records the id under key. The first id ever recorded also becomes the
// final fallback for Resolve.
func (m *IDMap) Put(key string, id int64) {
	if key != "" {
		m.ids[key] = id
	}
	if !m.hasFirst {
		m.first = id
		m.hasFirst = true
	}
}

// Len reports how many keys are mapped.
func (m *IDMap) Len() int { return len(m.ids) }

// Resolve tries the candidate keys in order, then the literal "default" key,
// then falls back to the first recorded id. It reports false only when the
// map is empty.
func (m *IDMap) Resolve(keys ...string) (int64, bool) {
	for _, k := range keys {
		if k == "" {
			continue
		}
		if id, ok := m.ids[k]; ok {
			return id, true
		}
	}
	if id, ok := m.ids["default"]; ok {
		return id, true
	}
	if m.hasFirst {
		return m.first, true
	}
	return 0, false
}
