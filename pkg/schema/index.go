package schema

// Entry locates one field inside a structure.
type Entry struct {
	Field Field
	// Path is the dotted answer path, "group.child" for nested fields.
	Path string
	// Section is the id of the section holding the field.
	Section string
	// Parent is the id of the enclosing nested group, empty at top level.
	Parent string
}

// Index maps field ids and answer paths to their definitions. Build it once
// per structure with NewIndex.
type Index struct {
	byID   map[string]Entry
	byPath map[string]Entry
	order  []string
}

// NewIndex checks the structure and indexes every field, nested ones
// included, in render order.
func NewIndex(s Structure) (*Index, error) {
	if err := Check(s); err != nil {
		return nil, err
	}
	idx := &Index{byID: map[string]Entry{}, byPath: map[string]Entry{}}
	for _, section := range s.Sections {
		idx.add(section.ID, "", "", section.Fields)
	}
	return idx, nil
}

func (idx *Index) add(section, parent, prefix string, fields []Field) {
	for _, field := range fields {
		path := field.ID
		if prefix != "" {
			path = prefix + "." + field.ID
		}
		entry := Entry{Field: field, Path: path, Section: section, Parent: parent}
		idx.byID[field.ID] = entry
		idx.byPath[path] = entry
		idx.order = append(idx.order, path)
		if children := field.Children(); children != nil {
			idx.add(section, field.ID, path, children)
		}
	}
}

// Lookup returns the entry for a field id.
func (idx *Index) Lookup(id string) (Entry, bool) {
	if idx == nil {
		return Entry{}, false
	}
	e, ok := idx.byID[id]
	return e, ok
}

// At returns the entry for a dotted answer path.
func (idx *Index) At(path string) (Entry, bool) {
	if idx == nil {
		return Entry{}, false
	}
	e, ok := idx.byPath[path]
	return e, ok
}

// Paths lists every answer path in render order.
func (idx *Index) Paths() []string {
	if idx == nil {
		return nil
	}
	return append([]string(nil), idx.order...)
}

// Len reports the number of indexed fields.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.order)
}
