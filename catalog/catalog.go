// Package catalog is the schema manager: it hands the executor per-relation
// metadata (RelCatEntry) and attribute descriptors (DataAttrInfo), and owns
// the two reserved relation names ("relcat", "attrcat") that the execution
// driver refuses to mutate directly.
package catalog

import (
	"fmt"

	deadlock "github.com/sasha-s/go-deadlock"

	"github.com/kanari-db/minirel/common"
	"github.com/kanari-db/minirel/storage/access"
	"github.com/kanari-db/minirel/storage/disk"
	"github.com/kanari-db/minirel/types"
)

// RelCatEntry is the per-relation row a real relcat table would hold.
type RelCatEntry struct {
	TupleLength uint32
	RecordCount int32
}

// DataAttrInfo describes one column of one relation. Immutable once handed
// back by GetDataAttrInfo -- callers must not mutate the slice they
// receive.
type DataAttrInfo struct {
	RelName       string
	AttrName      string
	Type          types.TypeID
	Size          uint32
	Offset        uint32
	DisplayLength uint32
	NotNull       bool
	// NullableIndex is -1 for NOTNULL attributes, otherwise the slot of
	// this attribute inside the relation's is_null array.
	NullableIndex int32
}

// AttrSpec is what a CREATE TABLE statement supplies for one column; the
// catalog computes Offset and NullableIndex from the order of the slice.
type AttrSpec struct {
	Name          string
	Type          types.TypeID
	DisplayLength uint32
	NotNull       bool
}

type relMeta struct {
	entry       RelCatEntry
	attrs       []DataAttrInfo
	firstPageID int32
}

// Manager is the in-memory schema store. It does not persist to disk on its
// own; storage/disk supplies the durable pages that record.Manager reads
// and writes, and Manager only tracks which page a relation's data starts
// on.
type Manager struct {
	mu        deadlock.Mutex
	disk      *disk.Manager
	relations map[string]*relMeta
}

func NewManager(dm *disk.Manager) *Manager {
	return &Manager{
		disk:      dm,
		relations: make(map[string]*relMeta),
	}
}

func (m *Manager) IsReserved(name string) bool {
	return name == common.RelCat || name == common.AttrCat
}

// CreateRelation registers a new relation, assigning each attribute a byte
// offset (attributes are packed back-to-back in declaration order) and, for
// nullable attributes, a NullableIndex in 0..k-1.
func (m *Manager) CreateRelation(name string, specs []AttrSpec) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.IsReserved(name) {
		return fmt.Errorf("catalog: %q is a reserved relation name", name)
	}
	if _, exists := m.relations[name]; exists {
		return fmt.Errorf("catalog: relation %q already exists", name)
	}

	attrs := make([]DataAttrInfo, len(specs))
	var offset uint32
	var nullableCount int32
	for i, s := range specs {
		size := s.Type.Size()
		if s.Type == types.String {
			size = s.DisplayLength + 1 // NUL terminator
		}
		nullableIndex := int32(-1)
		if !s.NotNull {
			nullableIndex = nullableCount
			nullableCount++
		}
		attrs[i] = DataAttrInfo{
			RelName:       name,
			AttrName:      s.Name,
			Type:          s.Type,
			Size:          size,
			Offset:        offset,
			DisplayLength: s.DisplayLength,
			NotNull:       s.NotNull,
			NullableIndex: nullableIndex,
		}
		offset += size
	}

	firstPageID, err := m.disk.AllocatePage()
	if err != nil {
		return err
	}
	initBuf := make([]byte, common.PageSize)
	access.InitPage(initBuf)
	if err := m.disk.WritePage(firstPageID, initBuf); err != nil {
		return err
	}

	m.relations[name] = &relMeta{
		entry:       RelCatEntry{TupleLength: offset, RecordCount: 0},
		attrs:       attrs,
		firstPageID: firstPageID,
	}
	return nil
}

func (m *Manager) GetRelEntry(name string) (RelCatEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rel, ok := m.relations[name]
	if !ok {
		return RelCatEntry{}, fmt.Errorf("catalog: no such relation %q", name)
	}
	return rel.entry, nil
}

func (m *Manager) UpdateRelEntry(name string, entry RelCatEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rel, ok := m.relations[name]
	if !ok {
		return fmt.Errorf("catalog: no such relation %q", name)
	}
	rel.entry = entry
	return nil
}

// GetDataAttrInfo returns a relation's attribute descriptors, optionally
// sorted by storage offset (used by INSERT, which must write values in
// physical column order).
func (m *Manager) GetDataAttrInfo(name string, sortByOffset bool) ([]DataAttrInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rel, ok := m.relations[name]
	if !ok {
		return nil, fmt.Errorf("catalog: no such relation %q", name)
	}
	out := make([]DataAttrInfo, len(rel.attrs))
	copy(out, rel.attrs)
	if sortByOffset {
		for i := 1; i < len(out); i++ {
			for j := i; j > 0 && out[j].Offset < out[j-1].Offset; j-- {
				out[j], out[j-1] = out[j-1], out[j]
			}
		}
	}
	return out, nil
}

// NullableCount returns how many attributes of the relation are nullable --
// the length every tuple's is_null array must have.
func (m *Manager) NullableCount(name string) (int, error) {
	attrs, err := m.GetDataAttrInfo(name, false)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, a := range attrs {
		if !a.NotNull {
			n++
		}
	}
	return n, nil
}

func (m *Manager) FirstPageID(name string) (int32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rel, ok := m.relations[name]
	if !ok {
		return common.InvalidPageID, fmt.Errorf("catalog: no such relation %q", name)
	}
	return rel.firstPageID, nil
}

func (m *Manager) SetFirstPageID(name string, pageID int32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rel, ok := m.relations[name]
	if !ok {
		return fmt.Errorf("catalog: no such relation %q", name)
	}
	rel.firstPageID = pageID
	return nil
}
