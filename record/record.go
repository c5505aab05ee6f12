// Package record is the record manager the execution driver sits on top
// of: it opens a relation's file by its first page id, returns tuples via a physical-
// order scan, and exposes InsertRec/DeleteRec/UpdateRec, built on
// storage/disk's pages and storage/access's slotted-page codec.
package record

import (
	"errors"
	"fmt"

	"github.com/kanari-db/minirel/common"
	"github.com/kanari-db/minirel/storage/access"
	"github.com/kanari-db/minirel/storage/disk"
)

// ErrEOF is returned by GetNextRec when a scan has no more records. It
// never escapes the execution driver.
var ErrEOF = errors.New("RM_EOF")

// Record is one tuple as handed back by a scan: its raw bytes, its
// null-bit array, and the RID it was read from. The byte slices are
// borrowed -- valid only until the next GetNextRec call on the same scan.
type Record struct {
	Data   []byte
	IsNull []bool
	Rid    access.RID
}

// Manager opens and closes relation files.
type Manager struct {
	disk *disk.Manager
}

func NewManager(dm *disk.Manager) *Manager {
	return &Manager{disk: dm}
}

// FileHandle is an open relation file: fixed tuple length, fixed nullable
// count, and the page chain holding its rows.
type FileHandle struct {
	mgr           *Manager
	firstPageID   int32
	tupleLength   uint32
	nullableCount int
}

func (m *Manager) OpenFile(firstPageID int32, tupleLength uint32, nullableCount int) (*FileHandle, error) {
	if firstPageID == common.InvalidPageID {
		return nil, fmt.Errorf("record: invalid first page id")
	}
	return &FileHandle{
		mgr:           m,
		firstPageID:   firstPageID,
		tupleLength:   tupleLength,
		nullableCount: nullableCount,
	}, nil
}

func (m *Manager) CloseFile(fh *FileHandle) error {
	return nil
}

func (fh *FileHandle) recordLen() int {
	return int(fh.tupleLength) + fh.nullableCount
}

func (fh *FileHandle) encode(data []byte, isNull []bool) []byte {
	buf := make([]byte, fh.recordLen())
	copy(buf, data)
	for i, v := range isNull {
		if v {
			buf[int(fh.tupleLength)+i] = 1
		}
	}
	return buf
}

func (fh *FileHandle) decode(raw []byte) ([]byte, []bool) {
	data := raw[:fh.tupleLength]
	isNull := make([]bool, fh.nullableCount)
	for i := range isNull {
		isNull[i] = raw[int(fh.tupleLength)+i] != 0
	}
	return data, isNull
}

// InsertRec appends a new tuple, allocating a fresh page if the last page
// in the chain is full.
func (fh *FileHandle) InsertRec(data []byte, isNull []bool) (access.RID, error) {
	raw := fh.encode(data, isNull)

	pageID := fh.firstPageID
	buf := make([]byte, common.PageSize)
	for {
		if err := fh.mgr.disk.ReadPage(pageID, buf); err != nil {
			return access.RID{}, err
		}
		if slot, err := access.InsertSlot(buf, raw); err == nil {
			if err := fh.mgr.disk.WritePage(pageID, buf); err != nil {
				return access.RID{}, err
			}
			return access.RID{PageID: pageID, SlotNum: uint16(slot)}, nil
		}

		next := access.NextPageID(buf)
		if next == common.InvalidPageID {
			newPageID, err := fh.mgr.disk.AllocatePage()
			if err != nil {
				return access.RID{}, err
			}
			newBuf := make([]byte, common.PageSize)
			access.InitPage(newBuf)
			access.SetNextPageID(buf, newPageID)
			if err := fh.mgr.disk.WritePage(pageID, buf); err != nil {
				return access.RID{}, err
			}
			if err := fh.mgr.disk.WritePage(newPageID, newBuf); err != nil {
				return access.RID{}, err
			}
			next = newPageID
		}
		pageID = next
	}
}

func (fh *FileHandle) DeleteRec(rid access.RID) error {
	buf := make([]byte, common.PageSize)
	if err := fh.mgr.disk.ReadPage(rid.PageID, buf); err != nil {
		return err
	}
	if err := access.DeleteSlot(buf, int32(rid.SlotNum)); err != nil {
		return err
	}
	return fh.mgr.disk.WritePage(rid.PageID, buf)
}

func (fh *FileHandle) UpdateRec(rec Record) error {
	raw := fh.encode(rec.Data, rec.IsNull)
	buf := make([]byte, common.PageSize)
	if err := fh.mgr.disk.ReadPage(rec.Rid.PageID, buf); err != nil {
		return err
	}
	if err := access.UpdateSlot(buf, int32(rec.Rid.SlotNum), raw); err != nil {
		return err
	}
	return fh.mgr.disk.WritePage(rec.Rid.PageID, buf)
}

// FileScan is a cursor over every live record of a relation, in physical
// page/slot order. All predicate evaluation happens above the record
// layer; a scan itself applies no filter.
type FileScan struct {
	fh      *FileHandle
	pageID  int32
	slot    int32
	buf     []byte
	started bool
}

func (fh *FileHandle) OpenScan() *FileScan {
	return &FileScan{fh: fh, pageID: fh.firstPageID, slot: 0, buf: make([]byte, common.PageSize)}
}

// GetNextRec advances the cursor and returns the next live record, or
// ErrEOF once every page in the chain has been exhausted.
func (s *FileScan) GetNextRec() (Record, error) {
	for {
		if s.pageID == common.InvalidPageID {
			return Record{}, ErrEOF
		}
		if !s.started {
			if err := s.fh.mgr.disk.ReadPage(s.pageID, s.buf); err != nil {
				return Record{}, err
			}
			s.started = true
		}

		count := access.SlotCount(s.buf)
		for s.slot < count {
			raw, ok := access.ReadSlot(s.buf, s.slot)
			idx := s.slot
			s.slot++
			if !ok {
				continue
			}
			data, isNull := s.fh.decode(raw)
			return Record{Data: data, IsNull: isNull, Rid: access.RID{PageID: s.pageID, SlotNum: uint16(idx)}}, nil
		}

		s.pageID = access.NextPageID(s.buf)
		s.slot = 0
		s.started = false
	}
}

func (s *FileScan) CloseScan() error {
	return nil
}
