package access

import (
	"encoding/binary"
	"fmt"

	"github.com/kanari-db/minirel/common"
)

// Page header layout:
//
//	[0:4)   next page id (int32, common.InvalidPageID if none)
//	[4:8)   slot count (int32)
//	[8:12)  free space pointer (int32): the lowest byte offset currently
//	        occupied by record data; record bytes are packed backward from
//	        the end of the page.
//
// Slot directory starts at byte 12, one 8-byte entry per slot:
//
//	[offset int32][length int32]
//
// A tombstoned (deleted) slot has offset == -1, length == 0.
const (
	headerSize    = 12
	slotEntrySize = 8
	tombstone     = -1
)

func pageNextPageID(p []byte) int32     { return int32(binary.LittleEndian.Uint32(p[0:4])) }
func setPageNextPageID(p []byte, v int32) {
	binary.LittleEndian.PutUint32(p[0:4], uint32(v))
}

func pageSlotCount(p []byte) int32 { return int32(binary.LittleEndian.Uint32(p[4:8])) }
func setPageSlotCount(p []byte, v int32) {
	binary.LittleEndian.PutUint32(p[4:8], uint32(v))
}

func pageFreeSpacePtr(p []byte) int32 { return int32(binary.LittleEndian.Uint32(p[8:12])) }
func setPageFreeSpacePtr(p []byte, v int32) {
	binary.LittleEndian.PutUint32(p[8:12], uint32(v))
}

// InitPage resets a freshly allocated page to an empty slotted page.
func InitPage(p []byte) {
	setPageNextPageID(p, common.InvalidPageID)
	setPageSlotCount(p, 0)
	setPageFreeSpacePtr(p, int32(len(p)))
}

func NextPageID(p []byte) int32          { return pageNextPageID(p) }
func SetNextPageID(p []byte, id int32)   { setPageNextPageID(p, id) }

func slotOffset(i int32) int { return headerSize + int(i)*slotEntrySize }

func readSlot(p []byte, i int32) (offset, length int32) {
	base := slotOffset(i)
	offset = int32(binary.LittleEndian.Uint32(p[base : base+4]))
	length = int32(binary.LittleEndian.Uint32(p[base+4 : base+8]))
	return
}

func writeSlot(p []byte, i int32, offset, length int32) {
	base := slotOffset(i)
	binary.LittleEndian.PutUint32(p[base:base+4], uint32(offset))
	binary.LittleEndian.PutUint32(p[base+4:base+8], uint32(length))
}

// freeSpace returns how many unused bytes remain between the slot
// directory and the packed record data.
func freeSpace(p []byte) int32 {
	slots := pageSlotCount(p)
	dirEnd := int32(headerSize) + slots*slotEntrySize
	return pageFreeSpacePtr(p) - dirEnd
}

// InsertSlot writes data into the page's free area and returns its slot
// number, reusing the first tombstoned directory entry it finds (of any
// prior size) so repeated insert/delete cycles don't leak directory
// entries.
func InsertSlot(p []byte, data []byte) (int32, error) {
	slots := pageSlotCount(p)
	for i := int32(0); i < slots; i++ {
		offset, length := readSlot(p, i)
		if offset == tombstone && length == 0 {
			if freeSpace(p) < int32(len(data)) {
				return 0, fmt.Errorf("access: page full")
			}
			newFree := pageFreeSpacePtr(p) - int32(len(data))
			copy(p[newFree:newFree+int32(len(data))], data)
			setPageFreeSpacePtr(p, newFree)
			writeSlot(p, i, newFree, int32(len(data)))
			return i, nil
		}
	}

	if freeSpace(p) < int32(len(data))+slotEntrySize {
		return 0, fmt.Errorf("access: page full")
	}
	newFree := pageFreeSpacePtr(p) - int32(len(data))
	copy(p[newFree:newFree+int32(len(data))], data)
	setPageFreeSpacePtr(p, newFree)
	writeSlot(p, slots, newFree, int32(len(data)))
	setPageSlotCount(p, slots+1)
	return slots, nil
}

// ReadSlot returns the bytes stored at slot i, or ok=false if the slot is
// tombstoned or out of range.
func ReadSlot(p []byte, i int32) (data []byte, ok bool) {
	if i < 0 || i >= pageSlotCount(p) {
		return nil, false
	}
	offset, length := readSlot(p, i)
	if offset == tombstone && length == 0 {
		return nil, false
	}
	return p[offset : offset+length], true
}

// DeleteSlot tombstones slot i. Its record bytes are not reclaimed: a later
// InsertSlot reuses the directory entry (whatever the new size) but writes
// the new bytes into the page's free area.
func DeleteSlot(p []byte, i int32) error {
	if i < 0 || i >= pageSlotCount(p) {
		return fmt.Errorf("access: slot %d out of range", i)
	}
	writeSlot(p, i, tombstone, 0)
	return nil
}

// UpdateSlot overwrites slot i's bytes in place. The new payload must be
// exactly the size of the old one -- every record manager row in this
// system has a fixed length per relation, so this never needs to move
// bytes within the page.
func UpdateSlot(p []byte, i int32, data []byte) error {
	if i < 0 || i >= pageSlotCount(p) {
		return fmt.Errorf("access: slot %d out of range", i)
	}
	offset, length := readSlot(p, i)
	if offset == tombstone && length == 0 {
		return fmt.Errorf("access: slot %d is deleted", i)
	}
	if int(length) != len(data) {
		return fmt.Errorf("access: update size mismatch: slot holds %d bytes, got %d", length, len(data))
	}
	copy(p[offset:offset+length], data)
	return nil
}

func SlotCount(p []byte) int32 { return pageSlotCount(p) }
