// Package access implements the slotted-page record format the record
// manager stores tuples in: a small fixed header, a slot directory growing
// forward from it, and record bytes packed backward from the end of the
// page.
package access

import "fmt"

// RID identifies one physical record: the page it lives on and its slot
// within that page's directory.
type RID struct {
	PageID  int32
	SlotNum uint16
}

func (r RID) String() string {
	return fmt.Sprintf("(%d,%d)", r.PageID, r.SlotNum)
}
