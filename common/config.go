package common

// EnableDebug gates debug-only invariant checks, such as the Select
// driver's assertion that the visited-tuple count equals the product of
// relation sizes.
var EnableDebug bool = false

const (
	// InvalidPageID marks an unallocated or absent page reference.
	InvalidPageID = -1
	// PageSize is the fixed size in bytes of a data page.
	PageSize = 4096
	// MaxPrintString is the longest field value the tabular printer will
	// render before truncating with "...".
	MaxPrintString = 256
	// RelCat and AttrCat are the reserved system relation names that
	// INSERT, DELETE and UPDATE refuse to mutate directly.
	RelCat  = "relcat"
	AttrCat = "attrcat"
)
