package domain

// Cursor is an opaque position marker handed back to callers so they can
// resume a listing strictly after a previously seen message. Internally it
// is the time-ordered storage key suffix of an edge, but callers must not
// depend on its shape.
type Cursor = string

// Edge pairs a message with the cursor that resumes listing after it.
type Edge struct {
	Node   Message `json:"node"`
	Cursor Cursor  `json:"cursor"`
}

// PageInfo describes whether more pages exist beyond the returned edges.
// EndCursor is empty when Edges is empty; it is never an error to ask for
// a page beyond the last one.
type PageInfo struct {
	HasNextPage bool   `json:"has_next_page"`
	EndCursor   Cursor `json:"end_cursor"`
}

// Connection is one page of messages ordered by creation time descending.
type Connection struct {
	Edges    []Edge   `json:"edges"`
	PageInfo PageInfo `json:"page_info"`
}
