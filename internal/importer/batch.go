package importer

import "github.com/JonMunkholm/bookimport/internal/catalog"

// Batch is the single slot holding the rows of the current valid file.
// It is not safe for concurrent use; the Pipeline guards it.
type Batch struct {
	rows []catalog.Row
}

// Set replaces the slot content.
func (b *Batch) Set(rows []catalog.Row) {
	b.rows = rows
}

// Clear empties the slot.
func (b *Batch) Clear() {
	b.rows = nil
}

// Ready reports whether the slot holds rows.
func (b *Batch) Ready() bool {
	return len(b.rows) > 0
}

// Len returns the number of rows held.
func (b *Batch) Len() int {
	return len(b.rows)
}

// Rows returns a copy of the rows with their line tags stripped, ready to
// be sent to the server.
func (b *Batch) Rows() []catalog.Row {
	out := make([]catalog.Row, len(b.rows))
	for i, r := range b.rows {
		r.Line = 0
		out[i] = r
	}
	return out
}
