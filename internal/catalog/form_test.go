package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldTracker_BlurAndInput(t *testing.T) {
	tr := NewFieldTracker(nil)

	// Typing into an unmarked field does nothing.
	msg, rechecked := tr.Input(FieldPrecio, Text("-5"))
	assert.False(t, rechecked)
	assert.Empty(t, msg)
	assert.False(t, tr.Marked(FieldPrecio))

	msg, ok := tr.Blur(FieldPrecio, Text("-5"))
	assert.False(t, ok)
	assert.Equal(t, MsgPrecio, msg)
	assert.True(t, tr.Marked(FieldPrecio))

	msg, rechecked = tr.Input(FieldPrecio, Text("-"))
	assert.True(t, rechecked)
	assert.Equal(t, MsgPrecio, msg)
	assert.True(t, tr.Marked(FieldPrecio))

	msg, rechecked = tr.Input(FieldPrecio, Text("5"))
	assert.True(t, rechecked)
	assert.Empty(t, msg)
	assert.False(t, tr.Marked(FieldPrecio))
}

func TestFieldTracker_ISBNAlwaysStrict(t *testing.T) {
	tr := NewFieldTracker(NewBulkValidator(false))
	msg, ok := tr.Blur(FieldISBN, Text("0306406151"))
	assert.False(t, ok)
	assert.Equal(t, MsgISBN10, msg)
}

func TestFieldTracker_ValidateAll(t *testing.T) {
	tr := NewFieldTracker(nil)

	row := validRow()
	assert.Equal(t, "", tr.ValidateAll(row))
	assert.Empty(t, tr.Invalid())

	row.Titulo = Empty()
	row.Precio = Text("x")
	assert.Equal(t, FieldTitulo, tr.ValidateAll(row))
	assert.Equal(t, []FieldError{
		{Field: FieldTitulo, Message: MsgRequired},
		{Field: FieldPrecio, Message: MsgPrecio},
	}, tr.Invalid())

	row.Titulo = Text("Rayuela")
	assert.Equal(t, FieldPrecio, tr.ValidateAll(row))
	assert.False(t, tr.Marked(FieldTitulo))
}
