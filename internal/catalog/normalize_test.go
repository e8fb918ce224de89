package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderKey(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"ISBN", FieldISBN},
		{"  Titulo  ", FieldTitulo},
		{"Numero Paginas", FieldNumeroPaginas},
		{"numero_paginas", FieldNumeroPaginas},
		{"Número Páginas", FieldNumeroPaginas},
		{"Título", FieldTitulo},
		{"País Edición", FieldPaisEdicion},
		{"Descuento Distribuidor", FieldDescuentoDistribuidor},
		{"Foo Bar", "foo_bar"},
		{"Foo   Bar\tBaz", "foo_bar_baz"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, HeaderKey(tt.header))
		})
	}
}

func TestNormalize(t *testing.T) {
	raw := RawRow{
		{Header: "Titulo", Value: Text("Rayuela")},
		{Header: "Numero Paginas", Value: Number(600)},
		{Header: "Foo Bar", Value: Text(" x ")},
		{Header: "Editorial", Value: Empty()},
	}

	row := Normalize(raw, 1)

	assert.Equal(t, 2, row.Line)
	assert.Equal(t, Text("Rayuela"), row.Titulo)
	assert.Equal(t, Number(600), row.NumeroPaginas)
	assert.True(t, row.Editorial.IsEmpty())
	assert.Equal(t, Text(" x "), row.Get("foo_bar"), "values pass through unchanged")
}

func TestNormalize_DuplicateHeadersLastWins(t *testing.T) {
	raw := RawRow{
		{Header: "titulo", Value: Text("first")},
		{Header: "Título", Value: Text("second")},
	}
	row := Normalize(raw, 3)
	assert.Equal(t, "second", row.Titulo.String())
	assert.Equal(t, 4, row.Line)
}

func TestNormalizeAll(t *testing.T) {
	raws := []RawRow{
		{{Header: "titulo", Value: Text("a")}},
		{{Header: "titulo", Value: Text("b")}},
		{{Header: "titulo", Value: Text("c")}},
	}

	rows, err := NormalizeAll(raws)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for i, r := range rows {
		assert.Equal(t, i+2, r.Line)
	}
}

func TestNormalizeAll_EmptySheet(t *testing.T) {
	rows, err := NormalizeAll(nil)
	assert.ErrorIs(t, err, ErrEmptySheet)
	assert.Nil(t, rows)
}
