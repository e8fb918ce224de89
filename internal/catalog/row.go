// Package catalog defines book records as they arrive from a spreadsheet and
// the rules every record must satisfy before it can be sent to the catalog
// server.
package catalog

import (
	"bytes"
	"encoding/json"
	"sort"
)

// Canonical field keys.
const (
	FieldISBN                  = "isbn"
	FieldEAN                   = "ean"
	FieldEditorial             = "editorial"
	FieldTitulo                = "titulo"
	FieldSubtitulo             = "subtitulo"
	FieldAutor                 = "autor"
	FieldAutorPrologo          = "autor_prologo"
	FieldTraductor             = "traductor"
	FieldIlustrador            = "ilustrador"
	FieldTipoTapa              = "tipo_tapa"
	FieldNumeroPaginas         = "numero_paginas"
	FieldAltoCm                = "alto_cm"
	FieldAnchoCm               = "ancho_cm"
	FieldGrosorCm              = "grosor_cm"
	FieldPesoGr                = "peso_gr"
	FieldIdiomaOriginal        = "idioma_original"
	FieldNumeroEdicion         = "numero_edicion"
	FieldFechaEdicion          = "fecha_edicion"
	FieldPaisEdicion           = "pais_edicion"
	FieldNumeroImpresion       = "numero_impresion"
	FieldTematica              = "tematica"
	FieldPrecio                = "precio"
	FieldMoneda                = "moneda"
	FieldDescuentoDistribuidor = "descuento_distribuidor"
	FieldResumenLibro          = "resumen_libro"
	FieldRangoEtario           = "rango_etario"
)

// Row is one normalized book record.
//
// Every canonical key has its own field; headers outside the vocabulary are
// kept in Extra. Line is the spreadsheet row the record came from and is
// never serialized. A canonical key stored through Set is present even when
// its cell is blank; one that was never set is left out of the JSON form.
type Row struct {
	ISBN                  Cell
	EAN                   Cell
	Editorial             Cell
	Titulo                Cell
	Subtitulo             Cell
	Autor                 Cell
	AutorPrologo          Cell
	Traductor             Cell
	Ilustrador            Cell
	TipoTapa              Cell
	NumeroPaginas         Cell
	AltoCm                Cell
	AnchoCm               Cell
	GrosorCm              Cell
	PesoGr                Cell
	IdiomaOriginal        Cell
	NumeroEdicion         Cell
	FechaEdicion          Cell
	PaisEdicion           Cell
	NumeroImpresion       Cell
	Tematica              Cell
	Precio                Cell
	Moneda                Cell
	DescuentoDistribuidor Cell
	ResumenLibro          Cell
	RangoEtario           Cell

	Extra map[string]Cell
	Line  int

	// present has bit i set once fields[i] went through Set.
	present uint32
}

type fieldRef struct {
	key string
	ptr func(*Row) *Cell
}

// fields lists the canonical keys in display order.
var fields = []fieldRef{
	{FieldISBN, func(r *Row) *Cell { return &r.ISBN }},
	{FieldEAN, func(r *Row) *Cell { return &r.EAN }},
	{FieldEditorial, func(r *Row) *Cell { return &r.Editorial }},
	{FieldTitulo, func(r *Row) *Cell { return &r.Titulo }},
	{FieldSubtitulo, func(r *Row) *Cell { return &r.Subtitulo }},
	{FieldAutor, func(r *Row) *Cell { return &r.Autor }},
	{FieldAutorPrologo, func(r *Row) *Cell { return &r.AutorPrologo }},
	{FieldTraductor, func(r *Row) *Cell { return &r.Traductor }},
	{FieldIlustrador, func(r *Row) *Cell { return &r.Ilustrador }},
	{FieldTipoTapa, func(r *Row) *Cell { return &r.TipoTapa }},
	{FieldNumeroPaginas, func(r *Row) *Cell { return &r.NumeroPaginas }},
	{FieldAltoCm, func(r *Row) *Cell { return &r.AltoCm }},
	{FieldAnchoCm, func(r *Row) *Cell { return &r.AnchoCm }},
	{FieldGrosorCm, func(r *Row) *Cell { return &r.GrosorCm }},
	{FieldPesoGr, func(r *Row) *Cell { return &r.PesoGr }},
	{FieldIdiomaOriginal, func(r *Row) *Cell { return &r.IdiomaOriginal }},
	{FieldNumeroEdicion, func(r *Row) *Cell { return &r.NumeroEdicion }},
	{FieldFechaEdicion, func(r *Row) *Cell { return &r.FechaEdicion }},
	{FieldPaisEdicion, func(r *Row) *Cell { return &r.PaisEdicion }},
	{FieldNumeroImpresion, func(r *Row) *Cell { return &r.NumeroImpresion }},
	{FieldTematica, func(r *Row) *Cell { return &r.Tematica }},
	{FieldPrecio, func(r *Row) *Cell { return &r.Precio }},
	{FieldMoneda, func(r *Row) *Cell { return &r.Moneda }},
	{FieldDescuentoDistribuidor, func(r *Row) *Cell { return &r.DescuentoDistribuidor }},
	{FieldResumenLibro, func(r *Row) *Cell { return &r.ResumenLibro }},
	{FieldRangoEtario, func(r *Row) *Cell { return &r.RangoEtario }},
}

var fieldIndex = func() map[string]int {
	m := make(map[string]int, len(fields))
	for i, f := range fields {
		m[f.key] = i
	}
	return m
}()

// Keys returns the canonical field keys in display order.
func Keys() []string {
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.key
	}
	return keys
}

// IsCanonical reports whether key belongs to the fixed vocabulary.
func IsCanonical(key string) bool {
	_, ok := fieldIndex[key]
	return ok
}

// Get returns the value stored under key, canonical or extra.
func (r *Row) Get(key string) Cell {
	if i, ok := fieldIndex[key]; ok {
		return *fields[i].ptr(r)
	}
	return r.Extra[key]
}

// Has reports whether key was set on the row or holds a non-empty value.
func (r *Row) Has(key string) bool {
	if i, ok := fieldIndex[key]; ok {
		return r.present&(1<<i) != 0 || !fields[i].ptr(r).IsEmpty()
	}
	_, ok := r.Extra[key]
	return ok
}

// Set stores value under key. Unknown keys go to the Extra bag.
func (r *Row) Set(key string, value Cell) {
	if i, ok := fieldIndex[key]; ok {
		*fields[i].ptr(r) = value
		r.present |= 1 << i
		return
	}
	if r.Extra == nil {
		r.Extra = make(map[string]Cell)
	}
	r.Extra[key] = value
}

// MarshalJSON emits a flat object of the present canonical keys in display
// order followed by the extras in key order. Line is never written.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	write := func(key string, c Cell) error {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		k, _ := json.Marshal(key)
		buf.Write(k)
		buf.WriteByte(':')
		v, err := c.MarshalJSON()
		if err != nil {
			return err
		}
		buf.Write(v)
		return nil
	}

	for _, f := range fields {
		if !r.Has(f.key) {
			continue
		}
		if err := write(f.key, *f.ptr(&r)); err != nil {
			return nil, err
		}
	}

	extras := make([]string, 0, len(r.Extra))
	for k := range r.Extra {
		if !IsCanonical(k) {
			extras = append(extras, k)
		}
	}
	sort.Strings(extras)
	for _, k := range extras {
		if err := write(k, r.Extra[k]); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a flat object produced by MarshalJSON.
func (r *Row) UnmarshalJSON(data []byte) error {
	var raw map[string]Cell
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Row{}
	for k, v := range raw {
		r.Set(k, v)
	}
	return nil
}
