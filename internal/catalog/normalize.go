package catalog

import (
	"errors"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrEmptySheet is returned when a workbook sheet has no data rows.
var ErrEmptySheet = errors.New("empty sheet: no data rows below the header")

// HeaderOffset is the number of header rows above the first data row.
const HeaderOffset = 1

// RawCell is one header/value pair as read from the sheet.
type RawCell struct {
	Header string
	Value  Cell
}

// RawRow is one spreadsheet line in column order.
type RawRow []RawCell

// headerSynonyms maps every accepted header spelling (lowercase) to its
// canonical key. Both "spaced" and "underscored" spellings are listed.
var headerSynonyms = map[string]string{
	"isbn":                   FieldISBN,
	"ean":                    FieldEAN,
	"editorial":              FieldEditorial,
	"titulo":                 FieldTitulo,
	"subtitulo":              FieldSubtitulo,
	"autor":                  FieldAutor,
	"autor prologo":          FieldAutorPrologo,
	"autor_prologo":          FieldAutorPrologo,
	"traductor":              FieldTraductor,
	"ilustrador":             FieldIlustrador,
	"tipo tapa":              FieldTipoTapa,
	"tipo_tapa":              FieldTipoTapa,
	"numero paginas":         FieldNumeroPaginas,
	"numero_paginas":         FieldNumeroPaginas,
	"alto cm":                FieldAltoCm,
	"alto_cm":                FieldAltoCm,
	"ancho cm":               FieldAnchoCm,
	"ancho_cm":               FieldAnchoCm,
	"grosor cm":              FieldGrosorCm,
	"grosor_cm":              FieldGrosorCm,
	"peso gr":                FieldPesoGr,
	"peso_gr":                FieldPesoGr,
	"idioma original":        FieldIdiomaOriginal,
	"idioma_original":        FieldIdiomaOriginal,
	"numero edicion":         FieldNumeroEdicion,
	"numero_edicion":         FieldNumeroEdicion,
	"fecha edicion":          FieldFechaEdicion,
	"fecha_edicion":          FieldFechaEdicion,
	"pais edicion":           FieldPaisEdicion,
	"pais_edicion":           FieldPaisEdicion,
	"numero impresion":       FieldNumeroImpresion,
	"numero_impresion":       FieldNumeroImpresion,
	"tematica":               FieldTematica,
	"precio":                 FieldPrecio,
	"moneda":                 FieldMoneda,
	"descuento distribuidor": FieldDescuentoDistribuidor,
	"descuento_distribuidor": FieldDescuentoDistribuidor,
	"resumen libro":          FieldResumenLibro,
	"resumen_libro":          FieldResumenLibro,
	"rango etario":           FieldRangoEtario,
	"rango_etario":           FieldRangoEtario,
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// HeaderKey maps a spreadsheet header to its canonical field key.
//
// Lookup is case-insensitive and also tolerates accents ("Número Páginas").
// Headers outside the dictionary fall back to their lowercase form with
// whitespace runs replaced by underscores.
func HeaderKey(header string) string {
	key := strings.ToLower(strings.TrimSpace(header))
	if mapped, ok := headerSynonyms[key]; ok {
		return mapped
	}
	if mapped, ok := headerSynonyms[foldAccents(key)]; ok {
		return mapped
	}
	return whitespaceRun.ReplaceAllString(key, "_")
}

// foldAccents removes combining marks after canonical decomposition.
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Normalize renames the headers of one raw row to canonical keys.
// position is the 1-based index among data rows; the line tag accounts for
// the header row so the first data row is reported as line 2.
// Values pass through unchanged.
func Normalize(raw RawRow, position int) Row {
	row := Row{Line: position + HeaderOffset}
	for _, c := range raw {
		row.Set(HeaderKey(c.Header), c.Value)
	}
	return row
}

// NormalizeAll normalizes every data row of a sheet. A sheet without data
// rows is a structural error, not a per-row one.
func NormalizeAll(raws []RawRow) ([]Row, error) {
	if len(raws) == 0 {
		return nil, ErrEmptySheet
	}
	rows := make([]Row, len(raws))
	for i, raw := range raws {
		rows[i] = Normalize(raw, i+1)
	}
	return rows, nil
}
