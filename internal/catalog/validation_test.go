package catalog

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validRow returns a record that passes every rule in strict mode.
func validRow() Row {
	var r Row
	r.ISBN = Text("978-0-306-40615-7")
	r.EAN = Text("9780306406157")
	r.Editorial = Text("Planeta")
	r.Titulo = Text("Rayuela")
	r.Autor = Text("Julio Cortázar")
	r.TipoTapa = Text("Blanda")
	r.NumeroPaginas = Number(600)
	r.IdiomaOriginal = Text("Español")
	r.NumeroEdicion = Text("1")
	r.FechaEdicion = Text("1963-06-28")
	r.PaisEdicion = Text("Argentina")
	r.Precio = Number(15990)
	r.Moneda = Text("CLP")
	r.DescuentoDistribuidor = Text("35.5")
	r.ResumenLibro = Text("Novela.")
	r.Line = 2
	return r
}

func TestValidateRow_Valid(t *testing.T) {
	result := NewValidator().ValidateRow(validRow())
	assert.True(t, result.Valid, result.Summary())
	assert.Empty(t, result.Errors)
	assert.NotNil(t, result.Errors)
	assert.Equal(t, "", result.Summary())
}

func TestValidateRow_CollectsAllErrors(t *testing.T) {
	row := validRow()
	row.Titulo = Text("   ")
	row.Precio = Number(-1)
	row.Moneda = Empty()

	result := NewValidator().ValidateRow(row)

	require.False(t, result.Valid)
	assert.Equal(t, map[string]string{
		FieldTitulo: MsgRequired,
		FieldPrecio: MsgPrecio,
		FieldMoneda: MsgRequired,
	}, result.Errors)
	assert.Equal(t,
		"titulo: Campo obligatorio.; precio: Ingrese un precio ≥ 0; moneda: Campo obligatorio.",
		result.Summary())
}

func TestValidateRow_Boundaries(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value Cell
		want  string
	}{
		{"descuento upper bound", FieldDescuentoDistribuidor, Text("99.9"), ""},
		{"descuento numeric upper bound", FieldDescuentoDistribuidor, Number(99.9), ""},
		{"descuento above bound", FieldDescuentoDistribuidor, Number(100), MsgDescuento},
		{"descuento zero", FieldDescuentoDistribuidor, Number(0), ""},
		{"descuento negative", FieldDescuentoDistribuidor, Text("-0.1"), MsgDescuento},
		{"descuento text", FieldDescuentoDistribuidor, Text("diez"), MsgDescuento},
		{"descuento blank", FieldDescuentoDistribuidor, Text(" "), MsgRequired},
		{"paginas zero", FieldNumeroPaginas, Number(0), MsgIntegerMin1},
		{"paginas one", FieldNumeroPaginas, Number(1), ""},
		{"paginas fractional", FieldNumeroPaginas, Number(1.5), MsgIntegerMin1},
		{"paginas text", FieldNumeroPaginas, Text(" 12 "), ""},
		{"paginas missing", FieldNumeroPaginas, Empty(), MsgRequired},
		{"edicion zero", FieldNumeroEdicion, Text("0"), MsgIntegerMin1},
		{"precio zero", FieldPrecio, Number(0), ""},
		{"precio text", FieldPrecio, Text("abc"), MsgPrecio},
		{"precio infinite", FieldPrecio, Number(math.Inf(1)), MsgPrecio},
		{"precio NaN", FieldPrecio, Number(math.NaN()), MsgPrecio},
		{"alto optional", FieldAltoCm, Empty(), ""},
		{"alto negative", FieldAltoCm, Number(-0.5), MsgNonNegative},
		{"alto fractional", FieldAltoCm, Number(23.5), ""},
		{"peso fractional", FieldPesoGr, Number(250.5), MsgNonNegativeInt},
		{"peso zero", FieldPesoGr, Number(0), ""},
		{"fecha iso", FieldFechaEdicion, Text("2020-01-31"), ""},
		{"fecha serial", FieldFechaEdicion, Number(43831), ""},
		{"fecha native", FieldFechaEdicion, Date(time.Date(2020, 1, 31, 0, 0, 0, 0, time.UTC)), ""},
		{"fecha wrong format", FieldFechaEdicion, Text("31/01/2020"), MsgFecha},
		{"fecha bool", FieldFechaEdicion, Bool(true), MsgFecha},
		{"ean 13 digits bad checksum", FieldEAN, Text("9780306406158"), MsgEAN},
		{"ean other length accepted", FieldEAN, Text("12345"), ""},
		{"ean empty accepted", FieldEAN, Empty(), ""},
		{"tipo tapa whitespace passes", FieldTipoTapa, Text(" "), ""},
		{"autor whitespace fails", FieldAutor, Text("  "), MsgRequired},
	}

	v := NewValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := validRow()
			row.Set(tt.field, tt.value)
			result := v.ValidateRow(row)
			assert.Equal(t, tt.want, result.Errors[tt.field])
			assert.Equal(t, tt.want == "", result.Valid)
		})
	}
}

func TestValidateRow_ISBN(t *testing.T) {
	tests := []struct {
		name  string
		value Cell
		want  string
	}{
		{"isbn-10", Text("0-306-40615-2"), ""},
		{"isbn-10 bad", Text("0306406151"), MsgISBN10},
		{"isbn-13", Text("9780306406157"), ""},
		{"isbn-13 bad", Text("9780306406158"), MsgISBN13},
		{"isbn-13 numeric cell", Number(9780306406157), ""},
		{"wrong length", Text("12345"), MsgISBNLength},
		{"missing", Empty(), MsgISBNRequired},
	}

	strict := NewValidator()
	bulk := NewBulkValidator(false)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := validRow()
			row.ISBN = tt.value
			assert.Equal(t, tt.want, strict.ValidateRow(row).Errors[FieldISBN])

			relaxed := bulk.ValidateRow(row)
			assert.True(t, relaxed.Valid, "bulk import skips the isbn rule")
			assert.NotContains(t, relaxed.Errors, FieldISBN)
		})
	}
}

func TestValidateField(t *testing.T) {
	v := NewBulkValidator(false)

	msg, ok := v.ValidateField(FieldISBN, Text("0306406151"))
	assert.False(t, ok)
	assert.Equal(t, MsgISBN10, msg)

	msg, ok = v.ValidateField("coleccion", Text(""))
	assert.True(t, ok)
	assert.Empty(t, msg)

	msg, ok = v.ValidateField(FieldPrecio, Text("10.50"))
	assert.True(t, ok)
	assert.Empty(t, msg)
}

func TestValidateField_AgreesWithRow(t *testing.T) {
	values := []Cell{
		Empty(), Text(""), Text(" "), Text("abc"), Text("1"), Text("-1"), Text("99.9"),
		Text("100"), Text("2020-01-01"), Number(0), Number(1), Number(1.5), Number(-3),
		Number(100), Bool(false), Date(time.Now()),
	}
	v := NewValidator()
	for _, key := range Keys() {
		for _, value := range values {
			row := validRow()
			row.Set(key, value)
			msg, ok := v.ValidateField(key, value)
			rowMsg, failed := v.ValidateRow(row).Errors[key]
			assert.Equal(t, !ok, failed, "%s=%v", key, value)
			assert.Equal(t, msg, rowMsg, "%s=%v", key, value)
		}
	}
}

func genCell() gopter.Gen {
	return gen.OneGenOf(
		gen.Const(Empty()),
		gen.AnyString().Map(func(s string) Cell { return Text(s) }),
		gen.NumString().Map(func(s string) Cell { return Text(s) }),
		gen.Float64().Map(func(f float64) Cell { return Number(f) }),
		gen.Bool().Map(func(b bool) Cell { return Bool(b) }),
	)
}

func TestValidateRowProperties(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())
	keys := Keys()

	properties.Property("total and idempotent over arbitrary rows", prop.ForAll(
		func(cells []Cell) bool {
			var row Row
			for i, c := range cells {
				row.Set(keys[i%len(keys)], c)
			}
			v := NewValidator()
			first := v.ValidateRow(row)
			second := v.ValidateRow(row)
			if first.Valid != (len(first.Errors) == 0) {
				return false
			}
			if first.Summary() != second.Summary() {
				return false
			}
			for _, fe := range first.FieldErrors() {
				if fe.Message == "" || !strings.Contains(first.Summary(), fe.Error()) {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(len(keys), genCell()),
	))

	properties.Property("relaxed validation never reports isbn", prop.ForAll(
		func(c Cell) bool {
			row := validRow()
			row.ISBN = c
			return NewBulkValidator(false).ValidateRow(row).Valid
		},
		genCell(),
	))

	properties.TestingRun(t)
}
