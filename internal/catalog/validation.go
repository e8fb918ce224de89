package catalog

// validation.go checks normalized rows against the catalog rule table.
//
// Every rule runs independently and all failures for a row are collected
// before returning, so the import report can list every problem at once.
// The single-field entry point (ValidateField) shares the exact rule
// functions, keeping the bulk import and the one-record form in agreement.

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// User-facing rule messages.
const (
	MsgRequired       = "Campo obligatorio."
	MsgISBNRequired   = "Este campo es obligatorio."
	MsgISBN10         = "ISBN-10 inválido"
	MsgISBN13         = "ISBN-13 inválido"
	MsgISBNLength     = "ISBN debe tener 10 o 13 caracteres."
	MsgEAN            = "EAN inválido"
	MsgIntegerMin1    = "Número entero ≥ 1."
	MsgNonNegative    = "Número ≥ 0."
	MsgNonNegativeInt = "Número entero ≥ 0."
	MsgPrecio         = "Ingrese un precio ≥ 0"
	MsgDescuento      = "Descuento debe estar entre 0.0 y 99.9%."
	MsgFecha          = "Fecha inválida (AAAA-MM-DD)."
)

var (
	maxDescuento = decimal.RequireFromString("99.9")
	isoDate      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// FieldError is a single failed rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationResult is the outcome of validating one row. Errors holds one
// message per failing field; a field absent from Errors passed.
type ValidationResult struct {
	Valid  bool
	Errors map[string]string
}

// FieldErrors returns the failures in canonical field order, followed by
// any non-canonical keys in the order they sort.
func (r ValidationResult) FieldErrors() []FieldError {
	if len(r.Errors) == 0 {
		return nil
	}
	out := make([]FieldError, 0, len(r.Errors))
	seen := make(map[string]bool, len(r.Errors))
	for _, f := range fields {
		if msg, ok := r.Errors[f.key]; ok {
			out = append(out, FieldError{Field: f.key, Message: msg})
			seen[f.key] = true
		}
	}
	var rest []string
	for k := range r.Errors {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		out = append(out, FieldError{Field: k, Message: r.Errors[k]})
	}
	return out
}

// Summary joins the failures as "field: message; field: message".
func (r ValidationResult) Summary() string {
	errs := r.FieldErrors()
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}

// ruleFunc returns a message and false when value breaks the rule.
type ruleFunc func(value Cell) (string, bool)

type rule struct {
	field string
	check ruleFunc
}

// rules is the catalog rule table. Fields without an entry always pass.
var rules = []rule{
	{FieldISBN, checkISBN},
	{FieldEAN, checkEAN},
	{FieldEditorial, requiredTrimmed},
	{FieldTitulo, requiredTrimmed},
	{FieldAutor, requiredTrimmed},
	{FieldTipoTapa, required},
	{FieldIdiomaOriginal, required},
	{FieldPaisEdicion, required},
	{FieldNumeroPaginas, requiredInteger(1, MsgIntegerMin1)},
	{FieldNumeroEdicion, requiredInteger(1, MsgIntegerMin1)},
	{FieldFechaEdicion, checkFecha},
	{FieldAltoCm, optionalNumber(MsgNonNegative)},
	{FieldAnchoCm, optionalNumber(MsgNonNegative)},
	{FieldGrosorCm, optionalNumber(MsgNonNegative)},
	{FieldPesoGr, optionalInteger(MsgNonNegativeInt)},
	{FieldPrecio, checkPrecio},
	{FieldMoneda, required},
	{FieldDescuentoDistribuidor, checkDescuento},
	{FieldResumenLibro, requiredTrimmed},
}

var ruleIndex = func() map[string]ruleFunc {
	m := make(map[string]ruleFunc, len(rules))
	for _, r := range rules {
		m[r.field] = r.check
	}
	return m
}()

// Validator applies the rule table to rows and single fields.
type Validator struct {
	// RequireISBN enables the isbn rule. The bulk import runs with it off;
	// the single-record form always has it on.
	RequireISBN bool
}

// NewValidator returns the strict validator used by the single-record form.
func NewValidator() *Validator {
	return &Validator{RequireISBN: true}
}

// NewBulkValidator returns the validator used by spreadsheet imports.
func NewBulkValidator(requireISBN bool) *Validator {
	return &Validator{RequireISBN: requireISBN}
}

// ValidateRow runs every rule against row and collects all failures.
func (v *Validator) ValidateRow(row Row) ValidationResult {
	result := ValidationResult{Valid: true, Errors: map[string]string{}}
	for _, r := range rules {
		if r.field == FieldISBN && !v.RequireISBN {
			continue
		}
		if msg, ok := r.check(row.Get(r.field)); !ok {
			result.Valid = false
			result.Errors[r.field] = msg
		}
	}
	return result
}

// ValidateField checks a single field value. Unknown fields always pass.
// The isbn rule is always enforced here; the relaxation applies only to
// whole-row bulk validation.
func (v *Validator) ValidateField(key string, value Cell) (string, bool) {
	check, ok := ruleIndex[key]
	if !ok {
		return "", true
	}
	return check(value)
}

// ============================================================================
// Rules
// ============================================================================

func checkISBN(c Cell) (string, bool) {
	code := NormalizeCode(c.String())
	switch len(code) {
	case 0:
		return MsgISBNRequired, false
	case 10:
		if !ValidISBN10(code) {
			return MsgISBN10, false
		}
	case 13:
		if !ValidEAN13(code) {
			return MsgISBN13, false
		}
	default:
		return MsgISBNLength, false
	}
	return "", true
}

// checkEAN only enforces the checksum when the value has exactly 13 digits;
// other shapes are accepted as advisory data.
func checkEAN(c Cell) (string, bool) {
	code := digitsOnly(c.String())
	if len(code) == 13 && !ValidEAN13(code) {
		return MsgEAN, false
	}
	return "", true
}

func required(c Cell) (string, bool) {
	if c.String() == "" {
		return MsgRequired, false
	}
	return "", true
}

func requiredTrimmed(c Cell) (string, bool) {
	if c.Blank() {
		return MsgRequired, false
	}
	return "", true
}

func requiredInteger(min int64, msg string) ruleFunc {
	return func(c Cell) (string, bool) {
		if c.Blank() {
			return MsgRequired, false
		}
		d, ok := decimalOf(c)
		if !ok || !d.IsInteger() || d.LessThan(decimal.NewFromInt(min)) {
			return msg, false
		}
		return "", true
	}
}

func optionalInteger(msg string) ruleFunc {
	return func(c Cell) (string, bool) {
		if c.Blank() {
			return "", true
		}
		d, ok := decimalOf(c)
		if !ok || !d.IsInteger() || d.IsNegative() {
			return msg, false
		}
		return "", true
	}
}

func optionalNumber(msg string) ruleFunc {
	return func(c Cell) (string, bool) {
		if c.Blank() {
			return "", true
		}
		d, ok := decimalOf(c)
		if !ok || d.IsNegative() {
			return msg, false
		}
		return "", true
	}
}

func checkPrecio(c Cell) (string, bool) {
	if c.Blank() {
		return MsgRequired, false
	}
	d, ok := decimalOf(c)
	if !ok || d.IsNegative() {
		return MsgPrecio, false
	}
	return "", true
}

func checkDescuento(c Cell) (string, bool) {
	if c.Blank() {
		return MsgRequired, false
	}
	d, ok := decimalOf(c)
	if !ok || d.IsNegative() || d.GreaterThan(maxDescuento) {
		return MsgDescuento, false
	}
	return "", true
}

// checkFecha accepts ISO dates, raw spreadsheet serials (checked by the
// server) and native date cells.
func checkFecha(c Cell) (string, bool) {
	if c.Blank() {
		return MsgRequired, false
	}
	switch c.Kind() {
	case KindNumber:
		if f, _ := c.Float(); math.IsNaN(f) || math.IsInf(f, 0) {
			return MsgFecha, false
		}
		return "", true
	case KindDate:
		return "", true
	case KindText:
		if isoDate.MatchString(strings.TrimSpace(c.String())) {
			return "", true
		}
	}
	return MsgFecha, false
}

// decimalOf parses a numeric or text cell as a finite decimal.
func decimalOf(c Cell) (decimal.Decimal, bool) {
	switch c.Kind() {
	case KindNumber:
		f, _ := c.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return decimal.Decimal{}, false
		}
		return decimal.NewFromFloat(f), true
	case KindText:
		d, err := decimal.NewFromString(strings.TrimSpace(c.String()))
		if err != nil {
			return decimal.Decimal{}, false
		}
		return d, true
	default:
		return decimal.Decimal{}, false
	}
}
