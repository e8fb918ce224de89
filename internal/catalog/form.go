package catalog

import "sync"

// FieldTracker keeps the invalid markers of the single-record entry form.
//
// A field is checked when the user leaves it (Blur). Once a field is marked
// invalid, every keystroke (Input) re-checks it so the marker clears the
// moment the value becomes valid. Fields that are not marked are left alone
// while typing.
type FieldTracker struct {
	validator *Validator

	mu      sync.Mutex
	invalid map[string]string
}

// NewFieldTracker returns a tracker backed by v, or the strict form
// validator when v is nil.
func NewFieldTracker(v *Validator) *FieldTracker {
	if v == nil {
		v = NewValidator()
	}
	return &FieldTracker{validator: v, invalid: make(map[string]string)}
}

// Blur validates key and updates its marker. It returns the message shown
// under the field (empty when valid) and whether the value passed.
func (t *FieldTracker) Blur(key string, value Cell) (string, bool) {
	msg, ok := t.validator.ValidateField(key, value)
	t.mu.Lock()
	defer t.mu.Unlock()
	if ok {
		delete(t.invalid, key)
		return "", true
	}
	t.invalid[key] = msg
	return msg, false
}

// Input re-validates key only when it is currently marked invalid.
// The second result reports whether a re-check happened.
func (t *FieldTracker) Input(key string, value Cell) (msg string, rechecked bool) {
	t.mu.Lock()
	_, marked := t.invalid[key]
	t.mu.Unlock()
	if !marked {
		return "", false
	}
	msg, _ = t.Blur(key, value)
	return msg, true
}

// Marked reports whether key currently carries an invalid marker.
func (t *FieldTracker) Marked(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.invalid[key]
	return ok
}

// Invalid returns the current markers in canonical field order.
func (t *FieldTracker) Invalid() []FieldError {
	t.mu.Lock()
	errs := make(map[string]string, len(t.invalid))
	for k, v := range t.invalid {
		errs[k] = v
	}
	t.mu.Unlock()
	return ValidationResult{Valid: len(errs) == 0, Errors: errs}.FieldErrors()
}

// ValidateAll checks every field of row before the form is submitted and
// returns the first invalid field, which receives focus, or "" when the
// form may be sent.
func (t *FieldTracker) ValidateAll(row Row) string {
	first := ""
	for _, key := range Keys() {
		if _, ok := t.Blur(key, row.Get(key)); !ok && first == "" {
			first = key
		}
	}
	return first
}
