package validation

// Deferred collects field errors found while decoding a request body.
// Embed it in an input struct; Struct reports the collected errors along
// with the struct's own rules, so callers can run lookups first.
type Deferred struct {
	fields map[string]string
}

// DeferFieldError records a decoding problem for field
func (d *Deferred) DeferFieldError(field, message string) {
	if d.fields == nil {
		d.fields = make(map[string]string)
	}
	d.fields[field] = message
}

func (d Deferred) deferredFields() map[string]string {
	return d.fields
}

type deferrer interface {
	deferredFields() map[string]string
}
