package keyspace

// Field names one entry of a hash. Fields handed out by a FieldRegistry for
// names it does not know are unrecognized: they still carry the raw name
type Field struct {
	name         string
	unrecognized bool
}

// NewField declares a hash field
func NewField(name string) Field {
	return Field{name: name}
}

// Name returns the raw field name
func (f Field) Name() string {
	return f.name
}

// Recognized is false for fields the registry did not declare
func (f Field) Recognized() bool {
	return !f.unrecognized
}

func (f Field) String() string {
	if f.unrecognized {
		return "unrecognized(" + f.name + ")"
	}
	return f.name
}

// FieldRegistry is the fixed set of fields a hash is expected to hold.
// It is immutable and safe for concurrent use
type FieldRegistry struct {
	fields []Field
	byName map[string]Field
}

// NewFieldRegistry builds a registry from fields. Later duplicates are ignored
func NewFieldRegistry(fields ...Field) *FieldRegistry {
	r := &FieldRegistry{
		fields: make([]Field, 0, len(fields)),
		byName: make(map[string]Field, len(fields)),
	}
	for _, f := range fields {
		f.unrecognized = false
		if _, dup := r.byName[f.name]; dup {
			continue
		}
		r.byName[f.name] = f
		r.fields = append(r.fields, f)
	}
	return r
}

// Resolve returns the declared field named raw
func (r *FieldRegistry) Resolve(raw string) (Field, bool) {
	if r == nil {
		return Field{}, false
	}
	f, ok := r.byName[raw]
	return f, ok
}

// Lookup returns the declared field named raw, or an unrecognized field carrying raw
func (r *FieldRegistry) Lookup(raw string) Field {
	if f, ok := r.Resolve(raw); ok {
		return f
	}
	return Field{name: raw, unrecognized: true}
}

// Contains reports whether f is declared
func (r *FieldRegistry) Contains(f Field) bool {
	_, ok := r.Resolve(f.name)
	return ok && f.Recognized()
}

// Fields returns the declared fields in declaration order
func (r *FieldRegistry) Fields() []Field {
	if r == nil {
		return nil
	}
	return append([]Field(nil), r.fields...)
}

// Len returns the number of declared fields
func (r *FieldRegistry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.fields)
}
