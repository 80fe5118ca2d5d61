package indexedredis

// Schema is a registry of model declarations. Declare models at startup via
// AddModel; the schema is immutable once a DB is opened over it.
type Schema struct {
	models       []*Model
	modelsByName map[string]*Model
}

func NewSchema() *Schema {
	return &Schema{
		modelsByName: make(map[string]*Model),
	}
}

func (scm *Schema) Models() []*Model {
	return append([]*Model(nil), scm.models...)
}

// Model returns the model with the given name, nil when undeclared.
func (scm *Schema) Model(name string) *Model {
	return scm.modelsByName[name]
}

// validateRefs verifies that every link field targets a declared model.
func (scm *Schema) validateRefs() error {
	for _, m := range scm.models {
		for _, f := range m.fields {
			target, ok := f.RefTarget()
			if !ok {
				continue
			}
			if scm.modelsByName[target] == nil {
				return schemaErrf(m.name, f.name, "link targets undeclared model %q", target)
			}
		}
	}
	return nil
}

// Model is an immutable declaration of a record shape: named typed fields,
// some of which carry a secondary equality index.
type Model struct {
	schema       *Schema
	name         string
	fields       []*Field
	fieldsByName map[string]*Field
	indexed      []*Field
}

// AddModel declares a model. Invalid declarations (duplicate names, indexes
// over non-indexable fields) are programming errors and panic.
func AddModel(scm *Schema, name string, fields []*Field, indexedNames ...string) *Model {
	if name == "" {
		panic(schemaErrf("", "", "model name must not be empty"))
	}
	if scm.modelsByName[name] != nil {
		panic(schemaErrf(name, "", "model already declared"))
	}

	m := &Model{
		schema:       scm,
		name:         name,
		fields:       make([]*Field, 0, len(fields)),
		fieldsByName: make(map[string]*Field, len(fields)),
	}
	for _, f := range fields {
		if f.model != nil {
			panic(schemaErrf(name, f.name, "field already belongs to model %s", f.model.name))
		}
		if m.fieldsByName[f.name] != nil {
			panic(schemaErrf(name, f.name, "duplicate field name"))
		}
		f.model = m
		m.fields = append(m.fields, f)
		m.fieldsByName[f.name] = f
	}

	for _, fn := range indexedNames {
		f := m.fieldsByName[fn]
		if f == nil {
			panic(schemaErrf(name, fn, "unknown field in index list"))
		}
		if !f.typ.canIndex() {
			panic(schemaErrf(name, fn, "field type cannot be indexed"))
		}
		if f.indexed {
			panic(schemaErrf(name, fn, "field listed twice in index list"))
		}
		f.indexed = true
		m.indexed = append(m.indexed, f)
	}

	scm.models = append(scm.models, m)
	scm.modelsByName[name] = m
	return m
}

func (m *Model) Name() string {
	return m.name
}

func (m *Model) Schema() *Schema {
	return m.schema
}

func (m *Model) Fields() []*Field {
	return append([]*Field(nil), m.fields...)
}

// Field returns the named field, nil when the model does not have it.
func (m *Model) Field(name string) *Field {
	return m.fieldsByName[name]
}

// Indexed returns the fields carrying a secondary index.
func (m *Model) Indexed() []*Field {
	return append([]*Field(nil), m.indexed...)
}
