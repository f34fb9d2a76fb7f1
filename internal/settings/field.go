package settings

// Field describes one configuration value.
type Field struct {
	Name     string
	Alias    string
	Required bool

	def    string
	hasDef bool
}

// Required declares a field that must be resolved by some source.
func Required(name string) Field {
	return Field{Name: name, Required: true}
}

// Optional declares a field that may stay unresolved.
func Optional(name string) Field {
	return Field{Name: name}
}

// WithAlias sets the key used for remote secret lookups.
func (f Field) WithAlias(alias string) Field {
	f.Alias = alias
	return f
}

// WithDefault sets the value used when no source supplies the field.
func (f Field) WithDefault(value string) Field {
	f.def = value
	f.hasDef = true
	return f
}

// Default returns the declared default, if any.
func (f Field) Default() (string, bool) {
	return f.def, f.hasDef
}

// SecretKey is the name the field is stored under in a remote secret store.
func (f Field) SecretKey() string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Name
}
