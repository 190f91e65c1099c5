// Package catalog holds the resource descriptors that parameterize the
// generic list/edit machinery. The default catalog is embedded; a YAML file
// with the same shape can replace it at startup.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed resources.yaml
var defaultYAML []byte

// Kind is the wire type of a field value.
type Kind string

const (
	KindString  Kind = "string"
	KindInteger Kind = "integer"
	KindNumber  Kind = "number"
	KindDate    Kind = "date"
)

var ErrUnknownResource = errors.New("unknown resource")

type Field struct {
	Name     string `yaml:"name" validate:"required"`
	Label    string `yaml:"label"`
	Kind     Kind   `yaml:"kind" validate:"required,oneof=string integer number date"`
	Required bool   `yaml:"required"`
	Input    bool   `yaml:"input"`
	Editable bool   `yaml:"editable"`
}

// Lookup resolves a value from another resource whose key is formed by the
// Via fields of the current record.
type Lookup struct {
	Resource string   `yaml:"resource" validate:"required"`
	Via      []string `yaml:"via" validate:"required,min=1,dive,required"`
	Field    string   `yaml:"field" validate:"required"`
}

// Member labels a record when its Via value is the key of a record in Resource.
type Member struct {
	Resource string `yaml:"resource" validate:"required"`
	Label    string `yaml:"label" validate:"required"`
}

// Membership yields the label of the first member resource that contains
// the record.
type Membership struct {
	Via string   `yaml:"via" validate:"required"`
	In  []Member `yaml:"in" validate:"required,min=1,dive"`
}

// Derived is a display-only field computed by the backend.
type Derived struct {
	Name       string      `yaml:"name" validate:"required"`
	Label      string      `yaml:"label"`
	Kind       Kind        `yaml:"kind" validate:"required,oneof=string integer number date"`
	Lookup     *Lookup     `yaml:"lookup"`
	Membership *Membership `yaml:"membership"`
}

type Capabilities struct {
	Create bool `yaml:"create"`
	Edit   bool `yaml:"edit"`
	Delete bool `yaml:"delete"`
}

// Descriptor describes one REST resource.
type Descriptor struct {
	Name         string       `yaml:"name" validate:"required"`
	Title        string       `yaml:"title" validate:"required"`
	Path         string       `yaml:"path" validate:"required,startswith=/"`
	Key          []string     `yaml:"key" validate:"required,min=1,max=2,dive,required"`
	Fields       []Field      `yaml:"fields" validate:"required,min=1,dive"`
	Derived      []Derived    `yaml:"derived" validate:"omitempty,dive"`
	Capabilities Capabilities `yaml:"capabilities"`
}

// Column is one displayed column.
type Column struct {
	Name    string
	Label   string
	Kind    Kind
	Derived bool
}

type document struct {
	Resources []Descriptor `yaml:"resources" validate:"required,min=1,dive"`
}

// Catalog is an immutable, validated set of descriptors.
type Catalog struct {
	resources []*Descriptor
	byName    map[string]*Descriptor
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultYAML)
}

// LoadFile reads a catalog from a YAML file.
func LoadFile(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(b)
}

// Parse decodes and validates a YAML catalog.
func Parse(b []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := validator.New().Struct(doc); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	c := &Catalog{byName: make(map[string]*Descriptor, len(doc.Resources))}
	for i := range doc.Resources {
		d := &doc.Resources[i]
		if _, dup := c.byName[d.Name]; dup {
			return nil, fmt.Errorf("invalid catalog: duplicate resource %q", d.Name)
		}
		c.byName[d.Name] = d
		c.resources = append(c.resources, d)
	}
	for _, d := range c.resources {
		if err := c.check(d); err != nil {
			return nil, fmt.Errorf("invalid catalog: %s: %w", d.Name, err)
		}
	}
	return c, nil
}

func (c *Catalog) check(d *Descriptor) error {
	seen := map[string]bool{}
	for _, f := range d.Fields {
		if seen[f.Name] {
			return fmt.Errorf("duplicate field %q", f.Name)
		}
		seen[f.Name] = true
		if f.Editable && d.IsKey(f.Name) {
			return fmt.Errorf("key field %q cannot be editable", f.Name)
		}
	}
	for _, k := range d.Key {
		if !seen[k] {
			return fmt.Errorf("key field %q is not declared", k)
		}
	}
	for _, df := range d.Derived {
		if seen[df.Name] {
			return fmt.Errorf("duplicate field %q", df.Name)
		}
		seen[df.Name] = true
	}
	for _, df := range d.Derived {
		if (df.Lookup == nil) == (df.Membership == nil) {
			return fmt.Errorf("derived %q: exactly one of lookup or membership is required", df.Name)
		}
		switch {
		case df.Lookup != nil:
			target, ok := c.byName[df.Lookup.Resource]
			if !ok {
				return fmt.Errorf("derived %q: %w %q", df.Name, ErrUnknownResource, df.Lookup.Resource)
			}
			if len(df.Lookup.Via) != len(target.Key) {
				return fmt.Errorf("derived %q: via has %d fields, %s key has %d",
					df.Name, len(df.Lookup.Via), target.Name, len(target.Key))
			}
			for _, v := range df.Lookup.Via {
				if _, ok := d.Field(v); !ok {
					return fmt.Errorf("derived %q: via field %q is not declared", df.Name, v)
				}
			}
			if !target.HasColumn(df.Lookup.Field) {
				return fmt.Errorf("derived %q: %s has no field %q", df.Name, target.Name, df.Lookup.Field)
			}
		case df.Membership != nil:
			if _, ok := d.Field(df.Membership.Via); !ok {
				return fmt.Errorf("derived %q: via field %q is not declared", df.Name, df.Membership.Via)
			}
			for _, m := range df.Membership.In {
				target, ok := c.byName[m.Resource]
				if !ok {
					return fmt.Errorf("derived %q: %w %q", df.Name, ErrUnknownResource, m.Resource)
				}
				if len(target.Key) != 1 {
					return fmt.Errorf("derived %q: member %s must have a single key", df.Name, m.Resource)
				}
			}
		}
	}
	return nil
}

// Get returns the descriptor with the given name.
func (c *Catalog) Get(name string) (*Descriptor, error) {
	d, ok := c.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownResource, name)
	}
	return d, nil
}

// All returns descriptors in catalog order.
func (c *Catalog) All() []*Descriptor {
	return slices.Clone(c.resources)
}

func (c *Catalog) Names() []string {
	names := make([]string, len(c.resources))
	for i, d := range c.resources {
		names[i] = d.Name
	}
	return names
}

func (d *Descriptor) Field(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func (d *Descriptor) IsKey(name string) bool {
	return slices.Contains(d.Key, name)
}

// HasColumn reports whether name is a stored or derived field.
func (d *Descriptor) HasColumn(name string) bool {
	if _, ok := d.Field(name); ok {
		return true
	}
	for _, df := range d.Derived {
		if df.Name == name {
			return true
		}
	}
	return false
}

// InputFields are the fields sent in a create body.
func (d *Descriptor) InputFields() []Field {
	var out []Field
	for _, f := range d.Fields {
		if f.Input {
			out = append(out, f)
		}
	}
	return out
}

// EditableFields are the fields sent in an update body.
func (d *Descriptor) EditableFields() []Field {
	var out []Field
	for _, f := range d.Fields {
		if f.Editable {
			out = append(out, f)
		}
	}
	return out
}

// KeyFields returns the key fields in key order.
func (d *Descriptor) KeyFields() []Field {
	out := make([]Field, 0, len(d.Key))
	for _, k := range d.Key {
		f, _ := d.Field(k)
		out = append(out, f)
	}
	return out
}

// Columns lists key fields, then the remaining stored fields, then derived
// fields, each once.
func (d *Descriptor) Columns() []Column {
	var cols []Column
	seen := map[string]bool{}
	add := func(c Column) {
		if seen[c.Name] {
			return
		}
		seen[c.Name] = true
		if c.Label == "" {
			c.Label = c.Name
		}
		cols = append(cols, c)
	}
	for _, f := range d.KeyFields() {
		add(Column{Name: f.Name, Label: f.Label, Kind: f.Kind})
	}
	for _, f := range d.Fields {
		add(Column{Name: f.Name, Label: f.Label, Kind: f.Kind})
	}
	for _, df := range d.Derived {
		add(Column{Name: df.Name, Label: df.Label, Kind: df.Kind, Derived: true})
	}
	return cols
}
