// Package services contains the development backend's business logic:
// generic record CRUD driven by the resource catalog and customer login.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/sellingcar/internal/catalog"
	"github.com/dmitrijs2005/sellingcar/internal/common"
	"github.com/dmitrijs2005/sellingcar/internal/server/models"
	"github.com/dmitrijs2005/sellingcar/internal/server/repositories/records"
)

// maxDeriveDepth bounds lookups that read another resource's derived field.
const maxDeriveDepth = 3

// RecordService serves every catalog resource from one repository, one
// table per resource name.
type RecordService struct {
	catalog *catalog.Catalog
	repo    records.Repository
	byPath  map[string]*catalog.Descriptor

	// serializes id assignment with the insert that uses it
	createMu sync.Mutex
}

func NewRecordService(c *catalog.Catalog, repo records.Repository) *RecordService {
	s := &RecordService{catalog: c, repo: repo, byPath: make(map[string]*catalog.Descriptor)}
	for _, d := range c.All() {
		s.byPath[strings.Trim(d.Path, "/")] = d
	}
	return s
}

// Resolve maps a URL path segment to its resource.
func (s *RecordService) Resolve(segment string) (*catalog.Descriptor, error) {
	d, ok := s.byPath[segment]
	if !ok {
		return nil, fmt.Errorf("resource %q: %w", segment, common.ErrorNotFound)
	}
	return d, nil
}

// List returns all rows of d with derived fields filled in.
func (s *RecordService) List(ctx context.Context, d *catalog.Descriptor) ([]models.Row, error) {
	rows, err := s.repo.List(ctx, d.Name)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		s.derive(ctx, d, row, 0)
	}
	return rows, nil
}

// Create stores a new row built from body. A single integer key named
// "id" is assigned when the body does not carry one.
func (s *RecordService) Create(ctx context.Context, d *catalog.Descriptor, body map[string]any) (models.Row, error) {
	row := models.Row{}
	for _, f := range d.Fields {
		v, err := coerce(f, body[f.Name])
		if err != nil {
			return nil, err
		}
		row[f.Name] = v
	}

	s.createMu.Lock()
	defer s.createMu.Unlock()

	if err := s.assignID(ctx, d, row); err != nil {
		return nil, err
	}
	if err := checkRequired(d, row); err != nil {
		return nil, err
	}
	if err := s.repo.Insert(ctx, d.Name, keyOf(d, row), row); err != nil {
		return nil, err
	}
	s.derive(ctx, d, row, 0)
	return row, nil
}

func (s *RecordService) assignID(ctx context.Context, d *catalog.Descriptor, row models.Row) error {
	if len(d.Key) != 1 || d.Key[0] != "id" || row["id"] != nil {
		return nil
	}
	if f, _ := d.Field("id"); f.Kind != catalog.KindInteger {
		return nil
	}
	rows, err := s.repo.List(ctx, d.Name)
	if err != nil {
		return err
	}
	var next int64 = 1
	for _, r := range rows {
		if id, ok := r["id"].(int64); ok && id >= next {
			next = id + 1
		}
	}
	row["id"] = next
	return nil
}

// Update replaces the non-key fields present in body. Key fields of the
// stored row never change.
func (s *RecordService) Update(ctx context.Context, d *catalog.Descriptor, key []string, body map[string]any) (models.Row, error) {
	k, err := parseKey(d, key)
	if err != nil {
		return nil, err
	}
	row, err := s.repo.Get(ctx, d.Name, k)
	if err != nil {
		return nil, err
	}
	for _, f := range d.Fields {
		if d.IsKey(f.Name) {
			continue
		}
		raw, ok := body[f.Name]
		if !ok {
			continue
		}
		v, err := coerce(f, raw)
		if err != nil {
			return nil, err
		}
		row[f.Name] = v
	}
	if err := checkRequired(d, row); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, d.Name, k, row); err != nil {
		return nil, err
	}
	s.derive(ctx, d, row, 0)
	return row, nil
}

func (s *RecordService) Delete(ctx context.Context, d *catalog.Descriptor, key []string) error {
	k, err := parseKey(d, key)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, d.Name, k)
}

func checkRequired(d *catalog.Descriptor, row models.Row) error {
	for _, f := range d.Fields {
		if (f.Required || d.IsKey(f.Name)) && row[f.Name] == nil {
			return &ValidationError{Field: f.Name, Reason: "is required"}
		}
	}
	return nil
}

// derive fills row's derived fields from the rows they refer to. Missing
// targets leave the value nil.
func (s *RecordService) derive(ctx context.Context, d *catalog.Descriptor, row models.Row, depth int) {
	for _, dv := range d.Derived {
		switch {
		case dv.Lookup != nil:
			row[dv.Name] = s.lookup(ctx, dv.Lookup, row, depth)
		case dv.Membership != nil:
			row[dv.Name] = s.membership(ctx, dv.Membership, row)
		}
	}
}

func (s *RecordService) lookup(ctx context.Context, l *catalog.Lookup, row models.Row, depth int) any {
	target, err := s.catalog.Get(l.Resource)
	if err != nil {
		return nil
	}
	parts := make([]string, len(l.Via))
	for i, via := range l.Via {
		if row[via] == nil {
			return nil
		}
		parts[i] = formatKeyPart(row[via])
	}
	other, err := s.repo.Get(ctx, target.Name, strings.Join(parts, "/"))
	if err != nil {
		return nil
	}
	if _, stored := target.Field(l.Field); !stored && depth < maxDeriveDepth {
		s.derive(ctx, target, other, depth+1)
	}
	return other[l.Field]
}

func (s *RecordService) membership(ctx context.Context, m *catalog.Membership, row models.Row) any {
	v := row[m.Via]
	if v == nil {
		return nil
	}
	for _, in := range m.In {
		_, err := s.repo.Get(ctx, in.Resource, formatKeyPart(v))
		if err == nil {
			return in.Label
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return nil
		}
	}
	return nil
}
