package graph

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/naivary/pixst"
	"github.com/naivary/pixst/models"
)

// WriteReport prints the duplicates per class, one line each:
//
//	Duplicates
//	  Dataset:2
//	  Image:3,4,5
func (r *Result) WriteReport(w io.Writer) error {
	if len(r.Duplicates) == 0 {
		_, err := fmt.Fprintln(w, "Nothing to duplicate")
		return err
	}
	if _, err := fmt.Fprintln(w, "Duplicates"); err != nil {
		return err
	}
	classes := maps.Keys(r.Duplicates)
	slices.Sort(classes)
	for _, class := range classes {
		ids := make([]string, 0, len(r.Duplicates[class]))
		for _, id := range r.Duplicates[class] {
			ids = append(ids, strconv.FormatUint(id, 10))
		}
		if _, err := fmt.Fprintf(w, "  %s:%s\n", class, strings.Join(ids, ",")); err != nil {
			return err
		}
	}
	return nil
}

// ToModel converts the result into its wire form.
func (r *Result) ToModel() *models.DuplicateResponse {
	m := &models.DuplicateResponse{
		Duplicates: make(map[string][]uint64, len(r.Duplicates)),
		Mapping:    make(map[string]string, len(r.Mapping)),
		DryRun:     r.DryRun,
	}
	for class, ids := range r.Duplicates {
		m.Duplicates[class.String()] = ids
	}
	for orig, dup := range r.Mapping {
		m.Mapping[orig.String()] = dup.String()
	}
	for _, ref := range r.References {
		m.References = append(m.References, ref.String())
	}
	return m
}

// ResultFromModel rebuilds a result from its wire form, as the CLI
// does before printing a report.
func ResultFromModel(m *models.DuplicateResponse) (*Result, error) {
	r := &Result{
		Duplicates: make(map[pixst.Class][]uint64, len(m.Duplicates)),
		Mapping:    make(map[pixst.Ref]pixst.Ref, len(m.Mapping)),
		DryRun:     m.DryRun,
	}
	for name, ids := range m.Duplicates {
		class, ok := pixst.LookupClass(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", pixst.ErrUnknownClass, name)
		}
		r.Duplicates[class] = ids
	}
	for orig, dup := range m.Mapping {
		o, err := pixst.ParseRef(orig)
		if err != nil {
			return nil, err
		}
		d, err := pixst.ParseRef(dup)
		if err != nil {
			return nil, err
		}
		r.Mapping[o] = d
	}
	for _, s := range m.References {
		ref, err := pixst.ParseRef(s)
		if err != nil {
			return nil, err
		}
		r.References = append(r.References, ref)
	}
	return r, nil
}
