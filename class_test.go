package pixst

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLookupClass(t *testing.T) {
	if _, ok := LookupClass("Dataset"); !ok {
		t.Fatalf("Dataset should resolve")
	}
	if _, ok := LookupClass("Annotation"); !ok {
		t.Fatalf("abstract classes should resolve for policies")
	}
	if _, ok := LookupClass("dataset"); ok {
		t.Fatalf("class names are case sensitive")
	}
	if _, ok := LookupClass("Plate"); ok {
		t.Fatalf("unknown class should not resolve")
	}
}

func TestAncestors(t *testing.T) {
	want := []Class{ClassCommentAnnotation, ClassTextAnnotation, ClassAnnotation}
	if diff := cmp.Diff(want, ClassCommentAnnotation.Ancestors()); diff != "" {
		t.Fatalf("wrong chain (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Class{ClassProject}, ClassProject.Ancestors()); diff != "" {
		t.Fatalf("wrong chain (-want +got):\n%s", diff)
	}
}

func TestIsA(t *testing.T) {
	if !ClassTagAnnotation.IsA(ClassAnnotation) {
		t.Fatalf("TagAnnotation derives from Annotation")
	}
	if !ClassLongAnnotation.IsA(ClassAnnotation) {
		t.Fatalf("LongAnnotation derives from Annotation")
	}
	if ClassLongAnnotation.IsA(ClassTextAnnotation) {
		t.Fatalf("LongAnnotation is no TextAnnotation")
	}
	if !ClassDatasetImageLink.IsA(ClassLink) {
		t.Fatalf("every link class derives from Link")
	}
	if ClassRoi.IsA(ClassAnnotation) {
		t.Fatalf("Roi is no annotation")
	}
}

func TestParseRef(t *testing.T) {
	r, err := ParseRef("Dataset:50")
	if err != nil {
		t.Error(err)
		return
	}
	if r.Class != ClassDataset || r.ID != 50 {
		t.Fatalf("wrong ref. Got: %s", r)
	}
	if _, err := ParseRef("Dataset"); !errors.Is(err, ErrInvalidRef) {
		t.Fatalf("missing id should be rejected. Got: %v", err)
	}
	if _, err := ParseRef("Dataset:0"); !errors.Is(err, ErrInvalidRef) {
		t.Fatalf("ids start at 1. Got: %v", err)
	}
	if _, err := ParseRef("Plate:1"); !errors.Is(err, ErrUnknownClass) {
		t.Fatalf("unknown class should be rejected. Got: %v", err)
	}
	if _, err := ParseRef("Annotation:1"); !errors.Is(err, ErrAbstractClass) {
		t.Fatalf("abstract classes are never stored. Got: %v", err)
	}
}

func TestParseRefs(t *testing.T) {
	refs, err := ParseRefs([]string{"Dataset:50,Dataset:51", "Image:1"})
	if err != nil {
		t.Error(err)
		return
	}
	want := []Ref{
		{Class: ClassDataset, ID: 50},
		{Class: ClassDataset, ID: 51},
		{Class: ClassImage, ID: 1},
	}
	if diff := cmp.Diff(want, refs); diff != "" {
		t.Fatalf("wrong refs (-want +got):\n%s", diff)
	}
}
