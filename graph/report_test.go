package graph

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/naivary/pixst"
)

func TestWriteReport(t *testing.T) {
	res := &Result{
		Duplicates: map[pixst.Class][]uint64{
			pixst.ClassImage:   {3, 4, 5},
			pixst.ClassDataset: {2},
		},
	}
	var buf bytes.Buffer
	if err := res.WriteReport(&buf); err != nil {
		t.Error(err)
		return
	}
	want := "Duplicates\n  Dataset:2\n  Image:3,4,5\n"
	if buf.String() != want {
		t.Fatalf("wrong report. Got:\n%s\nExpected:\n%s", buf.String(), want)
	}
}

func TestWriteReportEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := (&Result{}).WriteReport(&buf); err != nil {
		t.Error(err)
		return
	}
	if buf.String() != "Nothing to duplicate\n" {
		t.Fatalf("wrong empty report. Got: %q", buf.String())
	}
}

func TestResultModelRoundtrip(t *testing.T) {
	res := &Result{
		Duplicates: map[pixst.Class][]uint64{
			pixst.ClassDataset: {2},
			pixst.ClassImage:   {3},
		},
		Mapping: map[pixst.Ref]pixst.Ref{
			{Class: pixst.ClassDataset, ID: 1}: {Class: pixst.ClassDataset, ID: 2},
			{Class: pixst.ClassImage, ID: 1}:   {Class: pixst.ClassImage, ID: 3},
		},
		References: []pixst.Ref{{Class: pixst.ClassTagAnnotation, ID: 7}},
	}
	got, err := ResultFromModel(res.ToModel())
	if err != nil {
		t.Error(err)
		return
	}
	if diff := cmp.Diff(res, got); diff != "" {
		t.Fatalf("roundtrip mismatch (-want +got):\n%s", diff)
	}
}
