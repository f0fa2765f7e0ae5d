package pixst

import (
	"bytes"
	"errors"
	"testing"
)

func TestBlobPutGet(t *testing.T) {
	data := tEnv.payload(4)
	digest, n, err := tEnv.s.PutBlob(bytes.NewReader(data))
	if err != nil {
		t.Error(err)
		return
	}
	if n != int64(len(data)) {
		t.Fatalf("wrong payload size. Got: %d. Expected: %d", n, len(data))
	}
	got, err := tEnv.s.GetBlob(digest)
	if err != nil {
		t.Error(err)
		return
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("payload roundtrip corrupted the bytes")
	}
}

func TestBlobEmptyPayload(t *testing.T) {
	_, _, err := tEnv.s.PutBlob(bytes.NewReader(nil))
	if !errors.Is(err, ErrEmptyPayload) {
		t.Fatalf("expected ErrEmptyPayload. Got: %v", err)
	}
}

func TestBlobDedup(t *testing.T) {
	data := tEnv.payload(4)
	d1, _, err := tEnv.s.PutBlob(bytes.NewReader(data))
	if err != nil {
		t.Error(err)
		return
	}
	d2, _, err := tEnv.s.PutBlob(bytes.NewReader(data))
	if err != nil {
		t.Error(err)
		return
	}
	if d1 != d2 {
		t.Fatalf("identical payloads should share one digest. Got: %s and %s", d1, d2)
	}
}

func TestBlobNotFound(t *testing.T) {
	if _, err := tEnv.s.GetBlob("0000000000000000"); !errors.Is(err, ErrBlobNotFound) {
		t.Fatalf("expected ErrBlobNotFound. Got: %v", err)
	}
	if tEnv.s.HasBlob("0000000000000000") {
		t.Fatalf("blob should not exist")
	}
}

// Two objects sharing one blob: deleting the first keeps the blob
// alive, deleting the second removes it.
func TestBlobRefCountLifecycle(t *testing.T) {
	p := tEnv.principal()
	digest, _, err := tEnv.s.PutBlob(bytes.NewReader(tEnv.payload(4)))
	if err != nil {
		t.Error(err)
		return
	}
	objs := make([]*Object, 2)
	for i := range objs {
		o, err := NewObject(ClassFileAnnotation, tEnv.name(), p)
		if err != nil {
			t.Error(err)
			return
		}
		if err := o.SetBlobRef(digest); err != nil {
			t.Error(err)
			return
		}
		objs[i] = o
	}
	if err := tEnv.s.BatchCreate(objs); err != nil {
		t.Error(err)
		return
	}
	count, err := tEnv.s.BlobRefCount(digest)
	if err != nil {
		t.Error(err)
		return
	}
	if count != 2 {
		t.Fatalf("expected 2 referents. Got: %d", count)
	}
	if err := tEnv.s.Delete(objs[0].Ref()); err != nil {
		t.Error(err)
		return
	}
	if !tEnv.s.HasBlob(digest) {
		t.Fatalf("blob should survive while one referent remains")
	}
	if err := tEnv.s.Delete(objs[1].Ref()); err != nil {
		t.Error(err)
		return
	}
	if tEnv.s.HasBlob(digest) {
		t.Fatalf("blob should be gone after the last referent")
	}
}

func TestCreateWithMissingBlob(t *testing.T) {
	o, err := NewObject(ClassFileAnnotation, tEnv.name(), tEnv.principal())
	if err != nil {
		t.Error(err)
		return
	}
	if err := o.SetBlobRef("feedfacefeedface"); err != nil {
		t.Error(err)
		return
	}
	if err := tEnv.s.Create(o); !errors.Is(err, ErrBlobNotFound) {
		t.Fatalf("creating with a dangling blob ref should fail. Got: %v", err)
	}
}
