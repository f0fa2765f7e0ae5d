package pixst

import (
	"bytes"
	"errors"
	"testing"

	"github.com/disintegration/imaging"
)

func TestImportImage(t *testing.T) {
	p := tEnv.principal()
	img, err := tEnv.s.ImportImage("nucleus.png", p, bytes.NewReader(tEnv.pngBytes(640, 480)))
	if err != nil {
		t.Error(err)
		return
	}
	if w, _ := img.GetMeta(MetaKeyWidth); w != "640" {
		t.Fatalf("wrong width. Got: %s", w)
	}
	if h, _ := img.GetMeta(MetaKeyHeight); h != "480" {
		t.Fatalf("wrong height. Got: %s", h)
	}
	if ct, _ := img.GetMeta(MetaKeyContentType); ct != "image/png" {
		t.Fatalf("wrong content type. Got: %s", ct)
	}
	if img.BlobRef() == "" {
		t.Fatalf("payload digest is missing")
	}
	if !tEnv.s.HasBlob(img.BlobRef()) {
		t.Fatalf("payload blob is missing")
	}
}

func TestImportImageThumbnail(t *testing.T) {
	p := tEnv.principal()
	img, err := tEnv.s.ImportImage("overview.png", p, bytes.NewReader(tEnv.pngBytes(640, 480)))
	if err != nil {
		t.Error(err)
		return
	}
	data, err := tEnv.s.Thumbnail(img.Ref())
	if err != nil {
		t.Error(err)
		return
	}
	thumb, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		t.Error(err)
		return
	}
	bounds := thumb.Bounds()
	if bounds.Dx() > thumbnailSize || bounds.Dy() > thumbnailSize {
		t.Fatalf("thumbnail exceeds the bound. Got: %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestImportImageDedup(t *testing.T) {
	p := tEnv.principal()
	data := tEnv.pngBytes(32, 32)
	i1, err := tEnv.s.ImportImage("a.png", p, bytes.NewReader(data))
	if err != nil {
		t.Error(err)
		return
	}
	i2, err := tEnv.s.ImportImage("b.png", p, bytes.NewReader(data))
	if err != nil {
		t.Error(err)
		return
	}
	if i1.BlobRef() != i2.BlobRef() {
		t.Fatalf("identical pixels should share one payload blob")
	}
	count, err := tEnv.s.BlobRefCount(i1.BlobRef())
	if err != nil {
		t.Error(err)
		return
	}
	if count != 2 {
		t.Fatalf("expected 2 referents of the shared payload. Got: %d", count)
	}
}

func TestImportNotAnImage(t *testing.T) {
	_, err := tEnv.s.ImportImage("notes.png", tEnv.principal(), bytes.NewReader(tEnv.payload(4)))
	if !errors.Is(err, ErrNotAnImage) {
		t.Fatalf("expected ErrNotAnImage. Got: %v", err)
	}
}

func TestImportUnknownContentType(t *testing.T) {
	_, err := tEnv.s.ImportImage("scan.wobble", tEnv.principal(), bytes.NewReader(tEnv.pngBytes(8, 8)))
	if !errors.Is(err, ErrUnknownContentType) {
		t.Fatalf("expected ErrUnknownContentType. Got: %v", err)
	}
}
