package graph

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/naivary/pixst"
)

var tEnv *testEnv

type testEnv struct {
	s       *pixst.Store
	d       *Duplicator
	DataDir string
}

func newTestEnv() (*testEnv, error) {
	tEnv := testEnv{
		DataDir: filepath.Join(os.TempDir(), "pixst-graph-test", uuid.NewString()),
	}
	opts := pixst.NewDefaultStoreOptions().WithDataDir(tEnv.DataDir)
	opts.Logger = nil
	s, err := pixst.NewStore(opts)
	if err != nil {
		return nil, err
	}
	tEnv.s = s
	tEnv.d = NewDuplicator(s)
	return &tEnv, nil
}

func (t testEnv) principal() pixst.Principal {
	return pixst.Principal{Name: uuid.NewString(), Group: "lab"}
}

func (t testEnv) name() string {
	return fmt.Sprintf("obj_name_%s", uuid.NewString())
}

func (t testEnv) create(class pixst.Class, p pixst.Principal) *pixst.Object {
	o, err := pixst.NewObject(class, t.name(), p)
	if err != nil {
		panic(err)
	}
	if err := t.s.Create(o); err != nil {
		panic(err)
	}
	return o
}

func (t testEnv) link(class pixst.Class, from, to pixst.Ref, p pixst.Principal) *pixst.Object {
	l, err := pixst.NewLink(class, from, to, p)
	if err != nil {
		panic(err)
	}
	if err := t.s.Create(l); err != nil {
		panic(err)
	}
	return l
}

func (t testEnv) image(p pixst.Principal) *pixst.Object {
	// unique pixel data per image so fixtures never share a blob
	seed := []byte(uuid.NewString())
	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.NRGBA{R: seed[(x+y)%len(seed)], G: uint8(x * 15), B: uint8(y * 15), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	o, err := t.s.ImportImage(t.name()+".png", p, &buf)
	if err != nil {
		panic(err)
	}
	return o
}

func (t testEnv) roi(parent pixst.Ref, p pixst.Principal) *pixst.Object {
	o, err := pixst.NewObject(pixst.ClassRoi, t.name(), p)
	if err != nil {
		panic(err)
	}
	if err := o.SetParent(parent); err != nil {
		panic(err)
	}
	if err := t.s.Create(o); err != nil {
		panic(err)
	}
	return o
}

// fixture is a small project tree: a project containing one dataset
// which contains one image, the image carrying a comment annotation
// and a roi.
type fixture struct {
	owner   pixst.Principal
	project *pixst.Object
	dataset *pixst.Object
	image   *pixst.Object
	comment *pixst.Object
	roi     *pixst.Object
}

func (t testEnv) fixture() *fixture {
	p := t.principal()
	f := &fixture{
		owner:   p,
		project: t.create(pixst.ClassProject, p),
		dataset: t.create(pixst.ClassDataset, p),
		image:   t.image(p),
		comment: t.create(pixst.ClassCommentAnnotation, p),
	}
	f.roi = t.roi(f.image.Ref(), p)
	t.link(pixst.ClassProjectDatasetLink, f.project.Ref(), f.dataset.Ref(), p)
	t.link(pixst.ClassDatasetImageLink, f.dataset.Ref(), f.image.Ref(), p)
	t.link(pixst.ClassImageAnnotationLink, f.image.Ref(), f.comment.Ref(), p)
	return f
}

func (t testEnv) destroy() error {
	if err := t.s.Shutdown(); err != nil {
		return err
	}
	return os.RemoveAll(t.DataDir)
}

func TestMain(t *testing.M) {
	te, err := newTestEnv()
	if err != nil {
		log.Fatal(err)
	}
	tEnv = te
	code := t.Run()
	if err := te.destroy(); err != nil {
		log.Fatal(err)
	}
	os.Exit(code)
}
