package pixst

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
)

var tEnv *testEnv

type testEnv struct {
	s       *Store
	DataDir string
}

func newTestEnv() (*testEnv, error) {
	tEnv := testEnv{
		DataDir: filepath.Join(os.TempDir(), "pixst-test", uuid.NewString()),
	}
	opts := NewDefaultStoreOptions().WithDataDir(tEnv.DataDir)
	opts.Logger = nil
	s, err := NewStore(opts)
	if err != nil {
		return nil, err
	}
	tEnv.s = s
	return &tEnv, nil
}

func (t testEnv) principal() Principal {
	return Principal{Name: uuid.NewString(), Group: "lab"}
}

func (t testEnv) name() string {
	return fmt.Sprintf("obj_name_%s", uuid.NewString())
}

func (t testEnv) payload(n int) []byte {
	return bytes.Repeat([]byte(uuid.NewString()), n)
}

func (t testEnv) project(p Principal) *Object {
	o, _ := NewObject(ClassProject, t.name(), p)
	return o
}

func (t testEnv) dataset(p Principal) *Object {
	o, _ := NewObject(ClassDataset, t.name(), p)
	return o
}

func (t testEnv) pngBytes(w, h int) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 31), G: uint8(y * 31), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
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
