package pixsttest

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/naivary/pixst"
	"github.com/naivary/pixst/server"
)

// Env is a ready to use store with an HTTP test server on top.
type Env struct {
	Store  *pixst.Store
	H      *server.Handler
	TS     *httptest.Server
	Caller pixst.Principal
}

func NewEnv() (*Env, error) {
	dir := filepath.Join(os.TempDir(), "pixst", uuid.NewString())
	opts := pixst.NewDefaultStoreOptions().WithDataDir(dir)
	// turn off default logging of badger
	opts.Logger = nil
	store, err := pixst.NewStore(opts)
	if err != nil {
		return nil, err
	}
	env := &Env{
		Store:  store,
		Caller: pixst.Principal{Name: uuid.NewString(), Group: "lab"},
	}
	env.H = server.NewHandler(store, server.DefaultHandlerOptions())
	env.TS = httptest.NewServer(env.H)
	return env, nil
}

func (e *Env) Owner() string {
	return uuid.NewString()
}

func (e *Env) Principal() pixst.Principal {
	return pixst.Principal{Name: e.Owner(), Group: "lab"}
}

// Name returns a random name in the format obj_name_<id>.
func (e *Env) Name() string {
	return fmt.Sprintf("obj_name_%s", uuid.NewString())
}

// Project creates and stores a project owned by p.
func (e *Env) Project(p pixst.Principal) (*pixst.Object, error) {
	obj, err := pixst.NewObject(pixst.ClassProject, e.Name(), p)
	if err != nil {
		return nil, err
	}
	if err := e.Store.Create(obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// Dataset creates and stores a dataset owned by p.
func (e *Env) Dataset(p pixst.Principal) (*pixst.Object, error) {
	obj, err := pixst.NewObject(pixst.ClassDataset, e.Name(), p)
	if err != nil {
		return nil, err
	}
	if err := e.Store.Create(obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// Image imports a generated png owned by p.
func (e *Env) Image(p pixst.Principal) (*pixst.Object, error) {
	return e.Store.ImportImage(e.Name()+".png", p, bytes.NewReader(PNG(8, 8)))
}

// Link creates and stores a link between the two objects.
func (e *Env) Link(class pixst.Class, from, to *pixst.Object, p pixst.Principal) (*pixst.Object, error) {
	link, err := pixst.NewLink(class, from.Ref(), to.Ref(), p)
	if err != nil {
		return nil, err
	}
	if err := e.Store.Create(link); err != nil {
		return nil, err
	}
	return link, nil
}

// PNG renders a small gradient png, unique per dimensions.
func PNG(w, h int) []byte {
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

// NewUploadRequest builds a multipart upload request for the import
// endpoint.
func (e *Env) NewUploadRequest(url, formKey, filename string, data []byte) (*http.Request, error) {
	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile(formKey, filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, bytes.NewReader(data)); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	req, err := http.NewRequest(http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req, nil
}

func (e *Env) Destroy() error {
	e.TS.Close()
	if err := e.Store.Shutdown(); err != nil {
		return err
	}
	return os.RemoveAll(e.Store.BasePath)
}
