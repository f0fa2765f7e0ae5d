package client

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"emperror.dev/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/schollz/progressbar/v3"

	"github.com/naivary/pixst/configuration"
	"github.com/naivary/pixst/models"
)

const (
	headerOwner = "X-Pixst-Owner"
	headerGroup = "X-Pixst-Group"
)

// Client wraps the HTTP API for the command line.
type Client struct {
	cfg configuration.Config
	hc  *http.Client
}

func New(cfg *configuration.Config) *Client {
	return &Client{
		cfg: *cfg,
		hc:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) bearer() (string, error) {
	if c.cfg.JwtKey == "" {
		return "", nil
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": c.cfg.Owner,
		"grp": c.cfg.Group,
		"exp": time.Now().Add(time.Minute * 100).Unix(),
	})
	tokenStr, err := token.SignedString([]byte(c.cfg.JwtKey))
	if err != nil {
		return "", errors.Wrap(err, "cannot sign bearer token")
	}
	return "Bearer " + tokenStr, nil
}

func (c *Client) send(req *http.Request) ([]byte, error) {
	req.Header.Set(headerOwner, c.cfg.Owner)
	req.Header.Set(headerGroup, c.cfg.Group)
	bearer, err := c.bearer()
	if err != nil {
		return nil, err
	}
	if bearer != "" {
		req.Header.Set("Authorization", bearer)
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read response body")
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, errors.Errorf("server answered %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	return body, nil
}

func (c *Client) url(path string) string {
	return c.cfg.Url + "/pixst" + path
}

func (c *Client) CreateObject(m *models.Object) (*models.Object, error) {
	buf := bytes.Buffer{}
	if err := json.NewEncoder(&buf).Encode(m); err != nil {
		return nil, err
	}
	req, err := http.NewRequest(http.MethodPost, c.url("/objects"), &buf)
	if err != nil {
		return nil, err
	}
	body, err := c.send(req)
	if err != nil {
		return nil, err
	}
	created := &models.Object{}
	if err := json.Unmarshal(body, created); err != nil {
		return nil, errors.Wrap(err, "cannot unmarshal created object")
	}
	return created, nil
}

func (c *Client) GetObject(ref string) (*models.Object, error) {
	req, err := http.NewRequest(http.MethodGet, c.url("/objects/"+refToPath(ref)), nil)
	if err != nil {
		return nil, err
	}
	body, err := c.send(req)
	if err != nil {
		return nil, err
	}
	obj := &models.Object{}
	if err := json.Unmarshal(body, obj); err != nil {
		return nil, errors.Wrap(err, "cannot unmarshal object")
	}
	return obj, nil
}

func (c *Client) DeleteObject(ref string) error {
	req, err := http.NewRequest(http.MethodDelete, c.url("/objects/"+refToPath(ref)), nil)
	if err != nil {
		return err
	}
	_, err = c.send(req)
	return err
}

// Query returns the caller's objects filtered by class and metadata.
func (c *Client) Query(m models.QueryRequest) ([]*models.Object, error) {
	buf := bytes.Buffer{}
	if err := json.NewEncoder(&buf).Encode(m); err != nil {
		return nil, err
	}
	req, err := http.NewRequest(http.MethodPost, c.url("/query"), &buf)
	if err != nil {
		return nil, err
	}
	body, err := c.send(req)
	if err != nil {
		return nil, err
	}
	objs := []*models.Object{}
	if err := json.Unmarshal(body, &objs); err != nil {
		return nil, errors.Wrap(err, "cannot unmarshal objects")
	}
	return objs, nil
}

// Import uploads an image file, showing a progress bar unless quiet.
func (c *Client) Import(path string, quiet bool) (*models.Object, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open %s", path)
	}
	defer file.Close()
	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	var reader io.Reader = body
	if !quiet {
		bar := progressbar.DefaultBytes(int64(body.Len()), "uploading")
		reader = io.TeeReader(body, bar)
	}
	req, err := http.NewRequest(http.MethodPost, c.url("/import"), reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	respBody, err := c.send(req)
	if err != nil {
		return nil, err
	}
	obj := &models.Object{}
	if err := json.Unmarshal(respBody, obj); err != nil {
		return nil, errors.Wrap(err, "cannot unmarshal imported object")
	}
	return obj, nil
}

// Duplicate submits a duplication and returns the queued op.
func (c *Client) Duplicate(m models.DuplicateRequest) (models.Op, error) {
	buf := bytes.Buffer{}
	if err := json.NewEncoder(&buf).Encode(m); err != nil {
		return models.Op{}, err
	}
	req, err := http.NewRequest(http.MethodPost, c.url("/duplicate"), &buf)
	if err != nil {
		return models.Op{}, err
	}
	body, err := c.send(req)
	if err != nil {
		return models.Op{}, err
	}
	op := models.Op{}
	if err := json.Unmarshal(body, &op); err != nil {
		return op, errors.Wrap(err, "cannot unmarshal op")
	}
	return op, nil
}

func (c *Client) Op(id string) (models.Op, error) {
	req, err := http.NewRequest(http.MethodGet, c.url("/ops/"+id), nil)
	if err != nil {
		return models.Op{}, err
	}
	body, err := c.send(req)
	if err != nil {
		return models.Op{}, err
	}
	op := models.Op{}
	if err := json.Unmarshal(body, &op); err != nil {
		return op, errors.Wrap(err, "cannot unmarshal op")
	}
	return op, nil
}

// Wait polls the op until it is done or failed. A failed op is
// returned as an error.
func (c *Client) Wait(id string) (models.Op, error) {
	pause := time.Duration(c.cfg.BarPause) * time.Millisecond
	for {
		op, err := c.Op(id)
		if err != nil {
			return op, err
		}
		switch op.Status {
		case models.OpDone:
			return op, nil
		case models.OpFailed:
			return op, errors.Errorf("duplication failed: %s", op.Error)
		}
		time.Sleep(pause)
	}
}

// refToPath turns Class:ID into Class/ID for the URL.
func refToPath(ref string) string {
	for i := range ref {
		if ref[i] == ':' {
			return ref[:i] + "/" + ref[i+1:]
		}
	}
	return ref
}
