package pixst

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strconv"

	"github.com/disintegration/imaging"
)

const thumbnailSize = 96

// ImportImage ingests an image file: the payload is stored once,
// content-addressed, the dimensions are recorded as metadata and a
// bounded-size jpeg thumbnail is rendered and stored as its own
// blob. Re-importing identical bytes shares the existing payload.
func (s *Store) ImportImage(name string, p Principal, r io.Reader) (*Object, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, err
	}
	img, err := imaging.Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotAnImage, name)
	}
	digest, _, err := s.PutBlob(bytes.NewReader(buf.Bytes()))
	if err != nil {
		return nil, err
	}
	thumb := imaging.Fit(img, thumbnailSize, thumbnailSize, imaging.Lanczos)
	var thumbBuf bytes.Buffer
	if err := imaging.Encode(&thumbBuf, thumb, imaging.JPEG); err != nil {
		return nil, err
	}
	thumbDigest, _, err := s.PutBlob(&thumbBuf)
	if err != nil {
		return nil, err
	}
	obj, err := NewObject(ClassImage, name, p)
	if err != nil {
		return nil, err
	}
	if err := obj.SetBlobRef(digest); err != nil {
		return nil, err
	}
	bounds := img.Bounds()
	obj.SetMeta(MetaKeyWidth, strconv.Itoa(bounds.Dx()))
	obj.SetMeta(MetaKeyHeight, strconv.Itoa(bounds.Dy()))
	obj.SetMeta(MetaKeyThumbnail, thumbDigest)
	contentType, err := contentTypeOf(name)
	if err != nil {
		return nil, err
	}
	obj.SetMeta(MetaKeyContentType, contentType)
	if err := s.Create(obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// Thumbnail returns the rendered thumbnail bytes of an image.
func (s *Store) Thumbnail(ref Ref) ([]byte, error) {
	obj, err := s.Get(ref)
	if err != nil {
		return nil, err
	}
	digest, ok := obj.GetMeta(MetaKeyThumbnail)
	if !ok {
		return nil, fmt.Errorf("%w: no thumbnail for %s", ErrBlobNotFound, ref)
	}
	return s.GetBlob(digest)
}

// contentTypeOf returns the official mime-type for a given filename
// extension.
func contentTypeOf(filename string) (string, error) {
	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		return "", ErrUnknownContentType
	}
	return contentType, nil
}
