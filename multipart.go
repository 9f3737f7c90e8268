package findmypet

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"strconv"
)

// ImageAttachment is an optional photo submitted with a listing.
type ImageAttachment struct {
	Filename string
	Data     []byte
}

// multipartForm accumulates the fields of a listing submission. Coordinates
// are validated as they are added: each component must parse to a finite
// number on its own, and an invalid latitude never blocks a valid longitude.
type multipartForm struct {
	buf    bytes.Buffer
	writer *multipart.Writer
	err    error
}

func newMultipartForm() *multipartForm {
	f := &multipartForm{}
	f.writer = multipart.NewWriter(&f.buf)
	return f
}

func (f *multipartForm) addField(name, value string) {
	if f.err != nil {
		return
	}
	f.err = f.writer.WriteField(name, value)
}

// addCoordinate appends the named coordinate only when raw parses to a
// finite number. It reports whether the field was sent.
func (f *multipartForm) addCoordinate(name, raw string) bool {
	v, ok := parseCoordinate(raw)
	if !ok {
		return false
	}
	f.addField(name, strconv.FormatFloat(v, 'f', -1, 64))
	return true
}

func (f *multipartForm) addImage(image *ImageAttachment) {
	if f.err != nil || image == nil {
		return
	}
	filename := image.Filename
	if filename == "" {
		filename = "image"
	}
	part, err := f.writer.CreateFormFile("image", filename)
	if err != nil {
		f.err = err
		return
	}
	_, f.err = part.Write(image.Data)
}

// encode closes the form and returns the body with its content type.
func (f *multipartForm) encode() (io.Reader, string, error) {
	if f.err != nil {
		return nil, "", fmt.Errorf("encode form: %w", f.err)
	}
	if err := f.writer.Close(); err != nil {
		return nil, "", fmt.Errorf("encode form: %w", err)
	}
	return &f.buf, f.writer.FormDataContentType(), nil
}
