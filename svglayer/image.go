package svglayer

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var errNoResolver = errors.New("svg: external images require an ImageResolver")

// loadImage decodes the image referenced by href, caching the result.
func (c *compiler) loadImage(href string) (*Image, error) {
	if img, ok := c.images[href]; ok {
		return img, nil
	}
	var (
		img image.Image
		err error
	)
	if strings.HasPrefix(href, "data:") {
		img, err = decodeDataURI(href)
	} else if c.opts.ImageResolver != nil {
		img, err = c.opts.ImageResolver(href)
	} else {
		err = errNoResolver
	}
	if err != nil {
		return nil, err
	}
	out := &Image{Img: img}
	c.images[href] = out
	return out, nil
}

// DirResolver returns an ImageResolver loading the images from the
// file system. Relative references are resolved against dir.
func DirResolver(dir string) ImageResolver {
	return func(href string) (image.Image, error) {
		u, err := url.Parse(href)
		if err != nil {
			return nil, err
		}
		if u.Scheme != "" && u.Scheme != "file" {
			return nil, fmt.Errorf("svg: unsupported image location %q", href)
		}
		path := filepath.FromSlash(u.Path)
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		img, _, err := image.Decode(f)
		return img, err
	}
}

// decodeDataURI decodes URIs of the form data:[<mediatype>][;base64],<data>
func decodeDataURI(uri string) (image.Image, error) {
	header, data, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("svg: invalid data URI")
	}
	mediaType, _, _ := strings.Cut(header, ";")
	if strings.TrimSpace(mediaType) == "image/svg+xml" {
		return nil, fmt.Errorf("svg: nested svg images are not supported")
	}
	var raw []byte
	if strings.HasSuffix(header, ";base64") {
		// line breaks are common in embedded images
		data = strings.Map(func(r rune) rune {
			if r == ' ' || r == '\n' || r == '\r' || r == '\t' {
				return -1
			}
			return r
		}, data)
		var err error
		raw, err = base64.StdEncoding.DecodeString(data)
		if err != nil {
			raw, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(data, "="))
			if err != nil {
				return nil, fmt.Errorf("svg: invalid base64 image data: %s", err)
			}
		}
	} else {
		s, err := url.PathUnescape(data)
		if err != nil {
			return nil, fmt.Errorf("svg: invalid image data: %s", err)
		}
		raw = []byte(s)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("svg: decoding image: %w", err)
	}
	return img, nil
}
