// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging turns uploaded images into the PNG renditions stored with
// posts and projects: the full image, a square thumbnail and an OpenGraph
// card. It treats image bytes as opaque input and output.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // register the webp decoder
)

const (
	// ThumbnailSize is the edge length of post thumbnails.
	ThumbnailSize = 100

	// OpenGraph card dimensions.
	OpenGraphWidth  = 1200
	OpenGraphHeight = 630

	// MaxSourceBytes caps the accepted upload size.
	MaxSourceBytes = 10 << 20

	ContentTypePNG = "image/png"
)

// ErrNotImage is returned when the input cannot be decoded as an image.
var ErrNotImage = errors.New("imaging: not a supported image")

// Encoded is one rendition ready to persist or upload.
type Encoded struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
}

// Encoder is the image service consumed by the publishing code.
type Encoder interface {
	EncodePNG(src []byte) (*Encoded, error)
	Thumbnail(src []byte) (*Encoded, error)
	OpenGraph(src []byte) (*Encoded, error)
}

// Service implements Encoder with disintegration/imaging.
type Service struct{}

// New returns an image service.
func New() *Service { return &Service{} }

// EncodePNG re-encodes src as PNG at its original size.
func (s *Service) EncodePNG(src []byte) (*Encoded, error) {
	img, err := decode(src)
	if err != nil {
		return nil, err
	}
	return encode(img)
}

// Thumbnail crops src to a centred ThumbnailSize square.
func (s *Service) Thumbnail(src []byte) (*Encoded, error) {
	img, err := decode(src)
	if err != nil {
		return nil, err
	}
	return encode(imaging.Fill(img, ThumbnailSize, ThumbnailSize, imaging.Center, imaging.Lanczos))
}

// OpenGraph produces the social preview card for src.
func (s *Service) OpenGraph(src []byte) (*Encoded, error) {
	img, err := decode(src)
	if err != nil {
		return nil, err
	}
	return encode(imaging.Fill(img, OpenGraphWidth, OpenGraphHeight, imaging.Center, imaging.Lanczos))
}

func decode(src []byte) (image.Image, error) {
	if len(src) == 0 {
		return nil, ErrNotImage
	}
	if len(src) > MaxSourceBytes {
		return nil, fmt.Errorf("imaging: image exceeds %d bytes", MaxSourceBytes)
	}
	img, err := imaging.Decode(bytes.NewReader(src), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	return img, nil
}

func encode(img image.Image) (*Encoded, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("imaging: encode png: %w", err)
	}
	b := img.Bounds()
	return &Encoded{
		Data:        buf.Bytes(),
		ContentType: ContentTypePNG,
		Width:       b.Dx(),
		Height:      b.Dy(),
	}, nil
}
