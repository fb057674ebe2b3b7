package util

import "errors"

var (
	ErrNoExtractableText   = errors.New("no extractable text found in material")
	ErrUnsupportedMaterial = errors.New("unsupported material file type")
)
