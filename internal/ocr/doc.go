// Package ocr reads the characters of a plate crop through two independent
// text recognition backends.
//
// # Backends
//
// Engine is the common interface. Two implementations ship with the package:
//
//   - Tesseract: the primary backend, the native Tesseract library via
//     gosseract/v2. Understands page segmentation modes and character
//     whitelists. Requires cgo; without it every call returns ErrUnavailable.
//   - Rekognition: the secondary backend, AWS Rekognition DetectText via
//     aws-sdk-go-v2. A general-purpose scene text reader that needs no
//     preprocessing, but credentials and network access.
//
// Unavailable stands in for a backend that is disabled. Engines are created by
// the caller and injected; they are safe for concurrent use.
//
// # Prerequisites
//
// Tesseract must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr libtesseract-dev
//   - macOS: brew install tesseract
//
// Trained data is looked up in TESSDATA_PREFIX, then in a tessdata directory
// next to the binary, then in the library default.
//
// # Letter isolation
//
// Isolate converts a crop into a binary mask that holds only character-shaped
// components, with plate frame, banner and screws removed. Tesseract reads
// that mask far more reliably than the raw crop.
//
// # Recognition passes
//
// Recognizer.Quick is the cheap screening pass used on every candidate.
// Recognizer.Full runs the complete attempt set per backend (mask under three
// page segmentation modes, equalized and inverted binarizations) and keeps
// the longest text of at least five characters. An attempt that fails is
// skipped; it never aborts the pass.
package ocr
