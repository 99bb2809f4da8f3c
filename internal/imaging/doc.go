// Package imaging provides the vision primitives used by the plate pipeline.
//
// This package implements image loading, grayscale conversion, edge-preserving
// smoothing, contrast-limited adaptive histogram equalization, global (Otsu) and
// adaptive thresholds, rectangular morphology, Canny edge detection, connected
// components, resampling and annotation. Preprocess combines them into the named
// RepresentationSet that candidate detection scans.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, Min is inclusive (top-left) and Max is exclusive (bottom-right)
//
// # Binary Images
//
// Binary images are *image.Gray values holding only Foreground (255) and
// Background (0). Every operation returns a new zero-origin image and never
// modifies its input, so a representation can be shared by several detection
// strategies without copying.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. All other functions are
// stateless and may run concurrently.
package imaging
