// Package pipeline runs plate recognition on one still image from end to end.
//
// A run moves through these states:
//
//	idle -> preprocessed -> candidates_found -> validating -> accepted | rejected
//
// Preprocessing and the detection strategies come from the imaging and
// detection packages. Consolidated candidates then go through a preliminary
// screen: boxes covering too much of the frame are dropped, at most ten are
// cut out with a 5 px margin, and a quick OCR pass keeps the ones that read
// like text. The first five survivors are recognized in ascending area order
// with the full OCR pass; the secondary backend's normalized text is
// preferred, and the run stops at the first text that passes final
// validation.
//
// Failures are contained. A strategy or OCR attempt that fails becomes a
// warning on the Result; a panic during detection falls back to the whole
// image as the only candidate. Only an unreadable input (LoadError,
// ErrNoImage) fails the run.
package pipeline
