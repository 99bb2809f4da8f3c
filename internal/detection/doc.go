// Package detection finds rectangular regions that may contain a license plate.
//
// This package implements three independent candidate strategies over the
// binary representations produced by imaging.Preprocess, and the consolidation
// step that merges their output into one ordered list.
//
// # Strategies
//
//   - Contours: slight dilation, then the outer contour of every blob
//   - Components: 8-connected components with their own pixel areas
//   - Edges: heavy dilation of the Canny map, then outer contours, with a
//     fixed lower score
//
// Every strategy applies the same geometric constraint table (area, width,
// height and aspect ratio, see config.DetectionTuning). Strategies are pure
// functions; DefaultInvocations lists which representation each one scans and
// RunStrategies isolates failures per invocation in a StrategyResult.
//
// # Consolidation
//
// Boxes overlapping with IoU above 0.3 are duplicates and the smaller one is
// kept. The result is sorted by ascending area: over-large boxes are usually
// background clutter, so the tightest region is tried first.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - Bounding boxes use inclusive top-left and exclusive bottom-right
//
// # Confidence Scores
//
// Scores are in [0, 1]:
//   - 0.5 base for any box that passes the constraint table
//   - +0.3 when the aspect ratio is in [2, 6]
//   - +0.2 when the area is in [1000, 60000]
//   - 0.6 fixed for edge detections, 0.1 for the whole-image fallback
package detection
