// Package server implements the MCP (Model Context Protocol) server for plate
// recognition.
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods are initialize, tools/list, tools/call and ping.
//
// # Available Tools
//
//   - plate_recognize: run the full pipeline on an image file
//   - plate_candidates: list plate-shaped regions without OCR
//   - plate_normalize: clean raw OCR text into a plate string
//   - plate_annotate: return the image with the result drawn on it
//   - plate_backends: report OCR backend availability
//
// Progress lines that the command line prints to stderr are returned in the
// plate_recognize result instead, since stdout carries the protocol.
//
// # Image Caching
//
// Decoded images are cached by path for the lifetime of the process, so
// plate_recognize followed by plate_annotate decodes the file once. Tools
// that take a path also accept "reload": true to drop the cached image and
// decode the file again after it changed on disk.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: the Go error string
//
// A run that finds no plate is not an error: the result has an empty plate.
//
// # Usage
//
//	p := pipeline.New(tesseract, rekognition, config.DefaultTuning())
//	srv := server.New(p, version)
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
