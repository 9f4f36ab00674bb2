// Package jelly defines the data model of the Jelly RDF streaming protocol:
// stream options and their presets, the row and wire term types, frames,
// and the converter interfaces that bind a native RDF library to the
// encoder and decoders.
//
// Errors raised by the codec wrap ErrDeserialization, ErrSerialization or
// ErrTranscoding; incompatible stream options are reported as *OptionsError.
// Use Code to map any of them to a stable ErrorCode.
package jelly
