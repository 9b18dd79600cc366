// Package convert drives the batch conversion of microscopy files to 8-bit TIFF.
//
// Files are processed strictly one at a time, in the order given:
//
//	open (lazy) -> statistics pass -> normalize in place -> uint8 -> save <stem>.tif
//
// The progress tracker advances once per attempted file whether or not the
// file converted. What happens after a failure is governed by the
// FailurePolicy: FailFast stops the batch at the first error, Continue
// attempts every file and reports all failures at the end.
package convert
