// Package dataset provides a lazily loaded, block-streamed view over
// multi-dimensional microscopy data.
//
// A Handle is opened from a file path. Sample values are exposed as float64
// blocks of a fixed size in C (row-major) order regardless of the on-disk
// element type. With lazy loading (the default) nothing is read until the
// blocks are iterated, and only one block is held in memory at a time.
//
// Elementwise transforms registered with Map are applied to each block as it
// is read. ChangeDtype declares the element type the writer should use, and
// Save encodes the result as a grayscale TIFF.
//
// Supported inputs are NumPy .npy arrays (read out of core) and TIFF, PNG and
// BMP images.
package dataset
