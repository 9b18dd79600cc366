// Package normalize maps arbitrary numeric samples to 8-bit intensities using
// robust percentile clipping.
//
// Normalization is split in two phases so it can be applied to data that is
// streamed in blocks:
//   - Compute derives Params (the 2nd and 98th percentiles) once from a
//     complete or sampled statistical view of the whole array.
//   - Params.Apply / Params.ApplyBlock clip, rescale and truncate each sample.
//
// Because the percentiles are never recomputed per block, normalizing an array
// in one call or in any number of chunks gives identical output.
package normalize
