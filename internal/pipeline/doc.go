// Package pipeline provides a framework for executing processing steps in
// sequence.
//
// Each spectrometer file moves through three stages: loading, ice-band
// detection, and radius estimation. Each stage is implemented as a Step
// that receives the accumulating SpectrumReport and can modify it.
//
// Design decision: We use a pipeline pattern instead of direct function
// calls because:
//  1. It allows easy addition/removal of steps without modifying core logic
//  2. It provides consistent error handling and logging across steps
//  3. It supports cancellation via context (per-file deadlines)
//
// The pipeline supports both individual files and batch processing with
// concurrency control using errgroup. Batch processing never lets one
// file's failure abort the rest of the batch: errors are recorded in that
// file's report and iteration continues.
package pipeline
