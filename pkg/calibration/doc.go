// Package calibration defines the types used by the gimbal calibration
// workflow. It contains:
//
//   - State: the discrete steps of the interactive flow
//   - Stage: the two calibration stages offered by the service tool
//   - Result: the outcome of a run, shared by the composer and the CLI
//
// These types live in their own package so that the composer, the event hub
// payloads and the command line code agree on names.
package calibration
