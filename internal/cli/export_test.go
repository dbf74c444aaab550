package cli

// Export internal functions for testing.

// RunTranscribe exports runTranscribe for testing.
var RunTranscribe = runTranscribe

// RunPlan exports runPlan for testing.
var RunPlan = runPlan

// RunDoctor exports runDoctor for testing.
var RunDoctor = runDoctor

// RunConfigSet exports runConfigSet for testing.
var RunConfigSet = runConfigSet

// RunConfigGet exports runConfigGet for testing.
var RunConfigGet = runConfigGet

// RunConfigList exports runConfigList for testing.
var RunConfigList = runConfigList

// WriteFileExclusive exports writeFileExclusive for testing.
var WriteFileExclusive = writeFileExclusive

// CheckOutputFree exports checkOutputFree for testing.
var CheckOutputFree = checkOutputFree

// WriteStdout exports writeStdout for testing.
var WriteStdout = writeStdout

// MaskKey exports maskKey for testing.
var MaskKey = maskKey

// RenderPreview exports renderPreview for testing.
var RenderPreview = renderPreview

// Setup exports setup for testing.
var Setup = setup

// GlobalFlags exports globalFlags for testing.
type GlobalFlags = globalFlags

// TranscribeOptions exports transcribeOptions for testing.
type TranscribeOptions = transcribeOptions
