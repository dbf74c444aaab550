package audio

import "time"

// Export internal functions for testing.
// This file is only compiled during tests (suffix _test.go).

// TranscodeArgs exports transcodeArgs for testing.
var TranscodeArgs = transcodeArgs

// SegmentArgs exports segmentArgs for testing.
var SegmentArgs = segmentArgs

// ParseProbeDuration exports parseProbeDuration for testing.
var ParseProbeDuration = parseProbeDuration

// StatWith exports statWith for testing.
var StatWith = statWith

// Timeouts exports the subprocess budgets for testing.
func Timeouts() (transcode, probe, segment time.Duration) {
	return transcodeTimeout, probeTimeout, segmentTimeout
}

// --- Dependency injection exports ---

// CommandRunner exports commandRunner interface for testing.
type CommandRunner = commandRunner

// ToolLocator exports toolLocator interface for testing.
type ToolLocator = toolLocator

// TempDirCreator exports tempDirCreator interface for testing.
type TempDirCreator = tempDirCreator

// TempFileCreator exports tempFileCreator interface for testing.
type TempFileCreator = tempFileCreator

// FileRemover exports fileRemover interface for testing.
type FileRemover = fileRemover

// FileStatter exports fileStatter interface for testing.
type FileStatter = fileStatter
