package transcribe

// Exports for testing. These allow black-box tests to inject dependencies
// without modifying the public API.

// NewTestTranscriber creates an OpenAITranscriber with a mock audioTranscriber.
func NewTestTranscriber(client audioTranscriber, opts ...TranscriberOption) *OpenAITranscriber {
	return newTranscriber(client, opts...)
}

// Function exports for unit testing internal logic.
var (
	BuildRequest  = buildRequest
	ClassifyError = classifyError
)
