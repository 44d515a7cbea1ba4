// Package api provides the client for the OpenAI-compatible Groq chat completions API.
package api

// GJSON paths for extracting values from completion responses.
const (
	// Streamed chunk paths
	PathDeltaContent = "choices.0.delta.content"
	PathFinishReason = "choices.0.finish_reason"

	// Non-streamed response paths
	PathMessageContent = "choices.0.message.content"

	// Error envelope, both in error responses and in-stream error events
	PathErrorMessage = "error.message"
	PathErrorType    = "error.type"

	// Model listing
	PathModelIDs = "data.#.id"
)
