// Package models contains data types and constants for the Groq chat completions API.
package models

import "strings"

// Endpoints for the OpenAI-compatible Groq API
const (
	DefaultBaseURL  = "https://api.groq.com/openai/v1"
	PathCompletions = "/chat/completions"
	PathModels      = "/models"
)

// StreamDone is the data payload of the terminal server-sent event.
const StreamDone = "[DONE]"

// DefaultGreeting seeds every new transcript.
const DefaultGreeting = "Zaril AI"

// Model names a completion model served by the remote service
type Model struct {
	Name        string
	Description string
}

// Known models
var (
	ModelLlama33Versatile = Model{
		Name:        "llama-3.3-70b-versatile",
		Description: "Llama 3.3 70B, general purpose",
	}

	ModelLlama31Instant = Model{
		Name:        "llama-3.1-8b-instant",
		Description: "Llama 3.1 8B, low latency",
	}

	ModelGPTOSS120B = Model{
		Name:        "openai/gpt-oss-120b",
		Description: "GPT-OSS 120B",
	}

	ModelQwen332B = Model{
		Name:        "qwen/qwen3-32b",
		Description: "Qwen3 32B",
	}

	// DefaultModel is used when no model is configured
	DefaultModel = ModelLlama33Versatile
)

// AllModels returns the models known at build time
func AllModels() []Model {
	return []Model{ModelLlama33Versatile, ModelLlama31Instant, ModelGPTOSS120B, ModelQwen332B}
}

// ModelFromName returns a Model by its name. Unknown names are passed through
// so that newly released models can be used without a rebuild.
func ModelFromName(name string) Model {
	name = strings.TrimSpace(name)
	for _, m := range AllModels() {
		if m.Name == name {
			return m
		}
	}
	if name == "" {
		return DefaultModel
	}
	return Model{Name: name}
}

// DefaultHeaders returns the headers sent with every API request
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
		"User-Agent":   "zaril/1 (+https://github.com/diogo/zaril)",
	}
}

// StreamHeaders returns the headers for a streamed completion request
func StreamHeaders() map[string]string {
	h := DefaultHeaders()
	h["Accept"] = "text/event-stream"
	h["Cache-Control"] = "no-cache"
	return h
}
