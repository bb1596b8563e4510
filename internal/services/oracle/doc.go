// Package oracle implements the OpenRouter-backed alignment client. It
// submits the evidence bundle as a single multimodal chat completion and
// decodes the transition candidates from the response. The client makes
// exactly one attempt per call; retry policy belongs to the caller.
package oracle
