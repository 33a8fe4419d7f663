// Package llm talks to the two text-generation collaborators used by the
// chat assistant: a hosted chat-completion API and a local model server.
package llm
