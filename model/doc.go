// Package model defines the provider-agnostic abstractions and concrete
// helpers for interacting with language models from the chat engine.
//
// Core goals:
//   - Unify streaming + non-streaming generation behind a single interface
//   - Speak core.Message so providers convert directly from the conversation
//   - Keep request/response shapes minimal and transport independent
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Providers (OpenAI, Anthropic) implement the Model interface from this
// package so the chat engine remains decoupled from vendor SDKs.
package model
