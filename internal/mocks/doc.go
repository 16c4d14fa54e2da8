// Package mocks provides shared test doubles for the generation pipeline.
// Mocks live here rather than in individual test files so that stage tests
// and engine tests can share the same configurable fakes.
package mocks
