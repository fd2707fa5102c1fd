// Package mock provides a deterministic embeddings.Provider for tests.
package mock
