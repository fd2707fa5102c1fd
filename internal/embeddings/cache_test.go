package embeddings

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_ConstructsOncePerModel(t *testing.T) {
	opened := map[string]int{}
	c := NewCache(func(modelID string) (Provider, error) {
		opened[modelID]++
		_, model, err := ParseModelID(modelID)
		if err != nil {
			return nil, err
		}
		return NewOllama(&Config{Model: model}), nil
	})

	a, err := c.Get("ollama:a")
	require.NoError(t, err)
	again, err := c.Get("ollama:a")
	require.NoError(t, err)
	assert.Same(t, a, again)

	_, err = c.Get("ollama:b")
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"ollama:a": 1, "ollama:b": 1}, opened)
	assert.Equal(t, 2, c.Len())
}

func TestCache_FailuresNotCached(t *testing.T) {
	fail := true
	c := NewCache(func(modelID string) (Provider, error) {
		if fail {
			return nil, errors.New("backend down")
		}
		return NewOllama(&Config{Model: "m"}), nil
	})

	_, err := c.Get("ollama:m")
	require.Error(t, err)
	assert.Equal(t, 0, c.Len())

	fail = false
	p, err := c.Get("ollama:m")
	require.NoError(t, err)
	assert.NotNil(t, p)
	assert.Equal(t, 1, c.Len())
}
