package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixedIDs_ReturnsSameID(t *testing.T) {
	gen := NewFixedIDs("import-1")

	assert.Equal(t, "import-1", gen.Generate())
	assert.Equal(t, "import-1", gen.Generate())
}

func TestFixedIDs_EmptyDefault(t *testing.T) {
	assert.Equal(t, "test-id", NewFixedIDs("").Generate())
}

func TestSequentialIDs_Counts(t *testing.T) {
	gen := NewSequentialIDs("car")

	assert.Equal(t, "car-1", gen.Generate())
	assert.Equal(t, "car-2", gen.Generate())
	assert.Equal(t, "id-1", NewSequentialIDs("").Generate())
}

func TestSequentialIDs_ThreadSafe(t *testing.T) {
	gen := NewSequentialIDs("x")
	const numGoroutines = 20

	seen := make(chan string, numGoroutines*10)
	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				seen <- gen.Generate()
			}
		}()
	}
	wg.Wait()
	close(seen)

	unique := make(map[string]bool)
	for id := range seen {
		unique[id] = true
	}
	assert.Len(t, unique, numGoroutines*10)
}
