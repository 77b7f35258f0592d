package result

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDGenerator(t *testing.T) {

	gen := NewIDGenerator()
	assert.Equal(t, int64(0), gen.Last())
	assert.Equal(t, int64(1), gen.GetNext())
	assert.Equal(t, int64(2), gen.GetNext())
	assert.Equal(t, int64(2), gen.Last())

	gen.Reset()
	assert.Equal(t, int64(1), gen.GetNext())
}

func TestIDGeneratorConcurrent(t *testing.T) {

	gen := NewIDGenerator()

	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				gen.GetNext()
			}
		}()
	}

	wg.Wait()
	assert.Equal(t, int64(800), gen.Last())
}
