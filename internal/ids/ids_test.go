package ids

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIsUniqueAndValid(t *testing.T) {
	seen := make(map[string]struct{}, 100)
	for i := 0; i < 100; i++ {
		id := New()
		assert.True(t, Valid(id))
		_, dup := seen[id]
		assert.False(t, dup)
		seen[id] = struct{}{}
	}
}

func TestValidRejectsGarbage(t *testing.T) {
	assert.False(t, Valid(""))
	assert.False(t, Valid("not-an-id"))
}
