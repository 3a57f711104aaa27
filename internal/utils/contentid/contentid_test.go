package contentid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewProducesUniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := New()
		assert.True(t, IsValid(id), "generated id should be valid: %s", id)
		assert.False(t, seen[id], "duplicate id generated: %s", id)
		seen[id] = true
	}
}

func TestIsValidRejectsGarbage(t *testing.T) {
	assert.False(t, IsValid(""))
	assert.False(t, IsValid("not-a-ulid"))
	assert.False(t, IsValid("../../etc/passwd"))
}
