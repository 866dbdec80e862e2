package entry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRefString(t *testing.T) {
	assert.Equal(t, "2:42", NewRef(2, 42).String())
	assert.Equal(t, "0:0", Ref{}.String())

	// Refs are comparable map keys; distinct kinds keep distinct id spaces.
	assert.NotEqual(t, NewRef(1, 42), NewRef(2, 42))
}
