package runtime

import (
	"errors"
	"testing"

	"github.com/docker/docker/errdefs"
	"github.com/stretchr/testify/assert"
)

type missingErr struct{}

func (missingErr) Error() string { return "no such thing" }
func (missingErr) NotFound()     {}

func TestIsNotFound(t *testing.T) {
	assert.False(t, IsNotFound(nil))
	assert.False(t, IsNotFound(errors.New("boom")))
	assert.True(t, IsNotFound(missingErr{}))
	assert.True(t, IsNotFound(errdefs.NotFound(errors.New("no such container"))))
}
