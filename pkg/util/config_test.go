package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrefixConfig(t *testing.T) {
	assert.Equal(t, "builtins", PrefixConfig("", "builtins"))
	assert.Equal(t, "infer.builtins", PrefixConfig("infer", "builtins"))
}
