package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnhancedErrorWrapping(t *testing.T) {
	base := stderrors.New("disk full")
	err := New(base).
		Component("datastore").
		Category(CategoryDatabase).
		Context("operation", "create_record").
		Build()

	assert.Equal(t, "disk full", err.Error())
	assert.True(t, Is(err, base), "wrapped error should match the original")

	var ee *EnhancedError
	require.True(t, As(err, &ee))
	assert.Equal(t, "datastore", ee.Component)
	assert.Equal(t, CategoryDatabase, ee.Category)
	assert.Equal(t, "create_record", ee.Context["operation"])
}

func TestCategoryMatching(t *testing.T) {
	err := Newf("connection refused").Category(CategoryNetwork).Build()
	other := Newf("timeout").Category(CategoryNetwork).Build()

	assert.True(t, Is(err, other), "errors with the same category should match")
	assert.Equal(t, CategoryNetwork, CategoryOf(err))
	assert.Equal(t, CategoryGeneric, CategoryOf(stderrors.New("plain")))
}
