package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFieldAddress(t *testing.T) {
	addr, err := ParseFieldAddress("role")
	require.NoError(t, err)
	assert.True(t, addr.Direct())
	assert.Equal(t, "role", addr.Column)

	addr, err = ParseFieldAddress("project__name")
	require.NoError(t, err)
	assert.False(t, addr.Direct())
	assert.Equal(t, "project", addr.Relation)
	assert.Equal(t, "name", addr.Column)
}

func TestParseFieldAddressRejectsDeepPaths(t *testing.T) {
	_, err := ParseFieldAddress("project__owner__name")
	require.Error(t, err)

	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestParseFieldAddressRejectsEmptyParts(t *testing.T) {
	for _, bad := range []string{"", "__name", "project__"} {
		_, err := ParseFieldAddress(bad)
		assert.Error(t, err, bad)
	}
}

func TestDataTypeNumeric(t *testing.T) {
	assert.True(t, TypeDecimal.Numeric())
	assert.True(t, TypeInteger.Numeric())
	assert.False(t, TypeString.Numeric())
	assert.False(t, TypeDate.Numeric())
	assert.False(t, TypeReference.Numeric())
}
