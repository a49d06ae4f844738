package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenRejectsBadURL(t *testing.T) {
	_, err := Open("://not-a-dsn")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open db:")
}
