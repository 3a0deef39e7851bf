package storage

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestObjectName(t *testing.T) {
	name := objectName()

	require.True(t, strings.HasSuffix(name, ".jpg"))

	_, err := uuid.Parse(strings.TrimSuffix(name, ".jpg"))
	require.NoError(t, err)
}

func TestObjectNameUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		name := objectName()
		_, exists := seen[name]
		require.False(t, exists, "повторившееся имя объекта: %s", name)
		seen[name] = struct{}{}
	}
}
