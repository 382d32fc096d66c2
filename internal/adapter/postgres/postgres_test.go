package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractSSLMode(t *testing.T) {
	assert.Equal(t, "disable", extractSSLMode("postgres://u:p@localhost/db?sslmode=disable"))
	assert.Equal(t, "verify-full", extractSSLMode("postgres://u:p@localhost/db?sslmode=VERIFY-FULL"))
	assert.Equal(t, "prefer (default)", extractSSLMode("postgres://u:p@localhost/db"))
	assert.Equal(t, "unknown", extractSSLMode("postgres://u:p@[::1"))
}

func TestQueryName(t *testing.T) {
	assert.Equal(t, "SELECT", queryName("select 1"))
	assert.Equal(t, "INSERT", queryName("\n\t\tINSERT INTO players"))
	assert.Equal(t, "unknown", queryName("   "))
}
