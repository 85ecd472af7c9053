package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunRequiresDatabaseDSN(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DB_DSN", "")
	t.Setenv("JWT_ACCESS_SECRET", "secret")

	err := run()
	assert.ErrorContains(t, err, "failed to load config")
	assert.ErrorContains(t, err, "DB_DSN is required")
}
