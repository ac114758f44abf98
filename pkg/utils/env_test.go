package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnv(t *testing.T) {
	assert.Equal(t, "fallback", Env("STATIONSTATS_TEST_UNSET", "fallback"))

	t.Setenv("STATIONSTATS_TEST_SET", "value")
	assert.Equal(t, "value", Env("STATIONSTATS_TEST_SET", "fallback"))
}

func TestEnvInt(t *testing.T) {
	assert.Equal(t, 7, EnvInt("STATIONSTATS_TEST_UNSET", 7))

	t.Setenv("STATIONSTATS_TEST_INT", "42")
	assert.Equal(t, 42, EnvInt("STATIONSTATS_TEST_INT", 7))

	t.Setenv("STATIONSTATS_TEST_INT", "not a number")
	assert.Equal(t, 7, EnvInt("STATIONSTATS_TEST_INT", 7))
}

func TestEnvInt64(t *testing.T) {
	assert.Equal(t, int64(100), EnvInt64("STATIONSTATS_TEST_UNSET", 100))

	t.Setenv("STATIONSTATS_TEST_INT64", "0")
	assert.Equal(t, int64(0), EnvInt64("STATIONSTATS_TEST_INT64", 100))
}
