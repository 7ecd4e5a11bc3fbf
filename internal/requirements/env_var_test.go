package requirements

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnvVar_Construction(t *testing.T) {
	t.Run("empty var is rejected", func(t *testing.T) {
		_, err := NewEnvVar(EnvVarArgs{Name: "test"})
		require.Error(t, err)
	})

	t.Run("invalid quantifier is rejected", func(t *testing.T) {
		_, err := NewEnvVar(EnvVarArgs{Name: "test", Var: "X", Match: EnvQuantifier("fuzzy")})
		require.Error(t, err)
	})

	t.Run("contains and regex need an expectation", func(t *testing.T) {
		_, err := NewEnvVar(EnvVarArgs{Name: "test", Var: "X", Match: EnvContains})
		require.Error(t, err)
		_, err = NewEnvVar(EnvVarArgs{Name: "test", Var: "X", Match: EnvRegex})
		require.Error(t, err)
	})

	t.Run("invalid regex is rejected", func(t *testing.T) {
		_, err := NewEnvVar(EnvVarArgs{Name: "test", Var: "X", Match: EnvRegex, Expected: "("})
		require.Error(t, err)
	})
}

func TestEnvVar_Check(t *testing.T) {
	t.Run("unset variable fails", func(t *testing.T) {
		req, err := NewEnvVar(EnvVarArgs{Name: "test", Var: "TEST_UNSET_ZZZ", Expected: "x"})
		require.NoError(t, err)

		res := req.Check(context.Background())
		require.False(t, res.Passed)
		require.Contains(t, res.Message, "not set")
	})

	t.Run("exact match", func(t *testing.T) {
		t.Setenv("TEST_EXACT", "value")

		req, err := NewEnvVar(EnvVarArgs{Name: "test", Var: "TEST_EXACT", Expected: "value"})
		require.NoError(t, err)
		require.True(t, req.Check(context.Background()).Passed)

		req, err = NewEnvVar(EnvVarArgs{Name: "test", Var: "TEST_EXACT", Expected: "other"})
		require.NoError(t, err)
		res := req.Check(context.Background())
		require.False(t, res.Passed)
		require.Contains(t, res.Message, `expected "other"`)
	})

	t.Run("contains matches one path-list entry", func(t *testing.T) {
		t.Setenv("TEST_PATH", "/usr/local/bin:/opt/tool/bin/:/home/user/bin")

		// Trailing slash normalizes away.
		req, err := NewEnvVar(EnvVarArgs{
			Name: "test", Var: "TEST_PATH",
			Expected: "/opt/tool/bin", Match: EnvContains,
		})
		require.NoError(t, err)
		require.True(t, req.Check(context.Background()).Passed)

		req, err = NewEnvVar(EnvVarArgs{
			Name: "test", Var: "TEST_PATH",
			Expected: "/opt/other", Match: EnvContains,
		})
		require.NoError(t, err)
		res := req.Check(context.Background())
		require.False(t, res.Passed)
		require.Contains(t, res.Message, "missing entry")
	})

	t.Run("regex matches one path-list entry", func(t *testing.T) {
		t.Setenv("TEST_REGEX", "/usr/bin:/opt/cuda-12.1/bin")

		req, err := NewEnvVar(EnvVarArgs{
			Name: "test", Var: "TEST_REGEX",
			Expected: `cuda-\d+\.\d+`, Match: EnvRegex,
		})
		require.NoError(t, err)
		require.True(t, req.Check(context.Background()).Passed)

		req, err = NewEnvVar(EnvVarArgs{
			Name: "test", Var: "TEST_REGEX",
			Expected: `rocm-\d+`, Match: EnvRegex,
		})
		require.NoError(t, err)
		res := req.Check(context.Background())
		require.False(t, res.Passed)
		require.Contains(t, res.Message, "no entry matches regex")
	})
}
