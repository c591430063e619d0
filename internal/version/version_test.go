package version

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersion_DefaultValues(t *testing.T) {
	assert.Equal(t, "dev", Version)
	assert.Equal(t, "dev", Commit)
	assert.Equal(t, "unknown", BuildTime)
}

func TestInfo_UsesBuildVariables(t *testing.T) {
	origVersion, origCommit, origBuild := Version, Commit, BuildTime
	t.Cleanup(func() {
		Version, Commit, BuildTime = origVersion, origCommit, origBuild
	})

	Version = "v1.2.3"
	Commit = "abc123"
	BuildTime = "2026-01-01T00:00:00Z"

	info := Info("feedback-service")
	assert.Equal(t, BuildInfo{
		Service:   "feedback-service",
		Version:   "v1.2.3",
		Commit:    "abc123",
		BuildTime: "2026-01-01T00:00:00Z",
	}, info)
	assert.Equal(t, "feedback-service v1.2.3 (commit abc123, built 2026-01-01T00:00:00Z)", info.String())
}

func TestBuildInfo_JSONFieldNames(t *testing.T) {
	data, err := json.Marshal(Info("svc"))
	require.NoError(t, err)

	var raw map[string]string
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "svc", raw["service"])
	assert.Contains(t, raw, "version")
	assert.Contains(t, raw, "commit")
	assert.Contains(t, raw, "buildTime")
}
