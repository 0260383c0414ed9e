package entities

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringList_AcceptsListOrString(t *testing.T) {
	var d Diagnostic
	err := json.Unmarshal([]byte(`{"affected_files":"app.py","risks":["a","b"],"reproduction_steps":null}`), &d)
	require.NoError(t, err)

	assert.Equal(t, StringList{"app.py"}, d.AffectedFiles)
	assert.Equal(t, StringList{"a", "b"}, d.Risks)
	assert.Nil(t, d.ReproductionSteps)
}

func TestStringList_RejectsObjects(t *testing.T) {
	var l StringList
	assert.Error(t, json.Unmarshal([]byte(`{"x":1}`), &l))
}

func TestParseConfidence(t *testing.T) {
	cases := map[string]Confidence{
		"high":     ConfidenceHigh,
		" Medium ": ConfidenceMedium,
		"LOW":      ConfidenceLow,
		"certain":  ConfidenceLow,
		"":         ConfidenceLow,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseConfidence(in), "input %q", in)
	}
}

func TestDefaultAnalysis(t *testing.T) {
	a := DefaultAnalysis()
	assert.Equal(t, "unknown", a.ToolType)
	assert.Equal(t, "medium", a.Complexity)
	assert.Equal(t, DefaultProjectName, a.ProjectName)
	assert.Empty(t, a.Features)
}

func TestToolKind_String(t *testing.T) {
	assert.Equal(t, "website_static", ToolWebsite.String())
	assert.Equal(t, "api_rest", ToolAPI.String())
	assert.Equal(t, "cli_tool", ToolCLI.String())
	assert.Equal(t, "unrecognized", ToolUnrecognized.String())
}

func TestResultCause_NotSerialized(t *testing.T) {
	r := FixResult{Error: MsgFixFailed, Cause: ErrFileSystem}
	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "cause")
	assert.Contains(t, string(data), `"fixed_files":null`)
}
