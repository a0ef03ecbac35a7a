package report

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/reportstream/errors"
)

func TestCrash_Decode(t *testing.T) {
	var crash Crash
	require.NoError(t, json.Unmarshal([]byte(`{"reason":"oom"}`), &crash))
	assert.Equal(t, "oom", crash.Reason)

	err := json.Unmarshal([]byte(`{}`), &crash)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrMissingField)
}

func TestDeprecation_Decode(t *testing.T) {
	data := `{
		"id": "websql",
		"anticipatedRemoval": "2026-01-01",
		"message": "WebSQL is deprecated",
		"sourceFile": "app.js",
		"lineNumber": 10,
		"columnNumber": 4
	}`

	var dep Deprecation
	require.NoError(t, json.Unmarshal([]byte(data), &dep))
	assert.Equal(t, "websql", dep.ID)
	require.NotNil(t, dep.AnticipatedRemoval)
	assert.Equal(t, "2026-01-01", *dep.AnticipatedRemoval)
	require.NotNil(t, dep.LineNumber)
	assert.Equal(t, uint32(10), *dep.LineNumber)
}

func TestDeprecation_RequiredFields(t *testing.T) {
	var dep Deprecation

	err := json.Unmarshal([]byte(`{"message":"m"}`), &dep)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrMissingField)

	err = json.Unmarshal([]byte(`{"id":"websql"}`), &dep)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrMissingField)
}

func TestIntervention_Decode(t *testing.T) {
	var iv Intervention
	require.NoError(t, json.Unmarshal([]byte(`{"id":"audio-autoplay","message":"blocked"}`), &iv))
	assert.Equal(t, "audio-autoplay", iv.ID)
	assert.Nil(t, iv.SourceFile)

	err := json.Unmarshal([]byte(`{"id":"x"}`), &iv)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrMissingField)
}

func TestBrowserPayloads_RoundTrip(t *testing.T) {
	line := uint32(10)
	payloads := []Body{
		&Crash{Reason: "unresponsive"},
		&Deprecation{ID: "websql", Message: "deprecated", LineNumber: &line},
		&Intervention{ID: "audio-autoplay", Message: "blocked"},
	}

	for _, original := range payloads {
		t.Run(original.Kind(), func(t *testing.T) {
			data, err := original.MarshalJSON()
			require.NoError(t, err)

			fresh := map[string]Body{
				KindCrash:        &Crash{},
				KindDeprecation:  &Deprecation{},
				KindIntervention: &Intervention{},
			}[original.Kind()]
			require.NoError(t, fresh.UnmarshalJSON(data))
			assert.True(t, original.Equal(fresh))
		})
	}
}

func TestBrowserPayloads_ProbeThroughBare(t *testing.T) {
	data := `{"age":0,"url":"https://example.com/","user_agent":"ua","type":"crash","body":{"reason":"oom"}}`
	var bare BareReport
	require.NoError(t, json.Unmarshal([]byte(data), &bare))

	rep, matched, err := ParseAs[Crash](bare)
	require.True(t, matched)
	require.NoError(t, err)
	assert.Equal(t, "oom", rep.Body.Reason)

	_, matched, err = ParseAs[Deprecation](bare)
	assert.False(t, matched)
	assert.NoError(t, err)
}
