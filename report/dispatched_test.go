package report

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/reportstream/errors"
	"github.com/c360/reportstream/pkg/msduration"
)

func msdur(d time.Duration) *msduration.Duration {
	md := msduration.From(d)
	return &md
}

func nelRegistry(t *testing.T) *Registry {
	t.Helper()
	registry := NewRegistry()
	require.NoError(t, registry.Register(&Registration{
		Kind:    KindNetworkError,
		Factory: func() Body { return &NEL{} },
	}))
	return registry
}

func TestRegistry_DecodeReport(t *testing.T) {
	registry := nelRegistry(t)

	rep, err := registry.DecodeReport([]byte(nelReportJSON))
	require.NoError(t, err)

	assert.Equal(t, 500*time.Millisecond, rep.Age())
	assert.Equal(t, "https://example.com/about/", rep.URL())
	assert.Equal(t, "Mozilla/5.0", rep.UserAgent())
	assert.Equal(t, KindNetworkError, rep.Kind())

	nel, ok := As[*NEL](rep.Handle())
	require.True(t, ok)
	assert.Equal(t, 0.5, nel.SamplingFraction)
	require.NotNil(t, nel.StatusCode)
	assert.Equal(t, uint16(200), *nel.StatusCode)
	require.NotNil(t, nel.ElapsedTime)
	assert.Equal(t, 45*time.Millisecond, nel.ElapsedTime.Std())
	assert.Equal(t, "application", nel.Phase)
	assert.Equal(t, "ok", nel.Status)
}

func TestRegistry_DecodeReport_UnknownKind(t *testing.T) {
	registry := nelRegistry(t)

	data := `{"age":500,"url":"https://example.com/about/","user_agent":"Mozilla/5.0","type":"unknown","body":{}}`
	_, err := registry.DecodeReport([]byte(data))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUnknownReportType)
	assert.NotErrorIs(t, err, errors.ErrSchemaViolation)
}

func TestRegistry_DecodeReport_SchemaError(t *testing.T) {
	registry := nelRegistry(t)

	data := `{"age":500,"url":"u","user_agent":"ua","type":"network-error","body":{"referrer":"r"}}`
	_, err := registry.DecodeReport([]byte(data))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrSchemaViolation)
	assert.NotErrorIs(t, err, errors.ErrUnknownReportType)
	assert.Contains(t, err.Error(), KindNetworkError)
}

func TestRegistry_DecodeReport_MissingEnvelopeField(t *testing.T) {
	registry := nelRegistry(t)

	// user_agent absent
	data := `{"age":500,"url":"u","type":"network-error","body":{}}`
	_, err := registry.DecodeReport([]byte(data))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrMissingField)
}

func TestDispatchedReport_RoundTrip(t *testing.T) {
	registry := nelRegistry(t)

	code := uint16(200)
	original := NewDispatchedReport(
		500*time.Millisecond,
		"https://example.com/about/",
		"Mozilla/5.0",
		&NEL{
			Referrer:         "https://example.com/",
			SamplingFraction: 0.5,
			ServerIP:         "203.0.113.75",
			Protocol:         "h2",
			Method:           "POST",
			StatusCode:       &code,
			ElapsedTime:      msdur(45 * time.Millisecond),
			Phase:            "application",
			Status:           "ok",
		},
	)

	encoded, err := json.Marshal(original)
	require.NoError(t, err)

	decoded, err := registry.DecodeReport(encoded)
	require.NoError(t, err)
	assert.True(t, original.Equal(decoded), "decode(encode(x)) must equal x")
}

func TestDispatchedReport_Equal(t *testing.T) {
	mk := func() *DispatchedReport {
		return NewDispatchedReport(time.Second, "u", "ua", &NEL{
			Referrer: "r", SamplingFraction: 1, ServerIP: "ip",
			Protocol: "h2", Method: "GET", Phase: "application", Status: "ok",
		})
	}

	a, b := mk(), mk()
	assert.True(t, a.Equal(b))

	c := NewDispatchedReport(time.Second, "u", "ua", &Crash{Reason: "oom"})
	assert.False(t, a.Equal(c))

	d := mk()
	d.age = 2 * time.Second
	assert.False(t, a.Equal(d))

	var nilRep *DispatchedReport
	assert.False(t, a.Equal(nilRep))
	assert.True(t, nilRep.Equal(nil))
}

func TestDispatchedReport_Validate(t *testing.T) {
	valid := NewDispatchedReport(time.Second, "u", "ua", &Crash{Reason: "oom"})
	assert.NoError(t, valid.Validate())

	negative := NewDispatchedReport(-time.Second, "u", "ua", &Crash{Reason: "oom"})
	assert.Error(t, negative.Validate())

	nilBody := NewDispatchedReport(time.Second, "u", "ua", nil)
	assert.Error(t, nilBody.Validate())

	badBody := NewDispatchedReport(time.Second, "u", "ua", &Crash{})
	assert.Error(t, badBody.Validate())
}

func TestDispatchedReport_GlobalRegistry(t *testing.T) {
	MustRegister(&Registration{
		Kind:    KindNetworkError,
		Factory: func() Body { return &NEL{} },
	})

	var rep DispatchedReport
	require.NoError(t, json.Unmarshal([]byte(nelReportJSON), &rep))
	assert.Equal(t, KindNetworkError, rep.Kind())
}
