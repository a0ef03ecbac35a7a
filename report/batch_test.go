package report

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/reportstream/errors"
)

func batchOf(elements ...string) []byte {
	out := "["
	for i, e := range elements {
		if i > 0 {
			out += ","
		}
		out += e
	}
	return []byte(out + "]")
}

const goodElement = `{"age":1,"url":"https://example.com/","user_agent":"ua","type":"unknown","body":{}}`
const badElement = `{"age":1,"url":"https://example.com/","type":"unknown","body":{}}`

func TestDecodeBatch(t *testing.T) {
	reports, err := DecodeBatch(batchOf(goodElement, goodElement))
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "unknown", reports[0].Type)
}

func TestDecodeBatch_MalformedTopLevel(t *testing.T) {
	for _, data := range []string{`{`, `{"a":1}`, `"reports"`, ``} {
		t.Run(fmt.Sprintf("%q", data), func(t *testing.T) {
			_, err := DecodeBatch([]byte(data))
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrMalformedBatch)
		})
	}
}

func TestDecodeBatch_StrictElementFailure(t *testing.T) {
	_, err := DecodeBatch(batchOf(goodElement, badElement))
	require.Error(t, err)

	var elemErr ElementError
	require.ErrorAs(t, err, &elemErr)
	assert.Equal(t, 1, elemErr.Index)
	assert.ErrorIs(t, err, errors.ErrMissingField)
}

func TestDecodeBatchLenient(t *testing.T) {
	reports, failures, err := DecodeBatchLenient(batchOf(goodElement, badElement, goodElement))
	require.NoError(t, err)
	assert.Len(t, reports, 2, "a single bad element must not fail the batch")
	require.Len(t, failures, 1)
	assert.Equal(t, 1, failures[0].Index)
	assert.ErrorIs(t, failures[0], errors.ErrMissingField)
}

func TestDecodeBatchLenient_MalformedTopLevel(t *testing.T) {
	_, _, err := DecodeBatchLenient([]byte(`{}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrMalformedBatch)
}

func TestRegistry_DecodeBatch(t *testing.T) {
	registry := nelRegistry(t)

	reports, err := registry.DecodeBatch(batchOf(nelReportJSON))
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, KindNetworkError, reports[0].Kind())
}

func TestRegistry_DecodeBatch_UnknownKind(t *testing.T) {
	registry := nelRegistry(t)

	_, err := registry.DecodeBatch(batchOf(goodElement))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUnknownReportType)

	var elemErr ElementError
	require.ErrorAs(t, err, &elemErr)
	assert.Equal(t, 0, elemErr.Index)
}

func TestDecodeBatchDispatched_GlobalRegistry(t *testing.T) {
	MustRegister(&Registration{
		Kind:    KindNetworkError,
		Factory: func() Body { return &NEL{} },
	})

	reports, err := DecodeBatchDispatched(batchOf(nelReportJSON))
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, KindNetworkError, reports[0].Kind())
}

func TestElementError(t *testing.T) {
	inner := errors.ErrMissingField
	err := ElementError{Index: 3, Err: inner}
	assert.Contains(t, err.Error(), "report 3")
	assert.ErrorIs(t, err, inner)
}
