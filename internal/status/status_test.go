package status

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeHighBitMeansFailure(t *testing.T) {
	assert.True(t, OK.Succeeded())
	assert.False(t, OK.Failed())

	assert.True(t, ContainerNotExists.Failed())
	assert.False(t, ContainerNotExists.Succeeded())
}

func TestCodeEqualityByValue(t *testing.T) {
	assert.Equal(t, ContainerAlreadyExists, ContainerAlreadyExists)
	assert.NotEqual(t, ContainerAlreadyExists, ContainerNotExists)
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := map[Code]int{
		OK:                         http.StatusOK,
		ContainerNameEmpty:         http.StatusBadRequest,
		ContainerAlreadyExists:     http.StatusConflict,
		ContainerNotExists:         http.StatusNotFound,
		MaxNumberContainersReached: http.StatusTooManyRequests,
		ObjectInsertionFailed:      http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, code.HTTPStatus(), code.String())
	}
}

func TestHexRendering(t *testing.T) {
	assert.Equal(t, "0x00000000", OK.Hex())
	assert.Equal(t, "0x80000101", ContainerAlreadyExists.Hex())
}

func TestErrorWrapAndUnwrap(t *testing.T) {
	cause := assertError("disk full")
	err := Wrap(ObjectInsertionFailed, cause)
	require.Error(t, err)
	assert.Equal(t, ObjectInsertionFailed, CodeOf(err))
	assert.ErrorIs(t, err, cause)
}

func TestCodeOfUnknownError(t *testing.T) {
	assert.Equal(t, Unreachable, CodeOf(assertError("not ours")))
	assert.Equal(t, OK, CodeOf(nil))
}

type assertError string

func (e assertError) Error() string { return string(e) }
