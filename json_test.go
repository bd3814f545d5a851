package bframe_test

import (
	"testing"

	"github.com/advdv/bframe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetJSON(t *testing.T) {
	body := `{"user":{"name":"Cosby","age":21},"tags":["a","b"]}`
	msg := bframe.CreateHTTPPacket("200", "OK", "application/json", []byte(body))

	name, err := bframe.GetJSON(msg, "user.name")
	require.NoError(t, err)
	assert.Equal(t, "Cosby", name.String())

	age, err := bframe.GetJSON(msg, "user.age")
	require.NoError(t, err)
	assert.Equal(t, int64(21), age.Int())

	tag, err := bframe.GetJSON(msg, "tags.1")
	require.NoError(t, err)
	assert.Equal(t, "b", tag.String())

	_, err = bframe.GetJSON(msg, "user.email")
	require.ErrorIs(t, err, bframe.ErrNotFound)

	_, err = bframe.GetJSON(bframe.CreateHTTPPacket("200", "OK", "text/plain", []byte("{nope")), "a")
	require.ErrorIs(t, err, bframe.ErrMalformedValue)
}
