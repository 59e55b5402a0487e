package sse

import (
	"bufio"
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSend(t *testing.T) {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)

	require.NoError(t, Send(w, Event{Event: "progress", ID: "3", Data: map[string]int{"progress": 40}}))
	assert.Equal(t, "id: 3\nevent: progress\ndata: {\"progress\":40}\n\n", buf.String())

	buf.Reset()
	require.NoError(t, Send(w, Event{Data: "plain", Retry: 5000}))
	assert.Equal(t, "retry: 5000\ndata: plain\n\n", buf.String())
}

func TestSendErrorAndKeepAlive(t *testing.T) {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)

	require.NoError(t, SendError(w, errors.New("job not found")))
	assert.Contains(t, buf.String(), "event: error\n")
	assert.Contains(t, buf.String(), `"message":"job not found"`)

	buf.Reset()
	require.NoError(t, SendKeepAlive(w))
	assert.Equal(t, ": ping\n\n", buf.String())
}
