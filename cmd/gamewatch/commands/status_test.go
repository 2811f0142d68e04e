package commands

import (
	"bytes"
	"errors"
	"testing"

	"github.com/bryanchriswhite/gamewatch/internal/gamemode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStatus struct {
	calls         []string
	status        int32
	queryErr      error
	unregisterErr error
}

func (s *stubStatus) UnregisterGame(pid uint32) error {
	s.calls = append(s.calls, "unregister")
	return s.unregisterErr
}

func (s *stubStatus) QueryStatus(pid uint32) (int32, error) {
	s.calls = append(s.calls, "query")
	return s.status, s.queryErr
}

var _ statusClient = (*gamemode.Client)(nil)

func TestShowStatus(t *testing.T) {
	var out bytes.Buffer
	gm := &stubStatus{status: 2}

	require.NoError(t, showStatus(&out, gm, 4242, false))
	assert.Equal(t, []string{"query"}, gm.calls)
	assert.Equal(t, "4242: active, pid registered\n", out.String())
}

func TestShowStatusUnregister(t *testing.T) {
	var out bytes.Buffer
	gm := &stubStatus{status: 0}

	require.NoError(t, showStatus(&out, gm, 4242, true))
	assert.Equal(t, []string{"unregister", "query"}, gm.calls)
	assert.Equal(t, "Unregistered 4242\n4242: inactive\n", out.String())
}

func TestShowStatusErrors(t *testing.T) {
	rejected := errors.New("rejected")
	gm := &stubStatus{unregisterErr: rejected}
	assert.ErrorIs(t, showStatus(&bytes.Buffer{}, gm, 1, true), rejected)
	assert.Equal(t, []string{"unregister"}, gm.calls, "no query after a failed unregister")

	gm = &stubStatus{queryErr: rejected}
	assert.ErrorIs(t, showStatus(&bytes.Buffer{}, gm, 1, false), rejected)
}

func TestParsePID(t *testing.T) {
	pid, err := parsePID("4242")
	require.NoError(t, err)
	assert.Equal(t, uint32(4242), pid)

	for _, bad := range []string{"0", "-1", "abc", "0x10", "4294967295"} {
		_, err := parsePID(bad)
		assert.Error(t, err, bad)
	}
}
