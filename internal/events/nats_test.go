package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeConn struct {
	published map[string][]byte
	err       error
	drained   bool
	closed    bool
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	if f.published == nil {
		f.published = make(map[string][]byte)
	}
	f.published[subject] = data
	return nil
}

func (f *fakeConn) Subscribe(string, nats.MsgHandler) (*nats.Subscription, error) {
	return nil, errors.New("not supported")
}

func (f *fakeConn) Drain() error {
	f.drained = true
	return f.err
}

func (f *fakeConn) Close() { f.closed = true }

func TestPublish_EncodesJSON(t *testing.T) {
	fc := &fakeConn{}
	p := &NATSPublisher{nc: fc, logger: zap.NewNop()}

	payload := map[string]any{"agent_id": "a1", "decision": "ghost"}
	require.NoError(t, p.Publish(context.Background(), "ghost.decision", payload))

	var got map[string]any
	require.NoError(t, json.Unmarshal(fc.published["ghost.decision"], &got))
	assert.Equal(t, "ghost", got["decision"])
}

func TestPublish_Errors(t *testing.T) {
	fc := &fakeConn{err: errors.New("connection closed")}
	p := &NATSPublisher{nc: fc, logger: zap.NewNop()}

	err := p.Publish(context.Background(), "ghost.decision", struct{}{})
	assert.ErrorIs(t, err, fc.err)

	err = p.Publish(context.Background(), "ghost.decision", func() {})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Publish(ctx, "ghost.decision", struct{}{}), context.Canceled)
}

func TestClose_FallsBackToClose(t *testing.T) {
	fc := &fakeConn{err: errors.New("drain failed")}
	p := &NATSPublisher{nc: fc, logger: zap.NewNop()}
	p.Close()
	assert.True(t, fc.drained)
	assert.True(t, fc.closed)

	fc = &fakeConn{}
	(&NATSPublisher{nc: fc, logger: zap.NewNop()}).Close()
	assert.True(t, fc.drained)
	assert.False(t, fc.closed)
}
