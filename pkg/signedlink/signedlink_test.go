package signedlink

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"event-ticketing/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSigner(t *testing.T, clock utils.Clock) *Signer {
	t.Helper()
	s, err := NewSigner("test-secret", 7*24*time.Hour, "https://tickets.example.com/", clock)
	require.NoError(t, err)
	return s
}

func TestSigner_SignVerify(t *testing.T) {
	t.Parallel()

	clock := utils.NewManualClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	s := newTestSigner(t, clock)
	id := uuid.New()
	exp := clock.Now().Add(s.TTL())

	token, err := s.Sign(id, ActionAccept, exp)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		id      uuid.UUID
		action  Action
		advance time.Duration
		wantErr error
	}{
		{name: "valid", token: token, id: id, action: ActionAccept},
		{name: "wrong action", token: token, id: id, action: ActionReject, wantErr: ErrInvalidSignature},
		{name: "wrong transfer", token: token, id: uuid.New(), action: ActionAccept, wantErr: ErrInvalidSignature},
		{name: "tampered", token: token[:len(token)-2] + "xx", id: id, action: ActionAccept, wantErr: ErrInvalidSignature},
		{name: "empty", token: "", id: id, action: ActionAccept, wantErr: ErrInvalidSignature},
		{name: "garbage", token: "not-a-token", id: id, action: ActionAccept, wantErr: ErrInvalidSignature},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			err := s.Verify(tt.token, tt.id, tt.action)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSigner_Expired(t *testing.T) {
	t.Parallel()

	clock := utils.NewManualClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	s := newTestSigner(t, clock)
	id := uuid.New()

	token, err := s.Sign(id, ActionReject, clock.Now().Add(time.Hour))
	require.NoError(t, err)

	clock.Advance(59 * time.Minute)
	require.NoError(t, s.Verify(token, id, ActionReject))

	clock.Advance(2 * time.Minute)
	assert.ErrorIs(t, s.Verify(token, id, ActionReject), ErrExpired)
}

func TestSigner_DifferentSecret(t *testing.T) {
	t.Parallel()

	clock := utils.NewManualClock(time.Now().UTC())
	a := newTestSigner(t, clock)
	b, err := NewSigner("other-secret", time.Hour, "", clock)
	require.NoError(t, err)

	id := uuid.New()
	token, err := a.Sign(id, ActionAccept, clock.Now().Add(time.Hour))
	require.NoError(t, err)

	assert.ErrorIs(t, b.Verify(token, id, ActionAccept), ErrInvalidSignature)
}

func TestSigner_URL(t *testing.T) {
	t.Parallel()

	clock := utils.NewManualClock(time.Now().UTC())
	s := newTestSigner(t, clock)
	id := uuid.New()

	link, err := s.URL(id, ActionAccept, clock.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link, "https://tickets.example.com/api/transfers/"+id.String()+"/accept?signature="))

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.NoError(t, s.Verify(u.Query().Get("signature"), id, ActionAccept))
}

func TestNewSigner_EmptySecret(t *testing.T) {
	_, err := NewSigner("", time.Hour, "", utils.SystemClock())
	assert.Error(t, err)
}
