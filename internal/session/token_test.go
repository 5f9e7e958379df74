package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zerovacancy/zerovacancy/internal/core"
)

var manager = core.User{ID: "pm-1", Email: "dana@harborview.example", Name: "Dana", Role: core.RolePropertyManager}

func TestNewTokenIssuer_RequiresSecret(t *testing.T) {
	_, err := NewTokenIssuer("", "", 0)
	assert.ErrorIs(t, err, core.ErrConfigMissing)
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer, err := NewTokenIssuer("s3cret", "", time.Hour)
	require.NoError(t, err)

	token, expires, err := issuer.Issue(manager)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	user, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, manager, user)
}

func TestTokenIssuer_Expired(t *testing.T) {
	issuer, _ := NewTokenIssuer("s3cret", "", time.Minute)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := issuer.Issue(manager)
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
	assert.Equal(t, core.KindAuth, core.KindOf(err))
	assert.Contains(t, core.Classify(err).Message, "expired")
}

func TestTokenIssuer_RejectsForeignTokens(t *testing.T) {
	ours, _ := NewTokenIssuer("s3cret", "zerovacancy", time.Hour)
	otherSecret, _ := NewTokenIssuer("different", "zerovacancy", time.Hour)
	otherIssuer, _ := NewTokenIssuer("s3cret", "someone-else", time.Hour)

	for name, issuer := range map[string]*TokenIssuer{"secret": otherSecret, "issuer": otherIssuer} {
		token, _, err := issuer.Issue(manager)
		require.NoError(t, err)
		_, err = ours.Verify(token)
		assert.ErrorIs(t, err, core.ErrTokenInvalid, name)
	}

	_, err := ours.Verify("not-a-jwt")
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}
