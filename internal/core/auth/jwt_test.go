package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJWTer() *JWTer {
	return &JWTer{Secret: []byte("test-secret"), Issuer: "vitrina-test", TTL: time.Hour}
}

func TestJWTer_IssueAndParse(t *testing.T) {
	j := newJWTer()
	tok, err := j.Issue("ana.perez", "user")
	require.NoError(t, err)

	c, err := j.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "ana.perez", c.UID)
	assert.Equal(t, "user", c.Role)
}

func TestJWTer_RejectsForeignSecretAndIssuer(t *testing.T) {
	tok, err := newJWTer().Issue("ana", "admin")
	require.NoError(t, err)

	other := &JWTer{Secret: []byte("other"), Issuer: "vitrina-test", TTL: time.Hour}
	_, err = other.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	otherIss := &JWTer{Secret: []byte("test-secret"), Issuer: "someone-else", TTL: time.Hour}
	_, err = otherIss.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTer_Expired(t *testing.T) {
	j := &JWTer{Secret: []byte("s"), Issuer: "i", TTL: -2 * time.Minute}
	tok, err := j.Issue("ana", "user")
	require.NoError(t, err)
	_, err = j.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTer_IssueRequiresIdentity(t *testing.T) {
	_, err := newJWTer().Issue("", "user")
	assert.Error(t, err)
}
