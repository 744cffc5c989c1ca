package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("secret", 1)
	signed, err := m.GenerateToken("annotator-bot", RoleEditor)
	require.NoError(t, err)

	claims, err := m.VerifyToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "annotator-bot", claims.Subject)
	assert.Equal(t, RoleEditor, claims.Role)
}

func TestJWTRejectsForeignSignature(t *testing.T) {
	signed, err := NewJWTManager("other", 1).GenerateToken("x", RoleViewer)
	require.NoError(t, err)

	_, err = NewJWTManager("secret", 1).VerifyToken(signed)
	assert.Error(t, err)

	_, err = NewJWTManager("secret", 1).VerifyToken("not-a-jwt")
	assert.Error(t, err)
}
