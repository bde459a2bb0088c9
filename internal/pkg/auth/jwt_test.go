package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testService(accessExp time.Duration) *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:       "unit-test-secret",
		AccessTokenExp:  accessExp,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "librarian-test",
	})
}

func TestTokenRoundTrip(t *testing.T) {
	svc := testService(15 * time.Minute)

	accessToken, refreshToken, expiresIn, err := svc.GenerateTokenPair(42, "reader@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, accessToken)
	require.NotEmpty(t, refreshToken)
	require.Equal(t, int((15 * time.Minute).Seconds()), expiresIn)

	claims, err := svc.ValidateAndExtractClaims(accessToken)
	require.NoError(t, err)
	require.EqualValues(t, 42, claims.UserID)
	require.Equal(t, "reader@example.com", claims.Email)
	require.Equal(t, "librarian-test", claims.Issuer)
	require.NotEmpty(t, claims.ID)
}

func TestExpiredTokenRejected(t *testing.T) {
	svc := testService(-time.Minute)

	accessToken, _, _, err := svc.GenerateTokenPair(1, "reader@example.com")
	require.NoError(t, err)

	_, err = svc.ValidateAndExtractClaims(accessToken)
	require.ErrorIs(t, err, ErrExpiredToken)
}

func TestWrongSecretRejected(t *testing.T) {
	issuer := testService(15 * time.Minute)
	verifier := NewJWTService(JWTConfig{
		SecretKey:      "a-different-secret",
		AccessTokenExp: 15 * time.Minute,
	})

	accessToken, _, _, err := issuer.GenerateTokenPair(1, "reader@example.com")
	require.NoError(t, err)

	_, err = verifier.ValidateAndExtractClaims(accessToken)
	require.Error(t, err)
}

func TestValidateAndExtractClaimsEmptyToken(t *testing.T) {
	svc := testService(15 * time.Minute)
	_, err := svc.ValidateAndExtractClaims("")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractBearerToken(t *testing.T) {
	cases := []struct {
		name   string
		header string
		want   string
		ok     bool
	}{
		{"well formed", "Bearer abc.def.ghi", "abc.def.ghi", true},
		{"empty header", "", "", false},
		{"missing prefix", "abc.def.ghi", "", false},
		{"wrong scheme", "Basic abc", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			token, err := ExtractBearerToken(tc.header)
			if !tc.ok {
				require.ErrorIs(t, err, ErrInvalidFormat)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, token)
		})
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cretpass")
	require.NoError(t, err)
	require.NotEqual(t, "s3cretpass", hash)

	require.True(t, CheckPassword(hash, "s3cretpass"))
	require.False(t, CheckPassword(hash, "wrong"))
	require.False(t, CheckPassword("not-a-hash", "s3cretpass"))
}
