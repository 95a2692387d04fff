package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/well-registry/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "test-signing-key"

func sign(t *testing.T, method jwt.SigningMethod, key any, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func claimsFor(sub, email string, groups ...string) Claims {
	return Claims{
		Email:  email,
		Groups: groups,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestVerify_PlainMember(t *testing.T) {
	v := NewVerifier(testKey, nil)
	c := claimsFor("jdoe", "jdoe@example.com", "adwr")
	c.Permissions = []string{"view", "CHANGE"}

	p, err := v.Verify(sign(t, jwt.SigningMethodHS256, []byte(testKey), c))
	require.NoError(t, err)

	assert.Equal(t, "jdoe", p.Username)
	assert.Equal(t, "jdoe@example.com", p.Email)
	assert.False(t, p.Superuser)
	assert.Equal(t, []string{"adwr"}, p.Groups)
	assert.Equal(t, []domain.Permission{domain.PermView, domain.PermChange}, p.Permissions)
}

func TestVerify_USGSEmailJoinsGroup(t *testing.T) {
	v := NewVerifier(testKey, nil)
	for _, email := range []string{"a@usgs.gov", "B@Contractor.USGS.gov"} {
		t.Run(email, func(t *testing.T) {
			p, err := v.Verify(sign(t, jwt.SigningMethodHS256, []byte(testKey), claimsFor("u", email)))
			require.NoError(t, err)
			assert.Equal(t, []string{USGSGroup}, p.Groups)
			assert.ElementsMatch(t, domain.AllPermissions, p.Permissions)
		})
	}

	p, err := v.Verify(sign(t, jwt.SigningMethodHS256, []byte(testKey), claimsFor("u", "a@usgs.gov", "USGS")))
	require.NoError(t, err)
	assert.Equal(t, []string{"USGS"}, p.Groups, "no duplicate group")
}

func TestVerify_NoGroupsNoDefaultPermissions(t *testing.T) {
	v := NewVerifier(testKey, nil)
	p, err := v.Verify(sign(t, jwt.SigningMethodHS256, []byte(testKey), claimsFor("u", "u@example.com")))
	require.NoError(t, err)
	assert.Empty(t, p.Permissions)
}

func TestVerify_SuperuserEmails(t *testing.T) {
	v := NewVerifier(testKey, []string{" Boss@Example.com "})
	p, err := v.Verify(sign(t, jwt.SigningMethodHS256, []byte(testKey), claimsFor("boss", "boss@example.com")))
	require.NoError(t, err)
	assert.True(t, p.Superuser)

	p, err = v.Verify(sign(t, jwt.SigningMethodHS256, []byte(testKey), claimsFor("other", "other@example.com")))
	require.NoError(t, err)
	assert.False(t, p.Superuser)
}

func TestVerify_Rejects(t *testing.T) {
	v := NewVerifier(testKey, nil)

	expired := claimsFor("u", "u@example.com")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"empty", "", ErrMissingToken},
		{"garbage", "not.a.token", ErrInvalidToken},
		{"wrong key", sign(t, jwt.SigningMethodHS256, []byte("other"), claimsFor("u", "")), ErrInvalidToken},
		{"expired", sign(t, jwt.SigningMethodHS256, []byte(testKey), expired), ErrInvalidToken},
		{"no subject", sign(t, jwt.SigningMethodHS256, []byte(testKey), claimsFor("", "")), ErrInvalidToken},
		{"alg none", sign(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, claimsFor("u", "")), ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(tt.token)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestIssue_RoundTrip(t *testing.T) {
	clk := clockwork.NewFakeClockAt(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	domain.SetClock(clk)
	t.Cleanup(func() { domain.SetClock(nil) })

	v := NewVerifier(testKey, nil)
	in := domain.Principal{
		Username:    "mbmg-user",
		Email:       "user@mbmg.mtech.edu",
		Groups:      []string{"mbmg"},
		Permissions: []domain.Permission{domain.PermView},
	}
	token, err := v.Issue(in, time.Hour)
	require.NoError(t, err)

	got, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, in, got)

	clk.Advance(2 * time.Hour)
	_, err = v.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc", "abc"},
		{"bearer  abc ", "abc"},
		{"Basic abc", ""},
		{"abc", ""},
		{"", ""},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/", nil)
		if tt.header != "" {
			r.Header.Set("Authorization", tt.header)
		}
		assert.Equal(t, tt.want, BearerToken(r), "header %q", tt.header)
	}
}

func TestAccessContextRoundTrip(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	_, ok := AccessFrom(r.Context())
	assert.False(t, ok)

	ac := domain.NewAgencyGroups(nil).Resolve(domain.Principal{Username: "u", Groups: []string{"usgs"}})
	got, ok := AccessFrom(WithAccess(r.Context(), ac))
	require.True(t, ok)
	assert.Equal(t, []string{"USGS"}, got.AgencyCodes)
}
