package mockapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/jrsteele09/go-condo-client/apiclient"
	"github.com/jrsteele09/go-condo-client/internal/config"
	errs "github.com/jrsteele09/go-condo-client/internal/errors"
	"github.com/jrsteele09/go-condo-client/mockapi"
	"github.com/jrsteele09/go-condo-client/mockapi/mockapitest"
	"github.com/jrsteele09/go-condo-client/services/units"
	"github.com/jrsteele09/go-condo-client/users"
	"github.com/stretchr/testify/require"
)

const (
	loginPattern   = "POST " + mockapi.RouteAuthLogin
	refreshPattern = "POST " + mockapi.RouteAuthRefresh
	unitsPattern   = "GET " + mockapi.RouteUnits
)

func TestSignInInstallsSession(t *testing.T) {
	env := mockapitest.Start(t)

	u := env.SignIn(t, mockapi.SeedAdmin)
	require.Equal(t, mockapi.SeedAdmin.User.ID, u.ID)
	require.Equal(t, users.RoleAdmin, u.Role)

	snap := env.Store.Snapshot()
	require.True(t, snap.IsAuthenticated)
	require.NotEmpty(t, snap.AccessToken)
	require.NotEmpty(t, snap.RefreshToken)
	require.Equal(t, 1, env.API.Hits(loginPattern))

	claims, err := env.Store.AccessTokenClaims()
	require.NoError(t, err)
	require.Equal(t, u.ID, claims.Subject)
}

func TestSignInWithWrongPassword(t *testing.T) {
	env := mockapitest.Start(t)

	_, err := env.Auth.SignIn(context.Background(), mockapi.SeedAdmin.User.Email, "nope")
	require.ErrorIs(t, err, errs.ErrInvalidCredentials)
	require.True(t, apiclient.IsUnauthorized(err))
	require.False(t, env.Store.Snapshot().IsAuthenticated)
	require.Equal(t, 0, env.API.Hits(refreshPattern))
	require.Equal(t, 0, env.Navigations())
}

func TestInactiveUserIsRejected(t *testing.T) {
	env := mockapitest.Start(t)

	_, err := env.Auth.SignIn(context.Background(), mockapi.SeedInactive.User.Email, mockapi.SeedInactive.Password)
	require.True(t, apiclient.IsStatus(err, http.StatusBadRequest))
	require.Contains(t, err.Error(), "Inactive user")
}

func TestLoginValidationErrors(t *testing.T) {
	env := mockapitest.Start(t)

	resp, err := http.Post(env.HTTP.URL+mockapi.RouteAuthLogin, "application/x-www-form-urlencoded", strings.NewReader("username=admin%40condo.test"))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var body struct {
		Detail []struct {
			Loc  []string `json:"loc"`
			Type string   `json:"type"`
		} `json:"detail"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Detail, 1)
	require.Equal(t, []string{"body", "password"}, body.Detail[0].Loc)
	require.Equal(t, "missing", body.Detail[0].Type)
}

func TestUrlencodedLoginIsAccepted(t *testing.T) {
	env := mockapitest.Start(t)

	form := "username=resident%40condo.test&password=" + mockapi.SeedResident.Password
	resp, err := http.Post(env.HTTP.URL+mockapi.RouteAuthLogin, "application/x-www-form-urlencoded", strings.NewReader(form))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var pair apiclient.TokenPair
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&pair))
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.Equal(t, "bearer", pair.TokenType)
}

func TestProtectedRoutesNeedBearerToken(t *testing.T) {
	env := mockapitest.Start(t)

	for _, header := range []string{"", "Basic abc", "Bearer not-a-jwt"} {
		req, err := http.NewRequest(http.MethodGet, env.HTTP.URL+mockapi.RouteUnits, nil)
		require.NoError(t, err)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode, header)
		require.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"))
	}
	require.Equal(t, 3, env.API.Hits(unitsPattern))
}

func TestExpiredAccessTokenIsRefreshedAndReplayed(t *testing.T) {
	env := mockapitest.Start(t)
	env.SignIn(t, mockapi.SeedAdmin)
	before := env.Store.Snapshot()

	env.API.ExpireAccessTokens()

	page, err := units.NewService(env.Client).List(context.Background(), units.ListParams{})
	require.NoError(t, err)
	require.Len(t, page.Items, 4)

	after := env.Store.Snapshot()
	require.NotEqual(t, before.AccessToken, after.AccessToken)
	require.NotEqual(t, before.RefreshToken, after.RefreshToken)
	require.True(t, after.IsAuthenticated)
	require.Equal(t, 1, env.API.Hits(refreshPattern))
	require.Equal(t, 2, env.API.Hits(unitsPattern))
	require.Equal(t, 0, env.Navigations())
}

func TestRevokedRefreshTokenForcesLogout(t *testing.T) {
	env := mockapitest.Start(t)
	env.SignIn(t, mockapi.SeedResident)

	env.API.ExpireAccessTokens()
	require.NoError(t, env.API.RevokeRefreshTokens())

	_, err := units.NewService(env.Client).List(context.Background(), units.ListParams{})
	require.ErrorIs(t, err, errs.ErrSessionExpired)
	require.True(t, apiclient.IsUnauthorized(err))

	snap := env.Store.Snapshot()
	require.False(t, snap.IsAuthenticated)
	require.Empty(t, snap.AccessToken)
	require.Nil(t, snap.User)
	require.Equal(t, 1, env.Navigations())
	require.Equal(t, 1, env.API.Hits(refreshPattern))
}

func TestRefreshTokensAreSingleUse(t *testing.T) {
	env := mockapitest.Start(t)
	env.SignIn(t, mockapi.SeedAdmin)
	ctx := context.Background()
	first := env.Store.RefreshToken()

	pair, err := env.Auth.Refresh(ctx, first)
	require.NoError(t, err)
	require.NotEqual(t, first, pair.RefreshToken)

	_, err = env.Auth.Refresh(ctx, first)
	require.True(t, apiclient.IsUnauthorized(err))
	require.Contains(t, err.Error(), "Invalid refresh token")

	_, err = env.Auth.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
}

func TestAdminRoutesRejectResidents(t *testing.T) {
	env := mockapitest.Start(t)
	env.SignIn(t, mockapi.SeedResident)

	err := env.Client.Get(context.Background(), "/users", nil, nil)
	require.True(t, apiclient.IsStatus(err, http.StatusForbidden))
	require.Contains(t, err.Error(), "Not enough permissions")
	require.Equal(t, 0, env.API.Hits(refreshPattern))
}

func TestUsersArePagedOnRequest(t *testing.T) {
	env := mockapitest.Start(t)
	env.SignIn(t, mockapi.SeedAdmin)
	ctx := context.Background()

	var all []users.User
	require.NoError(t, env.Client.Get(ctx, "/users", nil, &all))
	require.Len(t, all, 4)

	var page apiclient.Page[users.User]
	require.NoError(t, env.Client.Get(ctx, "/users", apiclient.PageParams{Page: 2, Limit: 3}.Values(nil), &page))
	require.Equal(t, 4, page.Total)
	require.Equal(t, 2, page.Page)
	require.Equal(t, 2, page.Pages)
	require.Len(t, page.Items, 1)
}

func TestAddUserAndWithoutSeed(t *testing.T) {
	env := mockapitest.Start(t, mockapi.WithoutSeed())

	_, err := env.Auth.SignIn(context.Background(), mockapi.SeedAdmin.User.Email, mockapi.SeedAdmin.Password)
	require.ErrorIs(t, err, errs.ErrInvalidCredentials)

	require.NoError(t, env.API.AddUser(mockapi.UserSeed{
		User:     users.User{Email: "solo@condo.test", Role: users.RoleAdmin, TenantID: "t-solo", IsActive: true},
		Password: "solo-pass",
	}))
	u, err := env.Auth.SignIn(context.Background(), "SOLO@condo.test", "solo-pass")
	require.NoError(t, err)
	require.Equal(t, "t-solo", u.TenantID)

	page, err := units.NewService(env.Client).List(context.Background(), units.ListParams{})
	require.NoError(t, err)
	require.Empty(t, page.Items)
}

func TestRoutesAreRegistered(t *testing.T) {
	api, err := mockapi.New(config.MockAPI{}, mockapi.WithoutSeed())
	require.NoError(t, err)

	routes := api.Routes()
	require.Contains(t, routes, loginPattern)
	require.Contains(t, routes, refreshPattern)
	require.Contains(t, routes, "GET "+mockapi.RouteUsersMe)
	require.Contains(t, routes, "PUT "+mockapi.RouteReservationAction)
}
