package users_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/jrsteele09/go-condo-client/apiclient"
	"github.com/jrsteele09/go-condo-client/internal/utils"
	"github.com/jrsteele09/go-condo-client/mockapi"
	"github.com/jrsteele09/go-condo-client/mockapi/mockapitest"
	"github.com/jrsteele09/go-condo-client/services/users"
	model "github.com/jrsteele09/go-condo-client/users"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*mockapitest.Env, *users.Service) {
	t.Helper()
	env := mockapitest.Start(t)
	env.SignIn(t, mockapi.SeedAdmin)
	return env, users.NewService(env.Client)
}

func TestListFilters(t *testing.T) {
	_, svc := setup(t)
	ctx := context.Background()

	page, err := svc.List(ctx, model.ListParams{Role: model.RoleResident})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)

	page, err = svc.List(ctx, model.ListParams{Role: model.RoleResident, IsActive: utils.Ptr(true)})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, mockapi.SeedResident.User.ID, page.Items[0].ID)

	page, err = svc.List(ctx, model.ListParams{Search: "eva"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.True(t, page.Items[0].IsEmployee())

	page, err = svc.List(ctx, model.ListParams{Page: 1, Limit: 2})
	require.NoError(t, err)
	require.Equal(t, 4, page.Total)
	require.Len(t, page.Items, 2)
}

func TestCreateGetUpdateDelete(t *testing.T) {
	_, svc := setup(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, model.CreateUserInput{
		Email:    "new@condo.test",
		FullName: "New Resident",
		Password: "pw-123456",
		Role:     model.RoleResident,
		UnitID:   "unit-102",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.True(t, created.IsActive)
	require.Equal(t, mockapi.SeedTenantID, created.TenantID)

	_, err = svc.Create(ctx, model.CreateUserInput{Email: "NEW@condo.test", Password: "x", Role: model.RoleResident})
	require.True(t, apiclient.IsStatus(err, http.StatusBadRequest))

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "unit-102", got.UnitID)

	updated, err := svc.Update(ctx, created.ID, model.UpdateUserInput{FullName: utils.Ptr("Renamed")})
	require.NoError(t, err)
	require.Equal(t, "Renamed", updated.FullName)
	require.Equal(t, "new@condo.test", updated.Email)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	require.True(t, apiclient.IsStatus(err, http.StatusNotFound))
}

func TestCreateValidation(t *testing.T) {
	_, svc := setup(t)

	_, err := svc.Create(context.Background(), model.CreateUserInput{FullName: "No Email"})
	require.True(t, apiclient.IsStatus(err, http.StatusUnprocessableEntity))
	require.Contains(t, err.Error(), "email")
	require.Contains(t, err.Error(), "password")
}

func TestDeactivateBlocksLogin(t *testing.T) {
	env, svc := setup(t)
	ctx := context.Background()
	id := mockapi.SeedEmployee.User.ID

	u, err := svc.Deactivate(ctx, id)
	require.NoError(t, err)
	require.False(t, u.IsActive)

	_, err = env.Auth.Login(ctx, mockapi.SeedEmployee.User.Email, mockapi.SeedEmployee.Password)
	require.True(t, apiclient.IsStatus(err, http.StatusBadRequest))

	u, err = svc.Activate(ctx, id)
	require.NoError(t, err)
	require.True(t, u.IsActive)

	u, err = svc.SetActive(ctx, id, false)
	require.NoError(t, err)
	require.False(t, u.IsActive)
}

func TestResetPasswordIssuesWorkingPassword(t *testing.T) {
	env, svc := setup(t)
	ctx := context.Background()
	id := mockapi.SeedResident.User.ID

	out, err := svc.ResetPassword(ctx, id)
	require.NoError(t, err)
	require.NotEmpty(t, out.TemporaryPassword)

	_, err = env.Auth.Login(ctx, mockapi.SeedResident.User.Email, mockapi.SeedResident.Password)
	require.Error(t, err)
	_, err = env.Auth.Login(ctx, mockapi.SeedResident.User.Email, out.TemporaryPassword)
	require.NoError(t, err)

	require.NoError(t, svc.SetPassword(ctx, id, "chosen-pass"))
	_, err = env.Auth.Login(ctx, mockapi.SeedResident.User.Email, "chosen-pass")
	require.NoError(t, err)
}

func TestOtherTenantsAreInvisible(t *testing.T) {
	env, svc := setup(t)
	require.NoError(t, env.API.AddUser(mockapi.UserSeed{
		User:     model.User{ID: "foreign", Email: "x@elsewhere.test", Role: model.RoleResident, TenantID: "other", IsActive: true},
		Password: "pw",
	}))

	_, err := svc.Get(context.Background(), "foreign")
	require.True(t, apiclient.IsStatus(err, http.StatusNotFound))
}
