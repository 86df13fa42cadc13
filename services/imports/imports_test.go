package imports_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/jrsteele09/go-condo-client/apiclient"
	errs "github.com/jrsteele09/go-condo-client/internal/errors"
	"github.com/jrsteele09/go-condo-client/mockapi"
	"github.com/jrsteele09/go-condo-client/mockapi/mockapitest"
	"github.com/jrsteele09/go-condo-client/services/imports"
	"github.com/jrsteele09/go-condo-client/services/units"
	"github.com/stretchr/testify/require"
)

const unitsCSV = `Number,Type,Area,Floor,Block
401,apartment,70,4,A
402,apartment,abc,4,A
101,apartment,70,1,A
L1,commercial,120,,C
`

func setup(t *testing.T) (*mockapitest.Env, *imports.Service) {
	t.Helper()
	env := mockapitest.Start(t)
	env.SignIn(t, mockapi.SeedAdmin)
	return env, imports.NewService(env.Client)
}

func TestPreview(t *testing.T) {
	_, svc := setup(t)

	p, err := svc.Preview(context.Background(), "units.csv", strings.NewReader(unitsCSV))
	require.NoError(t, err)
	require.Equal(t, []string{"number", "type", "area", "floor", "block"}, p.Headers)
	require.Equal(t, 4, p.TotalRows)
	require.Len(t, p.Rows, 4)
	require.Equal(t, []string{"401", "apartment", "70", "4", "A"}, p.Rows[0])

	_, err = svc.Preview(context.Background(), "bad.csv", strings.NewReader("a,\"b\nc"))
	require.True(t, apiclient.IsStatus(err, http.StatusBadRequest))
}

func TestUnitImportCreatesUnitsAndReportsRowErrors(t *testing.T) {
	env, svc := setup(t)
	ctx := context.Background()

	job, err := svc.Upload(ctx, "units.csv", strings.NewReader(unitsCSV), imports.TypeUnits)
	require.NoError(t, err)
	require.Equal(t, imports.StatusCompleted, job.Status)
	require.Equal(t, 4, job.TotalRows)
	require.Equal(t, 2, job.SuccessfulRows)
	require.Equal(t, 2, job.FailedRows)
	require.Equal(t, []imports.RowError{
		{Row: 3, Field: "area", Message: "area must be a number"},
		{Row: 4, Field: "number", Message: "Unit number already exists"},
	}, job.Errors)

	page, err := units.NewService(env.Client).List(ctx, units.ListParams{Search: "L1"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, units.TypeCommercial, page.Items[0].Type)

	jobs, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	got, err := svc.Get(ctx, job.ID)
	require.NoError(t, err)
	require.Equal(t, job.ID, got.ID)

	require.NoError(t, svc.Delete(ctx, job.ID))
	_, err = svc.Get(ctx, job.ID)
	require.True(t, apiclient.IsStatus(err, http.StatusNotFound))
}

func TestUserImportFailsWhenNoRowIsValid(t *testing.T) {
	_, svc := setup(t)

	job, err := svc.Upload(context.Background(), "users.csv", strings.NewReader("email,full_name\nnot-an-email,X\nadmin@condo.test,Dup\n"), imports.TypeUsers)
	require.NoError(t, err)
	require.Equal(t, imports.StatusFailed, job.Status)
	require.Equal(t, 2, job.FailedRows)
	require.Equal(t, "No rows imported", job.ErrorMessage)
}

func TestUploadValidation(t *testing.T) {
	_, svc := setup(t)
	ctx := context.Background()

	_, err := svc.Upload(ctx, "u.csv", strings.NewReader("a\n1\n"), "")
	require.ErrorIs(t, err, errs.ErrInvalidRequest)

	_, err = svc.Upload(ctx, "u.csv", strings.NewReader("a\n1\n"), "pets")
	require.True(t, apiclient.IsStatus(err, http.StatusUnprocessableEntity))
}
