package documents_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/jrsteele09/go-condo-client/apiclient"
	errs "github.com/jrsteele09/go-condo-client/internal/errors"
	"github.com/jrsteele09/go-condo-client/mockapi"
	"github.com/jrsteele09/go-condo-client/mockapi/mockapitest"
	"github.com/jrsteele09/go-condo-client/services/documents"
	"github.com/stretchr/testify/require"
)

func TestUploadDownloadArchiveDelete(t *testing.T) {
	env := mockapitest.Start(t)
	env.SignIn(t, mockapi.SeedAdmin)
	svc := documents.NewService(env.Client)
	ctx := context.Background()

	d, err := svc.Upload(ctx, documents.UploadInput{
		Filename:    "budget-2025.csv",
		File:        strings.NewReader("item,amount\ncleaning,1200\n"),
		Description: "Approved budget",
		Category:    documents.CategoryReport,
		IsPublic:    true,
		Tags:        []string{"budget", " 2025 "},
	})
	require.NoError(t, err)
	require.Equal(t, "budget-2025.csv", d.Name)
	require.Equal(t, documents.CategoryReport, d.Category)
	require.Equal(t, documents.StatusActive, d.Status)
	require.Equal(t, "csv", d.DocumentType)
	require.Equal(t, []string{"budget", "2025"}, d.Tags)
	require.EqualValues(t, 26, d.FileSize)

	data, contentType, err := svc.Download(ctx, d.ID)
	require.NoError(t, err)
	require.Equal(t, "item,amount\ncleaning,1200\n", string(data))
	require.NotEmpty(t, contentType)

	reports, err := svc.ListByCategory(ctx, documents.CategoryReport)
	require.NoError(t, err)
	require.Len(t, reports, 1)

	require.NoError(t, svc.Archive(ctx, d.ID))
	got, err := svc.Get(ctx, d.ID)
	require.NoError(t, err)
	require.Equal(t, documents.StatusArchived, got.Status)

	name := "budget.csv"
	got, err = svc.Update(ctx, d.ID, documents.UpdateInput{Name: &name})
	require.NoError(t, err)
	require.Equal(t, name, got.Name)

	require.NoError(t, svc.Delete(ctx, d.ID))
	_, _, err = svc.Download(ctx, d.ID)
	require.True(t, apiclient.IsStatus(err, http.StatusNotFound))
}

func TestUploadDefaultsAndValidation(t *testing.T) {
	env := mockapitest.Start(t)
	env.SignIn(t, mockapi.SeedAdmin)
	svc := documents.NewService(env.Client)
	ctx := context.Background()

	_, err := svc.Upload(ctx, documents.UploadInput{Filename: "x.txt"})
	require.ErrorIs(t, err, errs.ErrInvalidRequest)

	d, err := svc.Upload(ctx, documents.UploadInput{Filename: "notes.txt", File: strings.NewReader("hello")})
	require.NoError(t, err)
	require.Equal(t, documents.CategoryOther, d.Category)
	require.False(t, d.IsPublic)

	_, err = svc.Upload(ctx, documents.UploadInput{Filename: "x.txt", File: strings.NewReader("x"), Category: "secret"})
	require.True(t, apiclient.IsStatus(err, http.StatusUnprocessableEntity))

	_, err = svc.Upload(ctx, documents.UploadInput{Filename: "empty.txt", File: strings.NewReader("")})
	require.True(t, apiclient.IsStatus(err, http.StatusBadRequest))
}

func TestResidentsSeePublicDocumentsOnly(t *testing.T) {
	env := mockapitest.Start(t)
	env.SignIn(t, mockapi.SeedResident)
	svc := documents.NewService(env.Client)
	ctx := context.Background()

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "doc-regulation", list[0].ID)

	_, _, err = svc.Download(ctx, "doc-minutes")
	require.True(t, apiclient.IsStatus(err, http.StatusNotFound))

	_, err = svc.Upload(ctx, documents.UploadInput{Filename: "a.txt", File: strings.NewReader("a")})
	require.True(t, apiclient.IsStatus(err, http.StatusForbidden))
}
