package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/medcamp/models"
	"github.com/Dosada05/medcamp/storage"
)

func validCampInput() CampInput {
	return CampInput{
		Name:                   "Vision Camp",
		Description:            "Free eye checks",
		Location:               "Shymkent",
		Date:                   time.Date(2026, 7, 10, 8, 0, 0, 0, time.UTC),
		Fees:                   25,
		HealthcareProfessional: "Dr. Omar",
	}
}

func TestCampService_CreateAndGet(t *testing.T) {
	store := newMemStore()
	svc := NewCampService(memCamps{store}, &mockUploader{}, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, participant("ann@example.com"), validCampInput())
	assert.ErrorIs(t, err, ErrForbidden)

	bad := validCampInput()
	bad.Fees = -1
	_, err = svc.Create(ctx, organizer(), bad)
	assert.ErrorIs(t, err, ErrValidationFailed)

	camp, err := svc.Create(ctx, organizer(), validCampInput())
	require.NoError(t, err)
	assert.NotEmpty(t, camp.ID)
	assert.Equal(t, "org@example.com", camp.OrganizerEmail)
	assert.Zero(t, camp.ParticipantCount)

	got, err := svc.Get(ctx, camp.ID)
	require.NoError(t, err)
	assert.Equal(t, "Vision Camp", got.Name)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCampNotFound)
}

func TestCampService_ListAndPopular(t *testing.T) {
	store := newMemStore()
	store.addCamp(models.Camp{ID: "1", Name: "Alpha", ParticipantCount: 3})
	store.addCamp(models.Camp{ID: "2", Name: "Beta", ParticipantCount: 9})
	store.addCamp(models.Camp{ID: "3", Name: "Gamma", ParticipantCount: 1})
	svc := NewCampService(memCamps{store}, nil, nil)
	ctx := context.Background()

	res, err := svc.List(ctx, CampListQuery{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, res.TotalCount)
	assert.Len(t, res.Camps, 2)
	assert.Equal(t, 2, res.Limit)

	res, err = svc.List(ctx, CampListQuery{Search: "et"})
	require.NoError(t, err)
	require.Len(t, res.Camps, 1)
	assert.Equal(t, "Beta", res.Camps[0].Name)

	_, err = svc.List(ctx, CampListQuery{Sort: "price_desc"})
	assert.ErrorIs(t, err, ErrValidationFailed)

	popular, err := svc.Popular(ctx, 2)
	require.NoError(t, err)
	require.Len(t, popular, 2)
	assert.Equal(t, "Beta", popular[0].Name)
	assert.Equal(t, "Alpha", popular[1].Name)
}

func TestCampService_UpdateKeepsCounter(t *testing.T) {
	store := newMemStore()
	store.addCamp(models.Camp{ID: "1", Name: "Old", ParticipantCount: 4, OrganizerEmail: "first@example.com"})
	svc := NewCampService(memCamps{store}, nil, nil)

	camp, err := svc.Update(context.Background(), organizer(), "1", validCampInput())
	require.NoError(t, err)
	assert.Equal(t, "Vision Camp", camp.Name)
	assert.Equal(t, 4, store.camp("1").ParticipantCount)
	assert.Equal(t, "first@example.com", store.camp("1").OrganizerEmail)

	_, err = svc.Update(context.Background(), organizer(), "nope", validCampInput())
	assert.ErrorIs(t, err, ErrCampNotFound)
}

func TestCampService_DeleteCascades(t *testing.T) {
	store := newMemStore()
	key := "camps/1/old.png"
	store.addCamp(models.Camp{ID: "1", Name: "Alpha", ImageKey: &key})
	uploader := &mockUploader{}
	svc := NewCampService(memCamps{store}, uploader, nil)
	ledger := NewRegistrationLedger(memRegistrations{store}, memCamps{store}, nil, "usd", nil, nil, nil)
	ctx := context.Background()

	_, err := ledger.Register(ctx, participant("ann@example.com"), "1", "ann@example.com", validDetails())
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, participant("ann@example.com"), "1"), ErrForbidden)
	require.NoError(t, svc.Delete(ctx, organizer(), "1"))
	assert.Equal(t, 0, store.registrationCount())
	assert.Equal(t, []string{key}, uploader.deleted)

	assert.ErrorIs(t, svc.Delete(ctx, organizer(), "1"), ErrCampNotFound)
}

func TestCampService_UploadImage(t *testing.T) {
	store := newMemStore()
	old := "camps/1/old.png"
	store.addCamp(models.Camp{ID: "1", Name: "Alpha", ImageKey: &old})
	ctx := context.Background()

	t.Run("disabled", func(t *testing.T) {
		svc := NewCampService(memCamps{store}, nil, nil)
		_, err := svc.UploadImage(ctx, organizer(), "1", strings.NewReader("img"), "image/png")
		assert.ErrorIs(t, err, ErrUploadsDisabled)
	})

	t.Run("bad content type", func(t *testing.T) {
		svc := NewCampService(memCamps{store}, &mockUploader{}, nil)
		_, err := svc.UploadImage(ctx, organizer(), "1", strings.NewReader("pdf"), "application/pdf")
		assert.ErrorIs(t, err, ErrValidationFailed)
		assert.ErrorIs(t, err, storage.ErrUnsupportedContentType)
	})

	t.Run("upload failure", func(t *testing.T) {
		svc := NewCampService(memCamps{store}, &mockUploader{
			UploadFunc: func(context.Context, string, string, io.Reader) (*storage.UploadResult, error) {
				return nil, errors.New("r2 down")
			},
		}, nil)
		_, err := svc.UploadImage(ctx, organizer(), "1", strings.NewReader("img"), "image/png")
		assert.ErrorIs(t, err, ErrUpstreamFailure)
	})

	t.Run("replaces previous image", func(t *testing.T) {
		uploader := &mockUploader{}
		svc := NewCampService(memCamps{store}, uploader, nil)
		camp, err := svc.UploadImage(ctx, organizer(), "1", strings.NewReader("img"), "image/png")
		require.NoError(t, err)
		require.NotNil(t, camp.ImageURL)
		assert.True(t, strings.HasPrefix(*camp.ImageURL, "https://cdn.test/camps/1/"))
		assert.Equal(t, []string{old}, uploader.deleted)
		assert.Equal(t, camp.ImageKey, store.camp("1").ImageKey)
	})
}
