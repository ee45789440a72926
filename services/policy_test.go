package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Dosada05/medcamp/models"
)

func TestAuthorize(t *testing.T) {
	ann := participant("ann@example.com")
	org := organizer()

	tests := []struct {
		name    string
		caller  *models.Caller
		caps    []Capability
		wantErr error
	}{
		{name: "nil caller", caller: nil, caps: []Capability{Authenticated}, wantErr: ErrUnauthenticated},
		{name: "nil caller without caps", caller: nil, wantErr: ErrUnauthenticated},
		{name: "empty email", caller: &models.Caller{Role: models.RoleOrganizer}, caps: []Capability{Organizer}, wantErr: ErrUnauthenticated},
		{name: "authenticated", caller: ann, caps: []Capability{Authenticated}},
		{name: "organizer required", caller: ann, caps: []Capability{Organizer}, wantErr: ErrForbidden},
		{name: "organizer", caller: org, caps: []Capability{Organizer}},
		{name: "self owner", caller: ann, caps: []Capability{SelfOwner("ANN@example.com")}},
		{name: "not owner", caller: ann, caps: []Capability{SelfOwner("bob@example.com")}, wantErr: ErrForbidden},
		{name: "empty owner", caller: ann, caps: []Capability{SelfOwner("")}, wantErr: ErrForbidden},
		{name: "organizer is not owner", caller: org, caps: []Capability{SelfOwner("ann@example.com")}, wantErr: ErrForbidden},
		{name: "any of: organizer", caller: org, caps: []Capability{AnyOf(SelfOwner("ann@example.com"), Organizer)}},
		{name: "any of: owner", caller: ann, caps: []Capability{AnyOf(SelfOwner("ann@example.com"), Organizer)}},
		{name: "any of: neither", caller: participant("bob@example.com"), caps: []Capability{AnyOf(SelfOwner("ann@example.com"), Organizer)}, wantErr: ErrForbidden},
		{name: "all required", caller: org, caps: []Capability{Organizer, SelfOwner("ann@example.com")}, wantErr: ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.caller, tt.caps...)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestCapabilityString(t *testing.T) {
	assert.Equal(t, "organizer", Organizer.String())
	assert.Equal(t, "any(self:a@b.co,organizer)", AnyOf(SelfOwner("a@b.co"), Organizer).String())
}

func TestErrorKinds(t *testing.T) {
	assert.ErrorIs(t, ErrCampNotFound, ErrNotFound)
	assert.ErrorIs(t, ErrNotRegistered, ErrNotFound)
	assert.ErrorIs(t, ErrUploadsDisabled, ErrUpstreamFailure)
	assert.NotErrorIs(t, ErrDuplicateRegistration, ErrNotFound)
	assert.Equal(t, "camp not found", ErrCampNotFound.Error())
}
