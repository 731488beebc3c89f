package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"listing-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validListing(kind domain.Kind) *domain.Listing {
	l := &domain.Listing{
		Kind:             kind,
		Title:            "Lakeview Residency",
		Description:      "Quiet street, close to the lake",
		PropertyType:     "apartment",
		PossessionStatus: "ready-to-move",
		Address:          domain.Address{City: "Bengaluru", Locality: "Whitefield", Street: "Varthur Road"},
		Location:         domain.NewGeoPoint(12.97, 77.75),
		Area:             1500,
		Amenities:        []string{"gym"},
		Images:           []string{"/assets/listings/1.jpg"},
		Contact:          domain.Contact{Name: "Asha", Phone: "98450", Email: "asha@example.com"},
	}
	if kind == domain.KindProject {
		l.ProjectType = "residential"
		l.UnitTypes = []domain.UnitType{{Label: "2BHK", Size: domain.Range{Min: 1000, Max: 1200}, Price: domain.Range{Min: 6000000, Max: 7000000}}}
	} else {
		l.ListingType = "sale"
		l.Furnishing = "furnished"
		l.Price = 9000000
	}
	return l
}

var fixedNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func newCreate(s *memoryStore, ev *recordingEvents) *CreateListingUseCase {
	uc := NewCreateListingUseCase(s, s, ev)
	uc.now = func() time.Time { return fixedNow }
	return uc
}

func TestCreateListing(t *testing.T) {
	s := newMemoryStore()
	ev := &recordingEvents{}
	caller := &domain.Principal{UserID: uuid.New()}

	in := validListing(domain.KindProperty)
	in.Verified = true
	in.Counters.Views = 99

	got, err := newCreate(s, ev).Execute(context.Background(), caller, in)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, got.ID)
	assert.Equal(t, caller.UserID, got.OwnerID)
	assert.False(t, got.Verified, "new listings start unverified")
	assert.Zero(t, got.Counters.Views)
	assert.Equal(t, fixedNow, got.CreatedAt)
	assert.NotEmpty(t, got.Geohash)

	stored, err := s.GetByID(context.Background(), got.ID)
	require.NoError(t, err)
	assert.Equal(t, got.Title, stored.Title)

	require.Len(t, ev.events, 1)
	assert.Equal(t, domain.ActionCreated, ev.events[0].Action)
	assert.Equal(t, got.ID, ev.events[0].ListingID)
}

func TestCreateListingValidation(t *testing.T) {
	s := newMemoryStore()
	in := validListing(domain.KindProperty)
	in.Price = 0

	_, err := newCreate(s, &recordingEvents{}).Execute(context.Background(), &domain.Principal{UserID: uuid.New()}, in)
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Empty(t, s.listings)
}

func TestCreateProjectRequiresVerifiedBuilder(t *testing.T) {
	builder := uuid.New()
	unverified := uuid.New()
	s := newMemoryStore()
	s.profiles = []*domain.Profile{
		{UserID: builder, IsBuilder: true, Verified: true},
		{UserID: unverified, IsBuilder: true, Verified: false},
	}
	uc := newCreate(s, &recordingEvents{})

	_, err := uc.Execute(context.Background(), &domain.Principal{UserID: unverified}, validListing(domain.KindProject))
	assert.ErrorIs(t, err, domain.ErrNotVerifiedBuilder)

	_, err = uc.Execute(context.Background(), &domain.Principal{UserID: uuid.New()}, validListing(domain.KindProject))
	assert.ErrorIs(t, err, domain.ErrNotVerifiedBuilder)

	got, err := uc.Execute(context.Background(), &domain.Principal{UserID: builder}, validListing(domain.KindProject))
	require.NoError(t, err)
	assert.Equal(t, 6000000.0, got.Price)
	require.NotNil(t, got.PriceRange)
	assert.Equal(t, 7000000.0, got.PriceRange.Max)
}

func TestCreateListingStoreFailure(t *testing.T) {
	s := newMemoryStore()
	s.createErr = errStoreDown
	ev := &recordingEvents{}

	_, err := newCreate(s, ev).Execute(context.Background(), &domain.Principal{UserID: uuid.New()}, validListing(domain.KindProperty))
	assert.ErrorIs(t, err, errStoreDown)
	assert.Empty(t, ev.events)
}

func TestCreateListingPublishFailureDoesNotFail(t *testing.T) {
	s := newMemoryStore()
	ev := &recordingEvents{err: errors.New("broker down")}

	got, err := newCreate(s, ev).Execute(context.Background(), &domain.Principal{UserID: uuid.New()}, validListing(domain.KindProperty))
	require.NoError(t, err)
	assert.Contains(t, s.listings, got.ID)
}

func seedListing(s *memoryStore, owner uuid.UUID, verified bool) *domain.Listing {
	l := validListing(domain.KindProperty)
	l.ID = uuid.New()
	l.OwnerID = owner
	l.Verified = verified
	l.Counters = domain.Counters{Views: 12}
	l.CreatedAt = fixedNow.Add(-time.Hour)
	l.Normalize()
	s.listings[l.ID] = l
	return l
}

func TestUpdateListing(t *testing.T) {
	owner := uuid.New()
	s := newMemoryStore()
	existing := seedListing(s, owner, true)
	cache := newMemoryFacetCache()
	ev := &recordingEvents{}
	uc := NewUpdateListingUseCase(s, s, ev, cache)
	uc.now = func() time.Time { return fixedNow }

	in := validListing("")
	in.Title = "Renamed"
	in.Verified = false

	got, err := uc.Execute(context.Background(), &domain.Principal{UserID: owner}, existing.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, domain.KindProperty, got.Kind)
	assert.True(t, got.Verified, "verification is kept across edits")
	assert.Equal(t, int64(12), got.Counters.Views)
	assert.Equal(t, existing.CreatedAt, got.CreatedAt)
	assert.Equal(t, fixedNow, got.UpdatedAt)
	assert.Equal(t, []string{domain.CatalogProperties}, cache.invalidated)
	require.Len(t, ev.events, 1)
	assert.Equal(t, domain.ActionUpdated, ev.events[0].Action)
}

func TestUpdateListingAuthorization(t *testing.T) {
	owner := uuid.New()
	s := newMemoryStore()
	existing := seedListing(s, owner, false)
	uc := NewUpdateListingUseCase(s, s, nil, nil)

	_, err := uc.Execute(context.Background(), &domain.Principal{UserID: uuid.New()}, existing.ID, validListing(domain.KindProperty))
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.Execute(context.Background(), &domain.Principal{UserID: uuid.New(), Role: domain.RoleAdmin}, existing.ID, validListing(domain.KindProperty))
	assert.NoError(t, err)

	_, err = uc.Execute(context.Background(), &domain.Principal{UserID: owner}, existing.ID, validListing(domain.KindProject))
	assert.ErrorIs(t, err, domain.ErrKindMismatch)

	_, err = uc.Execute(context.Background(), &domain.Principal{UserID: owner}, uuid.New(), validListing(domain.KindProperty))
	assert.ErrorIs(t, err, domain.ErrListingNotFound)
}

func TestGetListingVisibility(t *testing.T) {
	owner := uuid.New()
	s := newMemoryStore()
	hidden := seedListing(s, owner, false)
	public := seedListing(s, owner, true)
	uc := NewGetListingUseCase(s)

	_, err := uc.Execute(context.Background(), nil, hidden.ID)
	assert.ErrorIs(t, err, domain.ErrListingNotFound)

	_, err = uc.Execute(context.Background(), &domain.Principal{UserID: owner}, hidden.ID)
	assert.NoError(t, err)

	_, err = uc.Execute(context.Background(), &domain.Principal{Role: domain.RoleAdmin}, hidden.ID)
	assert.NoError(t, err)

	_, err = uc.Execute(context.Background(), nil, public.ID)
	assert.NoError(t, err)
}

func TestSetVerification(t *testing.T) {
	s := newMemoryStore()
	l := seedListing(s, uuid.New(), false)
	cache := newMemoryFacetCache()
	ev := &recordingEvents{}
	uc := NewSetVerificationUseCase(s, ev, cache)

	_, err := uc.Execute(context.Background(), &domain.Principal{UserID: l.OwnerID}, l.ID, true)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	got, err := uc.Execute(context.Background(), &domain.Principal{Role: domain.RoleAdmin}, l.ID, true)
	require.NoError(t, err)
	assert.True(t, got.Verified)
	assert.Equal(t, []string{domain.CatalogProperties}, cache.invalidated)
	require.Len(t, ev.events, 1)
	assert.Equal(t, domain.ActionVerificationChanged, ev.events[0].Action)
	assert.True(t, ev.events[0].Verified)

	_, err = uc.Execute(context.Background(), &domain.Principal{Role: domain.RoleAdmin}, uuid.New(), true)
	assert.ErrorIs(t, err, domain.ErrListingNotFound)
}

func TestRecordEngagement(t *testing.T) {
	s := newMemoryStore()
	l := seedListing(s, uuid.New(), true)
	uc := NewRecordEngagementUseCase(s)
	ctx := context.Background()

	require.NoError(t, uc.Execute(ctx, domain.EngagementEvent{ListingID: l.ID, Type: domain.EngagementView}))
	require.NoError(t, uc.Execute(ctx, domain.EngagementEvent{ListingID: l.ID, Type: domain.EngagementUnfavorite}))
	require.NoError(t, uc.Execute(ctx, domain.EngagementEvent{ListingID: l.ID, Type: domain.EngagementInquiry}))

	stored, _ := s.GetByID(ctx, l.ID)
	assert.Equal(t, int64(13), stored.Counters.Views)
	assert.Equal(t, int64(0), stored.Counters.Favorites)
	assert.Equal(t, int64(1), stored.Counters.Inquiries)

	assert.NoError(t, uc.Execute(ctx, domain.EngagementEvent{ListingID: uuid.New(), Type: domain.EngagementView}))
	assert.ErrorIs(t, uc.Execute(ctx, domain.EngagementEvent{ListingID: l.ID, Type: "share"}), domain.ErrInvalidEngagement)
	assert.ErrorIs(t, uc.Execute(ctx, domain.EngagementEvent{Type: domain.EngagementView}), domain.ErrInvalidEngagement)
}
