package submission

import (
	"context"
	"errors"
	"testing"

	"listing-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fillFields(t *testing.T, p *Pipeline, fields map[string]string) {
	t.Helper()
	for k, v := range fields {
		require.NoError(t, p.UpdateField(k, v), k)
	}
}

var propertyBasics = map[string]string{
	"title":            "Sunny 2BHK",
	"listingType":      "sale",
	"propertyType":     "apartment",
	"furnishing":       "semi-furnished",
	"possessionStatus": "ready-to-move",
}

var addressFields = map[string]string{
	"address.city":     "Bengaluru",
	"address.locality": "Whitefield",
	"address.street":   "ITPL Main Road",
}

var featureFields = map[string]string{
	"area":        "1,200",
	"bedrooms":    "2",
	"parking":     "1 Covered + 1 Open",
	"description": "Corner flat",
}

var contactFields = map[string]string{
	"contact.name":  "Asha",
	"contact.phone": "+91 98450 00000",
	"contact.email": "asha@example.com",
}

func advanceTo(t *testing.T, p *Pipeline, step int) {
	t.Helper()
	for p.CurrentStep() < step {
		_, err := p.Advance()
		require.NoError(t, err)
	}
}

func completeProperty(t *testing.T, h *harness) {
	t.Helper()
	fillFields(t, h.p, propertyBasics)
	fillFields(t, h.p, addressFields)
	require.NoError(t, h.p.FetchCoordinates(context.Background()))
	fillFields(t, h.p, featureFields)
	fillFields(t, h.p, map[string]string{"price": "85,00,000"})
	fillFields(t, h.p, contactFields)
	require.NoError(t, h.p.SetAmenities([]string{"gym", "lift", "gym"}))
	_, err := h.p.AttachMedia(domain.MediaFile{Name: "front.jpg", Data: []byte{1}}, domain.MediaFile{Name: "hall.jpg", Data: []byte{2}})
	require.NoError(t, err)
}

func TestAdvanceGatesOnCurrentStep(t *testing.T) {
	h := newHarness(domain.KindProperty)
	assert.Equal(t, 5, h.p.StepCount())

	step, err := h.p.Advance()
	var stepErr *StepValidationError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, 1, step)
	assert.Equal(t, 1, stepErr.Step)
	assert.Equal(t, []string{"title", "listingType", "propertyType", "furnishing", "possessionStatus"}, stepErr.Fields)

	fillFields(t, h.p, propertyBasics)
	require.NoError(t, h.p.UpdateField("furnishing", "luxurious"))
	_, err = h.p.Advance()
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, []string{"furnishing"}, stepErr.Fields)

	require.NoError(t, h.p.UpdateField("furnishing", "furnished"))
	step, err = h.p.Advance()
	require.NoError(t, err)
	assert.Equal(t, 2, step)
}

func TestAdvanceCapsAtLastStepAndRetreatFloors(t *testing.T) {
	h := newHarness(domain.KindProperty)
	completeProperty(t, h)
	advanceTo(t, h.p, 5)

	step, err := h.p.Advance()
	require.NoError(t, err)
	assert.Equal(t, 5, step)

	for i := 0; i < 10; i++ {
		h.p.Retreat()
	}
	assert.Equal(t, 1, h.p.CurrentStep())
}

func TestRetreatNeverValidates(t *testing.T) {
	h := newHarness(domain.KindProperty)
	completeProperty(t, h)
	advanceTo(t, h.p, 3)

	require.NoError(t, h.p.UpdateField("title", ""))
	assert.Equal(t, 2, h.p.Retreat())
	assert.Equal(t, 1, h.p.Retreat())

	_, err := h.p.Advance()
	assert.Error(t, err)
}

func TestUpdateFieldRejectsUnknownPaths(t *testing.T) {
	h := newHarness(domain.KindProperty)
	assert.ErrorIs(t, h.p.UpdateField("address.zip", "560066"), ErrUnknownField)
	assert.ErrorIs(t, h.p.UpdateField("projectType", "residential"), ErrUnknownField)

	p := newHarness(domain.KindProject).p
	assert.ErrorIs(t, p.UpdateField("price", "100"), ErrUnknownField)
	assert.ErrorIs(t, p.UpdateField("listingType", "sale"), ErrUnknownField)
}

func TestLocationStepNeedsFetchedCoordinates(t *testing.T) {
	h := newHarness(domain.KindProperty)
	fillFields(t, h.p, propertyBasics)
	advanceTo(t, h.p, 2)
	fillFields(t, h.p, addressFields)

	_, err := h.p.Advance()
	var stepErr *StepValidationError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, []string{"coordinates"}, stepErr.Fields)
	assert.Empty(t, h.geocoder.queries, "advance must not trigger a lookup")

	require.NoError(t, h.p.FetchCoordinates(context.Background()))
	assert.Equal(t, []string{"Whitefield, Bengaluru"}, h.geocoder.queries)

	step, err := h.p.Advance()
	require.NoError(t, err)
	assert.Equal(t, 3, step)
}

func TestLocalityChangeClearsCoordinates(t *testing.T) {
	h := newHarness(domain.KindProperty)
	fillFields(t, h.p, addressFields)
	require.NoError(t, h.p.FetchCoordinates(context.Background()))
	require.NotNil(t, h.p.Draft().Coordinates)

	require.NoError(t, h.p.UpdateField("address.street", "Another Road"))
	assert.NotNil(t, h.p.Draft().Coordinates)

	require.NoError(t, h.p.UpdateField("address.locality", "Koramangala"))
	assert.Nil(t, h.p.Draft().Coordinates)
}

func TestFetchCoordinatesFailureWarns(t *testing.T) {
	h := newHarness(domain.KindProperty)
	fillFields(t, h.p, addressFields)
	h.geocoder.err = errors.New("geocoder unavailable")

	err := h.p.FetchCoordinates(context.Background())
	var warning *GeocodeWarning
	require.True(t, errors.As(err, &warning))
	assert.Equal(t, "Whitefield, Bengaluru", warning.Query)
	assert.Nil(t, h.p.Draft().Coordinates)

	h.geocoder.err = nil
	h.geocoder.result = nil
	err = h.p.FetchCoordinates(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoGeocodeResult)
	assert.Nil(t, h.p.Draft().Coordinates)
}

func TestFetchCoordinatesNeedsCityAndLocality(t *testing.T) {
	h := newHarness(domain.KindProperty)
	require.NoError(t, h.p.UpdateField("address.city", "Bengaluru"))

	err := h.p.FetchCoordinates(context.Background())
	assert.ErrorIs(t, err, ErrAddressIncomplete)
	assert.Empty(t, h.geocoder.queries)
}

func TestSupersededLookupIsDiscarded(t *testing.T) {
	h := newHarness(domain.KindProperty)
	fillFields(t, h.p, addressFields)
	h.geocoder.block = make(chan struct{})
	h.geocoder.started = make(chan struct{}, 1)

	done := make(chan error, 1)
	go func() { done <- h.p.FetchCoordinates(context.Background()) }()
	<-h.geocoder.started

	require.NoError(t, h.p.UpdateField("address.locality", "Hebbal"))
	close(h.geocoder.block)

	require.NoError(t, <-done)
	assert.Nil(t, h.p.Draft().Coordinates, "result for the old locality must not be applied")
}

func TestAddressEditsDebounceTheLookup(t *testing.T) {
	h := newHarness(domain.KindProperty)
	require.NoError(t, h.p.UpdateField("address.city", "Bengaluru"))
	require.NoError(t, h.p.UpdateField("address.locality", "White"))
	require.NoError(t, h.p.UpdateField("address.locality", "Whitefield"))
	require.Equal(t, 3, h.timers.count())

	h.timers.fire(0)
	h.timers.fire(1)
	assert.Empty(t, h.geocoder.queries)

	h.timers.fire(2)
	assert.Equal(t, []string{"Whitefield, Bengaluru"}, h.geocoder.queries)
	require.NotNil(t, h.p.Draft().Coordinates)
	assert.Equal(t, 12.9698, h.p.Draft().Coordinates.Lat)
	assert.NoError(t, h.p.LastGeocodeWarning())
}

func TestDebouncedLookupRecordsWarning(t *testing.T) {
	h := newHarness(domain.KindProperty)
	h.geocoder.err = errors.New("timeout")
	fillFields(t, h.p, addressFields)

	h.p.ScheduleCoordinateLookup()
	h.timers.fire(h.timers.count() - 1)

	var warning *GeocodeWarning
	assert.True(t, errors.As(h.p.LastGeocodeWarning(), &warning))
}

func TestRemoveMediaUsesConcatenatedIndex(t *testing.T) {
	h := newHarness(domain.KindProperty)
	existing := validListing()
	existing.Images = []string{"/a.jpg", "/b.jpg"}
	require.NoError(t, h.p.LoadForEdit(existing))
	handles, err := h.p.AttachMedia(domain.MediaFile{Name: "c.jpg"}, domain.MediaFile{Name: "d.jpg"})
	require.NoError(t, err)
	require.Len(t, handles, 2)

	previews := h.p.Previews()
	require.Len(t, previews, 4)
	assert.True(t, previews[1].Existing)
	assert.Equal(t, handles[0], previews[2].Handle)

	assert.ErrorIs(t, h.p.RemoveMedia(2, true), ErrMediaIndex)
	assert.ErrorIs(t, h.p.RemoveMedia(1, false), ErrMediaIndex)

	require.NoError(t, h.p.RemoveMedia(3, false))
	require.NoError(t, h.p.RemoveMedia(0, true))

	d := h.p.Draft()
	assert.Equal(t, []string{"/b.jpg"}, d.ExistingMedia)
	require.Len(t, d.PendingMedia, 1)
	assert.Equal(t, "c.jpg", d.PendingMedia[0].File.Name)
}

func TestPriceZeroIsAPriceErrorNotAMediaError(t *testing.T) {
	h := newHarness(domain.KindProperty)
	existing := validListing()
	existing.Images = []string{"/a.jpg", "/b.jpg"}
	require.NoError(t, h.p.LoadForEdit(existing))
	require.NoError(t, h.p.UpdateField("price", "0"))
	advanceTo(t, h.p, 4)

	_, err := h.p.Advance()
	var stepErr *StepValidationError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, 4, stepErr.Step)
	assert.Equal(t, []string{"price"}, stepErr.Fields)

	_, err = h.p.Submit(context.Background(), "token")
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, []string{"price"}, stepErr.Fields)
	assert.Empty(t, h.writer.updated)
}

func TestSubmitCreatesOnce(t *testing.T) {
	h := newHarness(domain.KindProperty)
	completeProperty(t, h)

	saved, err := h.p.Submit(context.Background(), "token-1")
	require.NoError(t, err)
	require.Len(t, h.writer.created, 1)
	assert.Equal(t, saved, h.writer.created[0])

	assert.ElementsMatch(t, []string{"front.jpg", "hall.jpg"}, h.uploader.calls)
	assert.Equal(t, []string{"/assets/listings/front.jpg", "/assets/listings/hall.jpg"}, saved.Images)
	for _, c := range h.uploader.creds {
		assert.EqualValues(t, "token-1", c)
	}

	assert.Equal(t, 1200.0, saved.Area)
	assert.Equal(t, 8500000.0, saved.Price)
	assert.Equal(t, 2, saved.Parking.Count)
	assert.Equal(t, "1 Covered + 1 Open", saved.Parking.Description)
	assert.Equal(t, []string{"gym", "lift"}, saved.Amenities)
	require.NotNil(t, saved.Location)
	assert.Equal(t, [2]float64{77.75, 12.9698}, saved.Location.Coordinates)

	assert.Equal(t, 1, h.p.CurrentStep())
	assert.Empty(t, h.p.Draft().Fields)
	assert.Empty(t, h.p.Previews())
}

func TestSubmitUploadFailureKeepsDraft(t *testing.T) {
	h := newHarness(domain.KindProperty)
	completeProperty(t, h)
	advanceTo(t, h.p, 5)
	h.uploader.failOn = "hall.jpg"
	before := h.p.Draft()

	_, err := h.p.Submit(context.Background(), "token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hall.jpg")
	assert.Empty(t, h.writer.created)

	assert.Equal(t, before, h.p.Draft())
	assert.Equal(t, 5, h.p.CurrentStep())
}

func TestSubmitStoreFailureKeepsDraft(t *testing.T) {
	h := newHarness(domain.KindProperty)
	completeProperty(t, h)
	h.writer.err = errors.New("store rejected")
	before := h.p.Draft()

	_, err := h.p.Submit(context.Background(), "token")
	require.Error(t, err)
	assert.Equal(t, before, h.p.Draft())

	h.writer.err = nil
	_, err = h.p.Submit(context.Background(), "token")
	require.NoError(t, err)
	assert.Len(t, h.writer.created, 1)
}

func TestSubmitRejectsReentry(t *testing.T) {
	h := newHarness(domain.KindProperty)
	completeProperty(t, h)
	h.uploader.block = make(chan struct{})
	h.uploader.started = make(chan struct{}, 2)

	done := make(chan error, 1)
	go func() {
		_, err := h.p.Submit(context.Background(), "token")
		done <- err
	}()
	<-h.uploader.started

	_, err := h.p.Submit(context.Background(), "token")
	assert.ErrorIs(t, err, ErrOperationInFlight)
	assert.ErrorIs(t, h.p.UpdateField("title", "changed"), ErrOperationInFlight)

	close(h.uploader.block)
	require.NoError(t, <-done)
	assert.Len(t, h.writer.created, 1)
}

func TestEditSubmitsUpdate(t *testing.T) {
	h := newHarness(domain.KindProperty)
	existing := validListing()
	require.NoError(t, h.p.LoadForEdit(existing))
	require.NoError(t, h.p.UpdateField("title", "Renamed flat"))

	saved, err := h.p.Submit(context.Background(), "token")
	require.NoError(t, err)
	assert.Empty(t, h.writer.created)
	require.Contains(t, h.writer.updated, existing.ID)
	assert.Equal(t, "Renamed flat", saved.Title)
	assert.Equal(t, existing.Images, saved.Images)
	assert.Empty(t, h.uploader.calls)
}

func TestEditKeepsFloorPlansAndParkingCount(t *testing.T) {
	h := newHarness(domain.KindProperty)
	existing := validListing()
	existing.FloorPlans = []string{"/assets/listings/plan-a.png"}
	existing.Parking = domain.Parking{Count: 2}
	require.NoError(t, h.p.LoadForEdit(existing))

	saved, err := h.p.Submit(context.Background(), "token")
	require.NoError(t, err)
	assert.Equal(t, []string{"/assets/listings/plan-a.png"}, saved.FloorPlans)
	assert.Equal(t, domain.Parking{Count: 2}, saved.Parking)
}

func TestEditingParkingReplacesStoredCount(t *testing.T) {
	h := newHarness(domain.KindProperty)
	existing := validListing()
	existing.Parking = domain.Parking{Count: 2}
	require.NoError(t, h.p.LoadForEdit(existing))
	require.NoError(t, h.p.UpdateField("parking", "1 covered"))

	saved, err := h.p.Submit(context.Background(), "token")
	require.NoError(t, err)
	assert.Equal(t, domain.Parking{Count: 1, Description: "1 covered"}, saved.Parking)
}

func TestLoadForEditRejectsOtherKind(t *testing.T) {
	h := newHarness(domain.KindProject)
	assert.ErrorIs(t, h.p.LoadForEdit(validListing()), ErrWrongKind)
}

func TestProjectUnitTypes(t *testing.T) {
	h := newHarness(domain.KindProject)
	assert.Equal(t, 6, h.p.StepCount())

	fillFields(t, h.p, map[string]string{"title": "Skyline Towers", "projectType": "residential", "possessionStatus": "under-construction"})
	fillFields(t, h.p, addressFields)
	require.NoError(t, h.p.FetchCoordinates(context.Background()))
	fillFields(t, h.p, map[string]string{"area": "50000", "description": "Twin towers"})
	advanceTo(t, h.p, 4)

	_, err := h.p.Advance()
	var stepErr *StepValidationError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, []string{"unitTypes"}, stepErr.Fields)

	i, err := h.p.AddUnitType()
	require.NoError(t, err)
	require.NoError(t, h.p.UpdateUnitType(i, "label", "2BHK"))
	require.NoError(t, h.p.UpdateUnitType(i, "sizeRange.min", "1250"))
	require.NoError(t, h.p.UpdateUnitType(i, "sizeRange.max", "1100"))
	require.NoError(t, h.p.UpdateUnitType(i, "priceRange.min", "7500000"))
	require.NoError(t, h.p.UpdateUnitType(i, "priceRange.max", "8200000"))
	assert.ErrorIs(t, h.p.UpdateUnitType(i, "bedrooms", "2"), ErrUnknownField)
	assert.ErrorIs(t, h.p.UpdateUnitType(4, "label", "x"), ErrUnitTypeIndex)

	_, err = h.p.Advance()
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, []string{"unitTypes[0].sizeRange"}, stepErr.Fields, "inverted ranges are rejected, not clamped")

	require.NoError(t, h.p.UpdateUnitType(i, "sizeRange.max", "1400"))
	j, _ := h.p.AddUnitType()
	fillUnit := map[string]string{"label": "3BHK", "sizeRange.min": "1600", "sizeRange.max": "1800", "priceRange.min": "9800000", "priceRange.max": "11000000"}
	for k, v := range fillUnit {
		require.NoError(t, h.p.UpdateUnitType(j, k, v))
	}
	step, err := h.p.Advance()
	require.NoError(t, err)
	assert.Equal(t, 5, step)

	_, err = h.p.AttachMedia(domain.MediaFile{Name: "tower.jpg"})
	require.NoError(t, err)
	fillFields(t, h.p, contactFields)

	saved, err := h.p.Submit(context.Background(), "token")
	require.NoError(t, err)
	require.Len(t, saved.UnitTypes, 2)
	require.NotNil(t, saved.PriceRange)
	assert.Equal(t, domain.Range{Min: 7500000, Max: 11000000}, *saved.PriceRange)
	assert.Equal(t, 7500000.0, saved.Price)
	assert.Equal(t, "residential", saved.ProjectType)
}

func TestRemoveUnitType(t *testing.T) {
	h := newHarness(domain.KindProject)
	_, _ = h.p.AddUnitType()
	_, _ = h.p.AddUnitType()
	require.NoError(t, h.p.UpdateUnitType(1, "label", "3BHK"))

	require.NoError(t, h.p.RemoveUnitType(0))
	assert.ErrorIs(t, h.p.RemoveUnitType(1), ErrUnitTypeIndex)
	require.Len(t, h.p.Draft().UnitTypes, 1)
	assert.Equal(t, "3BHK", h.p.Draft().UnitTypes[0].Label)

	_, err := newHarness(domain.KindProperty).p.AddUnitType()
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestSetAmenitiesRejectsUnknown(t *testing.T) {
	h := newHarness(domain.KindProperty)
	assert.ErrorIs(t, h.p.SetAmenities([]string{"gym", "helipad"}), ErrUnknownAmenity)
	assert.Empty(t, h.p.Draft().Amenities)
}

func validListing() *domain.Listing {
	return &domain.Listing{
		ID:               uuid.New(),
		Kind:             domain.KindProperty,
		Title:            "Sunny 2BHK",
		Description:      "Corner flat",
		ListingType:      "rent",
		PropertyType:     "apartment",
		Furnishing:       "furnished",
		PossessionStatus: "ready-to-move",
		Address:          domain.Address{City: "Bengaluru", Locality: "Whitefield", Street: "ITPL Main Road"},
		Location:         domain.NewGeoPoint(12.97, 77.75),
		Area:             1100,
		Price:            45000,
		Images:           []string{"/assets/listings/old.jpg"},
		Contact:          domain.Contact{Name: "Asha", Phone: "98450", Email: "asha@example.com"},
	}
}
