package submission

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"listing-service/internal/contextkeys"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultDebounceDelay = 600 * time.Millisecond
	DefaultAssetFolder   = "listings"
	lookupTimeout        = 10 * time.Second
)

type Config struct {
	Kind          domain.Kind
	Uploader      port.AssetUploaderPort
	Geocoder      port.GeocoderPort
	Writer        port.ListingWriterPort
	Logger        port.LoggerPort
	AssetFolder   string
	DebounceDelay time.Duration
	// TimerFactory replaces time.AfterFunc for the coordinate lookup debounce.
	TimerFactory TimerFactory
}

// Pipeline collects a listing across ordered steps and persists it once.
type Pipeline struct {
	mu sync.Mutex

	kind    domain.Kind
	steps   []StepConfig
	known   map[string]bool
	current int
	draft   *Draft

	uploader port.AssetUploaderPort
	geocoder port.GeocoderPort
	writer   port.ListingWriterPort
	logger   port.LoggerPort
	folder   string

	debouncer   *Debouncer
	lookupGen   uint64
	lastWarning error
	inFlight    bool
}

func NewPipeline(cfg Config) (*Pipeline, error) {
	if !cfg.Kind.Valid() {
		return nil, fmt.Errorf("unsupported listing kind %q", cfg.Kind)
	}
	if cfg.Uploader == nil || cfg.Geocoder == nil || cfg.Writer == nil {
		return nil, errors.New("uploader, geocoder and writer are required")
	}
	if cfg.Logger == nil {
		cfg.Logger = contextkeys.LoggerFromContext(context.Background())
	}
	if cfg.AssetFolder == "" {
		cfg.AssetFolder = DefaultAssetFolder
	}
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = DefaultDebounceDelay
	}

	steps := StepsFor(cfg.Kind)
	p := &Pipeline{
		kind:     cfg.Kind,
		steps:    steps,
		known:    knownFields(steps),
		current:  1,
		draft:    newDraft(),
		uploader: cfg.Uploader,
		geocoder: cfg.Geocoder,
		writer:   cfg.Writer,
		logger:   cfg.Logger.WithFields(port.Fields{"component": "SubmissionPipeline", "kind": string(cfg.Kind)}),
		folder:   cfg.AssetFolder,
	}
	p.debouncer = NewDebouncer(cfg.DebounceDelay, p.debouncedLookup, cfg.TimerFactory)
	return p, nil
}

func (p *Pipeline) Kind() domain.Kind { return p.kind }

func (p *Pipeline) StepCount() int { return len(p.steps) }

func (p *Pipeline) CurrentStep() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

func (p *Pipeline) Step(n int) (StepConfig, bool) {
	if n < 1 || n > len(p.steps) {
		return StepConfig{}, false
	}
	return p.steps[n-1], true
}

// Draft returns a copy of the current draft.
func (p *Pipeline) Draft() Draft {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.draft.clone()
}

func (p *Pipeline) Previews() []Preview {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.draft.previews()
}

// LastGeocodeWarning returns the warning of the most recent debounced lookup, if any.
func (p *Pipeline) LastGeocodeWarning() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastWarning
}

// Advance validates the current step and moves forward on success.
func (p *Pipeline) Advance() (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.inFlight {
		return p.current, ErrOperationInFlight
	}
	if err := p.validateStep(p.current); err != nil {
		return p.current, err
	}
	if p.current < len(p.steps) {
		p.current++
	}
	return p.current, nil
}

// Retreat moves back one step without validating.
func (p *Pipeline) Retreat() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current > 1 {
		p.current--
	}
	return p.current
}

func (p *Pipeline) validateStep(n int) error {
	step := p.steps[n-1]
	if bad := step.Validate(p.draft); len(bad) > 0 {
		return &StepValidationError{Step: n, StepName: step.Name, Fields: bad}
	}
	return nil
}

// UpdateField stores a raw value at a dotted path such as "address.city".
func (p *Pipeline) UpdateField(path, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.inFlight {
		return ErrOperationInFlight
	}
	if !p.known[path] {
		return fmt.Errorf("%w: %q", ErrUnknownField, path)
	}
	if numericFields[path] {
		value = strings.TrimSpace(value)
	}

	old := p.draft.Fields[path]
	p.draft.Fields[path] = value
	if path == "parking" {
		p.draft.ParkingCount = 0
	}

	if (path == "address.city" || path == "address.locality") && old != value {
		p.draft.Coordinates = nil
		p.lookupGen++
		p.debouncer.Trigger()
	}
	return nil
}

// SetAmenities replaces the amenity set. Unknown amenities are rejected.
func (p *Pipeline) SetAmenities(amenities []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.inFlight {
		return ErrOperationInFlight
	}
	seen := map[string]bool{}
	out := make([]string, 0, len(amenities))
	for _, a := range amenities {
		a = strings.TrimSpace(a)
		if !domain.IsKnownAmenity(a) {
			return fmt.Errorf("%w: %q", ErrUnknownAmenity, a)
		}
		if !seen[a] {
			seen[a] = true
			out = append(out, a)
		}
	}
	p.draft.Amenities = out
	return nil
}

// AddUnitType appends an empty unit type and returns its index.
func (p *Pipeline) AddUnitType() (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.inFlight {
		return 0, ErrOperationInFlight
	}
	if p.kind != domain.KindProject {
		return 0, fmt.Errorf("%w: unit types belong to projects", ErrUnknownField)
	}
	p.draft.UnitTypes = append(p.draft.UnitTypes, UnitTypeInput{})
	return len(p.draft.UnitTypes) - 1, nil
}

// UpdateUnitType sets one field of a unit type: label, sizeRange.min,
// sizeRange.max, priceRange.min or priceRange.max.
func (p *Pipeline) UpdateUnitType(index int, field, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.inFlight {
		return ErrOperationInFlight
	}
	if index < 0 || index >= len(p.draft.UnitTypes) {
		return ErrUnitTypeIndex
	}
	u := &p.draft.UnitTypes[index]
	switch field {
	case "label":
		u.Label = value
	case "sizeRange.min":
		u.SizeMin = strings.TrimSpace(value)
	case "sizeRange.max":
		u.SizeMax = strings.TrimSpace(value)
	case "priceRange.min":
		u.PriceMin = strings.TrimSpace(value)
	case "priceRange.max":
		u.PriceMax = strings.TrimSpace(value)
	default:
		return fmt.Errorf("%w: unit type %q", ErrUnknownField, field)
	}
	return nil
}

func (p *Pipeline) RemoveUnitType(index int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.inFlight {
		return ErrOperationInFlight
	}
	if index < 0 || index >= len(p.draft.UnitTypes) {
		return ErrUnitTypeIndex
	}
	p.draft.UnitTypes = append(p.draft.UnitTypes[:index], p.draft.UnitTypes[index+1:]...)
	return nil
}

// AttachMedia queues files for upload at submit time and returns their preview handles.
func (p *Pipeline) AttachMedia(files ...domain.MediaFile) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.inFlight {
		return nil, ErrOperationInFlight
	}
	handles := make([]string, 0, len(files))
	for _, f := range files {
		h := uuid.NewString()
		p.draft.PendingMedia = append(p.draft.PendingMedia, PendingMedia{Handle: h, File: f})
		handles = append(handles, h)
	}
	return handles, nil
}

// RemoveMedia removes the preview at index. Indexes address the persisted
// URLs first and the pending files after them; isExisting must agree with
// the provenance of that index.
func (p *Pipeline) RemoveMedia(index int, isExisting bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.inFlight {
		return ErrOperationInFlight
	}
	existing := len(p.draft.ExistingMedia)
	if isExisting {
		if index < 0 || index >= existing {
			return ErrMediaIndex
		}
		p.draft.ExistingMedia = append(p.draft.ExistingMedia[:index], p.draft.ExistingMedia[index+1:]...)
		return nil
	}
	i := index - existing
	if i < 0 || i >= len(p.draft.PendingMedia) {
		return ErrMediaIndex
	}
	p.draft.PendingMedia = append(p.draft.PendingMedia[:i], p.draft.PendingMedia[i+1:]...)
	return nil
}

// ScheduleCoordinateLookup restarts the quiet period before a lookup.
func (p *Pipeline) ScheduleCoordinateLookup() {
	p.debouncer.Trigger()
}

func (p *Pipeline) debouncedLookup() {
	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()

	err := p.FetchCoordinates(ctx)

	p.mu.Lock()
	p.lastWarning = err
	p.mu.Unlock()
}

// FetchCoordinates geocodes the current locality and city. On failure the
// coordinates stay empty and a *GeocodeWarning is returned. A result that
// arrives after the address changed again is discarded.
func (p *Pipeline) FetchCoordinates(ctx context.Context) error {
	p.mu.Lock()
	gen := p.lookupGen
	city := strings.TrimSpace(p.draft.field("address.city"))
	locality := strings.TrimSpace(p.draft.field("address.locality"))
	p.mu.Unlock()

	query := strings.TrimPrefix(locality+", "+city, ", ")
	if city == "" || locality == "" {
		p.setCoordinates(gen, nil)
		return &GeocodeWarning{Query: query, Err: ErrAddressIncomplete}
	}

	candidates, err := p.geocoder.Geocode(ctx, query)
	if err == nil && len(candidates) == 0 {
		err = domain.ErrNoGeocodeResult
	}
	if err == nil && !domain.ValidCoordinates(candidates[0].Lat, candidates[0].Lon) {
		err = fmt.Errorf("geocoder returned invalid coordinates %f,%f", candidates[0].Lat, candidates[0].Lon)
	}
	if err != nil {
		if p.setCoordinates(gen, nil) {
			p.logger.Warn("Coordinate lookup failed", port.Fields{"query": query, "error": err.Error()})
			return &GeocodeWarning{Query: query, Err: err}
		}
		return nil
	}

	if !p.setCoordinates(gen, &Coordinates{Lat: candidates[0].Lat, Lon: candidates[0].Lon}) {
		p.logger.Debug("Discarding superseded coordinate lookup", port.Fields{"query": query})
		return nil
	}
	p.logger.Debug("Coordinates updated", port.Fields{"query": query, "lat": candidates[0].Lat, "lon": candidates[0].Lon})
	return nil
}

func (p *Pipeline) setCoordinates(gen uint64, c *Coordinates) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.lookupGen {
		return false
	}
	p.draft.Coordinates = c
	return true
}

// LoadForEdit replaces the draft with a persisted listing. Submit then updates it.
func (p *Pipeline) LoadForEdit(listing *domain.Listing) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.inFlight {
		return ErrOperationInFlight
	}
	if listing.Kind != p.kind {
		return ErrWrongKind
	}
	p.debouncer.Stop()
	p.lookupGen++
	p.draft = draftFromListing(listing)
	p.current = 1
	return nil
}

// Reset discards the draft and returns to the first step.
func (p *Pipeline) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetLocked()
}

func (p *Pipeline) resetLocked() {
	p.debouncer.Stop()
	p.lookupGen++
	p.draft = newDraft()
	p.current = 1
	p.lastWarning = nil
}

// Submit validates every step, uploads pending media, and performs one create
// or update call. The draft is cleared on success and kept on any failure.
func (p *Pipeline) Submit(ctx context.Context, cred port.Credential) (*domain.Listing, error) {
	p.mu.Lock()
	if p.inFlight {
		p.mu.Unlock()
		return nil, ErrOperationInFlight
	}
	for n := 1; n <= len(p.steps); n++ {
		if err := p.validateStep(n); err != nil {
			p.mu.Unlock()
			return nil, err
		}
	}
	p.inFlight = true
	draft := p.draft.clone()
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.inFlight = false
		p.mu.Unlock()
	}()

	logger := p.logger.WithFields(port.Fields{"pending_media": len(draft.PendingMedia)})
	logger.Info("Submitting listing", nil)

	uploaded, err := p.uploadPending(ctx, cred, draft.PendingMedia)
	if err != nil {
		logger.Error("Media upload failed, draft kept", err, nil)
		return nil, err
	}

	images := append(append([]string{}, draft.ExistingMedia...), uploaded...)
	payload := BuildPayload(p.kind, draft, images)

	var saved *domain.Listing
	if draft.EditID != nil {
		saved, err = p.writer.Update(ctx, cred, *draft.EditID, payload)
	} else {
		saved, err = p.writer.Create(ctx, cred, payload)
	}
	if err != nil {
		logger.Error("Listing store rejected submission, draft kept", err, nil)
		return nil, fmt.Errorf("save listing: %w", err)
	}

	p.mu.Lock()
	p.resetLocked()
	p.mu.Unlock()

	logger.Info("Listing submitted", port.Fields{"listing_id": saved.ID.String()})
	return saved, nil
}

func (p *Pipeline) uploadPending(ctx context.Context, cred port.Credential, pending []PendingMedia) ([]string, error) {
	urls := make([]string, len(pending))
	g, gCtx := errgroup.WithContext(ctx)
	for i, m := range pending {
		i, m := i, m
		g.Go(func() error {
			url, err := p.uploader.Upload(gCtx, cred, m.File, p.folder)
			if err != nil {
				return fmt.Errorf("upload %s: %w", m.File.Name, err)
			}
			urls[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return urls, nil
}
