package services

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"tourwise/backoffice/internal/db/repositories"
	"tourwise/backoffice/internal/models/dtos"
	gormModels "tourwise/backoffice/internal/models/gorm"
	"tourwise/backoffice/internal/providers"
)

// TourUpserter reconciles one fetched tour record into the store: natural-key
// find-or-create on the tour and its departures, wholesale replacement of all
// owned child collections, geocoding of referenced place names.
type TourUpserter struct {
	tours      *repositories.TourRepo
	departures *repositories.DepartureRepo
	catalog    providers.CatalogClient
	geocoder   providers.GeocodingResolver

	// mediaBaseURL seeds the fallback CDN URL synthesis
	mediaBaseURL string
}

// UpsertOutcome reports what one tour-record reconciliation did (or, on a dry
// run, would have done).
type UpsertOutcome struct {
	TourCreated       bool
	DeparturesCreated int
	DeparturesUpdated int
}

// NewTourUpserter creates a new tour upserter
func NewTourUpserter(
	tours *repositories.TourRepo,
	departures *repositories.DepartureRepo,
	catalog providers.CatalogClient,
	geocoder providers.GeocodingResolver,
	mediaBaseURL string,
) *TourUpserter {
	return &TourUpserter{
		tours:        tours,
		departures:   departures,
		catalog:      catalog,
		geocoder:     geocoder,
		mediaBaseURL: mediaBaseURL,
	}
}

// UpsertTour reconciles a single fetched tour record. now is the run's clock
// reading for this record; lastSeenAt advances to it only because this run
// observed the tour. When dryRun is set, lookups and derivations run but no
// write reaches the store.
func (u *TourUpserter) UpsertTour(
	ctx context.Context,
	operator *gormModels.Operator,
	brand string,
	rec dtos.TourRecord,
	now time.Time,
	dryRun bool,
) (*UpsertOutcome, error) {
	provider := rec.Provider
	if provider == "" {
		provider = brand
	}
	if rec.ProviderIdentifier == "" {
		return nil, fmt.Errorf("tour record has no provider identifier")
	}

	outcome := &UpsertOutcome{}

	existing, err := u.tours.FindByNaturalKey(ctx, provider, rec.ProviderIdentifier, rec.Season)
	if err != nil {
		return nil, fmt.Errorf("tour lookup failed: %w", err)
	}

	// Secondary content-detail fetch; failures degrade to "fields absent"
	detail := u.fetchDetail(ctx, brand, rec)

	// Geocode the deduplicated set of distinct places this tour references:
	// one lookup per unique name per sync pass, not per row.
	tourPlaces := collectTourPlaces(rec)
	coords, err := u.geocoder.ResolveBatch(ctx, tourPlaces)
	if err != nil {
		// Coordinates are enrichment, not identity
		log.Printf("[Upserter] geocode batch failed for %s: %v", rec.ProviderIdentifier, err)
		coords = map[string]dtos.Coordinates{}
	}

	tour := existing
	if tour == nil {
		outcome.TourCreated = true
		tour = &gormModels.Tour{
			Provider:           provider,
			ProviderIdentifier: rec.ProviderIdentifier,
			Season:             rec.Season,
		}
	}

	applyTourFields(tour, operator.ID, rec, detail, coords, now)

	if !dryRun {
		if outcome.TourCreated {
			if err := u.tours.Create(ctx, tour); err != nil {
				return nil, fmt.Errorf("tour insert failed: %w", err)
			}
		} else {
			if err := u.tours.Save(ctx, tour); err != nil {
				return nil, fmt.Errorf("tour update failed: %w", err)
			}
		}

		if err := u.replaceTourChildren(ctx, tour.ID, brand, rec, detail, coords); err != nil {
			return nil, err
		}
	}

	// Departure reconciliation follows the same find-or-create-then-
	// replace-children pattern at its own natural key.
	depPlaces := collectDeparturePlaces(rec)
	depCoords, err := u.geocoder.ResolveBatch(ctx, depPlaces)
	if err != nil {
		depCoords = map[string]dtos.Coordinates{}
	}

	for _, depRec := range rec.Departures {
		created, err := u.upsertDeparture(ctx, tour, depRec, depCoords, now, dryRun)
		if err != nil {
			return nil, fmt.Errorf("departure %s: %w", depRec.DepartureCode, err)
		}
		if created {
			outcome.DeparturesCreated++
		} else {
			outcome.DeparturesUpdated++
		}
	}

	return outcome, nil
}

// fetchDetail pulls the per-tour content document. Any failure is logged and
// treated as "no detail"; detail is never load-bearing for the tour.
func (u *TourUpserter) fetchDetail(ctx context.Context, brand string, rec dtos.TourRecord) *dtos.TourDetail {
	if rec.TourCode == "" {
		return nil
	}
	detail, err := u.catalog.FetchTourDetail(ctx, brand, rec.TourCode)
	if err != nil {
		log.Printf("[Upserter] detail fetch failed for %s: %v", rec.TourCode, err)
		return nil
	}
	return detail
}

func (u *TourUpserter) replaceTourChildren(
	ctx context.Context,
	tourID string,
	brand string,
	rec dtos.TourRecord,
	detail *dtos.TourDetail,
	coords map[string]dtos.Coordinates,
) error {
	days := buildItineraryDays(tourID, rec, detail, coords)
	if err := u.tours.ReplaceItineraryDays(ctx, tourID, days); err != nil {
		return fmt.Errorf("itinerary replace failed: %w", err)
	}

	hotels := make([]gormModels.Hotel, 0, len(rec.Hotels))
	for _, h := range rec.Hotels {
		hotels = append(hotels, gormModels.Hotel{
			TourID: tourID,
			Name:   h.Name,
			City:   h.City,
			Nights: h.Nights,
			Stars:  h.Stars,
		})
	}
	if err := u.tours.ReplaceHotels(ctx, tourID, hotels); err != nil {
		return fmt.Errorf("hotel replace failed: %w", err)
	}

	media := buildMedia(tourID, u.mediaBaseURL, brand, rec)
	if err := u.tours.ReplaceMedia(ctx, tourID, media); err != nil {
		return fmt.Errorf("media replace failed: %w", err)
	}

	inclusions := buildInclusions(tourID, rec)
	if err := u.tours.ReplaceInclusions(ctx, tourID, inclusions); err != nil {
		return fmt.Errorf("inclusion replace failed: %w", err)
	}

	return nil
}

func (u *TourUpserter) upsertDeparture(
	ctx context.Context,
	tour *gormModels.Tour,
	rec dtos.DepartureRecord,
	coords map[string]dtos.Coordinates,
	now time.Time,
	dryRun bool,
) (created bool, err error) {
	var existing *gormModels.Departure
	if tour.ID != "" {
		existing, err = u.departures.FindByNaturalKey(ctx, tour.ID, rec.DepartureCode, rec.Season, rec.LandStartDate)
		if err != nil {
			return false, fmt.Errorf("lookup failed: %w", err)
		}
	}

	dep := existing
	if dep == nil {
		created = true
		dep = &gormModels.Departure{
			TourID:        tour.ID,
			DepartureCode: rec.DepartureCode,
			Season:        rec.Season,
			LandStartDate: rec.LandStartDate,
		}
	}

	dep.StartDate = rec.StartDate
	dep.EndDate = rec.EndDate
	dep.Status = rec.Status
	dep.Guaranteed = rec.Guaranteed
	dep.ShipName = rec.ShipName
	dep.StartCity = rec.StartCity
	dep.EndCity = rec.EndCity
	dep.BasePriceCents = DeriveBasePriceCents(rec.CabinPrices)
	if len(rec.CabinPrices) > 0 {
		dep.Currency = rec.CabinPrices[0].Currency
	}
	dep.IsActive = true
	dep.LastSeenAt = now

	if c, ok := coords[rec.StartCity]; ok {
		lat, lng := c.Lat, c.Lng
		dep.StartLat, dep.StartLng = &lat, &lng
	}

	if dryRun {
		return created, nil
	}

	if created {
		if err := u.departures.Create(ctx, dep); err != nil {
			return false, fmt.Errorf("insert failed: %w", err)
		}
	} else {
		if err := u.departures.Save(ctx, dep); err != nil {
			return false, fmt.Errorf("update failed: %w", err)
		}
	}

	pricing := make([]gormModels.CabinPricing, 0, len(rec.CabinPrices))
	for _, p := range rec.CabinPrices {
		pricing = append(pricing, gormModels.CabinPricing{
			DepartureID: dep.ID,
			Category:    p.Category,
			CabinName:   p.CabinName,
			Occupancy:   p.Occupancy,
			PriceCents:  toCents(p.Price),
			Currency:    p.Currency,
		})
	}
	if err := u.departures.ReplaceCabinPricings(ctx, dep.ID, pricing); err != nil {
		return false, fmt.Errorf("cabin pricing replace failed: %w", err)
	}

	return created, nil
}

// DeriveBasePriceCents returns the minimum cabin price in integer cents, or
// nil when the departure has no cabin pricing rows. No sentinel values: a
// missing price is nil, never an "infinity" placeholder.
func DeriveBasePriceCents(prices []dtos.CabinPriceRecord) *int64 {
	if len(prices) == 0 {
		return nil
	}

	min := toCents(prices[0].Price)
	for _, p := range prices[1:] {
		if c := toCents(p.Price); c < min {
			min = c
		}
	}
	return &min
}

func toCents(price float64) int64 {
	return int64(math.Round(price * 100))
}

// applyTourFields writes the mutable fields of a tour row from the fetched
// record and optional detail document.
func applyTourFields(
	tour *gormModels.Tour,
	operatorID string,
	rec dtos.TourRecord,
	detail *dtos.TourDetail,
	coords map[string]dtos.Coordinates,
	now time.Time,
) {
	tour.OperatorID = operatorID
	tour.Name = rec.Name
	tour.Days = rec.Days
	tour.Nights = rec.Nights
	tour.Description = rec.Description
	tour.StartCity = rec.StartCity
	tour.EndCity = rec.EndCity
	tour.IsActive = true
	tour.LastSeenAt = now

	if detail != nil && detail.Overview != "" {
		tour.Overview = providers.StripMarkup(detail.Overview)
	}

	if c, ok := coords[rec.StartCity]; ok {
		lat, lng := c.Lat, c.Lng
		tour.StartLat, tour.StartLng = &lat, &lng
	}
	if c, ok := coords[rec.EndCity]; ok {
		lat, lng := c.Lat, c.Lng
		tour.EndLat, tour.EndLng = &lat, &lng
	}
}

// buildItineraryDays merges the catalog's day list with any detail-document
// sections. Detail extraction failures leave fields empty.
func buildItineraryDays(
	tourID string,
	rec dtos.TourRecord,
	detail *dtos.TourDetail,
	coords map[string]dtos.Coordinates,
) []gormModels.ItineraryDay {
	// Index detail sections by day number position when available
	sectionByDay := make(map[int]dtos.TourDetailSection)
	if detail != nil {
		for i, s := range detail.Sections {
			sectionByDay[i+1] = s
		}
	}

	days := make([]gormModels.ItineraryDay, 0, len(rec.ItineraryDays))
	for _, d := range rec.ItineraryDays {
		day := gormModels.ItineraryDay{
			TourID:      tourID,
			DayNumber:   d.DayNumber,
			Title:       d.Title,
			PlaceName:   d.PlaceName,
			Description: d.Description,
		}

		if s, ok := sectionByDay[d.DayNumber]; ok {
			if title := providers.ExtractSectionTitle(s.Heading); title != "" {
				day.Title = title
				if place := providers.ExtractPlaceName(title); place != "" && day.PlaceName == "" {
					day.PlaceName = place
				}
			}
			if body := providers.StripMarkup(s.Body); body != "" {
				day.Description = body
			}
		}

		if c, ok := coords[day.PlaceName]; ok {
			lat, lng := c.Lat, c.Lng
			day.Lat, day.Lng = &lat, &lng
		}

		days = append(days, day)
	}
	return days
}

// buildMedia uses provider-supplied URLs when present; otherwise synthesizes
// the deterministic CDN hero URL from tour code, brand and season.
func buildMedia(tourID, mediaBaseURL, brand string, rec dtos.TourRecord) []gormModels.TourMedia {
	media := make([]gormModels.TourMedia, 0, len(rec.Media))
	for _, m := range rec.Media {
		if m.URL == "" {
			continue
		}
		kind := m.Kind
		if kind == "" {
			kind = "image"
		}
		media = append(media, gormModels.TourMedia{
			TourID:       tourID,
			URL:          m.URL,
			Kind:         kind,
			Position:     m.Position,
			FromProvider: true,
		})
	}

	if len(media) == 0 && rec.TourCode != "" {
		media = append(media, gormModels.TourMedia{
			TourID:       tourID,
			URL:          providers.BuildFallbackMediaURL(mediaBaseURL, brand, rec.Season, rec.TourCode),
			Kind:         "image",
			Position:     0,
			FromProvider: false,
		})
	}

	return media
}

// buildInclusions maps provider content categories onto the closed inclusion
// set; unmapped categories are skipped.
func buildInclusions(tourID string, rec dtos.TourRecord) []gormModels.Inclusion {
	inclusions := make([]gormModels.Inclusion, 0, len(rec.Inclusions))
	for _, inc := range rec.Inclusions {
		category, ok := gormModels.MapContentCategory(inc.ContentCategory)
		if !ok {
			continue
		}
		inclusions = append(inclusions, gormModels.Inclusion{
			TourID:      tourID,
			Category:    category,
			Description: inc.Description,
		})
	}
	return inclusions
}

func collectTourPlaces(rec dtos.TourRecord) []string {
	places := make([]string, 0, len(rec.ItineraryDays)+2)
	places = append(places, rec.StartCity, rec.EndCity)
	for _, d := range rec.ItineraryDays {
		places = append(places, d.PlaceName)
	}
	return places
}

func collectDeparturePlaces(rec dtos.TourRecord) []string {
	places := make([]string, 0, len(rec.Departures))
	for _, d := range rec.Departures {
		places = append(places, d.StartCity)
	}
	return places
}
