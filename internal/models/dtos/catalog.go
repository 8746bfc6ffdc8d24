package dtos

import "time"

// TourRecord is a normalized tour entry from a brand's full catalog feed
type TourRecord struct {
	Provider           string               `json:"provider"`
	ProviderIdentifier string               `json:"providerIdentifier"`
	TourCode           string               `json:"tourCode"`
	Season             string               `json:"season"`
	Name               string               `json:"name"`
	Days               int                  `json:"days"`
	Nights             int                  `json:"nights"`
	Description        string               `json:"description"`
	StartCity          string               `json:"startCity"`
	EndCity            string               `json:"endCity"`
	ItineraryDays      []ItineraryDayRecord `json:"itineraryDays"`
	Hotels             []HotelRecord        `json:"hotels"`
	Media              []MediaRecord        `json:"media"`
	Inclusions         []InclusionRecord    `json:"inclusions"`
	Departures         []DepartureRecord    `json:"departures"`
}

// ItineraryDayRecord is one itinerary day as fetched from the provider
type ItineraryDayRecord struct {
	DayNumber   int    `json:"dayNumber"`
	Title       string `json:"title"`
	PlaceName   string `json:"placeName"`
	Description string `json:"description"`
}

// HotelRecord is an accommodation entry as fetched from the provider
type HotelRecord struct {
	Name   string `json:"name"`
	City   string `json:"city"`
	Nights int    `json:"nights"`
	Stars  *int   `json:"stars,omitempty"`
}

// MediaRecord is a media entry as fetched from the provider. URL may be
// empty, in which case a deterministic CDN URL is synthesized downstream.
type MediaRecord struct {
	URL      string `json:"url"`
	Kind     string `json:"kind"`
	Position int    `json:"position"`
}

// InclusionRecord carries the provider's raw content category code; mapping
// to the closed inclusion set happens at upsert time.
type InclusionRecord struct {
	ContentCategory string `json:"contentCategory"`
	Description     string `json:"description"`
}

// DepartureRecord is a dated departure as fetched from the provider
type DepartureRecord struct {
	DepartureCode string             `json:"departureCode"`
	Season        string             `json:"season"`
	LandStartDate *time.Time         `json:"landStartDate,omitempty"`
	StartDate     time.Time          `json:"startDate"`
	EndDate       time.Time          `json:"endDate"`
	Status        string             `json:"status"`
	Guaranteed    bool               `json:"guaranteed"`
	ShipName      string             `json:"shipName"`
	StartCity     string             `json:"startCity"`
	EndCity       string             `json:"endCity"`
	CabinPrices   []CabinPriceRecord `json:"cabinPrices"`
}

// CabinPriceRecord is one cabin price row. Price is in major currency units
// as delivered by the provider (e.g. 199.99).
type CabinPriceRecord struct {
	Category  string  `json:"category"`
	CabinName string  `json:"cabinName"`
	Occupancy string  `json:"occupancy"`
	Price     float64 `json:"price"`
	Currency  string  `json:"currency"`
}

// TourDetail is the secondary per-tour content document: richer narrative
// text as semi-structured markup, fetched separately from the main catalog.
type TourDetail struct {
	TourCode string              `json:"tourCode"`
	Overview string              `json:"overview"`
	Sections []TourDetailSection `json:"sections"`
}

// TourDetailSection is one markup section of a tour detail document
type TourDetailSection struct {
	Heading string `json:"heading"`
	Body    string `json:"body"`
}

// Coordinates is a resolved geocoding result
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
