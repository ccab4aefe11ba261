// Package catalog holds the reference data a booking is priced against:
// parking locations, vehicle types, additional services, discount codes
// and the shuttle fleet. The data is immutable once loaded.
package catalog

import (
	"errors"
	"strings"
)

var (
	ErrLocationNotFound    = errors.New("location not found")
	ErrVehicleTypeNotFound = errors.New("vehicle type not found")
	ErrServiceNotFound     = errors.New("service not found")
	ErrDiscountNotFound    = errors.New("discount code not found")
	ErrShuttleNotFound     = errors.New("shuttle not found")
)

// Location is a parking location with its hourly pricing parameters.
type Location struct {
	// ID is a short stable identifier (e.g. "loc1") used by quotes and bookings.
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
	// BaseRate is the hourly rate in currency units.
	BaseRate float64 `db:"base_rate" json:"baseRate"`
	// PeakMultiplier is applied in place of the base rate during peak
	// windows, never stacked on top of itself.
	PeakMultiplier float64 `db:"peak_multiplier" json:"peakMultiplier"`

	Lat float64 `db:"lat" json:"latitude"`
	Lng float64 `db:"lng" json:"longitude"`

	TotalSpaces     int `db:"total_spaces" json:"totalSpaces"`
	AvailableSpaces int `db:"available_spaces" json:"availableSpaces"`
}

// VehicleType scales a location's base rate.
type VehicleType struct {
	ID             string  `db:"id" json:"id"`
	Name           string  `db:"name" json:"name"`
	RateMultiplier float64 `db:"rate_multiplier" json:"rateMultiplier"`
}

// Service is an optional add-on with a flat, non-time-scaled fee.
type Service struct {
	ID          string  `db:"id" json:"id"`
	Name        string  `db:"name" json:"name"`
	Fee         float64 `db:"fee" json:"fee"`
	Description string  `db:"description" json:"description"`
}

// DiscountCode is a percentage discount applied to a quote subtotal.
// Codes match case-insensitively.
type DiscountCode struct {
	Code    string  `db:"code" json:"code"`
	Percent float64 `db:"percent" json:"percent"`
}

// Shuttle is a vehicle on a fixed route between two locations.
type Shuttle struct {
	ID       int    `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Location string `db:"location" json:"location"`
	Heading  string `db:"heading" json:"heading"`
	NextStop string `db:"next_stop" json:"nextStop"`
	Capacity string `db:"capacity" json:"capacity"`
}

// Catalog indexes the reference data for lookup. Construct with New or
// Default; do not mutate after construction.
type Catalog struct {
	locations    []Location
	vehicleTypes []VehicleType
	services     []Service
	discounts    []DiscountCode
	shuttles     []Shuttle

	locationsByID    map[string]Location
	vehicleTypesByID map[string]VehicleType
	servicesByID     map[string]Service
	discountsByCode  map[string]DiscountCode
	shuttlesByID     map[int]Shuttle
}

func New(locations []Location, vehicleTypes []VehicleType, services []Service, discounts []DiscountCode, shuttles []Shuttle) *Catalog {
	c := &Catalog{
		locations:    locations,
		vehicleTypes: vehicleTypes,
		services:     services,
		discounts:    discounts,
		shuttles:     shuttles,

		locationsByID:    make(map[string]Location, len(locations)),
		vehicleTypesByID: make(map[string]VehicleType, len(vehicleTypes)),
		servicesByID:     make(map[string]Service, len(services)),
		discountsByCode:  make(map[string]DiscountCode, len(discounts)),
		shuttlesByID:     make(map[int]Shuttle, len(shuttles)),
	}
	for _, l := range locations {
		c.locationsByID[l.ID] = l
	}
	for _, v := range vehicleTypes {
		c.vehicleTypesByID[v.ID] = v
	}
	for _, s := range services {
		c.servicesByID[s.ID] = s
	}
	for _, d := range discounts {
		c.discountsByCode[strings.ToUpper(d.Code)] = d
	}
	for _, s := range shuttles {
		c.shuttlesByID[s.ID] = s
	}
	return c
}

func (c *Catalog) Locations() []Location       { return c.locations }
func (c *Catalog) VehicleTypes() []VehicleType { return c.vehicleTypes }
func (c *Catalog) Services() []Service         { return c.services }
func (c *Catalog) Shuttles() []Shuttle         { return c.shuttles }

func (c *Catalog) LocationByID(id string) (Location, error) {
	l, ok := c.locationsByID[id]
	if !ok {
		return Location{}, ErrLocationNotFound
	}
	return l, nil
}

func (c *Catalog) VehicleTypeByID(id string) (VehicleType, error) {
	v, ok := c.vehicleTypesByID[id]
	if !ok {
		return VehicleType{}, ErrVehicleTypeNotFound
	}
	return v, nil
}

func (c *Catalog) ServiceByID(id string) (Service, error) {
	s, ok := c.servicesByID[id]
	if !ok {
		return Service{}, ErrServiceNotFound
	}
	return s, nil
}

// DiscountByCode looks up a discount code case-insensitively.
func (c *Catalog) DiscountByCode(code string) (DiscountCode, error) {
	d, ok := c.discountsByCode[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return DiscountCode{}, ErrDiscountNotFound
	}
	return d, nil
}

func (c *Catalog) ShuttleByID(id int) (Shuttle, error) {
	s, ok := c.shuttlesByID[id]
	if !ok {
		return Shuttle{}, ErrShuttleNotFound
	}
	return s, nil
}

// Default returns the built-in reference data set.
func Default() *Catalog {
	return New(
		[]Location{
			{ID: "loc1", Name: "Downtown Central", BaseRate: 15, PeakMultiplier: 1.5, Lat: 28.6139, Lng: 77.2090, TotalSpaces: 120, AvailableSpaces: 84},
			{ID: "loc2", Name: "North Station", BaseRate: 12, PeakMultiplier: 1.3, Lat: 28.7041, Lng: 77.1025, TotalSpaces: 80, AvailableSpaces: 23},
			{ID: "loc3", Name: "West End Hub", BaseRate: 18, PeakMultiplier: 1.2, Lat: 28.6304, Lng: 77.0868, TotalSpaces: 200, AvailableSpaces: 142},
			{ID: "loc4", Name: "Airport Terminal", BaseRate: 25, PeakMultiplier: 1.8, Lat: 28.5562, Lng: 77.1000, TotalSpaces: 150, AvailableSpaces: 5},
			{ID: "loc5", Name: "South Bay Plaza", BaseRate: 14, PeakMultiplier: 1.4, Lat: 28.5245, Lng: 77.1855, TotalSpaces: 90, AvailableSpaces: 58},
		},
		[]VehicleType{
			{ID: "standard", Name: "Standard Car", RateMultiplier: 1.0},
			{ID: "compact", Name: "Compact Car", RateMultiplier: 0.9},
			{ID: "suv", Name: "SUV / Crossover", RateMultiplier: 1.2},
			{ID: "van", Name: "Van / Minivan", RateMultiplier: 1.3},
			{ID: "electric", Name: "Electric Vehicle", RateMultiplier: 1.1},
		},
		[]Service{
			{ID: "express", Name: "Express Shuttle", Fee: 5, Description: "Priority boarding on shuttle services with direct routes"},
			{ID: "valet", Name: "Valet Parking", Fee: 10, Description: "Drop off your vehicle and let our team park it for you"},
			{ID: "charging", Name: "EV Charging", Fee: 8, Description: "Electric vehicle charging while you're away"},
			{ID: "wash", Name: "Car Wash", Fee: 15, Description: "Your car will be washed and ready when you return"},
			{ID: "covered", Name: "Covered Parking", Fee: 7, Description: "Park in our covered garage spaces"},
		},
		[]DiscountCode{
			{Code: "NEWUSER", Percent: 15},
			{Code: "WEEKEND", Percent: 10},
			{Code: "SUMMER23", Percent: 20},
		},
		[]Shuttle{
			{ID: 1, Name: "Shuttle A", Location: "Downtown Station", Heading: "North Terminal", NextStop: "5 min", Capacity: "70%"},
			{ID: 2, Name: "Shuttle B", Location: "Airport Terminal", Heading: "South Plaza", NextStop: "3 min", Capacity: "85%"},
			{ID: 3, Name: "Shuttle C", Location: "North Station", Heading: "Downtown", NextStop: "10 min", Capacity: "45%"},
			{ID: 4, Name: "Shuttle D", Location: "West Hub", Heading: "East Plaza", NextStop: "7 min", Capacity: "60%"},
		},
	)
}
