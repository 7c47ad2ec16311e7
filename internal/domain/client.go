package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// MinVehicleYear is the oldest model year accepted for a vehicle
const MinVehicleYear = 1900

type Vehicle struct {
	Brand string
	Model string
	Year  int
	Plate string
}

// String returns "Brand Model (Year)"
func (v Vehicle) String() string {
	return fmt.Sprintf("%s %s (%d)", v.Brand, v.Model, v.Year)
}

// Validate checks the vehicle against the given current year
func (v Vehicle) Validate(currentYear int) error {
	if strings.TrimSpace(v.Brand) == "" {
		return errors.New("vehicle brand is required")
	}
	if strings.TrimSpace(v.Model) == "" {
		return errors.New("vehicle model is required")
	}
	if strings.TrimSpace(v.Plate) == "" {
		return errors.New("vehicle plate is required")
	}
	if v.Year < MinVehicleYear || v.Year > currentYear+1 {
		return fmt.Errorf("vehicle year must be between %d and %d", MinVehicleYear, currentYear+1)
	}
	return nil
}

// Client is a snapshot of the person bringing a car in. It carries no
// lifecycle of its own and is only used as order metadata.
type Client struct {
	Name    string
	Contact string
	Vehicle Vehicle
}

// NewClient creates a new client with required fields
func NewClient(name, contact string, vehicle Vehicle) *Client {
	return &Client{
		Name:    strings.TrimSpace(name),
		Contact: strings.TrimSpace(contact),
		Vehicle: vehicle,
	}
}

// Validate returns an error if the client is invalid
func (c *Client) Validate() error {
	return c.ValidateAt(time.Now())
}

// ValidateAt validates the client with now as the reference for the vehicle year
func (c *Client) ValidateAt(now time.Time) error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("client name is required")
	}
	return c.Vehicle.Validate(now.Year())
}
