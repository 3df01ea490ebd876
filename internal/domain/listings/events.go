package listings

import "time"

type ListingCreatedEvent struct {
	ListingID ListingID `json:"listing_id"`
	HostID    HostID    `json:"host_id"`
	At        time.Time `json:"at"`
}

func (e ListingCreatedEvent) EventName() string     { return "listings.created" }
func (e ListingCreatedEvent) AggregateID() string   { return string(e.ListingID) }
func (e ListingCreatedEvent) OccurredAt() time.Time { return e.At }

type ListingActivatedEvent struct {
	ListingID ListingID `json:"listing_id"`
	HostID    HostID    `json:"host_id"`
	At        time.Time `json:"at"`
}

func (e ListingActivatedEvent) EventName() string     { return "listings.activated" }
func (e ListingActivatedEvent) AggregateID() string   { return string(e.ListingID) }
func (e ListingActivatedEvent) OccurredAt() time.Time { return e.At }

type ListingSuspendedEvent struct {
	ListingID ListingID `json:"listing_id"`
	Reason    string    `json:"reason"`
	At        time.Time `json:"at"`
}

func (e ListingSuspendedEvent) EventName() string     { return "listings.suspended" }
func (e ListingSuspendedEvent) AggregateID() string   { return string(e.ListingID) }
func (e ListingSuspendedEvent) OccurredAt() time.Time { return e.At }

type ListingUpdatedEvent struct {
	ListingID ListingID `json:"listing_id"`
	At        time.Time `json:"at"`
}

func (e ListingUpdatedEvent) EventName() string     { return "listings.updated" }
func (e ListingUpdatedEvent) AggregateID() string   { return string(e.ListingID) }
func (e ListingUpdatedEvent) OccurredAt() time.Time { return e.At }

type ListingRatingUpdatedEvent struct {
	ListingID   ListingID `json:"listing_id"`
	Rating      float64   `json:"rating"`
	ReviewCount int       `json:"review_count"`
	At          time.Time `json:"at"`
}

func (e ListingRatingUpdatedEvent) EventName() string     { return "listings.rating_updated" }
func (e ListingRatingUpdatedEvent) AggregateID() string   { return string(e.ListingID) }
func (e ListingRatingUpdatedEvent) OccurredAt() time.Time { return e.At }
