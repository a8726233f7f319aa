package model

import "time"

// Destination represents a place tours can be published against.
// Destinations are created and moderated by admins only and are
// referenced by many tours.  List-valued attributes (images,
// attractions, tags) are stored as JSON columns.
//
// Fields:
//  ID          – primary key identifier.
//  AdminID     – user ID of the admin who created the destination.
//  Name        – destination name.
//  Country     – country the destination belongs to.
//  City        – optional city.
//  Description – free-form description.
//  Images      – image path strings from the upload collaborator.
//  Attractions – popular attractions.
//  BestSeason  – optional recommended season.
//  Tags        – search tags (e.g. "mountains", "wildlife").
//  Lat, Lng    – optional geo point.
//  IsActive    – admin visibility toggle.
//  IsDeleted   – soft-delete flag.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Destination struct {
	ID          uint64    // destinations.id
	AdminID     uint64    // destinations.admin_id
	Name        string    // destinations.name
	Country     string    // destinations.country
	City        *string   // destinations.city (nullable)
	Description string    // destinations.description
	Images      []string  // destinations.images (JSON)
	Attractions []string  // destinations.attractions (JSON)
	BestSeason  *string   // destinations.best_season (nullable)
	Tags        []string  // destinations.tags (JSON)
	Lat         *float64  // destinations.lat (nullable)
	Lng         *float64  // destinations.lng (nullable)
	IsActive    bool      // destinations.is_active
	IsDeleted   bool      // destinations.is_deleted
	CreatedAt   time.Time // destinations.created_at
	UpdatedAt   time.Time // destinations.updated_at
}
