package repository

import (
	"context"
	"database/sql"

	"github.com/journiq/tour-booking-api/internal/model"
)

// DestinationRepo provides persistence for the `destinations` table.
// Destinations are created and moderated by admins and referenced by
// tours; they are soft-deleted so existing tours keep a valid target.
type DestinationRepo struct {
	db *sql.DB
}

func NewDestinationRepo(db *sql.DB) *DestinationRepo { return &DestinationRepo{db: db} }

const destCols = "id,admin_id,name,country,city,description,images,attractions,best_season,tags,lat,lng,is_active,is_deleted,created_at,updated_at"

func scanDestination(row interface{ Scan(...interface{}) error }) (model.Destination, error) {
	var (
		d                  model.Destination
		city, season       sql.NullString
		images, attr, tags []byte
		lat, lng           sql.NullFloat64
	)
	err := row.Scan(&d.ID, &d.AdminID, &d.Name, &d.Country, &city, &d.Description,
		&images, &attr, &season, &tags, &lat, &lng,
		&d.IsActive, &d.IsDeleted, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return model.Destination{}, err
	}
	d.City = strPtr(city)
	d.BestSeason = strPtr(season)
	d.Images = decodeList(images)
	d.Attractions = decodeList(attr)
	d.Tags = decodeList(tags)
	d.Lat = f64Ptr(lat)
	d.Lng = f64Ptr(lng)
	return d, nil
}

// Create inserts a destination and populates the generated ID.
func (r *DestinationRepo) Create(ctx context.Context, d *model.Destination) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO destinations (admin_id, name, country, city, description, images, attractions, best_season, tags, lat, lng)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		d.AdminID, d.Name, d.Country, d.City, d.Description,
		encodeList(d.Images), encodeList(d.Attractions), d.BestSeason, encodeList(d.Tags), d.Lat, d.Lng)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	d.ID = uint64(id)
	return nil
}

// GetByID fetches a non-deleted destination.
func (r *DestinationRepo) GetByID(ctx context.Context, id uint64) (model.Destination, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+destCols+" FROM destinations WHERE id=? AND is_deleted=0 LIMIT 1", id)
	return scanDestination(row)
}

// List returns non-deleted destinations, optionally active ones only
// (the public catalogue hides admin-disabled destinations).
func (r *DestinationRepo) List(ctx context.Context, activeOnly bool) ([]model.Destination, error) {
	q := "SELECT " + destCols + " FROM destinations WHERE is_deleted=0"
	if activeOnly {
		q += " AND is_active=1"
	}
	q += " ORDER BY name"
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Destination, 0)
	for rows.Next() {
		d, err := scanDestination(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Update rewrites the editable fields of a destination.
func (r *DestinationRepo) Update(ctx context.Context, d *model.Destination) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE destinations SET name=?, country=?, city=?, description=?, images=?,
		 attractions=?, best_season=?, tags=?, lat=?, lng=? WHERE id=? AND is_deleted=0`,
		d.Name, d.Country, d.City, d.Description, encodeList(d.Images),
		encodeList(d.Attractions), d.BestSeason, encodeList(d.Tags), d.Lat, d.Lng, d.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SoftDelete marks a destination deleted.
func (r *DestinationRepo) SoftDelete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE destinations SET is_deleted=1 WHERE id=? AND is_deleted=0", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ToggleActive flips the admin visibility switch and returns the new
// state.
func (r *DestinationRepo) ToggleActive(ctx context.Context, id uint64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE destinations SET is_active = NOT is_active WHERE id=? AND is_deleted=0", id)
	if err != nil {
		return false, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false, sql.ErrNoRows
	}
	var active bool
	err = r.db.QueryRowContext(ctx, "SELECT is_active FROM destinations WHERE id=?", id).Scan(&active)
	return active, err
}
