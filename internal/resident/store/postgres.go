package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"carehub/contracts/resident"
	"carehub/internal/sentinel"
	"carehub/pkg/domain"
	"carehub/pkg/schema"

	"github.com/jackc/pgx/v5/pgconn"
)

const residentColumns = `id, first_name, last_name, preferred_name, date_of_birth, gender,
	room_number, admission_date, discharge_date, status, care_level,
	emergency_contacts, dietary_notes, metadata, created_at, updated_at`

// PostgresStore persists residents in PostgreSQL. Rows are scanned into
// plain maps and validated against the Resident schema before they leave
// the store, so drift between table and contract surfaces as ErrCorruptRow.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed resident store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create inserts r and sets its database-assigned id.
func (s *PostgresStore) Create(ctx context.Context, r *resident.Resident) error {
	contacts, metadata, err := encodeJSONColumns(r)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO residents (first_name, last_name, preferred_name, date_of_birth, gender,
			room_number, admission_date, discharge_date, status, care_level,
			emergency_contacts, dietary_notes, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id
	`
	var id domain.ID
	err = s.db.QueryRowContext(ctx, query,
		r.FirstName,
		r.LastName,
		r.PreferredName,
		r.DateOfBirth,
		string(r.Gender),
		r.RoomNumber,
		r.AdmissionDate,
		r.DischargeDate,
		string(r.Status),
		string(r.CareLevel),
		contacts,
		r.DietaryNotes,
		metadata,
		r.CreatedAt.Time(),
		r.UpdatedAt.Time(),
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("room %v is occupied: %w", deref(r.RoomNumber), ErrRoomTaken)
		}
		return fmt.Errorf("create resident: %w", err)
	}
	r.ID = id
	return nil
}

// FindByID retrieves a resident by id.
func (s *PostgresStore) FindByID(ctx context.Context, id domain.ID) (*resident.Resident, error) {
	if !fitsBigint(id) {
		return nil, ErrNotFound
	}
	query := `SELECT ` + residentColumns + ` FROM residents WHERE id = $1`
	row, err := scanRow(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find resident by id: %w", err)
	}
	return toResident(row)
}

// List returns up to f.Limit residents with an id greater than f.After.
func (s *PostgresStore) List(ctx context.Context, f ListFilter) (Page, error) {
	query := `SELECT ` + residentColumns + ` FROM residents
		WHERE ($1::bigint IS NULL OR id > $1::bigint)
		  AND ($2 = '' OR status = $2)
		ORDER BY id
		LIMIT $3`
	var after any
	if !f.After.IsNil() {
		if !fitsBigint(f.After) {
			// No row can sort after an id past the column range.
			return Page{}, nil
		}
		after = f.After
	}
	rows, err := s.db.QueryContext(ctx, query, after, string(f.Status), f.Limit+1)
	if err != nil {
		return Page{}, fmt.Errorf("list residents: %w", err)
	}
	defer rows.Close()

	var page Page
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return Page{}, fmt.Errorf("scan resident: %w", err)
		}
		r, err := toResident(row)
		if err != nil {
			return Page{}, err
		}
		page.Items = append(page.Items, *r)
	}
	if err := rows.Err(); err != nil {
		return Page{}, fmt.Errorf("iterate residents: %w", err)
	}
	if len(page.Items) > f.Limit {
		page.Items = page.Items[:f.Limit]
		page.HasMore = true
	}
	return page, nil
}

// Update replaces every column of an existing resident.
func (s *PostgresStore) Update(ctx context.Context, r *resident.Resident) error {
	if !fitsBigint(r.ID) {
		return ErrNotFound
	}
	contacts, metadata, err := encodeJSONColumns(r)
	if err != nil {
		return err
	}
	query := `
		UPDATE residents
		SET first_name = $2, last_name = $3, preferred_name = $4, date_of_birth = $5,
			gender = $6, room_number = $7, admission_date = $8, discharge_date = $9,
			status = $10, care_level = $11, emergency_contacts = $12,
			dietary_notes = $13, metadata = $14, updated_at = $15
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		r.ID,
		r.FirstName,
		r.LastName,
		r.PreferredName,
		r.DateOfBirth,
		string(r.Gender),
		r.RoomNumber,
		r.AdmissionDate,
		r.DischargeDate,
		string(r.Status),
		string(r.CareLevel),
		contacts,
		r.DietaryNotes,
		metadata,
		r.UpdatedAt.Time(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("room %v is occupied: %w", deref(r.RoomNumber), ErrRoomTaken)
		}
		return fmt.Errorf("update resident: %w", err)
	}
	return requireRow(res, "update resident")
}

// Delete removes a resident.
func (s *PostgresStore) Delete(ctx context.Context, id domain.ID) error {
	if !fitsBigint(id) {
		return ErrNotFound
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM residents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete resident: %w", err)
	}
	return requireRow(res, "delete resident")
}

// fitsBigint reports whether id is storable in the BIGINT id column. Larger
// ids are valid on the wire but can never name a stored row.
func fitsBigint(id domain.ID) bool {
	_, err := strconv.ParseInt(id.String(), 10, 64)
	return err == nil
}

func requireRow(res sql.Result, op string) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows: %w", op, err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanRow reads one row into the generic shape the schema validates:
// native Go values, optional columns omitted when NULL, nullable ones set to nil.
func scanRow(sc scanner) (map[string]any, error) {
	var (
		id                                     int64
		firstName, lastName, gender            string
		status, careLevel                      string
		preferredName, roomNumber, dietaryNote sql.NullString
		dateOfBirth, admissionDate             time.Time
		dischargeDate                          sql.NullTime
		contacts, metadata                     []byte
		createdAt, updatedAt                   time.Time
	)
	err := sc.Scan(&id, &firstName, &lastName, &preferredName, &dateOfBirth, &gender,
		&roomNumber, &admissionDate, &dischargeDate, &status, &careLevel,
		&contacts, &dietaryNote, &metadata, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	row := map[string]any{
		"id":             id,
		"first_name":     firstName,
		"last_name":      lastName,
		"date_of_birth":  dateOfBirth,
		"gender":         gender,
		"admission_date": admissionDate,
		"discharge_date": nil,
		"status":         status,
		"care_level":     careLevel,
		"dietary_notes":  nil,
		"created_at":     createdAt,
		"updated_at":     updatedAt,
	}
	if preferredName.Valid {
		row["preferred_name"] = preferredName.String
	}
	if roomNumber.Valid {
		row["room_number"] = roomNumber.String
	}
	if dischargeDate.Valid {
		row["discharge_date"] = dischargeDate.Time
	}
	if dietaryNote.Valid {
		row["dietary_notes"] = dietaryNote.String
	}
	if len(contacts) > 0 {
		var list []any
		if err := json.Unmarshal(contacts, &list); err != nil {
			return nil, fmt.Errorf("decode emergency_contacts: %w", err)
		}
		row["emergency_contacts"] = list
	}
	if len(metadata) > 0 {
		var m map[string]any
		if err := json.Unmarshal(metadata, &m); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
		if m != nil {
			row["metadata"] = m
		}
	}
	return row, nil
}

func toResident(row map[string]any) (*resident.Resident, error) {
	r, err := schema.Bind[resident.Resident](resident.Schema, row)
	if err != nil {
		return nil, fmt.Errorf("resident %v: %w: %w", row["id"], sentinel.ErrCorruptRow, err)
	}
	return &r, nil
}

func encodeJSONColumns(r *resident.Resident) (string, any, error) {
	contacts := r.EmergencyContacts
	if contacts == nil {
		contacts = []resident.EmergencyContact{}
	}
	b, err := json.Marshal(contacts)
	if err != nil {
		return "", nil, fmt.Errorf("encode emergency_contacts: %w", err)
	}
	if r.Metadata == nil {
		return string(b), nil, nil
	}
	m, err := json.Marshal(r.Metadata)
	if err != nil {
		return "", nil, fmt.Errorf("encode metadata: %w", err)
	}
	return string(b), string(m), nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
