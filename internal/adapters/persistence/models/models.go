package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ============================================================
// Donors
// ============================================================

// Donor represents the donors table. The profile lives in its own table:
// a donor has either no profile row at all or a fully populated one.
type Donor struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	Email     string        `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password  string        `gorm:"size:255;not null" json:"-"`
	Profile   *DonorProfile `gorm:"foreignKey:DonorID" json:"profile,omitempty"`
	CreatedAt time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Donor) TableName() string {
	return "donors"
}

// HasProfile reports whether the donor has completed their profile
func (d *Donor) HasProfile() bool {
	return d.Profile != nil
}

// DonorProfile represents the donor_profiles table (1:1 with donors)
type DonorProfile struct {
	ID               uint       `gorm:"primaryKey" json:"-"`
	DonorID          uint       `gorm:"uniqueIndex;not null" json:"-"`
	FirstName        string     `gorm:"size:100;not null" json:"firstname"`
	LastName         string     `gorm:"size:100;not null" json:"lastname"`
	Phone            string     `gorm:"size:20;not null" json:"phone"`
	Pincode          string     `gorm:"size:10;not null" json:"pincode"`
	Gender           string     `gorm:"size:10;not null" json:"gender"`
	Age              int        `gorm:"not null" json:"age"`
	BloodGroup       string     `gorm:"size:5;not null" json:"bloodgroup"`
	LastDonationDate *time.Time `json:"lastdonationdate,omitempty"`
	LastHospitalName string     `gorm:"size:150" json:"lasthospital,omitempty"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"-"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"-"`
}

func (DonorProfile) TableName() string {
	return "donor_profiles"
}

// ============================================================
// Hospitals
// ============================================================

// Hospital represents the hospitals table
type Hospital struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:150;not null;index" json:"name"`
	License   string    `gorm:"size:50" json:"license"`
	Contact   string    `gorm:"size:20;not null" json:"contact"`
	Pincode   string    `gorm:"size:10;not null" json:"pincode"`
	Address   string    `gorm:"size:255;not null" json:"address"`
	Email     string    `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Hospital) TableName() string {
	return "hospitals"
}

// ============================================================
// Blood requests
// ============================================================

// Request lifecycle: open (fulfilled=false) -> fulfilled. Fulfilled is
// terminal; there is no transition back.

// BloodRequest represents the blood_requests table. Requests reference
// their hospital by stable ID; the display name is resolved at read time
// so a hospital rename does not orphan its requests.
type BloodRequest struct {
	ID                 string                      `gorm:"primaryKey;size:36" json:"id"`
	HospitalID         uint                        `gorm:"index;not null" json:"-"`
	Hospital           Hospital                    `gorm:"foreignKey:HospitalID" json:"-"`
	RequiredBloodType  string                      `gorm:"size:5;not null" json:"requiredbloodtype"`
	EligibleBloodTypes datatypes.JSONSlice[string] `json:"eligiblebloodtypes"`
	UnitsRequired      int                         `gorm:"not null" json:"unitsrequired"`
	Contact            string                      `gorm:"size:20;not null" json:"contact"`
	Fulfilled          bool                        `gorm:"default:false;index" json:"fulfilled"`
	CreatedAt          time.Time                   `gorm:"autoCreateTime;index" json:"creationdate"`
	Responses          []RequestResponse           `gorm:"foreignKey:RequestID" json:"-"`
}

func (BloodRequest) TableName() string {
	return "blood_requests"
}

// RequestResponse represents the request_responses table. Rows are
// append-only; the auto-increment ID preserves response order and a donor
// may legitimately appear twice across independent cooldown windows.
type RequestResponse struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	RequestID  string    `gorm:"size:36;index;not null" json:"-"`
	DonorEmail string    `gorm:"size:100;not null" json:"donor_email"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (RequestResponse) TableName() string {
	return "request_responses"
}

// BloodRequestResponse is the API shape of a blood request
type BloodRequestResponse struct {
	ID                 string    `json:"id"`
	HospitalName       string    `json:"hospitalname"`
	RequiredBloodType  string    `json:"requiredbloodtype"`
	EligibleBloodTypes []string  `json:"eligiblebloodtypes"`
	UnitsRequired      int       `json:"unitsrequired"`
	Contact            string    `json:"contact"`
	Fulfilled          bool      `json:"fulfilled"`
	CreatedAt          time.Time `json:"creationdate"`
	Responses          []string  `json:"responses"`
}

// ToResponse converts a request to its API shape, resolving the hospital
// name from the joined record
func (r *BloodRequest) ToResponse() *BloodRequestResponse {
	emails := make([]string, len(r.Responses))
	for i, resp := range r.Responses {
		emails[i] = resp.DonorEmail
	}
	return &BloodRequestResponse{
		ID:                 r.ID,
		HospitalName:       r.Hospital.Name,
		RequiredBloodType:  r.RequiredBloodType,
		EligibleBloodTypes: r.EligibleBloodTypes,
		UnitsRequired:      r.UnitsRequired,
		Contact:            r.Contact,
		Fulfilled:          r.Fulfilled,
		CreatedAt:          r.CreatedAt,
		Responses:          emails,
	}
}

// ResponderDetail is the donor display info shown to hospitals for each
// response entry
type ResponderDetail struct {
	Name      string `json:"name"`
	Contact   string `json:"contact"`
	BloodType string `json:"bloodtype"`
}

// ============================================================
// Auth
// ============================================================

// RefreshToken represents the refresh_tokens table. Tokens are stored for
// both donors and hospitals; SubjectType + SubjectID identify the owner.
type RefreshToken struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	SubjectType string     `gorm:"size:10;not null;index:idx_refresh_subject" json:"subject_type"`
	SubjectID   uint       `gorm:"not null;index:idx_refresh_subject" json:"subject_id"`
	TokenHash   string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt   time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt   *time.Time `gorm:"index" json:"revoked_at"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// AutoMigrate creates or updates all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Donor{},
		&DonorProfile{},
		&Hospital{},
		&BloodRequest{},
		&RequestResponse{},
		&RefreshToken{},
	)
}
