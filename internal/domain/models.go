package domain

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

func ValidRole(r Role) bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// User is the account record. PasswordHash and the token hashes never leave
// the store layer except on the explicit credential lookups that need them.
type User struct {
	ID            string
	Name          string
	Email         string
	Phone         string
	Role          Role
	IsActive      bool
	EmailVerified bool
	LastLogin     *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type UserWithSecrets struct {
	User
	PasswordHash string
}

// TokenPair is a stored single-use nonce: the sha256 hex digest of the
// plaintext plus its absolute expiry. Both fields are always written and
// cleared together.
type TokenPair struct {
	Hash      string
	ExpiresAt time.Time
}

// UserUpdate is a partial admin update; nil fields are left untouched.
type UserUpdate struct {
	Name     *string
	Email    *string
	Phone    *string
	Role     *Role
	IsActive *bool
}

type UserStats struct {
	ByRole   []RoleStats
	Total    int64
	Active   int64
	Inactive int64
	NewToday int64
}

type RoleStats struct {
	Role     Role
	Count    int64
	Active   int64
	Inactive int64
}

type ProjectStatus string

const (
	ProjectUpcoming  ProjectStatus = "upcoming"
	ProjectOngoing   ProjectStatus = "ongoing"
	ProjectCompleted ProjectStatus = "completed"
	ProjectSoldOut   ProjectStatus = "sold-out"
)

type ProjectCategory string

const (
	CategoryResidential ProjectCategory = "residential"
	CategoryCommercial  ProjectCategory = "commercial"
	CategoryMixed       ProjectCategory = "mixed"
)

type PlotSize struct {
	Size       string
	Available  bool
	Price      float64
	TotalPlots int
	SoldPlots  int
}

type ProjectImage struct {
	URL       string
	AltText   string
	IsPrimary bool
}

type PriceRange struct {
	Min  float64
	Max  float64
	Unit string
}

type Project struct {
	ID               string
	Title            string
	Slug             string
	Location         string
	Description      string
	ShortDescription string
	Features         []string
	PlotSizes        []PlotSize
	Images           []ProjectImage
	Status           ProjectStatus
	Category         ProjectCategory
	Amenities        []string
	TotalPlots       int
	AvailablePlots   int
	PriceRange       PriceRange
	RoadWidth        string
	HandoverDate     *time.Time
	LaunchDate       time.Time
	IsFeatured       bool
	Views            int64
	EnquiryCount     int64
	CreatedBy        string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (p Project) SoldPlots() int { return p.TotalPlots - p.AvailablePlots }

// ProjectFilter narrows a project listing. Zero values mean "any".
type ProjectFilter struct {
	Status   ProjectStatus
	Category ProjectCategory
	Featured *bool
	Location string
}

type ProjectStatusStats struct {
	Status         ProjectStatus
	Count          int64
	TotalPlots     int64
	AvailablePlots int64
	SoldPlots      int64
}

type ProjectStats struct {
	ByStatus []ProjectStatusStats
	Total    int64
}

type GalleryCategory string

const (
	GallerySiteView       GalleryCategory = "site-view"
	GalleryProgress       GalleryCategory = "progress"
	GalleryHandover       GalleryCategory = "handover"
	GalleryEvents         GalleryCategory = "events"
	GalleryInfrastructure GalleryCategory = "infrastructure"
	GalleryAerial         GalleryCategory = "aerial"
	GalleryTeam           GalleryCategory = "team"
	GalleryOffice         GalleryCategory = "office"
)

func ValidGalleryCategory(c GalleryCategory) bool {
	switch c {
	case GallerySiteView, GalleryProgress, GalleryHandover, GalleryEvents,
		GalleryInfrastructure, GalleryAerial, GalleryTeam, GalleryOffice:
		return true
	}
	return false
}

type GalleryImage struct {
	URL    string
	Width  int
	Height int
}

type GalleryItem struct {
	ID           string
	Title        string
	Description  string
	Image        GalleryImage
	Category     GalleryCategory
	ProjectID    string
	Tags         []string
	IsFeatured   bool
	DisplayOrder int
	Views        int64
	UploadedBy   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// GalleryFilter narrows a gallery listing. Zero values mean "any".
type GalleryFilter struct {
	Category  GalleryCategory
	ProjectID string
	Featured  *bool
}

type EnquiryStatus string

const (
	EnquiryNew        EnquiryStatus = "new"
	EnquiryInProgress EnquiryStatus = "in-progress"
	EnquiryResolved   EnquiryStatus = "resolved"
	EnquiryClosed     EnquiryStatus = "closed"
)

func ValidEnquiryStatus(s EnquiryStatus) bool {
	switch s {
	case EnquiryNew, EnquiryInProgress, EnquiryResolved, EnquiryClosed:
		return true
	}
	return false
}

type Enquiry struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Subject   string
	ProjectID string
	Message   string
	Status    EnquiryStatus
	Notes     string
	Response  *EnquiryResponse
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EnquiryResponse is the staff reply sent back to the enquirer. Recording
// one resolves the enquiry.
type EnquiryResponse struct {
	Message     string
	RespondedBy string
	RespondedAt time.Time
}

type EnquiryStats struct {
	Total    int64
	ByStatus map[EnquiryStatus]int64
}
