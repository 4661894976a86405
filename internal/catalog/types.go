package catalog

import (
	"strconv"
	"time"

	"prodscan/internal/credits"
	"prodscan/internal/discogs"
)

// Kind distinguishes masters (groupings) from releases (editions).
type Kind string

const (
	KindMaster  Kind = "master"
	KindRelease Kind = "release"
)

// ParseKind maps "master" to KindMaster and anything else to KindRelease.
func ParseKind(value string) Kind {
	if value == string(KindMaster) {
		return KindMaster
	}
	return KindRelease
}

// UnknownYear is shown when no source carries a release year.
const UnknownYear = "Unknown"

// Stub is the listing data for an item that has not been resolved yet.
type Stub struct {
	ID          int64  `json:"id"`
	Kind        Kind   `json:"type"`
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	Year        int    `json:"year,omitempty"`
	Thumb       string `json:"thumb,omitempty"`
	Role        string `json:"role,omitempty"`
	MainRelease int64  `json:"main_release,omitempty"`
}

// StubFromListing converts a discography row into a Stub.
func StubFromListing(r discogs.ArtistRelease) Stub {
	kind := KindRelease
	if r.IsMaster() {
		kind = KindMaster
	}
	return Stub{
		ID:          r.ID,
		Kind:        kind,
		Title:       r.Title,
		Artist:      r.Artist,
		Year:        r.Year,
		Thumb:       r.Thumb,
		Role:        r.Role,
		MainRelease: r.MainRelease,
	}
}

// IsMaster reports whether the stub refers to a master.
func (s Stub) IsMaster() bool {
	return s.Kind == KindMaster
}

// YearString renders the listing year, or "" when the listing had none.
func (s Stub) YearString() string {
	if s.Year <= 0 {
		return ""
	}
	return strconv.Itoa(s.Year)
}

// Key identifies an item; masters and releases live in separate id spaces.
type Key struct {
	ID       int64
	IsMaster bool
}

// Item is a resolved entry in an artist's collection.
type Item struct {
	ID         int64         `json:"id"`
	Kind       Kind          `json:"type"`
	IsMaster   bool          `json:"isMaster"`
	Title      string        `json:"title"`
	Artist     string        `json:"artist"`
	Year       string        `json:"year"`
	Label      string        `json:"label"`
	Credits    string        `json:"artistRoles"`
	Roles      credits.Roles `json:"roles,omitempty"`
	ArtworkURL string        `json:"artworkUrl"`
	SourceURL  string        `json:"discogsUrl"`
	// RepresentativeID is the key release of a master, zero when unknown.
	RepresentativeID int64 `json:"representativeVersionId,omitempty"`
}

// Key returns the merge identity of the item.
func (it Item) Key() Key {
	return Key{ID: it.ID, IsMaster: it.IsMaster}
}

// FailedItem is a queued stub whose last resolution attempt failed.
type FailedItem struct {
	ID        int64     `json:"id"`
	Kind      Kind      `json:"type"`
	Stub      Stub      `json:"stub"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

// NewFailedItem records a failure for stub at the given time.
func NewFailedItem(stub Stub, message string, at time.Time) FailedItem {
	return FailedItem{
		ID:        stub.ID,
		Kind:      stub.Kind,
		Stub:      stub,
		Error:     message,
		Timestamp: at.UTC(),
	}
}
