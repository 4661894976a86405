package discogs

import (
	"encoding/json"
	"fmt"
)

// Pagination is the paging envelope shared by list endpoints.
type Pagination struct {
	Page    int `json:"page"`
	Pages   int `json:"pages"`
	PerPage int `json:"per_page"`
	Items   int `json:"items"`
}

// Artist is the subset of /artists/{id} the scanner reads.
type Artist struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	RealName       string   `json:"realname"`
	NameVariations []string `json:"namevariations"`
	URI            string   `json:"uri"`
}

// ArtistRelease is one row of an artist's discography listing.
type ArtistRelease struct {
	ID          int64  `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	Year        int    `json:"year"`
	Thumb       string `json:"thumb"`
	Role        string `json:"role"`
	MainRelease int64  `json:"main_release"`
}

// IsMaster reports whether the listing row refers to a master.
func (r ArtistRelease) IsMaster() bool {
	return r.Type == "master"
}

// ArtistReleasesPage is a page of /artists/{id}/releases. Missing envelope
// fields decode as nil so callers can tell an unexpected payload apart from an
// empty page.
type ArtistReleasesPage struct {
	Pagination *Pagination      `json:"pagination"`
	Releases   *[]ArtistRelease `json:"releases"`
}

// Roles holds a credit role that Discogs may send as either a string or an
// array of strings.
type Roles []string

// UnmarshalJSON accepts a string, an array of strings, or null.
func (r *Roles) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = nil
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*r = nil
		} else {
			*r = Roles{single}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("discogs: role must be a string or list: %w", err)
	}
	*r = Roles(many)
	return nil
}

// Credit is an artist entry in a release's artists, credits, or extraartists
// arrays.
type Credit struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	ANV    string `json:"anv"`
	Join   string `json:"join"`
	Role   Roles  `json:"role"`
	Tracks string `json:"tracks"`
}

// Label is a release label entry.
type Label struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	CatNo string `json:"catno"`
}

// Image is a release or master image.
type Image struct {
	Type   string `json:"type"`
	URI    string `json:"uri"`
	URI150 string `json:"uri150"`
}

// Release is the subset of /releases/{id} the scanner reads.
type Release struct {
	ID           int64    `json:"id"`
	Title        string   `json:"title"`
	Year         int      `json:"year"`
	URI          string   `json:"uri"`
	Thumb        string   `json:"thumb"`
	MasterID     int64    `json:"master_id"`
	Artists      []Credit `json:"artists"`
	Credits      []Credit `json:"credits"`
	ExtraArtists []Credit `json:"extraartists"`
	Labels       []Label  `json:"labels"`
	Images       []Image  `json:"images"`
}

// AllCredits returns credits followed by extraartists.
func (r *Release) AllCredits() []Credit {
	if r == nil {
		return nil
	}
	out := make([]Credit, 0, len(r.Credits)+len(r.ExtraArtists))
	out = append(out, r.Credits...)
	return append(out, r.ExtraArtists...)
}

// Master is the subset of /masters/{id} the scanner reads.
type Master struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Year        int      `json:"year"`
	MainRelease int64    `json:"main_release"`
	VersionsURL string   `json:"versions_url"`
	URI         string   `json:"uri"`
	Artists     []Credit `json:"artists"`
	Images      []Image  `json:"images"`
}

// Version is one edition in a master's version list.
type Version struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Released string `json:"released"`
	Label    string `json:"label"`
	Country  string `json:"country"`
	Format   string `json:"format"`
	Thumb    string `json:"thumb"`
}

// VersionsPage is a page of /masters/{id}/versions.
type VersionsPage struct {
	Pagination Pagination `json:"pagination"`
	Versions   []Version  `json:"versions"`
}
