package discogs

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// ArtistPageSize is the listing page size requested from Discogs.
const ArtistPageSize = 100

var (
	bracketedArtistID = regexp.MustCompile(`^\[a(\d+)\]$`)
	numericArtistID   = regexp.MustCompile(`^\d+$`)
)

// ParseArtistID accepts "12345" or "[a12345]" and returns the numeric id.
func ParseArtistID(input string) (string, error) {
	value := strings.TrimSpace(input)
	if m := bracketedArtistID.FindStringSubmatch(value); m != nil {
		return m[1], nil
	}
	if numericArtistID.MatchString(value) {
		return value, nil
	}
	return "", errors.New("artist id must be digits or in [a12345] form")
}

// GetArtist fetches artist details.
func (c *Client) GetArtist(ctx context.Context, artistID string) (*Artist, error) {
	var artist Artist
	if err := c.FetchJSON(ctx, c.endpoint("artists", artistID).String(), &artist); err != nil {
		return nil, err
	}
	return &artist, nil
}

// ArtistReleases fetches one page of an artist's discography.
func (c *Client) ArtistReleases(ctx context.Context, artistID string, page int) (*ArtistReleasesPage, error) {
	endpoint := c.endpoint("artists", artistID, "releases")
	params := endpoint.Query()
	params.Set("per_page", strconv.Itoa(ArtistPageSize))
	params.Set("page", strconv.Itoa(page))
	endpoint.RawQuery = params.Encode()

	var out ArtistReleasesPage
	if err := c.FetchJSON(ctx, endpoint.String(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetMaster fetches a master.
func (c *Client) GetMaster(ctx context.Context, masterID int64) (*Master, error) {
	var master Master
	if err := c.FetchJSON(ctx, c.endpoint("masters", strconv.FormatInt(masterID, 10)).String(), &master); err != nil {
		return nil, err
	}
	return &master, nil
}

// MasterVersions fetches the newest versions of a master, perPage at a time.
func (c *Client) MasterVersions(ctx context.Context, masterID int64, perPage int) (*VersionsPage, error) {
	endpoint := c.endpoint("masters", strconv.FormatInt(masterID, 10), "versions")
	params := endpoint.Query()
	params.Set("per_page", strconv.Itoa(perPage))
	params.Set("sort", "released")
	params.Set("sort_order", "desc")
	endpoint.RawQuery = params.Encode()

	var out VersionsPage
	if err := c.FetchJSON(ctx, endpoint.String(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetRelease fetches a release.
func (c *Client) GetRelease(ctx context.Context, releaseID int64) (*Release, error) {
	var release Release
	if err := c.FetchJSON(ctx, c.endpoint("releases", strconv.FormatInt(releaseID, 10)).String(), &release); err != nil {
		return nil, err
	}
	return &release, nil
}
