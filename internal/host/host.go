// Package host defines the boundary to the host application launcher: its
// catalog of native entries and its navigation layer.
package host

import (
	"context"
	"errors"
	"strconv"
	"strings"
)

// AppID identifies a native catalog entry.
type AppID uint32

func (id AppID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ErrNoEntry is returned for operations on an unknown AppID.
var ErrNoEntry = errors.New("no such catalog entry")

// Entry is one native catalog record.
type Entry struct {
	AppID         AppID  `json:"appId"`
	Name          string `json:"name"`
	Exe           string `json:"exe"`
	StartDir      string `json:"startDir,omitempty"`
	LaunchOptions string `json:"launchOptions,omitempty"`
}

// Catalog is the host's application library.
type Catalog interface {
	// Entries lists every non-native entry the host knows about.
	Entries(ctx context.Context) ([]Entry, error)
	// Lookup finds an entry by display name.
	Lookup(ctx context.Context, name string) (Entry, bool, error)
	Create(ctx context.Context, name, exe, startDir string) (AppID, error)
	Remove(ctx context.Context, id AppID) error
	SetLaunchOptions(ctx context.Context, id AppID, options string) error
	// Run asks the host to start the entry with its current launch options.
	Run(ctx context.Context, id AppID) error
}

// Filter inspects a navigation to a path matching its route. Returning
// ok=false suppresses the navigation; a non-empty redirect is navigated to instead.
type Filter func(path string) (redirect string, ok bool)

// FilterHandle identifies an installed filter.
type FilterHandle uint64

// Navigator is the host's routing layer.
type Navigator interface {
	AddFilter(route string, f Filter) FilterHandle
	RemoveFilter(h FilterHandle)
	Navigate(path string)
}

// MatchRoute reports whether path matches route, where route segments
// starting with ':' match any single segment. Captured segments are returned
// keyed by name without the colon.
func MatchRoute(route, path string) (map[string]string, bool) {
	rs := strings.Split(strings.Trim(route, "/"), "/")
	ps := strings.Split(strings.Trim(path, "/"), "/")
	if len(rs) != len(ps) {
		return nil, false
	}
	params := make(map[string]string)
	for i, seg := range rs {
		if strings.HasPrefix(seg, ":") {
			params[seg[1:]] = ps[i]
			continue
		}
		if seg != ps[i] {
			return nil, false
		}
	}
	return params, true
}
