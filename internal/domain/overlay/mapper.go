// Package overlay computes which issues should be highlighted on a rendered
// asset for a given view state, and how the view should move when an issue is
// selected. Every function here is pure: safe to call on every render tick.
package overlay

import (
	"math"
	"time"

	"github.com/bryanwahyu/brandlens/internal/domain/assets"
	"github.com/bryanwahyu/brandlens/internal/domain/issues"
)

const (
	// ProximityWindow is how close (seconds) playback must be to an issue's
	// timestamp for its marker to show on a time-based asset.
	ProximityWindow = 3.0

	// SettleDelay is the pause callers should allow after a seek before
	// treating a selection as complete. The mapper itself never sleeps.
	SettleDelay = 200 * time.Millisecond
)

// ViewState is the caller-owned view snapshot, passed by value on each call.
type ViewState struct {
	Page         int            `json:"page,omitempty"`          // visible page/slide, 1-based
	PlaybackTime float64        `json:"playback_time,omitempty"` // seconds
	SelectedID   issues.IssueID `json:"selected_id,omitempty"`
}

// PlacedMarker is one marker to render this frame. CenterX/CenterY are the
// bounding box center in percent units; the renderer anchors the marker at its
// own center (translate -50%/-50%). Coordinates are not clamped to [0,100].
type PlacedMarker struct {
	Issue    issues.Issue `json:"issue"`
	Badge    int          `json:"badge"` // 1 + index in the ORIGINAL issue list
	CenterX  float64      `json:"center_x"`
	CenterY  float64      `json:"center_y"`
	Selected bool         `json:"selected"`
}

// NavigationIntent tells the rendering layer how to bring an issue into view.
// The zero value means no navigation is needed.
type NavigationIntent struct {
	SeekTo       *float64 `json:"seek_to,omitempty"`
	Pause        bool     `json:"pause,omitempty"`
	ScrollToPage *int     `json:"scroll_to_page,omitempty"`
}

// VisibleMarkers returns the issues to render as markers for the current view
// state. Issues without a bounding box never place a marker regardless of kind.
func VisibleMarkers(list []issues.Issue, asset assets.Asset, view ViewState) []PlacedMarker {
	switch {
	case asset.Kind.TimeBased():
		return timeMarkers(list, view)
	case asset.Kind.Paginated():
		return PageMarkers(list, view.Page, view.SelectedID)
	default:
		// static image: every boxed issue, no gating
		out := make([]PlacedMarker, 0, len(list))
		for n, it := range list {
			if it.Box == nil {
				continue
			}
			out = append(out, place(it, n, view.SelectedID))
		}
		return out
	}
}

// PageMarkers applies the per-page rule for carousel rendering: a boxed issue
// belongs to page when its page number matches, or when it carries no page
// number and the page under consideration is the first. A carousel renders all
// pages at once and evaluates this independently for each page index.
func PageMarkers(list []issues.Issue, page int, selected issues.IssueID) []PlacedMarker {
	out := make([]PlacedMarker, 0, len(list))
	for n, it := range list {
		if it.Box == nil {
			continue
		}
		switch {
		case it.Page != nil && *it.Page == page:
		case it.Page == nil && page == 1:
		default:
			continue
		}
		out = append(out, place(it, n, selected))
	}
	return out
}

// timeMarkers keeps a boxed issue when it is selected, or when playback is
// within ProximityWindow of its timestamp.
func timeMarkers(list []issues.Issue, view ViewState) []PlacedMarker {
	out := make([]PlacedMarker, 0, len(list))
	for n, it := range list {
		if it.Box == nil {
			continue
		}
		if it.ID != view.SelectedID {
			if it.Timestamp == nil {
				continue
			}
			if math.Abs(view.PlaybackTime-*it.Timestamp) >= ProximityWindow {
				continue
			}
		}
		out = append(out, place(it, n, view.SelectedID))
	}
	return out
}

// SelectIssue returns the navigation needed to bring the issue into view.
// Unknown ids and static images yield the zero intent.
func SelectIssue(list []issues.Issue, asset assets.Asset, id issues.IssueID) NavigationIntent {
	var target *issues.Issue
	for n := range list {
		if list[n].ID == id {
			target = &list[n]
			break
		}
	}
	if target == nil {
		return NavigationIntent{}
	}

	switch {
	case asset.Kind.TimeBased():
		if target.Timestamp == nil {
			return NavigationIntent{}
		}
		ts := *target.Timestamp
		return NavigationIntent{SeekTo: &ts, Pause: true}
	case asset.Kind.Paginated():
		page := 1
		if target.Page != nil {
			page = *target.Page
		}
		return NavigationIntent{ScrollToPage: &page}
	default:
		return NavigationIntent{}
	}
}

func place(it issues.Issue, index int, selected issues.IssueID) PlacedMarker {
	return PlacedMarker{
		Issue:    it,
		Badge:    index + 1,
		CenterX:  it.Box.CenterX(),
		CenterY:  it.Box.CenterY(),
		Selected: it.ID == selected && selected != "",
	}
}
