package notifyclient

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Channel is the visual channel chosen for an incoming live event.
type Channel string

const (
	// ChannelOverlay is a transient in-app toast that auto-dismisses.
	ChannelOverlay Channel = "overlay"
	// ChannelSystem is a persistent desktop-style notification.
	ChannelSystem Channel = "system"
)

// DefaultOverlayTimeout is how long an overlay stays before auto-dismissing.
const DefaultOverlayTimeout = 5 * time.Second

// ViewState captures the consuming application's presentation context at the
// moment an event arrives.
type ViewState struct {
	PermissionGranted bool // system notifications allowed
	WindowFocused     bool
}

// PreferenceStore exposes the persisted user preferences the policy reads.
type PreferenceStore interface {
	SoundEnabled() bool
}

// Decision tells the consuming application how to present one event.
type Decision struct {
	PlaySound        bool
	Channel          Channel
	OverlayID        string        // set for overlay decisions, keys dismissal
	AutoDismissAfter time.Duration // zero for system notifications

	// Tag lets the OS collapse duplicate system notifications from the same
	// sender and type before the cache ever sees them again.
	Tag string
	// ClickNavigateTo is the view to open when a system notification is
	// clicked; the click also focuses the window and dismisses the
	// notification.
	ClickNavigateTo string
}

// Surface decides the presentation channel per incoming live event. Purely a
// policy layer over the cache; it performs no I/O itself.
type Surface struct {
	prefs          PreferenceStore
	overlayTimeout time.Duration
}

// NewSurface creates a Surface. prefs may be nil, in which case sound
// defaults to on.
func NewSurface(prefs PreferenceStore) *Surface {
	return &Surface{prefs: prefs, overlayTimeout: DefaultOverlayTimeout}
}

// Decide evaluates the policy:
//  1. sound plays whenever the persisted preference allows, regardless of
//     the visual channel;
//  2. without permission, or with the window focused, a transient overlay is
//     shown;
//  3. otherwise a system notification tagged (type, sender) is raised.
func (s *Surface) Decide(n Notification, state ViewState) Decision {
	decision := Decision{
		PlaySound: s.prefs == nil || s.prefs.SoundEnabled(),
		Tag:       fmt.Sprintf("%s:%d", n.Type, n.Sender.ID),
	}

	if !state.PermissionGranted || state.WindowFocused {
		decision.Channel = ChannelOverlay
		decision.OverlayID = uuid.NewString()
		decision.AutoDismissAfter = s.overlayTimeout
		return decision
	}

	decision.Channel = ChannelSystem
	decision.ClickNavigateTo = "/notifications"
	return decision
}
