// AngelaMos | 2026
// tabs.go

package access

import (
	"log/slog"
	"slices"
)

type TabID string

const (
	TabProfile        TabID = "profile"
	TabSettings       TabID = "settings"
	TabNotifications  TabID = "notifications"
	TabFeatures       TabID = "features"
	TabData           TabID = "data"
	TabAcademy        TabID = "kofounda-academy"
	TabReferral       TabID = "referral"
	TabCloudProviders TabID = "cloud-providers"
	TabLocalProviders TabID = "local-providers"
	TabServiceStatus  TabID = "service-status"
	TabConnection     TabID = "connection"
	TabDebug          TabID = "debug"
	TabEventLogs      TabID = "event-logs"
	TabUpdate         TabID = "update"
	TabTaskManager    TabID = "task-manager"
	TabAdmin          TabID = "admin"
	TabTabManagement  TabID = "tab-management"
)

type Window string

const (
	WindowUser      Window = "user"
	WindowDeveloper Window = "developer"
)

type TabDescriptor struct {
	ID         TabID  `json:"id"`
	Window     Window `json:"window"`
	Order      int    `json:"order"`
	Visible    bool   `json:"visible"`
	Beta       bool   `json:"beta,omitempty"`
	ComingSoon bool   `json:"coming_soon,omitempty"`
	Extra      bool   `json:"extra,omitempty"`
}

var (
	guestTabs      = []TabID{TabSettings}
	userTabs       = []TabID{TabConnection, TabData, TabProfile, TabAcademy, TabReferral}
	betaTabs       = []TabID{TabTaskManager, TabServiceStatus, TabUpdate}
	comingSoonTabs = []TabID{TabAcademy, TabReferral}
)

func tab(id TabID, w Window, order int) TabDescriptor {
	return TabDescriptor{
		ID:         id,
		Window:     w,
		Order:      order,
		Visible:    true,
		Beta:       slices.Contains(betaTabs, id),
		ComingSoon: slices.Contains(comingSoonTabs, id),
	}
}

var defaultCatalog = []TabDescriptor{
	tab(TabProfile, WindowUser, 0),
	tab(TabSettings, WindowUser, 1),
	tab(TabNotifications, WindowUser, 2),
	tab(TabFeatures, WindowUser, 3),
	tab(TabData, WindowUser, 4),
	tab(TabAcademy, WindowUser, 5),
	tab(TabReferral, WindowUser, 6),
	tab(TabCloudProviders, WindowUser, 7),
	tab(TabLocalProviders, WindowUser, 8),
	tab(TabConnection, WindowUser, 9),
	tab(TabAdmin, WindowDeveloper, 10),
	tab(TabServiceStatus, WindowDeveloper, 11),
	tab(TabDebug, WindowDeveloper, 12),
	tab(TabEventLogs, WindowDeveloper, 13),
	tab(TabUpdate, WindowDeveloper, 14),
	tab(TabTaskManager, WindowDeveloper, 15),
}

// DefaultCatalog returns a copy of the built-in tab catalog.
func DefaultCatalog() []TabDescriptor {
	return slices.Clone(defaultCatalog)
}

// KnownTab reports whether id names a catalog tab or the synthetic
// tab-management entry.
func KnownTab(id TabID) bool {
	if id == TabTabManagement {
		return true
	}
	for _, t := range defaultCatalog {
		if t.ID == id {
			return true
		}
	}
	return false
}

// TabRequirement is the extra requirement for entering a tab.
func TabRequirement(id TabID) Requirement {
	switch id {
	case TabAdmin:
		return AdminOnly
	case TabTabManagement:
		return DeveloperOrAdmin
	default:
		return Requirement{}
	}
}

type Resetter interface {
	Reset()
}

type ResetFunc func()

func (f ResetFunc) Reset() {
	f()
}

// ResolveVisibleTabs returns the tabs the viewer should see, in display
// order. A nil customized list is treated as corrupt: reset is invoked and
// the result is empty for this call. Inputs are never modified.
func ResolveVisibleTabs(
	u *User,
	customized []TabDescriptor,
	catalog []TabDescriptor,
	reset Resetter,
) []TabDescriptor {
	if customized == nil {
		slog.Warn("invalid tab configuration, resetting to defaults")
		if reset != nil {
			reset.Reset()
		}
		return []TabDescriptor{}
	}

	switch {
	case u == nil || u.Role == RoleGuest:
		return resolveGuestTabs(customized, catalog)
	case u.Role == RoleAdmin || u.Role == RoleDeveloper:
		return resolveAllTabs(customized, catalog)
	default:
		return resolveUserTabs(u, customized)
	}
}

func resolveGuestTabs(customized, catalog []TabDescriptor) []TabDescriptor {
	out := make([]TabDescriptor, 0, len(guestTabs))
	for _, id := range guestTabs {
		t, ok := findTab(customized, id)
		if !ok {
			t, ok = findTab(catalog, id)
		}
		if !ok {
			continue
		}
		t.Visible = true
		out = append(out, t)
	}
	return out
}

func resolveAllTabs(customized, catalog []TabDescriptor) []TabDescriptor {
	seen := make(map[TabID]struct{}, len(catalog)+1)
	out := make([]TabDescriptor, 0, len(catalog)+1)

	add := func(t TabDescriptor) {
		if t.ID == "" || t.ID == TabTabManagement {
			return
		}
		if _, dup := seen[t.ID]; dup {
			return
		}
		seen[t.ID] = struct{}{}
		if t.Order == 0 {
			t.Order = len(out)
		}
		t.Visible = true
		out = append(out, t)
	}

	for _, t := range customized {
		add(t)
	}
	for _, t := range catalog {
		add(t)
	}

	out = append(out, TabDescriptor{
		ID:      TabTabManagement,
		Window:  WindowUser,
		Order:   len(out),
		Visible: true,
		Extra:   true,
	})

	sortByOrder(out)
	return out
}

func resolveUserTabs(u *User, customized []TabDescriptor) []TabDescriptor {
	notificationsOff := u.Preferences.NotificationsDisabled()

	out := make([]TabDescriptor, 0, len(userTabs))
	for _, t := range customized {
		if t.ID == "" {
			continue
		}
		if t.ID == TabNotifications && notificationsOff {
			continue
		}
		if !slices.Contains(userTabs, t.ID) {
			continue
		}
		t.Visible = true
		out = append(out, t)
	}

	sortByOrder(out)
	return out
}

func findTab(tabs []TabDescriptor, id TabID) (TabDescriptor, bool) {
	for _, t := range tabs {
		if t.ID == id {
			return t, true
		}
	}
	return TabDescriptor{}, false
}

func sortByOrder(tabs []TabDescriptor) {
	slices.SortStableFunc(tabs, func(a, b TabDescriptor) int {
		return a.Order - b.Order
	})
}
