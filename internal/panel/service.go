// AngelaMos | 2026
// service.go

package panel

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/carterperez-dev/templates/control-panel/internal/access"
	"github.com/carterperez-dev/templates/control-panel/internal/core"
)

const maxTabs = 64

type Service struct {
	store   Store
	catalog []access.TabDescriptor
}

func NewService(store Store) *Service {
	return &Service{
		store:   store,
		catalog: access.DefaultCatalog(),
	}
}

// VisibleTabs resolves the viewer's tab bar. Anonymous viewers have no
// stored configuration and resolve against the catalog. A corrupt stored
// list is deleted and this call returns no tabs.
func (s *Service) VisibleTabs(
	ctx context.Context,
	viewer *access.User,
) ([]access.TabDescriptor, error) {
	if viewer == nil {
		return access.ResolveVisibleTabs(nil, s.catalog, s.catalog, nil), nil
	}

	customized, err := s.store.Load(ctx, viewer.ID)
	if err != nil {
		return nil, err
	}

	reset := access.ResetFunc(func() {
		if err := s.store.Reset(ctx, viewer.ID); err != nil {
			slog.ErrorContext(ctx, "reset tab configuration failed",
				"user_id", viewer.ID,
				"error", err,
			)
		}
	})

	return access.ResolveVisibleTabs(viewer, customized, s.catalog, reset), nil
}

type TabAccess struct {
	Tab      access.TabID `json:"tab"`
	Decision string       `json:"decision"`
	Allowed  bool         `json:"allowed"`
	Visible  bool         `json:"visible"`
}

// TabAccess reports whether the viewer may open tab and whether it is in
// their tab bar.
func (s *Service) TabAccess(
	ctx context.Context,
	viewer *access.User,
	tab access.TabID,
) (*TabAccess, error) {
	if !access.KnownTab(tab) {
		return nil, fmt.Errorf("tab access %q: %w", tab, core.ErrNotFound)
	}

	decision := access.CanEnter(viewer, access.TabRequirement(tab))

	visible, err := s.VisibleTabs(ctx, viewer)
	if err != nil {
		return nil, err
	}

	inBar := slices.ContainsFunc(visible, func(t access.TabDescriptor) bool {
		return t.ID == tab
	})

	return &TabAccess{
		Tab:      tab,
		Decision: decision.String(),
		Allowed:  decision.Allowed(),
		Visible:  inBar,
	}, nil
}

// Save replaces the viewer's customized list. The synthetic
// tab-management entry is never stored.
func (s *Service) Save(
	ctx context.Context,
	viewer *access.User,
	tabs []access.TabDescriptor,
) ([]access.TabDescriptor, error) {
	if viewer == nil {
		return nil, fmt.Errorf("save tabs: %w", core.ErrUnauthorized)
	}

	clean, err := validateTabs(tabs)
	if err != nil {
		return nil, err
	}

	if err := s.store.Save(ctx, viewer.ID, clean); err != nil {
		return nil, err
	}

	return access.ResolveVisibleTabs(viewer, clean, s.catalog, nil), nil
}

func (s *Service) Reset(ctx context.Context, viewer *access.User) error {
	if viewer == nil {
		return fmt.Errorf("reset tabs: %w", core.ErrUnauthorized)
	}
	return s.store.Reset(ctx, viewer.ID)
}

func validateTabs(tabs []access.TabDescriptor) ([]access.TabDescriptor, error) {
	if len(tabs) > maxTabs {
		return nil, fmt.Errorf("save tabs: too many tabs: %w", core.ErrInvalidInput)
	}

	seen := make(map[access.TabID]struct{}, len(tabs))
	clean := make([]access.TabDescriptor, 0, len(tabs))
	for _, t := range tabs {
		switch {
		case t.ID == access.TabTabManagement:
			continue
		case !access.KnownTab(t.ID):
			return nil, fmt.Errorf("save tabs: unknown tab %q: %w", t.ID, core.ErrInvalidInput)
		case t.Order < 0:
			return nil, fmt.Errorf("save tabs: negative order for %q: %w", t.ID, core.ErrInvalidInput)
		}
		if _, dup := seen[t.ID]; dup {
			return nil, fmt.Errorf("save tabs: duplicate tab %q: %w", t.ID, core.ErrInvalidInput)
		}
		seen[t.ID] = struct{}{}

		if t.Window != access.WindowDeveloper {
			t.Window = access.WindowUser
		}
		t.Extra = false
		clean = append(clean, t)
	}

	return clean, nil
}
