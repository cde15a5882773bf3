package core

import (
	"github.com/filedash/filedash/internal/models"
	"github.com/filedash/filedash/internal/preview"
	"github.com/filedash/filedash/internal/state"
)

// ViewState is everything a frontend needs to draw the dashboard.
type ViewState struct {
	User *models.SessionUser

	Criteria      models.SearchCriteria
	Extensions    []string
	Files         []models.FileRecord // Filtered by the active extension
	CatalogStatus state.Status
	CatalogErr    error

	Selection string // Pending upload name, "" when none

	Preview *preview.Rendering

	ProfileOpen bool
	Profile     *models.ProfileDetails

	Status *models.StatusMessage
}

// View assembles a snapshot from every component. Each part is copied, so
// the caller may keep it.
func (e *Engine) View() ViewState {
	v := ViewState{
		Criteria:      e.catalog.Criteria(),
		Extensions:    e.extensions.Extensions(),
		Files:         e.catalog.VisibleFiles(),
		CatalogStatus: e.catalog.Status(),
		CatalogErr:    e.catalog.Err(),
		Selection:     e.uploads.Selection(),
		ProfileOpen:   e.profile.IsOpen(),
	}

	if u, ok := e.profile.User(); ok {
		v.User = &u
	}
	if r, ok := e.previews.Render(); ok {
		v.Preview = &r
	}
	if p, ok := e.profile.Profile(); ok {
		v.Profile = &p
	}
	if msg, ok := e.notices.Current(); ok {
		v.Status = &msg
	}
	return v
}
