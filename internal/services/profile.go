package services

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/filedash/filedash/internal/events"
	"github.com/filedash/filedash/internal/logging"
	"github.com/filedash/filedash/internal/models"
)

// ProfileMenu holds the signed-in user, the lazily fetched profile, and the
// menu's open state.
type ProfileMenu struct {
	client    ProfileAPI
	session   SessionEnder
	navigator Navigator
	eventBus  *events.EventBus
	logger    *logging.Logger

	group singleflight.Group

	mu      sync.RWMutex
	user    *models.SessionUser
	profile *models.ProfileDetails
	open    bool
	epoch   uint64 // Bumped by Logout so in-flight loads do not land
}

// NewProfileMenu creates a closed menu with no user.
func NewProfileMenu(client ProfileAPI, session SessionEnder, navigator Navigator, eventBus *events.EventBus, logger *logging.Logger) *ProfileMenu {
	return &ProfileMenu{
		client:    client,
		session:   session,
		navigator: navigator,
		eventBus:  eventBus,
		logger:    logging.OrDiscard(logger),
	}
}

// LoadUser fetches the signed-in user. On failure the user stays absent.
func (m *ProfileMenu) LoadUser(ctx context.Context) error {
	m.mu.RLock()
	epoch := m.epoch
	m.mu.RUnlock()

	user, err := m.client.Me(ctx)
	if err != nil {
		m.logger.Error().Err(err).Msg("Failed to load user")
		return err
	}

	m.mu.Lock()
	if epoch != m.epoch {
		m.mu.Unlock()
		return nil
	}
	m.user = user
	m.mu.Unlock()

	u := *user
	m.eventBus.Publish(events.NewSessionUserEvent(&u))
	return nil
}

// User returns the signed-in user.
func (m *ProfileMenu) User() (models.SessionUser, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return models.SessionUser{}, false
	}
	return *m.user, true
}

// Toggle opens or closes the menu. The first open fetches the profile;
// concurrent first opens share one request. If that fetch fails the menu
// stays closed.
func (m *ProfileMenu) Toggle(ctx context.Context) error {
	m.mu.Lock()
	if m.open {
		m.open = false
		m.mu.Unlock()
		m.publish()
		return nil
	}
	if m.profile != nil {
		m.open = true
		m.mu.Unlock()
		m.publish()
		return nil
	}
	epoch := m.epoch
	m.mu.Unlock()

	v, err, shared := m.group.Do("profile", func() (interface{}, error) {
		return m.client.Profile(ctx)
	})
	if err != nil {
		m.logger.Error().Err(err).Msg("Failed to load profile")
		return err
	}
	if shared {
		m.logger.Debug().Msg("Joined in-flight profile fetch")
	}

	m.mu.Lock()
	if epoch != m.epoch {
		m.mu.Unlock()
		return nil
	}
	m.profile = v.(*models.ProfileDetails)
	m.open = true
	m.mu.Unlock()

	m.publish()
	return nil
}

// IsOpen reports whether the menu is open.
func (m *ProfileMenu) IsOpen() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.open
}

// Profile returns the cached profile, if fetched.
func (m *ProfileMenu) Profile() (models.ProfileDetails, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.profile == nil {
		return models.ProfileDetails{}, false
	}
	return *m.profile, true
}

// Logout ends the session, resets the menu, and navigates to the entry
// point. Navigation happens even if removing the stored token fails.
func (m *ProfileMenu) Logout() error {
	err := m.session.Teardown()
	if err != nil {
		m.logger.Error().Err(err).Msg("Failed to remove stored token")
	}

	m.mu.Lock()
	m.epoch++
	m.user = nil
	m.profile = nil
	m.open = false
	m.mu.Unlock()

	m.eventBus.Publish(events.NewSignedOutEvent())
	m.navigator.NavigateToEntry()
	return err
}

func (m *ProfileMenu) publish() {
	m.mu.RLock()
	open := m.open
	var p *models.ProfileDetails
	if m.profile != nil {
		cp := *m.profile
		p = &cp
	}
	m.mu.RUnlock()

	m.eventBus.Publish(events.NewProfileEvent(open, p))
}
