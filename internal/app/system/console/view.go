// internal/app/system/console/view.go
package console

import (
	"github.com/scanmenu/admindesk/internal/app/system/analytics"
	"github.com/scanmenu/admindesk/internal/app/system/notices"
	"github.com/scanmenu/admindesk/internal/app/system/search"
	"github.com/scanmenu/admindesk/internal/app/system/tabs"
	"github.com/scanmenu/admindesk/internal/domain/models"
)

// View is the JSON view model of the active tab. Only what the tab shows is
// included: collections of other tabs are neither rendered nor fetched.
type View struct {
	ConsoleID     string                  `json:"consoleId"`
	Tab           tabs.Tab                `json:"tab"`
	URL           string                  `json:"url"`
	Collections   map[models.Resource]any `json:"collections,omitempty"`
	Stats         *models.Stats           `json:"stats,omitempty"`
	Analytics     *analytics.Derived      `json:"analytics,omitempty"`
	Notifications []notices.Notification  `json:"notifications"`
	Unread        int                     `json:"unread"`
	Notices       []notices.Notice        `json:"notices"`
	Expired       bool                    `json:"expired"`
}

// View renders the active tab. base is the page path the tab URL is built
// on (for example "/admin").
func (c *Console) View(base string) View {
	tab := c.ActiveTab()

	v := View{
		ConsoleID:     c.id,
		Tab:           tab,
		URL:           tabs.URL(base, tab.Token),
		Notifications: c.Notifications(),
		Notices:       c.notices.List(),
		Expired:       c.Expired(),
	}
	v.Unread = notices.Unread(v.Notifications)

	if len(tab.Fetchers) > 0 {
		v.Collections = make(map[models.Resource]any, len(tab.Fetchers))
		for _, r := range tab.Fetchers {
			if f, ok := c.fetchers[r]; ok {
				v.Collections[r] = f.View()
			}
		}
	}
	if tab.NeedsStats {
		if st, ok := c.Stats(); ok {
			v.Stats = &st
		}
	}
	if tab.NeedsCharts {
		v.Analytics = c.Analytics()
	}
	return v
}

// Notifications derives the current notification set from the last stats
// snapshot and marks the ones the admin has read.
func (c *Console) Notifications() []notices.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.statsLoaded {
		return []notices.Notification{}
	}
	return notices.MarkRead(notices.Derive(c.stats, c.statsAt), c.read)
}

// MarkNotificationRead marks one notification read. Unknown ids are
// ignored.
func (c *Console) MarkNotificationRead(id string) bool {
	switch id {
	case notices.IDPendingBusinesses, notices.IDExpiredSubscriptions,
		notices.IDOpenTickets, notices.IDFailedPayments:
	default:
		return false
	}
	c.mu.Lock()
	c.read[id] = true
	c.mu.Unlock()
	return true
}

// Search runs a quick search over every business and user the console has
// loaded: the charts dataset and the current table pages.
func (c *Console) Search(query string, limit int) search.Results {
	c.mu.Lock()
	biz := append([]models.Business(nil), c.charts.businesses...)
	usr := append([]models.User(nil), c.charts.users...)
	c.mu.Unlock()

	biz = append(biz, c.businesses.Items()...)
	usr = append(usr, c.users.Items()...)
	return search.Run(query, biz, usr, limit)
}
