package viewer

import "github.com/BLxcwg666/hooklog/internal/models"

// nextSelection decides which record should be selected after a page load.
// It is deliberately pure: the view applies whatever it returns.
//
// Rules, in order:
//   - empty page clears the selection
//   - first load or follow-latest picks the newest record
//   - an existing selection is kept, even when the record fell off the
//     current page (the detail pane keeps showing it)
//   - otherwise fall back to the newest record
func nextSelection(records []models.WebhookLogModel, current *string, firstLoad, followLatest bool) *string {
	if len(records) == 0 {
		return nil
	}
	if firstLoad || followLatest {
		id := records[0].ID
		return &id
	}
	if current != nil {
		return current
	}
	id := records[0].ID
	return &id
}
