package app

import (
	"context"

	"github.com/bidii/sacco-admin/internal/model"
	"github.com/bidii/sacco-admin/internal/snapshot"
)

// restoreSnapshots seeds the list views with the last persisted fetches
// so they show stale-but-present data before the first response lands.
func (m *Model) restoreSnapshots() {
	if m.cache == nil {
		return
	}
	ctx := context.Background()

	var perfs []model.MonthlyPerformance
	if _, err := m.cache.Load(ctx, snapshot.CollectionPerformances, &perfs); err == nil {
		m.dashView.Restore(perfs)
	}

	var notifs []model.Notification
	if _, err := m.cache.Load(ctx, snapshot.CollectionNotifications, &notifs); err == nil {
		m.notifView.Restore(notifs)
	}

	var credits []model.MonthlyAdvanceCredit
	if _, err := m.cache.Load(ctx, snapshot.CollectionCredits, &credits); err == nil {
		m.creditsView.Restore(credits)
	}

	var histories []model.HistoryEntry
	if _, err := m.cache.Load(ctx, snapshot.CollectionHistories, &histories); err == nil {
		m.historyView.Restore(histories)
	}
}

// The persist helpers run after every fetch result for their collection.
// Saving is best effort; a failed write just means the next start shows
// older data.

func (m *Model) persistPerformances() {
	if m.cache == nil {
		return
	}
	if rows := m.dashView.Rows(); len(rows) > 0 {
		_ = m.cache.Save(context.Background(), snapshot.CollectionPerformances, rows)
	}
}

func (m *Model) persistNotifications() {
	if m.cache == nil {
		return
	}
	if rows := m.notifView.Rows(); len(rows) > 0 {
		_ = m.cache.Save(context.Background(), snapshot.CollectionNotifications, rows)
	}
}

func (m *Model) persistCredits() {
	if m.cache == nil {
		return
	}
	if rows := m.creditsView.Rows(); len(rows) > 0 {
		_ = m.cache.Save(context.Background(), snapshot.CollectionCredits, rows)
	}
}

func (m *Model) persistHistories() {
	if m.cache == nil {
		return
	}
	if rows := m.historyView.Rows(); len(rows) > 0 {
		_ = m.cache.Save(context.Background(), snapshot.CollectionHistories, rows)
	}
}
