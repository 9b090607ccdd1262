package service

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/lecternhq/lectern/internal/platform/domain"
	"github.com/lecternhq/lectern/internal/platform/store"
	"github.com/lecternhq/lectern/pkg/slogx"
)

const (
	// DefaultMonitorInterval throttles invariant checks triggered off the
	// request path.
	DefaultMonitorInterval = 30 * time.Second

	// monitorQueryTimeout bounds each store call the monitor makes so a slow
	// database can never stall the request that happened to trigger it.
	monitorQueryTimeout = 5 * time.Second
)

// RootAdminMonitor guards the platform's one hard safety invariant: at least
// one active root administrator must exist at all times. It is triggered
// opportunistically from authenticated request paths and periodically by the
// housekeeping loop, throttled to one real check per interval.
//
// The monitor never fails its caller. Every failure mode is logged and
// swallowed; requests proceed regardless.
type RootAdminMonitor struct {
	store    store.Store
	pinned   []string
	interval time.Duration

	// nextCheckAt holds the unix-nano timestamp before which Ensure is a
	// no-op. Races on it only cause redundant idempotent checks.
	nextCheckAt atomic.Int64
}

func NewRootAdminMonitor(st store.Store, pinned []string, interval time.Duration) *RootAdminMonitor {
	if interval <= 0 {
		interval = DefaultMonitorInterval
	}
	return &RootAdminMonitor{store: st, pinned: pinned, interval: interval}
}

// Ensure runs one throttled invariant check. The trigger string names the
// call site ("whoami", "housekeeping", ...) for log correlation only.
func (m *RootAdminMonitor) Ensure(ctx context.Context, trigger string) {
	now := time.Now()

	next := m.nextCheckAt.Load()
	if now.UnixNano() < next {
		return
	}
	if !m.nextCheckAt.CompareAndSwap(next, now.Add(m.interval).UnixNano()) {
		// Another goroutine claimed this window.
		return
	}

	l := slogx.FromContext(ctx).With("component", "rootadmin_monitor", "trigger", trigger)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), monitorQueryTimeout)
	defer cancel()

	count, err := m.store.Users().CountActiveRootAdmins(ctx)
	if err != nil {
		l.Error("root admin count failed", "err", err)
		return
	}

	if count > 0 {
		m.healPinnedDrift(ctx, l)
		return
	}

	if len(m.pinned) == 0 {
		l.Error("CRITICAL: zero active root admins and no pinned identities to restore")
		return
	}

	l.Error("zero active root admins detected, promoting pinned identities",
		"pinned_count", len(m.pinned))

	for _, id := range m.pinned {
		if err := m.store.Users().PromoteToRootAdmin(ctx, id); err != nil {
			l.Error("pinned identity promotion failed", "user_id", id, "err", err)
			continue
		}
		l.Warn("pinned identity promoted to root admin", "user_id", id)
	}

	// Promotion is not trusted blindly: every pinned write can fail, e.g.
	// when a pinned ID has no user record. Re-count and escalate if the
	// invariant is still broken.
	after, err := m.store.Users().CountActiveRootAdmins(ctx)
	if err != nil {
		l.Error("root admin recount after promotion failed", "err", err)
		return
	}
	if after == 0 {
		l.Error("CRITICAL: zero active root admins remain after promoting pinned identities",
			"pinned_count", len(m.pinned))
		return
	}
	l.Info("root admin invariant restored", "active_root_admins", after)
}

// healPinnedDrift re-asserts the admin flags on any pinned identity that has
// drifted, e.g. by direct database edits. Only runs when the invariant
// itself holds, so it writes nothing in the steady state.
func (m *RootAdminMonitor) healPinnedDrift(ctx context.Context, l *slog.Logger) {
	for _, id := range m.pinned {
		user, err := m.store.Users().GetUserByID(ctx, id)
		if err != nil {
			// A pinned ID with no user record is a config problem, not
			// something the monitor can fix.
			l.Warn("pinned identity lookup failed", "user_id", id, "err", err)
			continue
		}
		if pinnedIntact(user) {
			continue
		}
		if err := m.store.Users().PromoteToRootAdmin(ctx, id); err != nil {
			l.Error("pinned identity heal failed", "user_id", id, "err", err)
			continue
		}
		l.Warn("pinned identity flags healed", "user_id", id)
	}
}

func pinnedIntact(u domain.User) bool {
	return u.IsActive && u.IsAdmin && u.IsRootAdmin
}
