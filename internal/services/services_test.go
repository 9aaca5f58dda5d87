package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/smartparking/backend/internal/db"
	"github.com/smartparking/backend/internal/hub"
	"github.com/smartparking/backend/internal/notify"
	"github.com/smartparking/backend/internal/repository"
)

type recordingBus struct {
	mu   sync.Mutex
	msgs []hub.Message
}

func (b *recordingBus) Broadcast(msg hub.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.msgs = append(b.msgs, msg)
}

func (b *recordingBus) types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.msgs))
	for _, m := range b.msgs {
		out = append(out, m.Type)
	}
	return out
}

func (b *recordingBus) last() hub.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.msgs[len(b.msgs)-1]
}

type fakeNotifier struct {
	enabled bool
	fail    error
	// hang blocks each send until its context ends.
	hang bool

	mu    sync.Mutex
	calls int
}

func (n *fakeNotifier) Enabled() bool { return n.enabled }

func (n *fakeNotifier) SendAlert(ctx context.Context, alertType, message string) notify.Result {
	n.mu.Lock()
	n.calls++
	n.mu.Unlock()
	res := notify.Result{To: "ops@example.com", Subject: "[Smart Parking] Alert: " + alertType, Body: message}
	if n.hang {
		<-ctx.Done()
		res.Err = ctx.Err()
		return res
	}
	if n.fail != nil {
		res.Err = n.fail
		return res
	}
	res.Success = true
	res.MessageID = "<abc@example.com>"
	return res
}

type fakeLink struct {
	open     bool
	commands []string
}

func (l *fakeLink) IsOpen() bool { return l.open }

func (l *fakeLink) WriteCommand(cmd string) error {
	l.commands = append(l.commands, cmd)
	return nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gormDB, err := db.Open(db.Config{DatabaseURL: "sqlite::memory:"})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))
	t.Cleanup(func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gormDB
}

type authFixture struct {
	repos *repository.Repositories
	bus   *recordingBus
	auth  *AuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	repos := repository.New(newTestDB(t))
	bus := &recordingBus{}
	return &authFixture{
		repos: repos,
		bus:   bus,
		auth:  NewAuthService(repos.Accounts, repos.LoginAttempts, bus, AuthConfig{JWTSecret: "test-secret", JWTExpiry: time.Hour}),
	}
}

type monitorFixture struct {
	repos    *repository.Repositories
	bus      *recordingBus
	notifier *fakeNotifier
	link     *fakeLink
	monitor  *MonitorService
}

func newMonitorFixture(t *testing.T) *monitorFixture {
	t.Helper()
	repos := repository.New(newTestDB(t))
	f := &monitorFixture{
		repos:    repos,
		bus:      &recordingBus{},
		notifier: &fakeNotifier{enabled: true},
		link:     &fakeLink{open: true},
	}
	f.monitor = NewMonitorService(MonitorDeps{
		GateEvents: repos.GateEvents,
		Alerts:     repos.Alerts,
		Snapshots:  repos.Snapshots,
		EmailLogs:  repos.EmailLogs,
		Bus:        f.bus,
		Notifier:   f.notifier,
		Link:       f.link,
		Clients:    hub.NewHub(),
	})
	return f
}
