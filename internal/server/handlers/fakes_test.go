package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/serenolabs/sereno/internal/server/repository"
)

// In-memory fakes for the repository interfaces defined in this package.
// They mirror the PostgreSQL implementations' error contracts.

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]*repository.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*repository.User)}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, email string, passwordHash, salt []byte) (*repository.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.users[email]; ok {
		return nil, repository.ErrDuplicate
	}

	f.nextID++
	user := &repository.User{
		ID:           f.nextID,
		Email:        email,
		PasswordHash: passwordHash,
		Salt:         salt,
		CreatedAt:    time.Now(),
	}
	f.users[email] = user
	return user, nil
}

func (f *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*repository.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return user, nil
}

type fakeScriptRepo struct {
	mu      sync.Mutex
	nextID  int64
	scripts map[int64]repository.Script
}

func newFakeScriptRepo() *fakeScriptRepo {
	return &fakeScriptRepo{scripts: make(map[int64]repository.Script)}
}

func (f *fakeScriptRepo) CreateScript(_ context.Context, ownerID int64, title, message string, category *string) (*repository.Script, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	script := repository.Script{
		ID:        f.nextID,
		OwnerID:   &ownerID,
		Title:     title,
		Message:   message,
		Category:  category,
		CreatedAt: time.Now(),
	}
	f.scripts[script.ID] = script
	return &script, nil
}

func (f *fakeScriptRepo) ListScriptsByOwner(_ context.Context, ownerID int64) ([]repository.Script, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]repository.Script, 0)
	for _, s := range f.scripts {
		if s.OwnerID != nil && *s.OwnerID == ownerID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeScriptRepo) DeleteScript(_ context.Context, ownerID, scriptID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.scripts[scriptID]
	if !ok || s.OwnerID == nil || *s.OwnerID != ownerID {
		return repository.ErrNotFound
	}
	delete(f.scripts, scriptID)
	return nil
}

type fakeSettingRepo struct {
	mu       sync.Mutex
	nextID   int64
	settings map[int64]repository.Setting // keyed by owner ID
}

func newFakeSettingRepo() *fakeSettingRepo {
	return &fakeSettingRepo{settings: make(map[int64]repository.Setting)}
}

func (f *fakeSettingRepo) UpsertSetting(_ context.Context, ownerID int64, settings string) (*repository.Setting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	setting, ok := f.settings[ownerID]
	if !ok {
		f.nextID++
		setting = repository.Setting{ID: f.nextID, OwnerID: ownerID}
	}
	setting.Settings = settings
	setting.UpdatedAt = time.Now()
	f.settings[ownerID] = setting
	return &setting, nil
}

func (f *fakeSettingRepo) GetSettingByOwner(_ context.Context, ownerID int64) (*repository.Setting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	setting, ok := f.settings[ownerID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &setting, nil
}

func (f *fakeSettingRepo) rowCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.settings)
}

type fakeEventRepo struct {
	mu     sync.Mutex
	nextID int64
	events []repository.Event
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{}
}

func (f *fakeEventRepo) CreateEvent(_ context.Context, ownerID *int64, deviceID *string, eventType string, value *float64, recordedAt time.Time) (*repository.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	event := repository.Event{
		ID:         f.nextID,
		OwnerID:    ownerID,
		DeviceID:   deviceID,
		EventType:  eventType,
		Value:      value,
		RecordedAt: recordedAt,
	}
	f.events = append(f.events, event)
	return &event, nil
}

func (f *fakeEventRepo) ListEventsByOwner(_ context.Context, ownerID int64, limit int) ([]repository.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]repository.Event, 0)
	for i := len(f.events) - 1; i >= 0 && len(out) < limit; i-- {
		e := f.events[i]
		if e.OwnerID != nil && *e.OwnerID == ownerID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeBackupRepo struct {
	mu      sync.Mutex
	nextID  int64
	backups []repository.Backup
}

func newFakeBackupRepo() *fakeBackupRepo {
	return &fakeBackupRepo{}
}

func (f *fakeBackupRepo) CreateBackup(_ context.Context, ownerID int64, filename string, content []byte) (*repository.Backup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	backup := repository.Backup{
		ID:        f.nextID,
		OwnerID:   ownerID,
		Filename:  filename,
		Content:   append([]byte(nil), content...),
		CreatedAt: time.Now(),
	}
	f.backups = append(f.backups, backup)
	return &backup, nil
}

func (f *fakeBackupRepo) GetLatestBackup(_ context.Context, ownerID int64) (*repository.Backup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := len(f.backups) - 1; i >= 0; i-- {
		if f.backups[i].OwnerID == ownerID {
			backup := f.backups[i]
			return &backup, nil
		}
	}
	return nil, repository.ErrNotFound
}

// fakeTransactor runs the function directly; the in-memory fakes have no
// transactions to coordinate.
type fakeTransactor struct{}

func (fakeTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fakeCompleter returns fixed replies or a fixed error.
type fakeCompleter struct {
	reply string
	err   error
}

func (f *fakeCompleter) Complete(context.Context, string, string) (string, error) {
	return f.reply, f.err
}

func (f *fakeCompleter) Soften(context.Context, string) (string, error) {
	return f.reply, f.err
}
