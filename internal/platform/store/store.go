package store

import (
	"context"
	"errors"
	"time"

	"github.com/lecternhq/lectern/internal/platform/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers implement this.
// It exposes sub-repositories to keep concerns tidy and testable.
type Store interface {
	Users() Users
	Content() Content
	Classes() Classes
	DictionarySets() DictionarySets
	Documents() Documents

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsername is used during password login.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// ListUsers returns all users ordered by creation date (newest first).
	ListUsers(ctx context.Context) ([]domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateUserFlags applies a partial update of role/active/admin fields
	// and bumps updated_at. Nil fields are left unchanged.
	UpdateUserFlags(ctx context.Context, userID string, upd domain.UserFlagsUpdate) error

	// UpdatePasswordHash sets the password_hash (argon2) and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error

	// CountActiveRootAdmins counts users with is_active=1 and is_root_admin=1.
	CountActiveRootAdmins(ctx context.Context) (int, error)

	// PromoteToRootAdmin unconditionally sets is_active=1, is_admin=1 and
	// is_root_admin=1 for the given user. It never demotes and ignores the
	// current role; this is a recovery write, not an ordinary mutation.
	PromoteToRootAdmin(ctx context.Context, userID string) error
}

type Content interface {
	GetContentItem(ctx context.Context, id string) (domain.ContentItem, error)
	ListContentItems(ctx context.Context) ([]domain.ContentItem, error)
	CreateContentItem(ctx context.Context, item domain.ContentItem) error
	UpdateContentItem(ctx context.Context, item domain.ContentItem) error
	UpdateContentStatus(ctx context.Context, id string, status domain.ContentStatus) error
	DeleteContentItem(ctx context.Context, id string) error
}

type Classes interface {
	GetClass(ctx context.Context, id string) (domain.Class, error)
	ListClasses(ctx context.Context) ([]domain.Class, error)
	CreateClass(ctx context.Context, c domain.Class) error
	UpdateClass(ctx context.Context, c domain.Class) error
	DeleteClass(ctx context.Context, id string) error
}

type DictionarySets interface {
	GetDictionarySet(ctx context.Context, id string) (domain.DictionarySet, error)
	ListDictionarySets(ctx context.Context) ([]domain.DictionarySet, error)
	CreateDictionarySet(ctx context.Context, s domain.DictionarySet) error
	UpdateDictionarySet(ctx context.Context, s domain.DictionarySet) error
	DeleteDictionarySet(ctx context.Context, id string) error
}

type Documents interface {
	GetDocument(ctx context.Context, id string) (domain.Document, error)
	ListDocuments(ctx context.Context) ([]domain.Document, error)
	CreateDocument(ctx context.Context, d domain.Document) error
	UpdateDocumentStatus(ctx context.Context, id string, status domain.DocumentStatus) error

	// DeleteStaleFailedDocuments removes failed import records older than
	// the cutoff. Housekeeping only.
	DeleteStaleFailedDocuments(ctx context.Context, olderThan time.Time) error
}
