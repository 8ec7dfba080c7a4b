package tasks

import (
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// User is the account model. Email is stored lowercase and kept unique by the
// database, not by application-level checks.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id,omitempty"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// NormalizeEmail lowercases and trims the email before it is persisted or
// looked up so the unique index sees one canonical form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Task is the to-do item model. Every task belongs to exactly one user.
type Task struct {
	bun.BaseModel `bun:"table:tasks,alias:tsk"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id,omitempty"`
	UserID        int64      `bun:"user_id,notnull" json:"user_id,omitempty"`
	User          *User      `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	Title         string     `bun:"title,notnull" json:"title"`
	Description   *string    `bun:"description" json:"description"`
	Done          bool       `bun:"done,notnull,default:false" json:"done"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// TaskPatch carries the fields of a partial task update. Nil means leave the
// column untouched.
type TaskPatch struct {
	Title       *string
	Description *string
	Done        *bool
}

// Empty reports whether the patch would change nothing
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Done == nil
}
