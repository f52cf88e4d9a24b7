package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// User mirrors an identity issued by the external auth provider. The ID is
// the token subject; rows are upserted from the profile endpoint.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username  string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	AvatarURL *string   `gorm:"type:text" json:"avatar_url,omitempty"`
	Bio       *string   `gorm:"type:text" json:"bio,omitempty"`
	Role      string    `gorm:"size:20;not null;default:user" json:"role"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsStaff reports whether the user may moderate other users' content.
func (u *User) IsStaff() bool {
	return u.Role == RoleAdmin || u.Role == RoleModerator
}
