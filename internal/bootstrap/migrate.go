package bootstrap

import (
	"fmt"

	"anoa.com/wanderhub/internal/entity"
	"gorm.io/gorm"
)

// indexes are constraints gorm tags cannot express.
var indexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_user_friends_pair
		ON user_friends (LEAST(user_id, friend_id), GREATEST(user_id, friend_id))`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_ratings_user_place
		ON ratings (user_id, place_id) WHERE place_id IS NOT NULL`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_ratings_user_event
		ON ratings (user_id, event_id) WHERE event_id IS NOT NULL`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_likes_user_place
		ON likes (user_id, place_id) WHERE place_id IS NOT NULL`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_likes_user_event
		ON likes (user_id, event_id) WHERE event_id IS NOT NULL`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_likes_user_comment
		ON likes (user_id, comment_id) WHERE comment_id IS NOT NULL`,
}

var checks = map[string]string{
	"chk_messages_body":      `ALTER TABLE messages ADD CONSTRAINT chk_messages_body CHECK (content IS NOT NULL OR media_url IS NOT NULL)`,
	"chk_friends_not_self":   `ALTER TABLE user_friends ADD CONSTRAINT chk_friends_not_self CHECK (user_id <> friend_id)`,
	"chk_ratings_one_target": `ALTER TABLE ratings ADD CONSTRAINT chk_ratings_one_target CHECK ((place_id IS NULL) <> (event_id IS NULL))`,
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&entity.User{},
		&entity.Place{},
		&entity.PlaceMedia{},
		&entity.Event{},
		&entity.Comment{},
		&entity.Ad{},
		&entity.FriendEdge{},
		&entity.Message{},
		&entity.Rating{},
		&entity.Like{},
		&entity.Notification{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	for _, stmt := range indexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}

	for name, stmt := range checks {
		var count int64
		if err := db.Raw("SELECT COUNT(*) FROM pg_constraint WHERE conname = ?", name).Scan(&count).Error; err != nil {
			return fmt.Errorf("lookup constraint %s: %w", name, err)
		}
		if count > 0 {
			continue
		}
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("add constraint %s: %w", name, err)
		}
	}

	return nil
}

// SeedAdmin promotes the given username to admin when the account exists.
// Users come from the auth provider, so there is nothing to create here.
func SeedAdmin(db *gorm.DB, username string) error {
	if username == "" {
		return nil
	}
	return db.Model(&entity.User{}).
		Where("username = ? AND role <> ?", username, entity.RoleAdmin).
		Update("role", entity.RoleAdmin).Error
}
