package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	slogGorm "github.com/orandin/slog-gorm"
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"seventvbot/internal/domain"
)

// GuildEmote is one persisted override row, unique per (guild, name).
type GuildEmote struct {
	ID        uint   `gorm:"primarykey"`
	GuildID   string `gorm:"index:idx_guild_name,unique;not null"`
	EmoteName string `gorm:"index:idx_guild_name,unique;not null"`
	EmoteID   string `gorm:"not null"`
}

type Store struct {
	db *gorm.DB
}

// Open connects to a sqlite:// , sqlite=, postgres://, postgresql:// or
// postgres= url and migrates the schema.
func Open(dburl string) (*Store, error) {
	const errMsg = "Store.Open"

	var dial gorm.Dialector

	switch {
	case strings.HasPrefix(dburl, "sqlite://"):
		dial = sqlite.Open(sqlitePath(strings.TrimPrefix(dburl, "sqlite://")))
	case strings.HasPrefix(dburl, "sqlite="):
		dial = sqlite.Open(sqlitePath(strings.TrimPrefix(dburl, "sqlite=")))
	case strings.HasPrefix(dburl, "postgresql://"), strings.HasPrefix(dburl, "postgres://"):
		dial = postgres.Open(dburl)
	case strings.HasPrefix(dburl, "postgres="):
		dial = postgres.Open(strings.TrimPrefix(dburl, "postgres="))
	default:
		return nil, errors.Wrap(errors.New("unsupported database url"), errMsg)
	}

	db, err := gorm.Open(dial, &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 slogGorm.New(),
	})
	if err != nil {
		return nil, errors.Wrap(err, errMsg)
	}

	return NewStore(db)
}

func NewStore(db *gorm.DB) (*Store, error) {
	err := db.AutoMigrate(&GuildEmote{})
	if err != nil {
		return nil, errors.Wrap(err, "Store.NewStore")
	}

	return &Store{db: db}, nil
}

// sqlitePath creates the parent directory of a file database.
func sqlitePath(path string) string {
	if !strings.Contains(path, ":memory:") {
		_ = os.MkdirAll(filepath.Dir(path), os.ModePerm)
	}

	return path
}

// FindAll returns every override in insertion order.
func (s *Store) FindAll(ctx context.Context) ([]domain.Override, error) {
	const errMsg = "Store.FindAll"

	var rows []GuildEmote

	err := s.db.WithContext(ctx).Order("id").Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, errMsg)
	}

	res := make([]domain.Override, 0, len(rows))
	for _, r := range rows {
		res = append(res, domain.Override{
			GuildID:   r.GuildID,
			EmoteName: r.EmoteName,
			EmoteID:   r.EmoteID,
		})
	}

	return res, nil
}

// Upsert removes the guild's row for name, then inserts the new one.
func (s *Store) Upsert(ctx context.Context, guildID, name, emoteID string) error {
	return s.UpsertAll(ctx, guildID, []domain.Emote{{ID: emoteID, Name: name}})
}

// UpsertAll applies Upsert for every emote in one transaction: either all
// rows are written or none are.
func (s *Store) UpsertAll(ctx context.Context, guildID string, emotes []domain.Emote) error {
	const errMsg = "Store.UpsertAll"

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, e := range emotes {
			err := tx.Where("guild_id = ? AND emote_name = ?", guildID, e.Name).
				Delete(&GuildEmote{}).Error
			if err != nil {
				return err
			}

			err = tx.Create(&GuildEmote{
				GuildID:   guildID,
				EmoteName: e.Name,
				EmoteID:   e.ID,
			}).Error
			if err != nil {
				return err
			}
		}

		return nil
	})

	return errors.Wrap(err, errMsg)
}
