package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/rushteam/catalogrec/core"
)

// SQLSource 是基于 SQLite（modernc.org/sqlite，纯 Go）的数据源。
// 交互表与目录服务一致：每个 (user, item) 一行，liked / bookmarked / rating 各自独立。
type SQLSource struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS catalog_items (
	id                TEXT PRIMARY KEY,
	title             TEXT NOT NULL,
	description       TEXT NOT NULL DEFAULT '',
	tags              TEXT NOT NULL DEFAULT '[]',
	category          TEXT NOT NULL DEFAULT '',
	popularity_score  REAL NOT NULL DEFAULT 0,
	rating            REAL NOT NULL DEFAULT 0,
	number_of_ratings INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS user_interactions (
	user_id    TEXT NOT NULL,
	item_id    TEXT NOT NULL,
	liked      INTEGER NOT NULL DEFAULT 0,
	bookmarked INTEGER NOT NULL DEFAULT 0,
	rating     INTEGER,
	viewed_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (user_id, item_id)
);

CREATE TABLE IF NOT EXISTS catalog_meta (
	key   TEXT PRIMARY KEY,
	value INTEGER NOT NULL
);

INSERT OR IGNORE INTO catalog_meta (key, value) VALUES ('version', 0);
`

// OpenSQLSource 打开数据库并执行迁移。dsn 为 ":memory:" 时只保留一个连接，
// 否则每个连接都会看到各自独立的内存库。
func OpenSQLSource(ctx context.Context, dsn string) (*SQLSource, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("catalog: open sqlite: %w", err)
	}
	if dsn == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	s := NewSQLSource(db)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLSource 复用已有连接，调用方负责 Migrate。
func NewSQLSource(db *sql.DB) *SQLSource {
	return &SQLSource{db: db}
}

// Migrate 创建表结构，可重复执行。
func (s *SQLSource) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("catalog: migrate: %w", err)
	}
	return nil
}

func (s *SQLSource) Close() error {
	return s.db.Close()
}

func (s *SQLSource) Items(ctx context.Context) ([]core.CatalogItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, tags, category, popularity_score, rating, number_of_ratings
		FROM catalog_items ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("catalog: query items: %w", err)
	}
	defer rows.Close()

	var items []core.CatalogItem
	for rows.Next() {
		var (
			it   core.CatalogItem
			tags string
		)
		if err := rows.Scan(&it.ID, &it.Title, &it.Description, &tags, &it.Category,
			&it.PopularityScore, &it.Rating, &it.NumberOfRatings); err != nil {
			return nil, fmt.Errorf("catalog: scan item: %w", err)
		}
		if err := json.Unmarshal([]byte(tags), &it.Tags); err != nil {
			return nil, fmt.Errorf("catalog: decode tags of %s: %w", it.ID, err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *SQLSource) Interactions(ctx context.Context, userID string) ([]core.InteractionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT item_id, liked, bookmarked, rating IS NOT NULL
		FROM user_interactions WHERE user_id = ? ORDER BY viewed_at, rowid`, userID)
	if err != nil {
		return nil, fmt.Errorf("catalog: query interactions: %w", err)
	}
	defer rows.Close()

	var records []core.InteractionRecord
	for rows.Next() {
		var (
			itemID                   string
			liked, bookmarked, rated bool
		)
		if err := rows.Scan(&itemID, &liked, &bookmarked, &rated); err != nil {
			return nil, fmt.Errorf("catalog: scan interaction: %w", err)
		}
		if liked {
			records = append(records, core.InteractionRecord{UserID: userID, ItemID: itemID, Kind: core.InteractionLike})
		}
		if bookmarked {
			records = append(records, core.InteractionRecord{UserID: userID, ItemID: itemID, Kind: core.InteractionBookmark})
		}
		if rated {
			records = append(records, core.InteractionRecord{UserID: userID, ItemID: itemID, Kind: core.InteractionRating})
		}
	}
	return records, rows.Err()
}

func (s *SQLSource) Version(ctx context.Context) (uint64, error) {
	var v uint64
	err := s.db.QueryRowContext(ctx, `SELECT value FROM catalog_meta WHERE key = 'version'`).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("catalog: query version: %w", err)
	}
	return v, nil
}

// UpsertItem 新增或更新物品并递增目录版本。更新不改变语料位置。
func (s *SQLSource) UpsertItem(ctx context.Context, item core.CatalogItem) error {
	tags := item.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return err
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO catalog_items (id, title, description, tags, category, popularity_score, rating, number_of_ratings)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				title = excluded.title,
				description = excluded.description,
				tags = excluded.tags,
				category = excluded.category,
				popularity_score = excluded.popularity_score,
				rating = excluded.rating,
				number_of_ratings = excluded.number_of_ratings`,
			item.ID, item.Title, item.Description, string(tagsJSON), item.Category,
			item.PopularityScore, item.Rating, item.NumberOfRatings)
		if err != nil {
			return fmt.Errorf("catalog: upsert item: %w", err)
		}
		return bumpVersion(ctx, tx)
	})
}

// DeleteItem 删除物品。用户交互不级联删除，保留为失效引用。
func (s *SQLSource) DeleteItem(ctx context.Context, id string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM catalog_items WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("catalog: delete item: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil
		}
		return bumpVersion(ctx, tx)
	})
}

// SetInteraction 设置或清除 like / bookmark 标记。rating 请使用 SetRating。
func (s *SQLSource) SetInteraction(ctx context.Context, rec core.InteractionRecord, on bool) error {
	var column string
	switch rec.Kind {
	case core.InteractionLike:
		column = "liked"
	case core.InteractionBookmark:
		column = "bookmarked"
	default:
		return core.NewDomainError(core.ModuleCatalog, core.ErrorCodeInvalidInput,
			fmt.Sprintf("catalog: unsupported interaction kind %q", rec.Kind))
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_interactions (user_id, item_id, `+column+`) VALUES (?, ?, ?)
		ON CONFLICT(user_id, item_id) DO UPDATE SET `+column+` = excluded.`+column,
		rec.UserID, rec.ItemID, on)
	if err != nil {
		return fmt.Errorf("catalog: set interaction: %w", err)
	}
	return nil
}

// SetRating 记录用户评分（1..5）。
func (s *SQLSource) SetRating(ctx context.Context, userID, itemID string, rating int) error {
	if rating < 1 || rating > 5 {
		return core.NewDomainError(core.ModuleCatalog, core.ErrorCodeInvalidInput, "catalog: rating must be within 1..5")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_interactions (user_id, item_id, rating) VALUES (?, ?, ?)
		ON CONFLICT(user_id, item_id) DO UPDATE SET rating = excluded.rating`,
		userID, itemID, rating)
	if err != nil {
		return fmt.Errorf("catalog: set rating: %w", err)
	}
	return nil
}

func (s *SQLSource) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("catalog: begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func bumpVersion(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, `UPDATE catalog_meta SET value = value + 1 WHERE key = 'version'`); err != nil {
		return fmt.Errorf("catalog: bump version: %w", err)
	}
	return nil
}

var _ Source = (*SQLSource)(nil)
