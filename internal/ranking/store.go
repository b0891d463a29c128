package ranking

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("ranking record not found")

// Store 元数据持久化能力
type Store interface {
	// InsertRecord 插入一条新记录
	InsertRecord(ctx context.Context, r *Ranking) error
	// IncrementUpvote 对 id 的 upvotes 加一，返回受影响行数
	IncrementUpvote(ctx context.Context, id string) (int64, error)
}

// =============================================================================
// 🗄️ GORM 实现
// =============================================================================

// GormStore 基于 GORM 的 Store
type GormStore struct {
	db *gorm.DB
}

// NewGormStore 创建 GormStore
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// InsertRecord 插入记录，upvotes 为 0 时使用初始票数
func (s *GormStore) InsertRecord(ctx context.Context, r *Ranking) error {
	if r.Upvotes == 0 {
		r.Upvotes = DefaultUpvotes
	}
	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		return fmt.Errorf("insert %s: %w", r.PictureID, err)
	}
	return nil
}

// IncrementUpvote 执行 upvotes = upvotes + 1
func (s *GormStore) IncrementUpvote(ctx context.Context, id string) (int64, error) {
	result := s.db.WithContext(ctx).
		Model(&Ranking{}).
		Where(pictureIDEq(id)).
		UpdateColumn("upvotes", gorm.Expr("upvotes + ?", 1))
	if result.Error != nil {
		return 0, fmt.Errorf("increment upvote %s: %w", id, result.Error)
	}
	return result.RowsAffected, nil
}

// Get 按标识符查询
func (s *GormStore) Get(ctx context.Context, id string) (*Ranking, error) {
	var r Ranking
	err := s.db.WithContext(ctx).Where(pictureIDEq(id)).Take(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", id, err)
	}
	return &r, nil
}

// Top 按票数降序返回前 limit 条，票数相同按标识符升序
func (s *GormStore) Top(ctx context.Context, limit int) ([]Ranking, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []Ranking
	err := s.db.WithContext(ctx).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "upvotes"}, Desc: true}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "pictureID"}}).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("top rankings: %w", err)
	}
	return rows, nil
}

// pictureIDEq 生成带引号的列条件，保持 pictureID 大小写在各方言下一致
func pictureIDEq(id string) clause.Eq {
	return clause.Eq{Column: clause.Column{Name: "pictureID"}, Value: id}
}
