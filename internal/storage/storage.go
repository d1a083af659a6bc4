package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/LJTian/NewsBrief/internal/config"
	"github.com/LJTian/NewsBrief/internal/logger"
	"github.com/LJTian/NewsBrief/internal/processor"
)

// RetentionCeiling 归档保留条数的目标上限
const RetentionCeiling = 100

const (
	titleMaxRunes = 500
	urlMaxRunes   = 1000

	cacheGenKey  = "archive:gen"
	listCacheTTL = 5 * time.Minute
)

// Article 归档新闻，展示层按 created_at 倒序读取
type Article struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:500;not null" json:"title"`
	Summary     string     `gorm:"type:text;not null" json:"summary"`
	URL         string     `gorm:"size:1000;not null" json:"url"`
	Image       string     `gorm:"size:1000" json:"image"`
	PublishedAt *time.Time `json:"publishedAt"` // 目前各数据源均不提供，恒为空
	CreatedAt   time.Time  `gorm:"index" json:"createdAt"`
}

func (Article) TableName() string {
	return "news_articles"
}

type Store struct {
	DB    *gorm.DB
	Redis *redis.Client

	// Ceiling 为 0 时使用 RetentionCeiling
	Ceiling int
	Now     func() time.Time

	log *zap.Logger
}

// Open 按驱动打开数据库；sqlite 会自动创建所在目录
func Open(driver, dsn string) (*gorm.DB, error) {
	gcfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)}

	switch driver {
	case config.DriverPostgres:
		return gorm.Open(postgres.Open(dsn), gcfg)
	case config.DriverSQLite:
		if dir := filepath.Dir(dsn); !strings.HasPrefix(dsn, "file:") && dsn != ":memory:" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
		return gorm.Open(sqlite.Open(dsn), gcfg)
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
}

// NewRedis addr 为空时返回 nil，读路径直接查库
func NewRedis(addr string, log *zap.Logger) *redis.Client {
	if addr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.OrNop(log).Warn("redis ping failed", zap.String("addr", addr), zap.Error(err))
	}
	return rdb
}

func NewStore(db *gorm.DB, rdb *redis.Client, log *zap.Logger) (*Store, error) {
	if db == nil {
		return nil, errors.New("storage: db is nil")
	}
	if err := db.AutoMigrate(&Article{}); err != nil {
		return nil, fmt.Errorf("migrate news_articles: %w", err)
	}
	return &Store{
		DB:      db,
		Redis:   rdb,
		Ceiling: RetentionCeiling,
		Now:     config.Now,
		log:     logger.OrNop(log),
	}, nil
}

// Append 在同一事务内先按写入前的总数淘汰最旧记录，再插入本批新闻。
// 只有写入前总数严格大于上限才淘汰，因此一批较大的新闻可以让归档暂时超过上限，
// 由下一轮写入时再淘汰。
func (s *Store) Append(ctx context.Context, batch []processor.SummarizedArticle) (int, error) {
	ceiling := s.Ceiling
	if ceiling <= 0 {
		ceiling = RetentionCeiling
	}
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	// sqlite 以带偏移量的文本存储时间并按字符串排序，统一 UTC 才能保证时间序
	now = now.UTC()

	var evicted int
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var total int64
		if err := tx.Model(&Article{}).Count(&total).Error; err != nil {
			return fmt.Errorf("count archive: %w", err)
		}

		if excess := total - int64(ceiling); excess > 0 {
			var ids []uint
			if err := tx.Model(&Article{}).
				Order("created_at ASC").Order("id ASC").
				Limit(int(excess)).
				Pluck("id", &ids).Error; err != nil {
				return fmt.Errorf("select oldest: %w", err)
			}
			if len(ids) > 0 {
				if err := tx.Where("id IN ?", ids).Delete(&Article{}).Error; err != nil {
					return fmt.Errorf("evict oldest: %w", err)
				}
			}
			evicted = len(ids)
		}

		if len(batch) == 0 {
			return nil
		}
		rows := make([]Article, 0, len(batch))
		for _, it := range batch {
			rows = append(rows, Article{
				Title:     truncateRunesDB(toValidUTF8(it.Title), titleMaxRunes),
				Summary:   toValidUTF8(it.Summary),
				URL:       truncateRunesDB(toValidUTF8(it.URL), urlMaxRunes),
				Image:     truncateRunesDB(toValidUTF8(it.Image), urlMaxRunes),
				CreatedAt: now,
			})
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("insert batch: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.log.Info("archive updated", zap.Int("inserted", len(batch)), zap.Int("evicted", evicted))
	s.bumpCacheGeneration(ctx)
	return len(batch), nil
}

// Count 当前归档条数
func (s *Store) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := s.DB.WithContext(ctx).Model(&Article{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// Latest 按 created_at 倒序返回最近的归档新闻；limit <= 0 表示全部。
// 结果在 Redis 中缓存 5 分钟，每次 Append 后切换缓存代数使旧缓存失效。
func (s *Store) Latest(ctx context.Context, limit int) ([]Article, error) {
	if limit < 0 {
		limit = 0
	}
	cacheKey := s.listCacheKey(ctx, limit)

	if s.Redis != nil {
		if bs, err := s.Redis.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached []Article
			if err := json.Unmarshal(bs, &cached); err == nil {
				return cached, nil
			}
		}
	}

	var list []Article
	q := s.DB.WithContext(ctx).Model(&Article{}).Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&list).Error; err != nil {
		return nil, err
	}

	if s.Redis != nil && len(list) > 0 {
		if bs, err := json.Marshal(list); err == nil {
			_ = s.Redis.Set(ctx, cacheKey, bs, listCacheTTL).Err()
		}
	}
	return list, nil
}

func (s *Store) listCacheKey(ctx context.Context, limit int) string {
	gen := "0"
	if s.Redis != nil {
		if v, err := s.Redis.Get(ctx, cacheGenKey).Result(); err == nil {
			gen = v
		}
	}
	return fmt.Sprintf("archive:latest:%s:%d", gen, limit)
}

// 不做按 key 通配删除：递增代数后旧 key 自然过期
func (s *Store) bumpCacheGeneration(ctx context.Context) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Incr(ctx, cacheGenKey).Err(); err != nil {
		s.log.Warn("bump cache generation failed", zap.Error(err))
	}
}

// toValidUTF8 将字符串规范为合法 UTF-8，避免 PostgreSQL invalid byte sequence 错误
func toValidUTF8(s string) string {
	return strings.ToValidUTF8(s, "\uFFFD")
}

// truncateRunesDB 去掉首尾空白后按 rune 数截断，确保不会超过数据库字段长度
func truncateRunesDB(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit])
}
