// Package forum 社区论坛的帖子与评论存储
package forum

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	_ "modernc.org/sqlite"
)

var (
	// ErrPostNotFound 帖子不存在
	ErrPostNotFound = errors.New("forum post not found")
	// ErrInvalidCategory 分类不在 Categories 中
	ErrInvalidCategory = errors.New("invalid forum category")
	// ErrPageOutOfRange 页码超过 MaxPage
	ErrPageOutOfRange = errors.New("forum page out of range")
)

// Categories 允许的帖子分类
var Categories = []string{"정책", "행사", "발표", "일반"}

// DefaultCategory 未指定分类时使用
const DefaultCategory = "일반"

// MaxPage 分页上限
const MaxPage = 10000

// ValidCategory 判断分类是否合法
func ValidCategory(category string) bool {
	return lo.Contains(Categories, category)
}

const schema = `
CREATE TABLE IF NOT EXISTS posts (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	content    TEXT NOT NULL,
	author     TEXT NOT NULL,
	category   TEXT NOT NULL DEFAULT '일반',
	views      INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_posts_category_created ON posts(category, created_at DESC);
CREATE TABLE IF NOT EXISTS comments (
	id         TEXT PRIMARY KEY,
	post_id    TEXT NOT NULL REFERENCES posts(id),
	content    TEXT NOT NULL,
	author     TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_comments_post ON comments(post_id, created_at);
`

// Post 帖子
type Post struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Author       string    `json:"author"`
	Category     string    `json:"category"`
	Views        int       `json:"views"`
	CommentCount int       `json:"comment_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// Comment 评论
type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

// NewPost 新帖子
type NewPost struct {
	Title    string
	Content  string
	Author   string
	Category string
}

// Page 分页结果
type Page struct {
	Posts    []Post `json:"posts"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Total    int    `json:"total"`
}

// Store 基于 SQLite 的存储
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open 打开数据库并建表
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open forum db: %w", err)
	}
	// SQLite 单写者
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate forum db: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close 关闭数据库
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping 检查连接
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreatePost 发帖
func (s *Store) CreatePost(ctx context.Context, in NewPost) (*Post, error) {
	p := &Post{
		ID:        uuid.NewString(),
		Title:     in.Title,
		Content:   in.Content,
		Author:    in.Author,
		Category:  in.Category,
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
	}
	if p.Category == "" {
		p.Category = DefaultCategory
	}
	if !ValidCategory(p.Category) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, p.Category)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO posts (id, title, content, author, category, views, created_at) VALUES (?, ?, ?, ?, ?, 0, ?)`,
		p.ID, p.Title, p.Content, p.Author, p.Category, p.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}
	return p, nil
}

// GetPost 读取帖子并累加浏览数
func (s *Store) GetPost(ctx context.Context, id string) (*Post, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE posts SET views = views + 1 WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("update views: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrPostNotFound
	}

	row := s.db.QueryRowContext(ctx, selectPosts+` WHERE p.id = ?`, id)
	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPostNotFound
	}
	return p, err
}

const selectPosts = `SELECT p.id, p.title, p.content, p.author, p.category, p.views, p.created_at,
	(SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id) FROM posts p`

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(row scanner) (*Post, error) {
	var (
		p       Post
		created int64
	)
	if err := row.Scan(&p.ID, &p.Title, &p.Content, &p.Author, &p.Category, &p.Views, &created, &p.CommentCount); err != nil {
		return nil, err
	}
	p.CreatedAt = time.UnixMilli(created).UTC()
	return &p, nil
}

// ListPosts 按时间倒序分页，category 为空则不过滤
func (s *Store) ListPosts(ctx context.Context, category string, page, pageSize int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		return nil, fmt.Errorf("%w: %d", ErrPageOutOfRange, page)
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if category != "" && !ValidCategory(category) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}

	var (
		where strings.Builder
		args  []any
	)
	if category != "" {
		where.WriteString(` WHERE p.category = ?`)
		args = append(args, category)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts p`+where.String(), args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}

	query := selectPosts + where.String() + ` ORDER BY p.created_at DESC, p.id LIMIT ? OFFSET ?`
	rows, err := s.db.QueryContext(ctx, query, append(args, pageSize, (page-1)*pageSize)...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]Post, 0, pageSize)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &Page{Posts: posts, Page: page, PageSize: pageSize, Total: total}, nil
}

// DeletePost 删除帖子及其评论
func (s *Store) DeletePost(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE post_id = ?`, id); err != nil {
		return fmt.Errorf("delete comments: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrPostNotFound
	}
	return tx.Commit()
}

// CreateComment 评论
func (s *Store) CreateComment(ctx context.Context, postID, content, author string) (*Comment, error) {
	if err := s.exists(ctx, postID); err != nil {
		return nil, err
	}

	c := &Comment{
		ID:        uuid.NewString(),
		PostID:    postID,
		Content:   content,
		Author:    author,
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO comments (id, post_id, content, author, created_at) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.PostID, c.Content, c.Author, c.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	return c, nil
}

// ListComments 按时间正序列出评论
func (s *Store) ListComments(ctx context.Context, postID string) ([]Comment, error) {
	if err := s.exists(ctx, postID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, post_id, content, author, created_at FROM comments WHERE post_id = ? ORDER BY created_at, id`, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := []Comment{}
	for rows.Next() {
		var (
			c       Comment
			created int64
		)
		if err := rows.Scan(&c.ID, &c.PostID, &c.Content, &c.Author, &created); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		c.CreatedAt = time.UnixMilli(created).UTC()
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (s *Store) exists(ctx context.Context, postID string) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM posts WHERE id = ?`, postID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrPostNotFound
	}
	return err
}
