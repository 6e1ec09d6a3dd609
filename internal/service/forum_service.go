package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"gogwan-api/internal/errors"
	"gogwan-api/internal/forum"
	"gogwan-api/internal/logger"
	"gogwan-api/internal/types"

	"go.uber.org/zap"
)

// ForumStore 论坛存储
type ForumStore interface {
	CreatePost(ctx context.Context, in forum.NewPost) (*forum.Post, error)
	GetPost(ctx context.Context, id string) (*forum.Post, error)
	ListPosts(ctx context.Context, category string, page, pageSize int) (*forum.Page, error)
	DeletePost(ctx context.Context, id string) error
	CreateComment(ctx context.Context, postID, content, author string) (*forum.Comment, error)
	ListComments(ctx context.Context, postID string) ([]forum.Comment, error)
}

// ForumService 论坛服务接口
type ForumService interface {
	ListPosts(ctx context.Context, category string, page int) (*types.PostListResponse, error)
	GetPost(ctx context.Context, id string) (*types.PostResponse, error)
	CreatePost(ctx context.Context, req *types.CreatePostRequest) (*types.PostResponse, error)
	DeletePost(ctx context.Context, id string) error
	ListComments(ctx context.Context, postID string) (*types.CommentListResponse, error)
	CreateComment(ctx context.Context, postID string, req *types.CreateCommentRequest) (*types.CommentResponse, error)
}

type forumService struct {
	store    ForumStore
	pageSize int
}

// NewForumService 创建论坛服务
func NewForumService(store ForumStore, pageSize int) ForumService {
	return &forumService{store: store, pageSize: pageSize}
}

func (s *forumService) ListPosts(ctx context.Context, category string, page int) (*types.PostListResponse, error) {
	p, err := s.store.ListPosts(ctx, strings.TrimSpace(category), page, s.pageSize)
	if err != nil {
		return nil, s.mapErr(err, "")
	}
	return &types.PostListResponse{Success: true, Page: p}, nil
}

func (s *forumService) GetPost(ctx context.Context, id string) (*types.PostResponse, error) {
	p, err := s.store.GetPost(ctx, id)
	if err != nil {
		return nil, s.mapErr(err, id)
	}
	return &types.PostResponse{Success: true, Post: p}, nil
}

func (s *forumService) CreatePost(ctx context.Context, req *types.CreatePostRequest) (*types.PostResponse, error) {
	in := forum.NewPost{
		Title:    strings.TrimSpace(req.Title),
		Content:  strings.TrimSpace(req.Content),
		Author:   strings.TrimSpace(req.Author),
		Category: strings.TrimSpace(req.Category),
	}
	if in.Title == "" || in.Content == "" || in.Author == "" {
		return nil, errors.NewInvalidInputError("제목, 내용, 작성자는 필수입니다", nil)
	}

	p, err := s.store.CreatePost(ctx, in)
	if err != nil {
		return nil, s.mapErr(err, "")
	}
	logger.Info("新帖子", zap.String("id", p.ID), zap.String("category", p.Category))
	return &types.PostResponse{Success: true, Post: p}, nil
}

func (s *forumService) DeletePost(ctx context.Context, id string) error {
	if err := s.store.DeletePost(ctx, id); err != nil {
		return s.mapErr(err, id)
	}
	logger.Info("删除帖子", zap.String("id", id))
	return nil
}

func (s *forumService) ListComments(ctx context.Context, postID string) (*types.CommentListResponse, error) {
	comments, err := s.store.ListComments(ctx, postID)
	if err != nil {
		return nil, s.mapErr(err, postID)
	}
	return &types.CommentListResponse{Success: true, Comments: comments}, nil
}

func (s *forumService) CreateComment(ctx context.Context, postID string, req *types.CreateCommentRequest) (*types.CommentResponse, error) {
	content, author := strings.TrimSpace(req.Content), strings.TrimSpace(req.Author)
	if content == "" || author == "" {
		return nil, errors.NewInvalidInputError("내용과 작성자는 필수입니다", nil)
	}

	c, err := s.store.CreateComment(ctx, postID, content, author)
	if err != nil {
		return nil, s.mapErr(err, postID)
	}
	return &types.CommentResponse{Success: true, Comment: c}, nil
}

func (s *forumService) mapErr(err error, id string) error {
	switch {
	case stderrors.Is(err, forum.ErrPostNotFound):
		return errors.NewPostNotFoundError(id)
	case stderrors.Is(err, forum.ErrInvalidCategory):
		return errors.NewInvalidInputError("분류는 정책, 행사, 발표, 일반 중 하나여야 합니다", err)
	case stderrors.Is(err, forum.ErrPageOutOfRange):
		return errors.NewInvalidInputError(fmt.Sprintf("page 파라미터는 %d 이하여야 합니다", forum.MaxPage), err)
	}
	logger.Error("论坛存储错误", zap.Error(err))
	return errors.NewInternalError(err)
}
