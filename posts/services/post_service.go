// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/gofrs/uuid"
	"github.com/qolzam/forum/internal/database/interfaces"
	"github.com/qolzam/forum/internal/types"
	posterrors "github.com/qolzam/forum/posts/errors"
	"github.com/qolzam/forum/posts/models"
	"github.com/qolzam/forum/posts/repository"
)

// Listing limits
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	MaxTitleLength  = 300
	MaxBodyLength   = 40000
)

// PostService defines the post operations exposed over HTTP.
type PostService interface {
	CreatePost(ctx context.Context, user types.UserContext, req *models.CreatePostRequest) (*models.Post, error)
	GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error)
	DeletePost(ctx context.Context, user types.UserContext, id uuid.UUID) error
	ListPosts(ctx context.Context, query *models.PostQuery) (*models.PostsListResponse, error)
}

type postService struct {
	repo repository.PostRepository
	now  func() time.Time
}

// NewPostService creates a new post service
func NewPostService(repo repository.PostRepository) PostService {
	return &postService{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

func (s *postService) CreatePost(ctx context.Context, user types.UserContext, req *models.CreatePostRequest) (*models.Post, error) {
	if user.UserID == uuid.Nil {
		return nil, posterrors.ErrMissingUserContext
	}
	title := strings.TrimSpace(req.Title)
	if title == "" || len(title) > MaxTitleLength {
		return nil, fmt.Errorf("%w: title must be 1-%d characters", posterrors.ErrInvalidPostData, MaxTitleLength)
	}
	if len(req.Body) > MaxBodyLength {
		return nil, fmt.Errorf("%w: body exceeds %d characters", posterrors.ErrInvalidPostData, MaxBodyLength)
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("failed to generate post id: %w", err)
	}
	now := s.now()
	post := &models.Post{
		ObjectId:   id,
		AuthorID:   user.UserID,
		AuthorName: user.DisplayName,
		Title:      title,
		Body:       req.Body,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	post, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, interfaces.ErrNoDocuments) {
		return nil, posterrors.ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	if post.Deleted {
		return nil, posterrors.ErrPostNotFound
	}
	return post, nil
}

func (s *postService) DeletePost(ctx context.Context, user types.UserContext, id uuid.UUID) error {
	post, err := s.GetPost(ctx, id)
	if err != nil {
		return err
	}
	if post.AuthorID != user.UserID && !user.IsAdmin() {
		return posterrors.ErrPostOwnership
	}
	if err := s.repo.SoftDelete(ctx, id, s.now()); err != nil {
		if errors.Is(err, interfaces.ErrNoDocuments) {
			return posterrors.ErrPostNotFound
		}
		return err
	}
	return nil
}

func (s *postService) ListPosts(ctx context.Context, query *models.PostQuery) (*models.PostsListResponse, error) {
	sort := query.Sort
	switch sort {
	case "":
		sort = models.SortHot
	case models.SortHot, models.SortNew:
	default:
		return nil, fmt.Errorf("%w: %q, expected hot or new", posterrors.ErrInvalidSort, sort)
	}

	page, limit := normalizePage(query.Page, query.Limit)
	posts, err := s.repo.List(ctx, sort, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	return &models.PostsListResponse{Posts: posts, Page: page, Limit: limit}, nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}
