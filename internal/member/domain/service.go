package domain

import (
	"context"
	"errors"
)

type CreateMemberRequest struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

type Service interface {
	Create(context.Context, CreateMemberRequest) (Member, error)
	Get(ctx context.Context, id string) (Member, error)
	List(context.Context) ([]Member, error)
}

var (
	ErrInvalidID   = errors.New("invalid_id")
	ErrInvalidName = errors.New("invalid_name")
	ErrNotFound    = errors.New("not_found")
)
