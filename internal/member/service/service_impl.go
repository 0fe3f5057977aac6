package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tapledger/internal/clock"
	"github.com/smallbiznis/tapledger/internal/member/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("member.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateMemberRequest) (domain.Member, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Member{}, domain.ErrInvalidName
	}

	now := s.clock.Now()
	member := domain.Member{
		ID:        s.genID.Generate(),
		Name:      name,
		Avatar:    strings.TrimSpace(req.Avatar),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, s.db, &member); err != nil {
		return domain.Member{}, err
	}
	return member, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Member, error) {
	memberID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || memberID == 0 {
		return domain.Member{}, domain.ErrInvalidID
	}
	member, err := s.repo.FindByID(ctx, s.db, memberID)
	if err != nil {
		return domain.Member{}, err
	}
	if member == nil {
		return domain.Member{}, domain.ErrNotFound
	}
	return *member, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Member, error) {
	return s.repo.List(ctx, s.db)
}
