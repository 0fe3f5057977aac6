package authorization

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectDrink   = "drink"
	ObjectOrder   = "order"
	ObjectBilling = "billing"
	ObjectStats   = "stats"
	ObjectMember  = "member"
)

const (
	ActionRead  = "read"
	ActionWrite = "write"
)

const (
	RoleMember    = "member"
	RoleTreasurer = "treasurer"
	RoleAdmin     = "admin"
	RoleSystem    = "system"
)

// Service decides whether a role may perform an action on an object.
type Service interface {
	Authorize(ctx context.Context, role string, object string, action string) error
}

type Params struct {
	fx.In

	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

var Module = fx.Module("authorization",
	fx.Provide(NewEnforcer),
	fx.Provide(NewService),
)

// NewEnforcer stores policies in the casbin_rule table and seeds the default role set.
func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, role string, object string, action string) error {
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		return ErrInvalidRole
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	allowed, err := s.enforcer.Enforce(subject(role), object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.log.Info("authorization denied",
			zap.String("role", role),
			zap.String("object", object),
			zap.String("action", action),
		)
		return ErrForbidden
	}
	return nil
}

func subject(role string) string {
	return fmt.Sprintf("role:%s", role)
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		// Members read everything and place their own orders.
		{subject(RoleMember), ObjectDrink, ActionRead},
		{subject(RoleMember), ObjectOrder, ActionRead},
		{subject(RoleMember), ObjectOrder, ActionWrite},
		{subject(RoleMember), ObjectStats, ActionRead},
		{subject(RoleMember), ObjectBilling, ActionRead},
		{subject(RoleMember), ObjectMember, ActionRead},

		// Treasurer runs billing and records payments.
		{subject(RoleTreasurer), ObjectBilling, ActionWrite},
		{subject(RoleTreasurer), ObjectDrink, ActionWrite},

		// Admin manages the catalogue.
		{subject(RoleAdmin), ObjectDrink, ActionWrite},
		{subject(RoleAdmin), ObjectMember, ActionWrite},
		{subject(RoleAdmin), ObjectBilling, ActionWrite},

		{subject(RoleSystem), ObjectBilling, ActionWrite},
		{subject(RoleSystem), ObjectStats, ActionRead},
	}
	for _, policy := range policies {
		has, err := enforcer.HasPolicy(policy)
		if err != nil {
			return err
		}
		if has {
			continue
		}
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}

	// Treasurer and admin inherit every member permission.
	groupings := [][]string{
		{subject(RoleTreasurer), subject(RoleMember)},
		{subject(RoleAdmin), subject(RoleMember)},
		{subject(RoleSystem), subject(RoleMember)},
	}
	for _, grouping := range groupings {
		has, err := enforcer.HasGroupingPolicy(grouping)
		if err != nil {
			return err
		}
		if has {
			continue
		}
		if _, err := enforcer.AddGroupingPolicy(grouping); err != nil {
			return err
		}
	}
	return nil
}
