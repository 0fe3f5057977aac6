package service

import (
	"context"
	"math"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/tapledger/internal/clock"
	memberdomain "github.com/smallbiznis/tapledger/internal/member/domain"
	"github.com/smallbiznis/tapledger/internal/observability/metrics"
	"github.com/smallbiznis/tapledger/internal/order/domain"
	"github.com/smallbiznis/tapledger/pkg/db/option"
	"github.com/smallbiznis/tapledger/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       domain.Repository
	Drinks     repository.Repository[domain.Drink]
	MemberRepo memberdomain.Repository
	Metrics    *metrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       domain.Repository
	drinks     repository.Repository[domain.Drink]
	memberRepo memberdomain.Repository
	metrics    *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("order.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		drinks:     p.Drinks,
		memberRepo: p.MemberRepo,
		metrics:    p.Metrics,
	}
}

func (s *Service) PlaceOrder(ctx context.Context, req domain.PlaceOrderRequest) (domain.Order, error) {
	if req.Quantity <= 0 || req.Quantity > domain.MaxOrderQuantity {
		return domain.Order{}, domain.ErrInvalidQuantity
	}
	memberID, err := parseID(req.MemberID, domain.ErrInvalidMember)
	if err != nil {
		return domain.Order{}, err
	}
	drinkID, err := parseID(req.DrinkID, domain.ErrInvalidDrink)
	if err != nil {
		return domain.Order{}, err
	}

	var order domain.Order
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		member, err := s.memberRepo.FindByID(ctx, tx, memberID)
		if err != nil {
			return err
		}
		if member == nil {
			return domain.ErrMemberNotFound
		}

		drink, err := s.repo.DrinkByID(ctx, tx, drinkID)
		if err != nil {
			return err
		}
		if drink == nil {
			return domain.ErrDrinkNotFound
		}
		if !drink.Available {
			return domain.ErrDrinkUnavailable
		}
		if drink.PriceCents > 0 && req.Quantity > math.MaxInt64/drink.PriceCents {
			return domain.ErrInvalidQuantity
		}

		order = domain.Order{
			ID:             s.genID.Generate(),
			MemberID:       member.ID,
			MemberName:     member.Name,
			DrinkID:        drink.ID,
			DrinkName:      drink.Name,
			UnitVolume:     drink.VolumeLitres,
			UnitPriceCents: drink.PriceCents,
			Quantity:       req.Quantity,
			TotalCents:     req.Quantity * drink.PriceCents,
			BookingFor:     domain.NormalizeBookingFor(req.BookingFor),
			CreatedAt:      s.clock.Now().UTC(),
		}
		return s.repo.InsertOrder(ctx, tx, &order)
	})
	if err != nil {
		return domain.Order{}, err
	}

	s.metrics.RecordOrderPlaced(ctx, strings.ToLower(string(order.SubjectType())))
	s.log.Info("order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("member_id", order.MemberID.String()),
		zap.String("drink", order.DrinkName),
		zap.Int64("quantity", order.Quantity),
		zap.Bool("event", order.IsEventOrder()),
	)
	return order, nil
}

func (s *Service) DeleteUnbilledOrder(ctx context.Context, memberID string, orderID string) error {
	id, err := parseID(orderID, domain.ErrInvalidID)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.repo.FindOrderByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrOrderNotFound
		}
		if strings.TrimSpace(memberID) != "" && order.MemberID.String() != strings.TrimSpace(memberID) {
			return domain.ErrForbidden
		}
		if order.Billed {
			return domain.ErrOrderBilled
		}

		affected, err := s.repo.DeleteUnbilledOrder(ctx, tx, id)
		if err != nil {
			return err
		}
		if affected == 0 {
			// Billed between the read and the delete.
			return domain.ErrOrderBilled
		}
		return nil
	})
}

func (s *Service) ListDrinks(ctx context.Context, req domain.ListDrinksRequest) ([]domain.Drink, error) {
	query := &domain.Drink{}
	if req.OnlyAvailable {
		query.Available = true
	}
	items, err := s.drinks.Find(ctx, query, option.WithSortBy(option.WithQuerySortBy("name", "asc", map[string]bool{"name": true})))
	if err != nil {
		return nil, err
	}

	drinks := make([]domain.Drink, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		drinks = append(drinks, *item)
	}
	return drinks, nil
}

func (s *Service) CreateDrink(ctx context.Context, req domain.CreateDrinkRequest) (domain.Drink, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Drink{}, domain.ErrInvalidName
	}
	if req.PriceCents < 0 {
		return domain.Drink{}, domain.ErrInvalidPrice
	}
	volume := decimal.NullDecimal{}
	if req.VolumeLitres != nil {
		if !req.VolumeLitres.IsPositive() {
			return domain.Drink{}, domain.ErrInvalidVolume
		}
		volume = decimal.NewNullDecimal(*req.VolumeLitres)
	}

	existing, err := s.drinks.FindOne(ctx, &domain.Drink{Name: name})
	if err != nil {
		return domain.Drink{}, err
	}
	if existing != nil {
		return domain.Drink{}, domain.ErrDrinkExists
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}
	now := s.clock.Now().UTC()
	drink := domain.Drink{
		ID:           s.genID.Generate(),
		Name:         name,
		VolumeLitres: volume,
		PriceCents:   req.PriceCents,
		Available:    available,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.drinks.Create(ctx, &drink); err != nil {
		return domain.Drink{}, err
	}
	return drink, nil
}

// UpdateDrinkPrice changes the catalogue price. Orders keep the price they
// were placed at.
func (s *Service) UpdateDrinkPrice(ctx context.Context, req domain.UpdateDrinkPriceRequest) (domain.Drink, error) {
	id, err := parseID(req.DrinkID, domain.ErrInvalidDrink)
	if err != nil {
		return domain.Drink{}, err
	}
	if req.PriceCents < 0 {
		return domain.Drink{}, domain.ErrInvalidPrice
	}

	drink, err := s.repo.DrinkByID(ctx, s.db, id)
	if err != nil {
		return domain.Drink{}, err
	}
	if drink == nil {
		return domain.Drink{}, domain.ErrDrinkNotFound
	}

	now := s.clock.Now().UTC()
	if err := s.drinks.Update(ctx, id, map[string]any{
		"price_cents": req.PriceCents,
		"updated_at":  now,
	}); err != nil {
		return domain.Drink{}, err
	}

	s.log.Info("drink price updated",
		zap.String("drink_id", id.String()),
		zap.Int64("old_price_cents", drink.PriceCents),
		zap.Int64("new_price_cents", req.PriceCents),
	)
	drink.PriceCents = req.PriceCents
	drink.UpdatedAt = now
	return *drink, nil
}

func parseID(value string, invalid error) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, invalid
	}
	return id, nil
}
