package service

import (
	"context"
	"fmt"
	"strings"

	"zawawiya-store/internal/apperror"
	"zawawiya-store/internal/dto"
	"zawawiya-store/internal/event"
	"zawawiya-store/internal/model"
	"zawawiya-store/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ReturnService interface {
	Create(ctx context.Context, userID uint, req *dto.CreateReturnRequest) (*model.Return, error)
	ListMine(ctx context.Context, userID uint) ([]*model.Return, error)
	GetMine(ctx context.Context, userID, returnID uint) (*model.Return, error)
	SubmitReturnShipment(ctx context.Context, userID, returnID uint, req *dto.ReturnShipmentRequest) (*model.Return, error)
	DeleteMine(ctx context.Context, userID, returnID uint) error

	List(ctx context.Context, filter *dto.AdminReturnFilter) ([]*model.Return, error)
	Get(ctx context.Context, returnID uint) (*model.Return, error)
	Update(ctx context.Context, returnID uint, req *dto.UpdateReturnRequest) (*model.Return, error)
	Delete(ctx context.Context, returnID uint) error
}

type returnServiceImpl struct {
	db         *gorm.DB
	log        *zap.Logger
	publisher  event.Publisher
	orderRepo  repository.OrderRepository
	returnRepo repository.ReturnRepository
}

func NewReturnService(
	db *gorm.DB,
	log *zap.Logger,
	publisher event.Publisher,
	orderRepo repository.OrderRepository,
	returnRepo repository.ReturnRepository,
) ReturnService {
	return &returnServiceImpl{
		db:         db,
		log:        log,
		publisher:  publisher,
		orderRepo:  orderRepo,
		returnRepo: returnRepo,
	}
}

func (s *returnServiceImpl) Create(ctx context.Context, userID uint, req *dto.CreateReturnRequest) (*model.Return, error) {
	kind, ok := model.ParseReturnKind(strings.ToUpper(strings.TrimSpace(req.Kind)))
	if !ok {
		return nil, apperror.InvalidRequest("kind must be REFUND or EXCHANGE")
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, apperror.InvalidRequest("reason is required")
	}

	ret := &model.Return{
		UserID: userID,
		Kind:   kind,
		Reason: reason,
		Status: model.ReturnFiled,
		Photos: []string{},
	}
	if d := strings.TrimSpace(req.Description); d != "" {
		ret.Description = &d
	}
	for _, p := range req.Photos {
		if p = strings.TrimSpace(p); p != "" {
			ret.Photos = append(ret.Photos, p)
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.FindForUser(ctx, tx, req.OrderID, userID)
		if err != nil {
			return lookupErr(err, "order not found")
		}
		if order.Status != model.OrderCompleted {
			return apperror.InvalidRequest("returns can only be filed for completed orders")
		}

		exists, err := s.returnRepo.ExistsForOrder(ctx, tx, order.ID)
		if err != nil {
			return fmt.Errorf("check existing return: %w", err)
		}
		if exists {
			return apperror.Conflict("a return was already filed for this order")
		}

		ret.OrderID = order.ID
		if err := s.returnRepo.Create(ctx, tx, ret); err != nil {
			if isDuplicate(err) {
				return apperror.Conflict("a return was already filed for this order")
			}
			return fmt.Errorf("create return: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishUpdated(ctx, ret)
	return ret, nil
}

func (s *returnServiceImpl) ListMine(ctx context.Context, userID uint) ([]*model.Return, error) {
	returns, err := s.returnRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list returns: %w", err)
	}

	return returns, nil
}

func (s *returnServiceImpl) GetMine(ctx context.Context, userID, returnID uint) (*model.Return, error) {
	ret, err := s.returnRepo.FindForUser(ctx, s.db, returnID, userID)
	if err != nil {
		return nil, lookupErr(err, "return not found")
	}

	return ret, nil
}

func (s *returnServiceImpl) SubmitReturnShipment(ctx context.Context, userID, returnID uint, req *dto.ReturnShipmentRequest) (*model.Return, error) {
	tracking := strings.TrimSpace(req.TrackingNumber)
	if tracking == "" {
		return nil, apperror.InvalidRequest("tracking number is required")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ret, err := s.returnRepo.FindForUser(ctx, tx, returnID, userID)
		if err != nil {
			return lookupErr(err, "return not found")
		}
		if !ret.Status.CanTransition(model.ReturnShippedBack) {
			return apperror.InvalidRequest("the return has not been approved for shipping back")
		}

		err = s.returnRepo.UpdateStatus(ctx, tx, ret.ID, ret.Status, model.ReturnShippedBack, map[string]interface{}{
			"return_tracking_number": tracking,
		})
		if err != nil {
			return raceErr(err, "return status changed, please reload")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ret, err := s.GetMine(ctx, userID, returnID)
	if err != nil {
		return nil, err
	}

	s.publishUpdated(ctx, ret)
	return ret, nil
}

func (s *returnServiceImpl) DeleteMine(ctx context.Context, userID, returnID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ret, err := s.returnRepo.FindForUser(ctx, tx, returnID, userID)
		if err != nil {
			return lookupErr(err, "return not found")
		}
		if ret.Status != model.ReturnFiled {
			return apperror.InvalidRequest("only returns that are still filed can be withdrawn")
		}

		if err := s.returnRepo.Delete(ctx, tx, ret.ID); err != nil {
			return lookupErr(err, "return not found")
		}
		return nil
	})
}

func (s *returnServiceImpl) List(ctx context.Context, filter *dto.AdminReturnFilter) ([]*model.Return, error) {
	id, ok := parseIDQuery(filter.Query)
	if !ok {
		return []*model.Return{}, nil
	}

	f := repository.ReturnFilter{Query: id}
	if filter.Status != "" {
		status, ok := model.ParseReturnStatus(strings.ToUpper(filter.Status))
		if !ok {
			return nil, apperror.InvalidRequest("unknown return status")
		}
		f.Status = status
	}
	if filter.Kind != "" {
		kind, ok := model.ParseReturnKind(strings.ToUpper(filter.Kind))
		if !ok {
			return nil, apperror.InvalidRequest("unknown return kind")
		}
		f.Kind = kind
	}

	from, to, err := parseDayRange(filter.From, filter.To)
	if err != nil {
		return nil, err
	}
	f.From, f.To = from, to

	returns, err := s.returnRepo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list returns: %w", err)
	}

	return returns, nil
}

func (s *returnServiceImpl) Get(ctx context.Context, returnID uint) (*model.Return, error) {
	ret, err := s.returnRepo.FindByID(ctx, s.db, returnID)
	if err != nil {
		return nil, lookupErr(err, "return not found")
	}

	return ret, nil
}

// Update applies an admin decision. A rejected return always keeps a
// non-empty note, either sent with the request or already on the return.
func (s *returnServiceImpl) Update(ctx context.Context, returnID uint, req *dto.UpdateReturnRequest) (*model.Return, error) {
	var note *string
	if req.AdminNote != nil {
		n := strings.TrimSpace(*req.AdminNote)
		note = &n
	}

	var target model.ReturnStatus
	if req.Status != "" {
		st, ok := model.ParseReturnStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
		if !ok {
			return nil, apperror.InvalidRequest("unknown return status")
		}
		target = st
	}
	if target == "" && note == nil {
		return nil, apperror.InvalidRequest("nothing to update")
	}

	changed := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ret, err := s.returnRepo.FindByID(ctx, tx, returnID)
		if err != nil {
			return lookupErr(err, "return not found")
		}

		fields := map[string]interface{}{}
		if note != nil {
			fields["admin_note"] = *note
		}

		result := target
		if result == "" {
			result = ret.Status
		}
		if result == model.ReturnRejected {
			effective := ""
			if note != nil {
				effective = *note
			} else if ret.AdminNote != nil {
				effective = strings.TrimSpace(*ret.AdminNote)
			}
			if effective == "" {
				return apperror.InvalidRequest("a rejected return needs an admin note")
			}
		}

		if result == ret.Status {
			if len(fields) == 0 {
				return nil
			}
			return s.returnRepo.Update(ctx, tx, ret.ID, fields)
		}

		if !ret.Status.CanTransition(target) {
			return apperror.InvalidRequest(fmt.Sprintf("cannot change return status from %s to %s", ret.Status, target))
		}

		if err := s.returnRepo.UpdateStatus(ctx, tx, ret.ID, ret.Status, target, fields); err != nil {
			return raceErr(err, "return status changed, please reload")
		}
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	ret, err := s.Get(ctx, returnID)
	if err != nil {
		return nil, err
	}

	if changed {
		s.publishUpdated(ctx, ret)
		s.log.Info("return status updated", zap.Uint("return_id", ret.ID), zap.String("status", string(ret.Status)))
	}
	return ret, nil
}

func (s *returnServiceImpl) Delete(ctx context.Context, returnID uint) error {
	if err := s.returnRepo.Delete(ctx, s.db, returnID); err != nil {
		return lookupErr(err, "return not found")
	}

	return nil
}

func (s *returnServiceImpl) publishUpdated(ctx context.Context, ret *model.Return) {
	s.publisher.Publish(ctx, event.ReturnUpdated, orderKey(ret.OrderID), event.ReturnPayload{
		ReturnID: ret.ID,
		OrderID:  ret.OrderID,
		Kind:     string(ret.Kind),
		Status:   string(ret.Status),
	})
}
