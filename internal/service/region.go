package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"zawawiya-store/internal/apperror"
	"zawawiya-store/internal/cache"
	"zawawiya-store/internal/client"
	"zawawiya-store/internal/dto"

	"go.uber.org/zap"
)

type RegionService interface {
	List(ctx context.Context, level client.RegionLevel, parentCode string) ([]dto.Region, error)
}

type regionServiceImpl struct {
	client client.RegionClient
	cache  cache.Store
	ttl    time.Duration
	log    *zap.Logger
}

func NewRegionService(c client.RegionClient, store cache.Store, ttl time.Duration, log *zap.Logger) RegionService {
	return &regionServiceImpl{client: c, cache: store, ttl: ttl, log: log}
}

func validRegionCode(code string) bool {
	if code == "" || len(code) > 32 {
		return false
	}
	for _, r := range code {
		if (r < '0' || r > '9') && r != '.' {
			return false
		}
	}
	return true
}

func (s *regionServiceImpl) List(ctx context.Context, level client.RegionLevel, parentCode string) ([]dto.Region, error) {
	if level != client.RegionProvinces && !validRegionCode(parentCode) {
		return nil, apperror.InvalidRequest("invalid region code")
	}

	key := fmt.Sprintf("region:%s:%s", level, parentCode)
	if b, err := s.cache.Get(ctx, key); err == nil {
		var regions []dto.Region
		if err := json.Unmarshal(b, &regions); err == nil {
			return regions, nil
		}
	} else if !errors.Is(err, cache.ErrMiss) {
		s.log.Warn("region cache read failed", zap.String("key", key), zap.Error(err))
	}

	regions, err := s.client.Fetch(ctx, level, parentCode)
	if err != nil {
		return nil, apperror.Upstream("region service is unavailable", err)
	}

	if b, err := json.Marshal(regions); err == nil {
		if err := s.cache.Set(ctx, key, b, s.ttl); err != nil {
			s.log.Warn("region cache write failed", zap.String("key", key), zap.Error(err))
		}
	}

	return regions, nil
}
