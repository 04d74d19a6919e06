package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"zawawiya-store/internal/config"
	"zawawiya-store/internal/dto"
)

type RegionLevel string

const (
	RegionProvinces RegionLevel = "provinces"
	RegionRegencies RegionLevel = "regencies"
	RegionDistricts RegionLevel = "districts"
	RegionVillages  RegionLevel = "villages"
)

type RegionClient interface {
	Fetch(ctx context.Context, level RegionLevel, parentCode string) ([]dto.Region, error)
}

type regionClientImpl struct {
	httpClient *http.Client
	baseURL    string
}

func NewRegionClient(cfg *config.Region) RegionClient {
	return &regionClientImpl{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}
}

func (c *regionClientImpl) Fetch(ctx context.Context, level RegionLevel, parentCode string) ([]dto.Region, error) {
	endpoint := c.baseURL + "/" + string(level)
	if level != RegionProvinces {
		endpoint += "/" + url.PathEscape(parentCode)
	}
	endpoint += ".json"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read region response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("region api returned %d", resp.StatusCode)
	}

	return decodeRegions(body)
}

// decodeRegions accepts both a bare list and a {"data": [...]} wrapper.
func decodeRegions(body []byte) ([]dto.Region, error) {
	var list []dto.Region
	if err := json.Unmarshal(body, &list); err == nil {
		return list, nil
	}

	var wrapped struct {
		Data []dto.Region `json:"data"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("decode region response: %w", err)
	}
	if wrapped.Data == nil {
		wrapped.Data = []dto.Region{}
	}

	return wrapped.Data, nil
}
