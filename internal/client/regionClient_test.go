package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"zawawiya-store/internal/config"
	"zawawiya-store/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRegions(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []dto.Region
	}{
		{"bare list", `[{"code":"32","name":"JAWA BARAT"}]`, []dto.Region{{Code: "32", Name: "JAWA BARAT"}}},
		{"wrapped", `{"data":[{"code":"3273","name":"KOTA BANDUNG"}]}`, []dto.Region{{Code: "3273", Name: "KOTA BANDUNG"}}},
		{"wrapped without data", `{}`, []dto.Region{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeRegions([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := decodeRegions([]byte(`"nope"`))
	assert.Error(t, err)
}

func TestRegionClient_Fetch(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		switch r.URL.Path {
		case "/provinces.json":
			_, _ = w.Write([]byte(`[{"code":"32","name":"JAWA BARAT"}]`))
		case "/districts/3273.json":
			_, _ = w.Write([]byte(`{"data":[{"code":"3273010","name":"SUKASARI"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewRegionClient(&config.Region{BaseURL: srv.URL})
	ctx := context.Background()

	provinces, err := c.Fetch(ctx, RegionProvinces, "")
	require.NoError(t, err)
	assert.Equal(t, []dto.Region{{Code: "32", Name: "JAWA BARAT"}}, provinces)

	districts, err := c.Fetch(ctx, RegionDistricts, "3273")
	require.NoError(t, err)
	assert.Equal(t, "SUKASARI", districts[0].Name)

	_, err = c.Fetch(ctx, RegionVillages, "9999")
	assert.ErrorContains(t, err, "404")

	assert.Equal(t, []string{"/provinces.json", "/districts/3273.json", "/villages/9999.json"}, paths)
}
