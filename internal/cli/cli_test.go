package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aristath/cropwatch/internal/domain"
	"github.com/aristath/cropwatch/internal/modules/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := NewRootCommand(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestCatalogCommand_RoundTrips(t *testing.T) {
	out, err := execute(t, "catalog")
	require.NoError(t, err)

	assert.Contains(t, out, "name: Wheat")
	assert.Contains(t, out, "base_price: 2200")

	parsed, err := catalog.Parse(strings.NewReader(out))
	require.NoError(t, err)
	def := catalog.Default()
	assert.Equal(t, def.Crops(), parsed.Crops())
	assert.Equal(t, def.Regions(), parsed.Regions())
	assert.Equal(t, def.Markets(), parsed.Markets())
}

func TestSnapshotCommand_JSONDeterministicUnderSeed(t *testing.T) {
	run := func() domain.DashboardSnapshot {
		out, err := execute(t, "snapshot", "--crop", "wheat", "--region", "haryana", "--seed", "42", "--month", "6", "--format", "json")
		require.NoError(t, err)

		var snap domain.DashboardSnapshot
		require.NoError(t, json.Unmarshal([]byte(out), &snap))
		return snap
	}

	first, second := run(), run()

	assert.Equal(t, "Wheat", first.Crop.Name)
	assert.Equal(t, domain.Region("Haryana"), first.Region)
	assert.Equal(t, 5, first.ReferenceMonth)
	assert.Len(t, first.Series, 12)
	assert.Len(t, first.Quotes, 5)

	assert.Equal(t, first.Series, second.Series)
	assert.Equal(t, first.Quotes, second.Quotes)
	assert.Equal(t, first.PriceChangePercent, second.PriceChangePercent)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestSnapshotCommand_Text(t *testing.T) {
	out, err := execute(t, "snapshot", "--crop", "Onion", "--month", "12", "--seed", "1")
	require.NoError(t, err)

	assert.Contains(t, out, "Onion · Punjab · Dec (₹/kg)")
	assert.Contains(t, out, "Best time:      Now (Prices are stable currently)")
	assert.Contains(t, out, "Markets (5 tracked)")
	assert.Contains(t, out, "APMC")
	assert.NotContains(t, out, "predicted")
}

func TestSnapshotCommand_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cotton.xlsx")

	out, err := execute(t, "snapshot", "--crop", "Cotton", "--seed", "3", "--format", "xlsx", "--output", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Trend", "Markets", "Summary"}, f.GetSheetList())
}

func TestSnapshotCommand_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
	}{
		{"unknown crop", []string{"snapshot", "--crop", "Barley"}, catalog.ErrUnknownCrop},
		{"unknown region", []string{"snapshot", "--region", "Atlantis"}, catalog.ErrUnknownRegion},
		{"month out of range", []string{"snapshot", "--month", "13"}, nil},
		{"unknown format", []string{"snapshot", "--format", "csv"}, nil},
		{"xlsx without output", []string{"snapshot", "--format", "xlsx"}, nil},
		{"missing catalog", []string{"snapshot", "--catalog", "/nonexistent/catalog.yaml"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}
