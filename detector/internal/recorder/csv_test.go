package recorder

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ranwatch-systems/ranwatch/detector/internal/models"
)

func readAll(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestRecordWritesHeaderAndRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture", "kpm.csv")
	metrics := []string{"CQI", "RSRP"}

	r, err := OpenCSV(path, metrics)
	require.NoError(t, err)

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, r.Record([]models.TelemetryRecord{
		{Timestamp: at, AgentID: "g1", EntityID: "7", Metrics: map[string]float64{"CQI": 12, "RSRP": -85.5}},
		{Timestamp: at, AgentID: "g1", EntityID: "8", Metrics: map[string]float64{"CQI": 9}},
	}))
	require.NoError(t, r.Close())

	rows := readAll(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Timestamp", "E2AgentID", "UE_ID", "CQI", "RSRP"}, rows[0])
	assert.Equal(t, []string{"2026-03-01T12:00:00Z", "g1", "7", "12", "-85.5"}, rows[1])
	// Missing metric records as 0.
	assert.Equal(t, []string{"2026-03-01T12:00:00Z", "g1", "8", "9", "0"}, rows[2])
}

func TestReopenAppendsWithoutSecondHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kpm.csv")
	metrics := []string{"CQI"}
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	r, err := OpenCSV(path, metrics)
	require.NoError(t, err)
	require.NoError(t, r.Record([]models.TelemetryRecord{
		{Timestamp: at, AgentID: "g1", EntityID: "1", Metrics: map[string]float64{"CQI": 10}},
	}))
	require.NoError(t, r.Close())

	r, err = OpenCSV(path, metrics)
	require.NoError(t, err)
	require.NoError(t, r.Record([]models.TelemetryRecord{
		{Timestamp: at, AgentID: "g1", EntityID: "2", Metrics: map[string]float64{"CQI": 11}},
	}))
	require.NoError(t, r.Close())

	rows := readAll(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, "Timestamp", rows[0][0])
	assert.Equal(t, "1", rows[1][2])
	assert.Equal(t, "2", rows[2][2])
}
