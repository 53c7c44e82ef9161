package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AnomalyLens/internal/domain/models"
	domrepo "AnomalyLens/internal/domain/repository"
	applogger "AnomalyLens/pkg/logger"
)

func TestBuildParams(t *testing.T) {
	p, err := buildParams(predictFlags{
		strategy:      "7",
		symbolMapping: `{"VIX":"VIX","PRIMARY_SYMBOL":"QQQ","MXUS":"MXUS"}`,
		interval:      "6mo",
		model:         "svm",
	})
	require.NoError(t, err)
	assert.Equal(t, "QQQ", p.Primary)
	assert.Equal(t, domrepo.Interval6mo, p.Interval)
	require.Len(t, p.Instruments, 3)
	assert.Equal(t, "VIX", p.Instruments[0].Name)
	assert.Equal(t, "MXUS", p.Instruments[2].Name)
}

func TestBuildParams_PrimaryFlagWins(t *testing.T) {
	p, err := buildParams(predictFlags{
		strategy:      "2",
		symbolMapping: `{"VIX":"VIX","PRIMARY_SYMBOL":"QQQ"}`,
		interval:      "1y",
		primary:       "SPY",
	})
	require.NoError(t, err)
	assert.Equal(t, "SPY", p.Primary)
}

func TestBuildParams_Invalid(t *testing.T) {
	_, err := buildParams(predictFlags{symbolMapping: `["VIX"]`, interval: "1y"})
	assert.Equal(t, models.KindInvalidArgument, models.KindOf(err))

	_, err = buildParams(predictFlags{symbolMapping: `{}`, interval: "2w"})
	assert.Equal(t, models.KindInvalidArgument, models.KindOf(err))
}

func TestWriteError(t *testing.T) {
	var buf bytes.Buffer
	writeError(&buf, models.ErrUnknownStrategy("42"))

	var rec map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "Invalid strategy: 42", rec["error"])
	assert.Equal(t, "UnknownStrategy", rec["type"])

	buf.Reset()
	writeError(&buf, errors.New("boom"))
	assert.Contains(t, buf.String(), `"type":"InternalError"`)
}

func TestWriteResult(t *testing.T) {
	var out, errOut bytes.Buffer
	rec := &models.ResultRecord{Timestamps: []string{"2024-03-04 00:00:00"}, Predictions: []float64{1}}
	assert.Equal(t, 0, writeResult(&out, &errOut, applogger.Nop(), rec))
	assert.Contains(t, out.String(), `"2024-03-04 00:00:00"`)
	assert.Empty(t, errOut.String())

	out.Reset()
	rec.MarketStats.CurrentPrice = models.Float(math.NaN())
	assert.Equal(t, 1, writeResult(&out, &errOut, applogger.Nop(), rec))
	assert.Empty(t, out.String())

	var failure map[string]string
	require.NoError(t, json.Unmarshal(errOut.Bytes(), &failure))
	assert.Contains(t, failure["error"], "encode result")
	assert.Equal(t, "InternalError", failure["type"])
}

func TestStrategiesCommand(t *testing.T) {
	var buf bytes.Buffer
	strategiesCmd.SetOut(&buf)
	require.NoError(t, strategiesCmd.RunE(strategiesCmd, nil))

	var infos []models.StrategyInfo
	require.NoError(t, json.Unmarshal(buf.Bytes(), &infos))
	assert.Len(t, infos, 25)
	assert.Equal(t, "all_features", infos[0].Folder)
}
