package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/cooldown/internal/batch"
	"github.com/san-kum/cooldown/internal/config"
	"github.com/san-kum/cooldown/internal/samplelog"
)

func shortLog() *samplelog.Log {
	l := samplelog.New(samplelog.Sample{Elapsed: 0, Temperature: 293.15})
	l.Append(60, 280)
	l.Append(120, 270.5)
	return l
}

func TestCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSV(&buf, shortLog()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"elapsed_s", "hours", "temperature_k", "temperature_c"}, rows[0])
	assert.Equal(t, []string{"60", "0.0167", "280.000", "6.850"}, rows[2])
}

func TestJSON(t *testing.T) {
	res, err := batch.New().Run(context.Background(), config.Reference())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, res))

	var got Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, res.Log.Len(), len(got.Samples))
	assert.Equal(t, res.Totals.Steps, got.Totals.Steps)
	assert.Equal(t, "N2", got.Fluid.Name)
	assert.Contains(t, got.Metrics, "net_heat_mj")
}

func TestSVG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SVG(&buf, shortLog(), 400, 300, "#005faf"))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.Contains(t, out, `stroke="#005faf"`)
	assert.Contains(t, out, "Time (h)")
	assert.Equal(t, 2, strings.Count(out, " L"))
}

func TestSVGNeedsTwoSamples(t *testing.T) {
	var buf bytes.Buffer
	err := SVG(&buf, samplelog.New(samplelog.Sample{Temperature: 300}), 400, 300, "#000")
	assert.Error(t, err)
}

func TestSVGRejectsTinyCanvas(t *testing.T) {
	for _, size := range [][2]int{{100, 300}, {400, 90}, {0, 0}} {
		var buf bytes.Buffer
		err := SVG(&buf, shortLog(), size[0], size[1], "#000")
		assert.Error(t, err, "%dx%d", size[0], size[1])
		assert.Zero(t, buf.Len())
	}
}
