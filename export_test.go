package main

import (
	"bytes"
	"testing"

	"cmania/convert"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestExportChart(t *testing.T) {
	chart := &convert.Chart{
		ColumnCount: 4,
		Segments:    []convert.SpeedSegment{{Time: 1, Start: 0, Speed: 750}},
		Notes: []convert.Note{
			{Column: 2, Time: 1.5, Start: 375},
			{Column: 3, Time: 2.5, EndTime: 3.5, Hold: true, Start: 1125, End: 1875},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, exportChart(&buf, chart, "json"))
	assert.Contains(t, buf.String(), "\"column_count\": 4")
	assert.Contains(t, buf.String(), "\"speed_segments\"")
	assert.NotContains(t, buf.String(), "\"end_time\": 0")

	buf.Reset()
	require.NoError(t, exportChart(&buf, chart, "yml"))
	var back convert.Chart
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, *chart, back)

	assert.ErrorContains(t, exportChart(&buf, chart, "toml"), `unknown export format "toml"`)
}
