package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusReportLine(t *testing.T) {
	r := StatusReport{Mode: "heat", Temperature: 68.4, Setpoint: 70}
	assert.Equal(t, "heat,68.4,70", r.Line())

	r = StatusReport{Mode: "off", Temperature: 71.96, Setpoint: 72}
	assert.Equal(t, "off,72.0,72", r.Line())
}

func TestParseStatusReport(t *testing.T) {
	r, err := ParseStatusReport("cool,75.2,72\n")
	require.NoError(t, err)
	assert.Equal(t, StatusReport{Mode: "cool", Temperature: 75.2, Setpoint: 72}, r)

	for _, bad := range []string{"", "heat,68.4", "heat,warm,70", "heat,68.4,seventy"} {
		_, err := ParseStatusReport(bad)
		assert.Error(t, err, bad)
	}
}
