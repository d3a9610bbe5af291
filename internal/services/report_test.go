package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportHistory(t *testing.T) {
	f := seedViews(t)

	buf, filename, err := f.m.ExportHistory(context.Background())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filename, "gatepass_history_"))
	assert.True(t, strings.HasSuffix(filename, ".xlsx"))

	wb, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer wb.Close()

	assert.Equal(t, []string{historySheet, visitorsSheet}, wb.GetSheetList())

	rows, err := wb.GetRows(historySheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Pass ID", rows[0][0])

	exported := []string{rows[1][0], rows[2][0]}
	assert.ElementsMatch(t, []string{f.passIDs["bob-rejected"], f.passIDs["bob-done"]}, exported)

	for _, r := range rows[1:] {
		if r[0] == f.passIDs["bob-rejected"] {
			assert.Equal(t, "REJECTED", r[6])
			assert.Equal(t, "-", r[9])
		}
	}

	visitors, err := wb.GetRows(visitorsSheet)
	require.NoError(t, err)
	assert.Len(t, visitors, 3)
}

func TestExportHistory_Empty(t *testing.T) {
	m, _ := setupManager(t, okVerifier("ok"))

	buf, _, err := m.ExportHistory(context.Background())
	require.NoError(t, err)

	wb, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows(historySheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestExportHistory_Canceled(t *testing.T) {
	m, _ := setupManager(t, okVerifier("ok"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := m.ExportHistory(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
