package integration_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awmpietro/entry-decision-engine/internal/app"
	"github.com/awmpietro/entry-decision-engine/internal/decision"
	"github.com/awmpietro/entry-decision-engine/internal/loader"
)

func newFileService(t *testing.T) *app.Service {
	t.Helper()
	rb, err := decision.DefaultRulebook()
	require.NoError(t, err)
	return app.NewService(decision.NewEngine(rb, decision.WithClock(fixedClock)))
}

func TestFiles_JSONAndYAMLAgree(t *testing.T) {
	svc := newFileService(t)
	ctx := context.Background()

	fromJSON, err := svc.DecideFiles(ctx, "../loader/testdata/entries.json", "../loader/testdata/watchlist.json", "../loader/testdata/countries.json", false)
	require.NoError(t, err)
	fromYAML, err := svc.DecideFiles(ctx, "../loader/testdata/entries.yaml", "../loader/testdata/watchlist.yaml", "../loader/testdata/countries.yaml", false)
	require.NoError(t, err)

	want := []decision.Decision{
		decision.Accept,
		decision.Secondary,
		decision.Quarantine,
		decision.Reject,
		decision.Reject,
	}
	assert.Equal(t, want, fromJSON.Decisions)
	assert.Equal(t, want, fromYAML.Decisions)
	assert.NotEqual(t, fromJSON.BatchID, fromYAML.BatchID)
}

func TestFiles_MixedFormats(t *testing.T) {
	svc := newFileService(t)

	res, err := svc.DecideFiles(context.Background(), "../loader/testdata/entries.yaml", "../loader/testdata/watchlist.json", "../loader/testdata/countries.yaml", false)
	require.NoError(t, err)
	assert.Len(t, res.Decisions, 5)
}

func TestFiles_MissingResource(t *testing.T) {
	svc := newFileService(t)

	_, err := svc.DecideFiles(context.Background(), "../loader/testdata/entries.json", "", "../loader/testdata/countries.json", false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, loader.ErrResourceNotFound))
	assert.Contains(t, err.Error(), "watchlist")
}

func TestFiles_Trace(t *testing.T) {
	svc := newFileService(t)

	res, err := svc.DecideFiles(context.Background(), "../loader/testdata/entries.json", "../loader/testdata/watchlist.json", "../loader/testdata/countries.json", true)
	require.NoError(t, err)
	require.Len(t, res.Trace, len(res.Decisions))

	for i, tr := range res.Trace {
		assert.Equal(t, i, tr.Index)
		assert.Equal(t, res.Decisions[i], tr.Decision)
		assert.Len(t, tr.Rules, 6)
	}
	assert.True(t, res.Trace[2].Facts.MedicalAdvisory)
}
