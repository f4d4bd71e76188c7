// cmd/admin/main_test.go
package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	custom_errors "commitlens/internal/errors"
)

type fakeLookup map[string]string

func (f fakeLookup) GetProjectRepositoryURL(_ context.Context, id string) (string, error) {
	url, ok := f[id]
	if !ok {
		return "", pgx.ErrNoRows
	}
	return url, nil
}

func TestProjectURL(t *testing.T) {
	store := fakeLookup{"p1": "https://github.com/acme/widgets"}

	url, err := projectURL(context.Background(), store, "p1")
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/acme/widgets", url)

	_, err = projectURL(context.Background(), store, "missing")
	assert.ErrorIs(t, err, custom_errors.ErrProjectNotFound)
}

func TestRootCmd_Commands(t *testing.T) {
	root := newRootCmd(&bytes.Buffer{})

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"migrate", "projects", "sync", "sync-all", "backfill"}, names)
}

func TestRootCmd_RejectsMissingArgs(t *testing.T) {
	root := newRootCmd(&bytes.Buffer{})
	root.SetArgs([]string{"sync"})
	root.SetErr(&bytes.Buffer{})

	assert.Error(t, root.Execute())
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	c := &cli{out: &buf}

	require.NoError(t, c.printJSON(map[string]int{"repaired": 2}))
	assert.JSONEq(t, `{"repaired":2}`, buf.String())
}
