package csvutil

import (
	"errors"
	"os"
	"testing"

	"github.com/lepinkainen/bookcatalog/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type person struct {
	Name string
	City string
}

func TestProcessCSV(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.WriteFileString("test.csv", "﻿name, age ,city\nAlice,30,NYC\nBob,25\n\"Charlie\",35,Chicago\n")

	people, err := ProcessCSV(env.Path("test.csv"), func(r Row) (person, error) {
		return person{Name: r.Get("name"), City: r.Get("city")}, nil
	}, ProcessorOptions{})
	require.NoError(t, err)

	assert.Equal(t, []person{
		{"Alice", "NYC"},
		{"Bob", ""},
		{"Charlie", "Chicago"},
	}, people)
}

func TestProcessCSV_SkipAndInvalid(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.WriteFileString("test.csv", "name\nkeep\nskip\nbad\n")

	parser := func(r Row) (string, error) {
		switch r.Get("name") {
		case "skip":
			return "", ErrSkipRow
		case "bad":
			return "", errors.New("bad row")
		}
		return r.Get("name"), nil
	}

	_, err := ProcessCSV(env.Path("test.csv"), parser, ProcessorOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 4")

	items, err := ProcessCSV(env.Path("test.csv"), parser, ProcessorOptions{SkipInvalid: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"keep"}, items)
}

func TestProcessCSV_EmptyFile(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.WriteFileString("empty.csv", "")

	_, err := ProcessCSV(env.Path("empty.csv"), func(r Row) (string, error) { return "", nil }, ProcessorOptions{})
	require.Error(t, err)
}

func TestProcessCSV_FileNotFound(t *testing.T) {
	_, err := ProcessCSV("/nonexistent/file.csv", func(r Row) (string, error) { return "", nil }, ProcessorOptions{})
	require.Error(t, err)
}

func TestHeadersAndRowHas(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.WriteFileString("h.csv", "Book Id,Title,Author\n1,Dune,Herbert\n")

	headers, err := Headers(env.Path("h.csv"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Book Id", "Title", "Author"}, headers)

	rows, err := ProcessCSV(env.Path("h.csv"), func(r Row) (bool, error) { return r.Has("Book Id") && !r.Has("ISBN"), nil }, ProcessorOptions{})
	require.NoError(t, err)
	assert.Equal(t, []bool{true}, rows)
}

func TestWriteCSV(t *testing.T) {
	env := testutil.NewTestEnv(t)
	path := env.Path("out", "list.csv")

	require.NoError(t, WriteCSV(path, []string{"Title", "Author"}, [][]string{{"Dune", "Herbert, Frank"}}))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Title,Author\nDune,\"Herbert, Frank\"\n", string(content))
}
