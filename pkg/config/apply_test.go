package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/mockwire/pkg/engine"
	"github.com/getmockd/mockwire/pkg/mock"
	"github.com/getmockd/mockwire/pkg/request"
)

const definitions = `
network:
  enabled: true
  hosts: [https://api.example.com:8443]
filters:
  - 'method != "OPTIONS"'
mocks:
  - name: users
    url: http://x.com/users
    method: GET
    persist: true
    reply: 200
    response_json: [{id: 1}]
  - name: create
    url: http://x.com/users
    method: POST
    json: {name: ada}
    reply: 201
`

func TestApply(t *testing.T) {
	f, err := Parse([]byte(definitions))
	require.NoError(t, err)
	require.NoError(t, f.Validate())

	e := engine.New()
	require.NoError(t, f.Apply(e))

	mocks := e.Mocks()
	require.Len(t, mocks, 2)
	assert.Equal(t, "users", mocks[0].Name())
	assert.Equal(t, "create", mocks[1].Name())
	assert.True(t, e.NetworkEnabled())

	res, err := e.Match(request.MustNew("GET", "http://x.com/users"))
	require.NoError(t, err)
	assert.Same(t, mocks[0], res.Mock)
	assert.JSONEq(t, `[{"id": 1}]`, string(res.Response().BodyBytes()))

	res, err = e.Match(request.MustNew("POST", "http://x.com/users",
		request.WithHeader("Content-Type", "application/json"),
		request.WithBody(`{"name": "ada"}`)))
	require.NoError(t, err)
	assert.Equal(t, 201, res.Response().StatusCode())

	res, err = e.Match(request.MustNew("OPTIONS", "http://x.com/users"))
	require.NoError(t, err)
	assert.Equal(t, engine.OutcomeFiltered, res.Outcome)

	// Network is restricted to the configured host.
	res, err = e.Match(request.MustNew("GET", "https://api.example.com/other"))
	require.NoError(t, err)
	assert.Equal(t, engine.OutcomePassthrough, res.Outcome)

	_, err = e.Match(request.MustNew("GET", "https://elsewhere.com"))
	assert.ErrorIs(t, err, engine.ErrNoMatch)
}

func TestApply_InvalidRegistersNothing(t *testing.T) {
	f, err := Parse([]byte(`
filters: ['method == "GET"']
mocks:
  - url: http://x.com/ok
  - name: broken
    url: http://x.com/bad
    bogus: 1
`))
	require.NoError(t, err)

	e := engine.New()
	err = f.Apply(e)
	require.Error(t, err)
	assert.ErrorIs(t, err, mock.ErrInvalidArgument)
	assert.Contains(t, err.Error(), "mocks[1] (broken)")
	assert.Empty(t, e.Mocks())
	assert.False(t, e.NetworkEnabled())

	res, err := e.Match(request.MustNew("POST", "http://x.com"))
	assert.Nil(t, res)
	assert.ErrorIs(t, err, engine.ErrNoMatch, "filters must not be registered either")
}

func TestApply_InvalidFilter(t *testing.T) {
	f, err := Parse([]byte("filters: ['method ==']\nmocks:\n  - url: http://x.com\n"))
	require.NoError(t, err)

	e := engine.New()
	err = f.Apply(e)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "filters[0]")
	assert.Empty(t, e.Mocks())
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	f, err := Parse([]byte(`
filters: ['method ==']
mocks:
  - url: ""
  - url: http://x.com
    method: GET
  - url: http://x.com
    times: many
  - url: re/(/
`))
	require.NoError(t, err)

	err = f.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "filters[0]")
	assert.Contains(t, msg, "mocks[0]")
	assert.NotContains(t, msg, "mocks[1]")
	assert.Contains(t, msg, "mocks[2]")
	assert.Contains(t, msg, "mocks[3]")
	assert.ErrorIs(t, err, mock.ErrInvalidExpectation)
}

func TestBuild(t *testing.T) {
	f, err := Parse([]byte("- {url: http://x.com/a, times: 2}\n- {url: http://x.com/b, persist: true}\n"))
	require.NoError(t, err)

	mocks, err := f.Build()
	require.NoError(t, err)
	require.Len(t, mocks, 2)
	assert.Equal(t, 2, mocks[0].Remaining())
	assert.True(t, mocks[1].IsPersistent())
}
