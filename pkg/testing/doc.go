// Package testing binds a mockwire engine to a Go test.
//
// New creates an isolated engine for one test. When the test ends, it fails
// if any registered mock is still pending, and every global change made
// through the Scope is undone.
//
// # Basic Usage
//
//	func TestFetchUser(t *testing.T) {
//	    s := mwtesting.New(t)
//	    s.Get("http://api.example.com/users/1").
//	        Header("Accept", "application/json").
//	        Reply(200).
//	        JSON(map[string]any{"id": 1, "name": "ada"})
//
//	    user, err := client.FetchUser(s.Client(), 1)
//	    require.NoError(t, err)
//	    assert.Equal(t, "ada", user.Name)
//	}
//
// # Intercepting http.DefaultTransport
//
// Code that uses http.Get or http.DefaultClient is intercepted with
// Intercept. Requests no mock matches fail with a *engine.NoMatchError
// unless networking is enabled:
//
//	s := mwtesting.New(t).Intercept()
//	s.EnableNetwork("localhost")
//
// # Serving mocks over HTTP
//
// Start runs an httptest server answering from the engine, for code that
// needs a base URL rather than a client:
//
//	url := s.Start()
//	s.Post(url + "/items").JSON(map[string]any{"name": "x"}).Reply(201)
//
// # Definition files
//
// Load registers mocks from YAML definition files (see package config):
//
//	s.Load("testdata/mocks.yaml")
//
// # Assertions
//
// Every evaluated request is recorded:
//
//	s.AssertCalled(t, "GET", "/users/{id}")
//	s.AssertNotCalled(t, "DELETE", "/users/1")
//	req := s.Requests()[0]
//	req.AssertJSONBody(t, `{"name": "x"}`)
//	req.AssertJSONField(t, "name", "x")
//
// Tests that register mocks which may legitimately stay unused call
// AllowPending.
package testing
