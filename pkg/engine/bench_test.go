package engine

import (
	"fmt"
	"testing"

	"github.com/getmockd/mockwire/pkg/request"
)

func BenchmarkMatch_FirstMock(b *testing.B) {
	e := New()
	e.Get("http://x.com/users").Header("Accept", "application/json").Persist()
	req := request.MustNew("GET", "http://x.com/users", request.WithHeader("Accept", "application/json"))

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := e.Match(req); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkMatch_LastOf100(b *testing.B) {
	e := New(WithHistorySize(100))
	for i := 0; i < 100; i++ {
		e.Post(fmt.Sprintf("http://x.com/items/%d", i)).JSON(map[string]any{"id": i}).Persist()
	}
	req := request.MustNew("POST", "http://x.com/items/99",
		request.WithHeader("Content-Type", "application/json"),
		request.WithBody(`{"id": 99}`))

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := e.Match(req); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkMatch_NoMatch(b *testing.B) {
	e := New()
	for i := 0; i < 10; i++ {
		e.Get(fmt.Sprintf("http://x.com/items/%d", i)).Persist()
	}
	req := request.MustNew("GET", "http://y.com/none")

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := e.Match(req); err == nil {
			b.Fatal("expected no match")
		}
	}
}

func BenchmarkMatch_Parallel(b *testing.B) {
	e := New()
	e.Get("re/x\\.com/users/\\d+/").Persist()

	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		req := request.MustNew("GET", "http://x.com/users/42")
		for pb.Next() {
			if _, err := e.Match(req); err != nil {
				b.Fatal(err)
			}
		}
	})
}
