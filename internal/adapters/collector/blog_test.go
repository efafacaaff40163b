package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestBlogCollectParsesPosts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/posts" {
			t.Fatalf("неожиданный путь %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("blog_id"); got != "42" {
			t.Fatalf("ожидали blog_id=42, получили %q", got)
		}
		if got := r.URL.Query().Get("limit"); got != "10" {
			t.Fatalf("ожидали limit=10, получили %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"posts": [
			{"id": "p1", "title": "Обжарка", "content": "про зерно", "tags": ["кофе"], "url": "https://blog/p1", "published_at": "2026-05-01T10:00:00Z"},
			{"id": "p2", "title": "Латте", "content": "про молоко", "url": "https://blog/p2", "published_at": "2026-05-02T10:00:00Z"}
		]}`))
	}))
	defer server.Close()

	blog := NewBlog(server.URL, 5*time.Second, zerolog.Nop())
	records := blog.Collect(context.Background(), "42", 10)
	if len(records) != 2 {
		t.Fatalf("ожидали 2 записи, получили %d", len(records))
	}
	if records[0]["platform"] != "blog" {
		t.Fatalf("каждая запись должна нести дискриминатор платформы")
	}
	if records[0]["title"] != "Обжарка" || records[0]["content"] != "про зерно" {
		t.Fatalf("поля поста не перенесены: %+v", records[0])
	}
}

func TestBlogCollectRespectsMaxItems(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"posts": [{"id": "p1"}, {"id": "p2"}, {"id": "p3"}]}`))
	}))
	defer server.Close()

	blog := NewBlog(server.URL, 5*time.Second, zerolog.Nop())
	records := blog.Collect(context.Background(), "42", 2)
	if len(records) != 2 {
		t.Fatalf("лимит должен обрезать выдачу: получили %d", len(records))
	}
}

func TestBlogCollectServerErrorReturnsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	blog := NewBlog(server.URL, 5*time.Second, zerolog.Nop())
	if records := blog.Collect(context.Background(), "42", 10); len(records) != 0 {
		t.Fatalf("сбой источника должен давать пустой срез, получили %d записей", len(records))
	}
}

func TestBlogCollectUnreachableHostReturnsEmpty(t *testing.T) {
	blog := NewBlog("http://127.0.0.1:1", 500*time.Millisecond, zerolog.Nop())
	if records := blog.Collect(context.Background(), "42", 10); len(records) != 0 {
		t.Fatalf("недоступный хост должен давать пустой срез")
	}
}

func TestBlogCollectMalformedJSONReturnsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`не json`))
	}))
	defer server.Close()

	blog := NewBlog(server.URL, 5*time.Second, zerolog.Nop())
	if records := blog.Collect(context.Background(), "42", 10); len(records) != 0 {
		t.Fatalf("кривой ответ должен давать пустой срез")
	}
}
