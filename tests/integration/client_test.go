//go:build integration

package integration

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/Sternrassler/wp-reader/pkg/client"
	"github.com/Sternrassler/wp-reader/pkg/item"
	"github.com/Sternrassler/wp-reader/pkg/request"
	"github.com/Sternrassler/wp-reader/pkg/wordpress"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const docRoot = "/usr/share/nginx/html"

// nginxConf serves static fixtures the way the WordPress REST API answers:
// collection pages selected by the page argument with the total page count
// in a header, and single items by ID.
const nginxConf = `
server {
    listen 80;
    root /usr/share/nginx/html;

    location = /wp-json/wp/v2/posts {
        default_type application/json;
        add_header X-WP-TotalPages 3 always;
        try_files /wp-json/wp/v2/posts/page-$arg_page.json /wp-json/wp/v2/posts/page-1.json =404;
    }

    location ~ ^/wp-json/wp/v2/posts/[0-9]+$ {
        default_type application/json;
        try_files $uri.json =404;
    }

    location = /rest/v1.1/sites/example.com {
        default_type application/json;
        try_files /settings.json =404;
    }
}
`

var fixtures = map[string]string{
	"/wp-json/wp/v2/posts/page-1.json": `[{"id":1,"slug":"one","date_gmt":"2023-03-01T08:00:00Z","title":{"rendered":"One"}},{"id":2,"slug":"two","title":{"rendered":"Two"}}]`,
	"/wp-json/wp/v2/posts/page-2.json": `[{"id":3,"slug":"three","title":{"rendered":"Three"}},{"id":4,"slug":"four","title":{"rendered":"Four"}}]`,
	"/wp-json/wp/v2/posts/page-3.json": `[{"id":5,"slug":"five","title":{"rendered":"Caf%C3%A9"}}]`,
	"/wp-json/wp/v2/posts/3.json":      `{"id":3,"slug":"three","link":"https://example.com/three","title":{"rendered":"Three"}}`,
	"/settings.json":                   `{"ID":42,"name":"Example","description":"Fixture site","URL":"https://example.com"}`,
}

// setupWordPress starts an nginx container serving the fixtures and returns
// a site reading from it.
func setupWordPress(t *testing.T) *wordpress.Site {
	t.Helper()

	ctx := context.Background()

	files := []testcontainers.ContainerFile{{
		Reader:            strings.NewReader(nginxConf),
		ContainerFilePath: "/etc/nginx/conf.d/default.conf",
		FileMode:          0o644,
	}}
	for path, body := range fixtures {
		files = append(files, testcontainers.ContainerFile{
			Reader:            strings.NewReader(body),
			ContainerFilePath: docRoot + path,
			FileMode:          0o644,
		})
	}

	req := testcontainers.ContainerRequest{
		Image:        "nginx:1.27-alpine",
		ExposedPorts: []string{"80/tcp"},
		Files:        files,
		WaitingFor:   wait.ForHTTP("/settings.json").WithPort("80/tcp"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start nginx container: %v", err)
	}
	t.Cleanup(func() { container.Terminate(ctx) })

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "80")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	base := fmt.Sprintf("http://%s:%s", host, port.Port())
	site, err := wordpress.New("example.com",
		wordpress.WithRESTRoots(base+"/wp-json/wp/v2", base+"/rest/v1.1/sites/example.com"))
	if err != nil {
		t.Fatalf("Failed to create site: %v", err)
	}
	return site
}

// TestStreamAllPages tests the complete flow: discovery → concurrent page fetches → decode.
func TestStreamAllPages(t *testing.T) {
	site := setupWordPress(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pages := map[int]int{}
	for batch, err := range site.PostStream(ctx, request.New[item.Post]().WithMaxConcurrency(3)) {
		if err != nil {
			t.Fatalf("stream error: %v", err)
		}
		pages[batch.Page] = len(batch.Items)
	}

	want := map[int]int{1: 2, 2: 2, 3: 1}
	for page, n := range want {
		if pages[page] != n {
			t.Errorf("page %d: got %d items, want %d", page, pages[page], n)
		}
	}
}

func TestWindow(t *testing.T) {
	site := setupWordPress(t)

	posts, err := site.FetchPosts(context.Background(), request.New[item.Post]().WithStartPage(2).WithMaxPages(5))
	if err != nil {
		t.Fatalf("FetchPosts() error = %v", err)
	}
	if len(posts) != 3 {
		t.Errorf("got %d posts, want 3 (pages 2 and 3)", len(posts))
	}
}

func TestCleanedTitle(t *testing.T) {
	site := setupWordPress(t)

	posts, err := site.FetchPosts(context.Background(), request.New[item.Post]().WithStartPage(3))
	if err != nil {
		t.Fatalf("FetchPosts() error = %v", err)
	}
	if len(posts) != 1 || posts[0].ContentTitle() != "Café" {
		t.Errorf("posts = %+v, want one post titled Café", posts)
	}
}

func TestFetchByID(t *testing.T) {
	site := setupWordPress(t)

	post, err := wordpress.FetchByID[item.Post](context.Background(), site, 3)
	if err != nil {
		t.Fatalf("FetchByID() error = %v", err)
	}
	if post.Slug != "three" || post.Link != "https://example.com/three" {
		t.Errorf("post = %+v", post)
	}
}

func TestFetchSettings(t *testing.T) {
	site := setupWordPress(t)

	settings, err := site.FetchSettings(context.Background())
	if err != nil {
		t.Fatalf("FetchSettings() error = %v", err)
	}
	if settings.ID != 42 || settings.Name != "Example" {
		t.Errorf("settings = %+v", settings)
	}
}

func TestMissingItem(t *testing.T) {
	site := setupWordPress(t)

	_, err := wordpress.FetchByID[item.Post](context.Background(), site, 99)
	if err == nil {
		t.Fatal("expected an error for a missing item")
	}

	var wpErr *client.Error
	if !errors.As(err, &wpErr) || wpErr.StatusCode != http.StatusNotFound {
		t.Errorf("error = %v, want status 404", err)
	}
}
