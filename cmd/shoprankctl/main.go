// shoprankctl is a terminal client for the shoprank HTTP API.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	transport "github.com/kailas-cloud/shoprank/internal/transport/chi"
)

const usage = `Usage: shoprankctl [flags] <command> [args]

Commands:
  search <query...>        ranked product search
  similar <product-id>     similar products
  complementary <id>       frequently-bought-together products
  product <product-id>     product details
  categories               list catalog categories
  stats                    catalog statistics
  health                   service health

Flags:
  -addr      API base URL (or SHOPRANK_ADDR, default http://localhost:8080)
  -budget    max price filter for search
  -category  category filter for search
  -limit     number of results
`

var (
	rankStyle      = color.New(color.FgCyan, color.Bold)
	titleStyle     = color.New(color.Bold)
	scoreStyle     = color.New(color.FgGreen)
	highlightStyle = color.New(color.FgYellow)
	errStyle       = color.New(color.FgRed, color.Bold)
)

func main() {
	_ = godotenv.Load()

	addr := flag.String("addr", envOr("SHOPRANK_ADDR", "http://localhost:8080"), "API base URL")
	budget := flag.Float64("budget", -1, "max price filter (search only)")
	category := flag.String("category", "", "category filter (search only)")
	limit := flag.Int("limit", 0, "number of results")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	c := client{base: strings.TrimRight(*addr, "/"), http: &http.Client{Timeout: 30 * time.Second}}

	var err error
	switch args[0] {
	case "search":
		if len(args) < 2 {
			fail("search requires a query")
		}
		err = c.search(strings.Join(args[1:], " "), *budget, *category, *limit)
	case "similar":
		if len(args) != 2 {
			fail("similar requires a product id")
		}
		err = c.recommendations("similar", args[1], *limit)
	case "complementary":
		if len(args) != 2 {
			fail("complementary requires a product id")
		}
		err = c.recommendations("complementary", args[1], *limit)
	case "product":
		if len(args) != 2 {
			fail("product requires a product id")
		}
		err = c.product(args[1])
	case "categories":
		err = c.categories()
	case "stats":
		err = c.stats()
	case "health":
		err = c.health()
	default:
		fail("unknown command %q", args[0])
	}
	if err != nil {
		fail("%v", err)
	}
}

func fail(format string, args ...any) {
	errStyle.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

type client struct {
	base string
	http *http.Client
}

func (c *client) get(path string, query url.Values, out any) error {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	resp, err := c.http.Get(u)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		var apiErr transport.ErrorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("%s (%s)", apiErr.Message, apiErr.Code)
		}
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return json.Unmarshal(body, out)
}

func (c *client) search(query string, budget float64, category string, limit int) error {
	q := url.Values{"query": {query}}
	if budget >= 0 {
		q.Set("budget", strconv.FormatFloat(budget, 'f', -1, 64))
	}
	if category != "" {
		q.Set("category", category)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var resp transport.SearchResponse
	if err := c.get("/search", q, &resp); err != nil {
		return err
	}

	fmt.Printf("%d results for %q (retrieved %d, pool %d, %.1fms)\n\n",
		resp.TotalResults, resp.Query, resp.RetrievedCount, resp.PoolSize, resp.LatencyMs)

	for _, r := range resp.Results {
		rankStyle.Printf("#%-3d", r.Rank)
		titleStyle.Printf(" %s", r.Title)
		fmt.Printf("  [%s]  $%.2f  %.1f★ (%d reviews)\n", r.Category, r.Price, r.Rating, r.ReviewCount)
		scoreStyle.Printf("     score %.3f", r.FinalScore)
		fmt.Printf("  (semantic %.2f, price %.2f, popularity %.2f, rating %.2f)\n",
			r.ScoreBreakdown.Semantic, r.ScoreBreakdown.Price,
			r.ScoreBreakdown.Popularity, r.ScoreBreakdown.Rating)
		if len(r.Explanation.Highlights) > 0 {
			highlightStyle.Printf("     %s\n", strings.Join(r.Explanation.Highlights, " · "))
		}
		if r.Explanation.Text != "" {
			fmt.Printf("     %s\n", r.Explanation.Text)
		}
		fmt.Println()
	}
	return nil
}

func (c *client) recommendations(kind, productID string, limit int) error {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var resp transport.RecommendationsResponse
	if err := c.get("/"+kind+"/"+url.PathEscape(productID), q, &resp); err != nil {
		return err
	}

	fmt.Printf("%s products for %s:\n\n", kind, resp.ProductID)
	for i, item := range resp.Items {
		rankStyle.Printf("%2d.", i+1)
		titleStyle.Printf(" %s", item.Title)
		fmt.Printf("  [%s]  $%.2f  %.1f★", item.Category, item.Price, item.Rating)
		scoreStyle.Printf("  sim %.3f\n", item.Similarity)
		if item.Reason != "" {
			fmt.Printf("    %s\n", item.Reason)
		}
	}
	return nil
}

func (c *client) product(productID string) error {
	var p map[string]any
	if err := c.get("/product/"+url.PathEscape(productID), nil, &p); err != nil {
		return err
	}
	return printJSON(p)
}

func (c *client) categories() error {
	var resp transport.CategoriesResponse
	if err := c.get("/categories", nil, &resp); err != nil {
		return err
	}
	for _, cat := range resp.Categories {
		fmt.Println(cat)
	}
	return nil
}

func (c *client) stats() error {
	var resp transport.StatsResponse
	if err := c.get("/stats", nil, &resp); err != nil {
		return err
	}
	return printJSON(resp)
}

func (c *client) health() error {
	// /health returns 503 when unhealthy but still carries a body, so
	// skip the shared error mapping.
	httpResp, err := c.http.Get(c.base + "/health")
	if err != nil {
		return err
	}
	defer httpResp.Body.Close()

	var resp transport.HealthResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return err
	}
	if resp.Status == "ok" {
		scoreStyle.Printf("status: %s\n", resp.Status)
	} else {
		errStyle.Printf("status: %s\n", resp.Status)
	}
	for name, check := range resp.Checks {
		fmt.Printf("  %-10s %s\n", name, check)
	}
	if resp.ProductCount > 0 {
		fmt.Printf("  products: %d (dim %d)\n", resp.ProductCount, resp.EmbeddingDims)
	}
	return nil
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
