package api

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// Settings holds the presentation settings shared by the handlers.
type Settings struct {
	// PublicURL is the externally visible origin, e.g. https://foodgram.example.
	// When empty the request's own scheme and host are used.
	PublicURL   string
	PageSize    int
	MaxPageSize int
}

func (s Settings) withDefaults() Settings {
	if s.PageSize <= 0 {
		s.PageSize = 6
	}
	if s.MaxPageSize <= 0 {
		s.MaxPageSize = 100
	}
	if s.MaxPageSize < s.PageSize {
		s.MaxPageSize = s.PageSize
	}
	s.PublicURL = strings.TrimRight(s.PublicURL, "/")
	return s
}

// baseURL returns the origin used to build absolute links.
func (s Settings) baseURL(c *gin.Context) string {
	if s.PublicURL != "" {
		return s.PublicURL
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + c.Request.Host
}

// absolute turns a site-relative reference such as /media/x.png into an
// absolute URL. Already absolute references and empty ones pass through.
func (s Settings) absolute(c *gin.Context, ref string) string {
	if !strings.HasPrefix(ref, "/") {
		return ref
	}
	return s.baseURL(c) + ref
}

// pageRequest reads ?limit and ?page. It aborts with 404 on a malformed page.
func (s Settings) pageRequest(c *gin.Context) (service.PageRequest, bool) {
	req := service.PageRequest{Limit: s.PageSize, Page: 1}

	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			req.Limit = min(n, s.MaxPageSize)
		}
	}
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"detail": "invalid page"})
			return req, false
		}
		req.Page = n
	}
	return req, true
}

// buildPage wraps results in the pagination envelope. A page past the end
// of a non-empty result set aborts with 404.
func buildPage[T any](c *gin.Context, s Settings, req service.PageRequest, count int64, results []T) (*types.Page[T], bool) {
	if req.Page > 1 && int64(req.Offset()) >= count {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"detail": "invalid page"})
		return nil, false
	}
	if results == nil {
		results = []T{}
	}

	page := &types.Page[T]{Count: count, Results: results}
	if int64(req.Offset()+len(results)) < count {
		next := s.pageLink(c, req.Page+1)
		page.Next = &next
	}
	if req.Page > 1 {
		prev := s.pageLink(c, req.Page-1)
		page.Previous = &prev
	}
	return page, true
}

// pageLink rebuilds the current request URL pointing at another page.
// The first page drops the page parameter.
func (s Settings) pageLink(c *gin.Context, page int) string {
	q := url.Values{}
	for k, v := range c.Request.URL.Query() {
		q[k] = v
	}
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}

	link := s.baseURL(c) + c.Request.URL.Path
	if encoded := q.Encode(); encoded != "" {
		link += "?" + encoded
	}
	return link
}

// parseID reads a numeric path parameter. Malformed ids are reported as
// missing resources.
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"detail": "not found"})
		return 0, false
	}
	return uint(id), true
}

// recipesLimit reads ?recipes_limit. Absent means service.AllRecipes.
func recipesLimit(c *gin.Context) (int, bool) {
	raw, present := c.GetQuery("recipes_limit")
	if !present || raw == "" {
		return service.AllRecipes, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"detail": "recipes_limit must be a non-negative integer"})
		return 0, false
	}
	return n, true
}
