package server

import (
	"fmt"
	"net/http"
	"regexp"

	"github.com/labstack/echo/v4"
)

// OriginPolicy decides which browser origins may call the API and open the realtime
// channel: an exact allow-list plus regexp patterns for preview deployments and localhost.
type OriginPolicy struct {
	exact    map[string]struct{}
	patterns []*regexp.Regexp
}

func NewOriginPolicy(allowed, patterns []string) (*OriginPolicy, error) {
	p := &OriginPolicy{exact: make(map[string]struct{}, len(allowed))}
	for _, o := range allowed {
		p.exact[o] = struct{}{}
	}
	for _, expr := range patterns {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid CORS origin pattern %q: %w", expr, err)
		}
		p.patterns = append(p.patterns, re)
	}
	return p, nil
}

// Allowed matches echo's AllowOriginFunc.
func (p *OriginPolicy) Allowed(origin string) (bool, error) {
	return p.allows(origin), nil
}

// CheckRequest is the websocket upgrader's origin check. Requests without an Origin
// header come from non-browser clients and are accepted.
func (p *OriginPolicy) CheckRequest(r *http.Request) bool {
	origin := r.Header.Get(echo.HeaderOrigin)
	return origin == "" || p.allows(origin)
}

func (p *OriginPolicy) allows(origin string) bool {
	if _, ok := p.exact[origin]; ok {
		return true
	}
	for _, re := range p.patterns {
		if re.MatchString(origin) {
			return true
		}
	}
	return false
}
