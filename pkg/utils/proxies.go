package utils

import (
	"fmt"
	"net/url"
	"strings"
)

// ProxyBuilder maps the real target URL to the URL actually requested.
type ProxyBuilder func(target string) string

type Proxy struct {
	Name  string
	Build ProxyBuilder
	// Origin marks the builder that requests the target itself.
	Origin bool
}

var DefaultProxyNames = []string{"direct", "corsproxy", "allorigins", "codetabs"}

var builtinProxies = map[string]ProxyBuilder{
	"direct": func(target string) string { return target },
	"corsproxy": func(target string) string {
		return "https://corsproxy.io/?url=" + url.QueryEscape(target)
	},
	"allorigins": func(target string) string {
		return "https://api.allorigins.win/raw?url=" + url.QueryEscape(target)
	},
	"codetabs": func(target string) string {
		return "https://api.codetabs.com/v1/proxy?quest=" + url.QueryEscape(target)
	},
}

// TemplateProxy substitutes the escaped target for {url} in tmpl.
func TemplateProxy(tmpl string) ProxyBuilder {
	return func(target string) string {
		return strings.ReplaceAll(tmpl, "{url}", url.QueryEscape(target))
	}
}

// ProxiesByName resolves built-in names and {url} templates, keeping order.
func ProxiesByName(names []string) ([]Proxy, error) {
	proxies := make([]Proxy, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if strings.Contains(name, "{url}") {
			proxies = append(proxies, Proxy{Name: name, Build: TemplateProxy(name)})
			continue
		}
		build, ok := builtinProxies[name]
		if !ok {
			return nil, fmt.Errorf("unknown proxy %q", name)
		}
		proxies = append(proxies, Proxy{Name: name, Build: build, Origin: name == "direct"})
	}
	if len(proxies) == 0 {
		return nil, fmt.Errorf("no proxies configured")
	}
	return proxies, nil
}
