package server

import (
	"fmt"
	"net/http"
	"regexp"

	"github.com/abduss/mediadrop/internal/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func newCORS(cfg config.CORSConfig) (gin.HandlerFunc, error) {
	patterns := make([]*regexp.Regexp, 0, len(cfg.OriginPatterns))
	for _, p := range cfg.OriginPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("origin pattern %q: %w", p, err)
		}
		patterns = append(patterns, re)
	}

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowedOrigins
	corsConfig.AllowOriginFunc = func(origin string) bool {
		for _, re := range patterns {
			if re.MatchString(origin) {
				return true
			}
		}
		return false
	}
	corsConfig.AllowMethods = []string{
		http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch,
		http.MethodDelete, http.MethodHead, http.MethodOptions,
	}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", "X-Correlation-ID"}
	corsConfig.ExposeHeaders = []string{"X-Correlation-ID"}
	corsConfig.AllowCredentials = cfg.AllowCredential
	corsConfig.MaxAge = cfg.MaxAge
	return cors.New(corsConfig), nil
}
