package bootstrap

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/um8r/bridge-master-fyp-sub001/config"
	httpapi "github.com/um8r/bridge-master-fyp-sub001/internal/api/http"
	"github.com/um8r/bridge-master-fyp-sub001/internal/api/http/middleware"
	"github.com/um8r/bridge-master-fyp-sub001/internal/auth"
	"github.com/um8r/bridge-master-fyp-sub001/internal/marketplace/agreement"
	"github.com/um8r/bridge-master-fyp-sub001/internal/marketplace/catalog"
	mkthttp "github.com/um8r/bridge-master-fyp-sub001/internal/marketplace/http"
)

type RouterDeps struct {
	ServiceName string
	Cfg         *config.Config
	Redis       *redis.Client
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.Default()

	corsCfg := cors.DefaultConfig()
	if dep.Cfg.App.CORSOrigin == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{dep.Cfg.App.CORSOrigin}
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", "X-User-Id", "X-Request-Id")
	r.Use(cors.New(corsCfg))
	r.Use(middleware.RequestIDMiddleware())

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Cfg.App.Version, dep.Redis)
	healthHandler.RegisterRoutes(r)

	client := catalog.NewClient(dep.Cfg.Upstream.BaseURL, time.Duration(dep.Cfg.Upstream.TimeoutSeconds)*time.Second)
	builder := catalog.NewBuilder(client, rate.Limit(dep.Cfg.Fetch.RatePerSecond), dep.Cfg.Fetch.Burst)

	sessionRepo := agreement.NewSessionRepository(dep.Redis, time.Duration(dep.Cfg.Agreement.TTLMinutes)*time.Minute)
	workflow := agreement.NewWorkflow(sessionRepo, client, time.Duration(dep.Cfg.Agreement.SubmitTimeoutSeconds)*time.Second)

	api := r.Group("/api/v1")
	api.Use(auth.RequireBearer())

	mktHandler := mkthttp.NewHandler(builder, workflow)
	mktHandler.Register(api)

	return r
}
