package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"profilehub/internal/core/auth"
	"profilehub/internal/core/cache"
	"profilehub/internal/core/config"
	"profilehub/internal/core/server"
	"profilehub/internal/domain"
	"profilehub/internal/profile"
	"profilehub/internal/ratelimit"
	"profilehub/internal/repo"
	"profilehub/internal/service"
	httpez "profilehub/internal/transport/http/ez"
	mdw "profilehub/internal/transport/http/middleware"
)

// NewAPIEngine 用户端：公共读（宽松档限流）+ 鉴权操作（普通档限流）。
// 每个请求先过限流，再过鉴权（公共读除外），才到达引擎。
func NewAPIEngine(l *zap.Logger, db *gorm.DB, jwter *auth.JWTer, c *cache.Cache, cfg *config.Config) *gin.Engine {
	r := server.NewRouter(l)
	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(1<<20),
		mdw.Timeout(10*time.Second),
		mdw.Metrics(),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 仓储与服务
	drafts := repo.NewDraftRepo(db)
	handles := repo.NewHandleRepo(db)
	snaps := repo.NewSnapshotRepo(db)
	entries := repo.NewSearchRepo(db)
	accounts := repo.NewAccountRepo(db)

	engine := service.NewSnapshotEngine(snaps, entries, c, l)
	profiles := service.NewProfileService(drafts, handles, engine)
	search := service.NewSearchService(entries)
	lifecycle := service.NewLifecycle(db, engine, entries, handles, c, l)
	accountSvc := service.NewAccountService(accounts, jwter)

	limiter := ratelimit.NewStore()
	defTier := tierFrom(cfg.RateLimit.Default, ratelimit.DefaultTier())
	pubTier := tierFrom(cfg.RateLimit.PublicRead, ratelimit.PublicReadTier())

	api := r.Group("/api/v1")

	// 公共发现面：无鉴权，宽松档
	pub := api.Group("")
	pub.Use(mdw.ClientRateLimit(limiter, pubTier))
	MountAllAPI(pub)
	mountPublicActions(pub, db, l, engine, search)

	// 普通档：登录 + 私有操作
	def := api.Group("")
	def.Use(mdw.ClientRateLimit(limiter, defTier))
	mountAuthActions(def, db, l, accountSvc)

	me := def.Group("/me")
	me.Use(mdw.AuthJWT(jwter, ""))
	mountMeActions(me, db, l, profiles, lifecycle)

	return r
}

func tierFrom(t config.RateTier, base ratelimit.Tier) ratelimit.Tier {
	if t.WindowSec > 0 {
		base.Window = time.Duration(t.WindowSec) * time.Second
	}
	if t.MaxRequests > 0 {
		base.Max = t.MaxRequests
	}
	return base
}

// ---------- 公共读 ----------

func mountPublicActions(g *gin.RouterGroup, db *gorm.DB, l *zap.Logger, engine *service.SnapshotEngine, search *service.SearchService) {
	ezPub := httpez.New(g, db, l)

	// GET /profiles/:handle 最新已发布版本的公开投影
	httpez.Register[struct{}, *service.PublicProfile](ezPub, httpez.Action[struct{}, *service.PublicProfile]{
		Method: http.MethodGet,
		Path:   "/profiles/:handle",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *gorm.DB, _ *struct{}) (*service.PublicProfile, error) {
			return engine.PublicProfile(c.Request.Context(), c.Param("handle"))
		},
	})

	// GET /profiles 过滤 + 游标分页
	httpez.Register[service.QueryInput, service.QueryOutput](ezPub, httpez.Action[service.QueryInput, service.QueryOutput]{
		Method: http.MethodGet,
		Path:   "/profiles",
		Binder: httpez.BindQuery,
		Handler: func(c *gin.Context, _ *gorm.DB, in *service.QueryInput) (service.QueryOutput, error) {
			return search.Query(c.Request.Context(), *in)
		},
	})
}

// ---------- 登录 ----------

func mountAuthActions(g *gin.RouterGroup, db *gorm.DB, l *zap.Logger, accounts *service.AccountService) {
	ezAuth := httpez.New(g, db, l)

	type loginIn struct {
		Email    string `json:"email"    binding:"required,email"`
		Password string `json:"password" binding:"required"`
		Name     string `json:"name"     binding:"omitempty,max=64"` // 首次注册可用
	}
	httpez.Register[loginIn, *service.LoginResult](ezAuth, httpez.Action[loginIn, *service.LoginResult]{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, _ *gorm.DB, in *loginIn) (*service.LoginResult, error) {
			return accounts.Login(c.Request.Context(), in.Email, in.Password, in.Name)
		},
	})
}

// ---------- 私有面（/me，分组已挂 AuthJWT） ----------

func mountMeActions(g *gin.RouterGroup, db *gorm.DB, l *zap.Logger, profiles *service.ProfileService, lifecycle *service.Lifecycle) {
	ezMe := httpez.New(g, db, l)

	// GET /me/profile 草稿 + 可见性 + 发布状态
	httpez.Register[struct{}, *service.OwnProfile](ezMe, httpez.Action[struct{}, *service.OwnProfile]{
		Method: http.MethodGet,
		Path:   "/profile",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *gorm.DB, _ *struct{}) (*service.OwnProfile, error) {
			return profiles.GetOwn(c.Request.Context(), c.GetString("userId"))
		},
	})

	// PUT /me/profile 整份覆盖草稿
	type saveIn struct {
		Canonical  profile.Document    `json:"canonical" binding:"required"`
		Visibility *profile.Visibility `json:"visibility"`
	}
	httpez.Register[saveIn, gin.H](ezMe, httpez.Action[saveIn, gin.H]{
		Method: http.MethodPut,
		Path:   "/profile",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, _ *gorm.DB, in *saveIn) (gin.H, error) {
			vis := profile.DefaultVisibility()
			if in.Visibility != nil {
				vis = *in.Visibility
			}
			if err := profiles.SaveDraft(c.Request.Context(), c.GetString("userId"), in.Canonical, vis); err != nil {
				return nil, err
			}
			return gin.H{"saved": true}, nil
		},
	})

	// POST /me/handle 一次性认领，不可改名
	type claimIn struct {
		Handle string `json:"handle" binding:"required"`
	}
	httpez.Register[claimIn, gin.H](ezMe, httpez.Action[claimIn, gin.H]{
		Method: http.MethodPost,
		Path:   "/handle",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, _ *gorm.DB, in *claimIn) (gin.H, error) {
			if err := profiles.ClaimHandle(c.Request.Context(), c.GetString("userId"), in.Handle); err != nil {
				return nil, err
			}
			return gin.H{"handle": in.Handle}, nil
		},
	})

	// POST /me/publish 草稿 → 新快照
	httpez.Register[struct{}, *domain.Snapshot](ezMe, httpez.Action[struct{}, *domain.Snapshot]{
		Method: http.MethodPost,
		Path:   "/publish",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *gorm.DB, _ *struct{}) (*domain.Snapshot, error) {
			return profiles.Publish(c.Request.Context(), c.GetString("userId"))
		},
	})

	// POST /me/unpublish 软删：历史保留，公共读消失
	httpez.Register[struct{}, gin.H](ezMe, httpez.Action[struct{}, gin.H]{
		Method: http.MethodPost,
		Path:   "/unpublish",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *gorm.DB, _ *struct{}) (gin.H, error) {
			h, err := profiles.Handle(c.Request.Context(), c.GetString("userId"))
			if err != nil {
				return nil, err
			}
			if h == nil {
				return nil, domain.ErrNoHandle
			}
			if err := lifecycle.Unpublish(c.Request.Context(), h.Handle); err != nil {
				return nil, err
			}
			return gin.H{"handle": h.Handle, "published": false}, nil
		},
	})

	// DELETE /me 整个画像不可逆删除，必须显式确认
	type deleteIn struct {
		Confirm bool `json:"confirm"`
	}
	httpez.Register[deleteIn, gin.H](ezMe, httpez.Action[deleteIn, gin.H]{
		Method: http.MethodDelete,
		Path:   "",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, _ *gorm.DB, in *deleteIn) (gin.H, error) {
			if !in.Confirm {
				return nil, httpez.BadRequest("confirmation flag required")
			}
			uid := c.GetString("userId")
			if err := lifecycle.HardDelete(c.Request.Context(), uid); err != nil {
				return nil, err
			}
			return gin.H{"deleted": true}, nil
		},
	})
}
