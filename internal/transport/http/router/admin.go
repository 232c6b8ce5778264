package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"profilehub/internal/core/auth"
	"profilehub/internal/core/cache"
	"profilehub/internal/domain"
	"profilehub/internal/repo"
	"profilehub/internal/service"
	httpez "profilehub/internal/transport/http/ez"
	mdw "profilehub/internal/transport/http/middleware"
)

// NewAdminEngine 管理端独立引擎：内网裸跑，不挂 CORS/限流，
// 整组强制 admin 角色。
func NewAdminEngine(l *zap.Logger, db *gorm.DB, jwter *auth.JWTer, c *cache.Cache) *gin.Engine {
	r := gin.New()
	r.Use(mdw.SimpleRecovery(), mdw.RequestID(), mdw.AccessLog(l))

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })

	handles := repo.NewHandleRepo(db)
	snaps := repo.NewSnapshotRepo(db)
	entries := repo.NewSearchRepo(db)
	accounts := repo.NewAccountRepo(db)

	engine := service.NewSnapshotEngine(snaps, entries, c, l)
	lifecycle := service.NewLifecycle(db, engine, entries, handles, c, l)

	admin := r.Group("/admin/v1")
	admin.Use(mdw.AuthJWT(jwter, "admin"))
	MountAllAdmin(admin)
	mountAdminActions(admin, db, l, engine, lifecycle, accounts, handles)

	return r
}

func mountAdminActions(g *gin.RouterGroup, db *gorm.DB, l *zap.Logger, engine *service.SnapshotEngine, lifecycle *service.Lifecycle, accounts *repo.AccountRepo, handles *repo.HandleRepo) {
	ezAdmin := httpez.New(g, db, l)

	// GET /accounts?page=&size= 账号分页列表
	type listQ struct {
		Page int `form:"page,default=1"  binding:"min=1"`
		Size int `form:"size,default=20" binding:"min=1,max=100"`
	}
	type listOut struct {
		Total int64            `json:"total"`
		Items []domain.Account `json:"items"`
	}
	httpez.Register[listQ, listOut](ezAdmin, httpez.Action[listQ, listOut]{
		Method: http.MethodGet,
		Path:   "/accounts",
		Binder: httpez.BindQuery,
		Auth:   true,
		Roles:  []string{"admin"},
		Handler: func(c *gin.Context, _ *gorm.DB, in *listQ) (listOut, error) {
			items, total, err := accounts.List(c.Request.Context(), (in.Page-1)*in.Size, in.Size)
			if err != nil {
				return listOut{}, err
			}
			return listOut{Total: total, Items: items}, nil
		},
	})

	// GET /profiles/:handle 审核视角：不过已发布闸门，带归属账号和版本历史
	type moderationView struct {
		AccountID string            `json:"accountId"`
		Latest    *domain.Snapshot  `json:"latest"`
		Versions  []domain.Snapshot `json:"versions"`
	}
	httpez.Register[struct{}, *moderationView](ezAdmin, httpez.Action[struct{}, *moderationView]{
		Method: http.MethodGet,
		Path:   "/profiles/:handle",
		Binder: httpez.BindNone,
		Auth:   true,
		Roles:  []string{"admin"},
		Handler: func(c *gin.Context, _ *gorm.DB, _ *struct{}) (*moderationView, error) {
			handle := c.Param("handle")
			h, err := handles.ByHandle(c.Request.Context(), handle)
			if err != nil {
				return nil, err
			}
			if h == nil {
				return nil, httpez.NotFound("profile " + handle)
			}
			latest, err := engine.LatestAny(c.Request.Context(), handle)
			if err != nil {
				return nil, err
			}
			versions, err := engine.Versions(c.Request.Context(), handle)
			if err != nil {
				return nil, err
			}
			return &moderationView{AccountID: h.AccountID, Latest: latest, Versions: versions}, nil
		},
	})

	// POST /profiles/:handle/unpublish 强制下线（版本保留）
	httpez.Register[struct{}, gin.H](ezAdmin, httpez.Action[struct{}, gin.H]{
		Method: http.MethodPost,
		Path:   "/profiles/:handle/unpublish",
		Binder: httpez.BindNone,
		Auth:   true,
		Roles:  []string{"admin"},
		Handler: func(c *gin.Context, _ *gorm.DB, _ *struct{}) (gin.H, error) {
			handle := c.Param("handle")
			if err := lifecycle.Unpublish(c.Request.Context(), handle); err != nil {
				return nil, err
			}
			l.Info("admin unpublished profile",
				zap.String("handle", handle),
				zap.String("admin", c.GetString("userId")),
			)
			return gin.H{"handle": handle, "published": false}, nil
		},
	})

	// POST /accounts/:id/ban 封禁：下线公共面 + 软删账号（登录即失效）
	httpez.Register[struct{}, gin.H](ezAdmin, httpez.Action[struct{}, gin.H]{
		Method: http.MethodPost,
		Path:   "/accounts/:id/ban",
		Binder: httpez.BindNone,
		Auth:   true,
		Roles:  []string{"admin"},
		Handler: func(c *gin.Context, _ *gorm.DB, _ *struct{}) (gin.H, error) {
			id := c.Param("id")
			acc, err := accounts.FindByID(c.Request.Context(), id)
			if err != nil {
				return nil, err
			}
			if acc == nil {
				return nil, httpez.NotFound("account " + id)
			}
			h, err := handles.ByAccount(c.Request.Context(), id)
			if err != nil {
				return nil, err
			}
			if h != nil {
				if err := lifecycle.Unpublish(c.Request.Context(), h.Handle); err != nil {
					return nil, err
				}
			}
			if err := accounts.SoftDelete(c.Request.Context(), id); err != nil {
				return nil, err
			}
			l.Info("account banned",
				zap.String("account_id", id),
				zap.String("admin", c.GetString("userId")),
			)
			return gin.H{"banned": true}, nil
		},
	})
}
