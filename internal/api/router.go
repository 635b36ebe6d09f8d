package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"gamecafe-backend/config"
	"gamecafe-backend/internal/cache"
	"gamecafe-backend/internal/mw"
	"gamecafe-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.Config, s store.Store, menu *cache.Menu, webpushOptions *webpush.Options) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(cfg, s, menu, webpushOptions)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)

	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	cacheStore := gocache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	// Session and inventory writes change what the cached GETs serve.
	api.Use(mw.BustOnWrite(cacheStore))
	{
		// Public
		api.POST("/users/register", handler.Register)
		api.POST("/users/login", handler.Login)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)

		authed := api.Group("")
		authed.Use(mw.Authenticate(cfg.Auth.JWTSecret))
		{
			authed.GET("/machines", caching, handler.ListMachines)
			authed.GET("/machines/:id", handler.GetMachine)
			authed.POST("/machines", handler.CreateMachine)
			authed.PUT("/machines/:id", handler.UpdateMachine)
			authed.DELETE("/machines/:id", handler.DeleteMachine)

			// Sessions keep the historical /customers resource name.
			authed.GET("/customers", handler.ListSessions)
			authed.GET("/customers/:id", handler.GetSession)
			authed.POST("/customers", handler.StartSession)
			authed.POST("/customers/:id/accrue", handler.AccrueSession)
			authed.POST("/customers/:id/items", handler.AddSessionItem)
			authed.DELETE("/customers/:id/items/:index", handler.RemoveSessionItem)
			authed.POST("/customers/:id/mode", handler.ChangeSessionMode)
			authed.PUT("/customers/:id/end-time", handler.EndSession)
			authed.POST("/customers/:id/checkout", handler.CheckoutSession)
			authed.PUT("/customers/:id", handler.UpdateSession)
			authed.DELETE("/customers/:id", handler.DeleteSession)

			authed.GET("/food-drinks", handler.ListFoodDrinks)
			authed.GET("/food-drinks/:id", handler.GetFoodDrink)
			authed.POST("/food-drinks", handler.CreateFoodDrink)
			authed.PUT("/food-drinks/:id", handler.UpdateFoodDrink)
			authed.DELETE("/food-drinks/:id", handler.DeleteFoodDrink)
			authed.POST("/food-drinks/bulk-decrease", handler.BulkDecrease)

			authed.GET("/quotes", handler.ListQuotes)
			authed.GET("/quotes/:id", handler.GetQuote)
			authed.POST("/quotes/shop", handler.ShopCheckout)

			authed.GET("/storage", handler.ListStorage)
			authed.POST("/storage", handler.CreateStorageItem)
			authed.PUT("/storage/:id", handler.UpdateStorageItem)
			authed.DELETE("/storage/:id", handler.DeleteStorageItem)

			authed.GET("/subscriptions", handler.GetSubscription)
			authed.PUT("/subscriptions", handler.PutSubscription)
			authed.DELETE("/subscriptions", handler.DeleteSubscription)

			admin := authed.Group("")
			admin.Use(mw.RequireAdmin())
			{
				admin.GET("/users", handler.ListUsers)
				admin.PUT("/users/:id", handler.UpdateUser)
				admin.DELETE("/users/:id", handler.DeleteUser)

				admin.GET("/payments", handler.ListPayments)
				admin.POST("/payments", handler.CreatePayment)
				admin.PUT("/payments/:id", handler.UpdatePayment)
				admin.DELETE("/payments/:id", handler.DeletePayment)

				admin.DELETE("/quotes/:id", handler.DeleteQuote)

				admin.GET("/reports", handler.GetReport)
				admin.GET("/reports/machines/:name", handler.GetMachineReport)
			}
		}
	}

	return r
}
