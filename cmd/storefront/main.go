package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"storefront/config"
	"storefront/internal/auth"
	"storefront/internal/catalog"
	"storefront/internal/cli"
	"storefront/internal/ledger"
	"storefront/internal/promo"
	"storefront/internal/service"
	"storefront/internal/store"
	"storefront/internal/util"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.App.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting storefront")

	if cfg.Observ.JaegerEndpoint != "" {
		tp, err := util.InitTracer("storefront", cfg.Observ.JaegerEndpoint)
		if err != nil {
			log.Fatalf("Failed to initialize tracer: %v", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(ctx); err != nil {
				log.Printf("Error shutting down tracer: %v", err)
			}
		}()
	}

	st, err := newStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	ctx := context.Background()

	products, err := st.LoadCatalog(ctx)
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}
	cat, err := catalog.NewCatalog(products)
	if err != nil {
		log.Fatalf("Failed to build catalog: %v", err)
	}
	log.Printf("Catalog loaded: %d products", cat.Len())

	promotionRows, err := st.LoadPromotions(ctx)
	if err != nil {
		log.Fatalf("Failed to load promotions: %v", err)
	}
	promotions := promo.NewSet(promotionRows)
	log.Printf("Promotions loaded: %d rules", promotions.Len())

	orderLedger := ledger.NewOrderLedger()
	checkout := service.NewCheckoutService(cat, promotions, orderLedger, st)

	verifier, err := newVerifier(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize admin auth: %v", err)
	}

	if cfg.Observ.PrometheusPort != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			addr := fmt.Sprintf(":%s", cfg.Observ.PrometheusPort)
			log.Printf("Serving metrics on %s", addr)
			if err := http.ListenAndServe(addr, mux); err != nil {
				log.Printf("Metrics server error: %v", err)
			}
		}()
	}

	menu := cli.NewMenu(cat, promotions, orderLedger, checkout, verifier, st, os.Stdin, os.Stdout)
	menu.Run(ctx)

	logger.Info("Storefront exited")
}

func newStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case "postgres":
		return store.NewPostgresStore(cfg.Store.DatabaseURL)
	case "file":
		return store.NewFileStore(cfg.Store.ProductsFile, cfg.Store.ReviewsFile, cfg.Store.PromotionsFile), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func newVerifier(cfg *config.Config) (auth.Verifier, error) {
	if cfg.Admin.CredentialsFile != "" {
		return auth.NewFileVerifier(cfg.Admin.CredentialsFile)
	}
	return auth.NewStaticVerifier(cfg.Admin.Username, cfg.Admin.Password), nil
}
