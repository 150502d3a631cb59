package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Total number of orders created at checkout",
	})

	CheckoutsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkouts_failed_total",
		Help: "Total number of failed checkouts",
	}, []string{"reason"})

	CheckoutsDeclinedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkouts_declined_total",
		Help: "Total number of checkouts declined at the confirmation step",
	})

	CheckoutAmount = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "checkout_amount",
		Help:    "Distribution of checkout totals",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10),
	})

	CatalogSaveFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_save_failures_total",
		Help: "Total number of failed best-effort catalog persists",
	}, []string{"kind"})

	ReviewsAttachedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reviews_attached_total",
		Help: "Total number of reviews attached to products",
	})
)
