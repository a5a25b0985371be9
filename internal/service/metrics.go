package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	purchasesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vend_purchases_total",
			Help: "Purchase attempts by outcome",
		},
		[]string{"outcome"},
	)

	coinsInsertedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vend_coins_inserted_total",
			Help: "Accepted coins by denomination",
		},
		[]string{"denomination"},
	)

	tillBalance = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vend_till_balance_minor_units",
			Help: "Current deposited balance in minor units",
		},
	)
)
