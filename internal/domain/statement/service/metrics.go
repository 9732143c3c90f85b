package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	filesParsed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tally_bridge",
		Name:      "files_parsed_total",
		Help:      "Statement files decoded, by declared format.",
	}, []string{"format"})

	transactionsParsed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tally_bridge",
		Name:      "transactions_parsed_total",
		Help:      "Canonical transactions that survived normalization.",
	})

	rowsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tally_bridge",
		Name:      "rows_dropped_total",
		Help:      "Source rows dropped during normalization (bad date or zero amount).",
	})

	ocrFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tally_bridge",
		Name:      "ocr_fallbacks_total",
		Help:      "PDF uploads that required the optical recognition fallback.",
	})
)
