package stats

import "time"

// View is a point-in-time copy of the registry, shaped for JSON output.
type View struct {
	StartTime     time.Time `json:"start_time"`
	UptimeSeconds float64   `json:"uptime_seconds"`

	QueueRequests     uint64 `json:"queue_requests"`
	Queued            uint64 `json:"queued"`
	QueuedBytes       uint64 `json:"queued_bytes"`
	RejectedIntegrity uint64 `json:"rejected_integrity"`
	RejectedFull      uint64 `json:"rejected_full"`
	RejectedInvalid   uint64 `json:"rejected_invalid"`
	ProxyRequests     uint64 `json:"proxy_requests"`
	ProxyEmpty        uint64 `json:"proxy_empty"`
	Proxied           uint64 `json:"proxied"`
	DeliveredFallback uint64 `json:"delivered_fallback"`
	Dropped           uint64 `json:"dropped"`

	InQueue        int   `json:"in_queue"`
	QueueSizeBytes int64 `json:"queue_size_bytes"`

	Requests          uint64  `json:"requests"`
	TotalProcessingMs float64 `json:"total_processing_ms"`
	LastProcessingMs  float64 `json:"last_processing_ms"`
	AvgProcessingMs   float64 `json:"avg_processing_ms"`
}

// Snapshot reads every counter once.
func (r *Registry) Snapshot() View {
	v := View{
		StartTime:         r.start,
		UptimeSeconds:     r.now().Sub(r.start).Seconds(),
		QueueRequests:     r.queueRequests.Load(),
		Queued:            r.queued.Load(),
		QueuedBytes:       r.queuedBytes.Load(),
		RejectedIntegrity: r.rejectedIntegrity.Load(),
		RejectedFull:      r.rejectedFull.Load(),
		RejectedInvalid:   r.rejectedInvalid.Load(),
		ProxyRequests:     r.proxyRequests.Load(),
		ProxyEmpty:        r.proxyEmpty.Load(),
		Proxied:           r.proxied.Load(),
		DeliveredFallback: r.deliveredFallback.Load(),
		Dropped:           r.dropped.Load(),
		Requests:          r.requests.Load(),
		TotalProcessingMs: ms(time.Duration(r.requestTotal.Load())),
		LastProcessingMs:  ms(time.Duration(r.requestLast.Load())),
	}

	if v.Requests > 0 {
		v.AvgProcessingMs = v.TotalProcessingMs / float64(v.Requests)
	}

	if h := r.gauges.Load(); h != nil {
		v.InQueue = h.g.Len()
		v.QueueSizeBytes = h.g.Bytes()
	}

	return v
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
