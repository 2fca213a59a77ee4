package redisx

import "time"

const (
	// Cart snapshot cache: cart:view:{user_id} -> JSON body of GET /cart
	KeyCartView = "cart:view:%d"

	// Webhook redelivery guard: webhook:dedup:{payment_id}:{status} -> "1"
	KeyWebhookDedup = "webhook:dedup:%s:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLCartView     = 5 * time.Minute
	TTLWebhookDedup = 48 * time.Hour
	TTLDedup        = 48 * time.Hour
)
